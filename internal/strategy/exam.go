package strategy

import (
	"context"
	"errors"
	"strings"

	"github.com/abhisek/learnsense/internal/feedback"
	"github.com/abhisek/learnsense/internal/llm"
	"github.com/abhisek/learnsense/internal/scope"
)

// minNotesLen is the minimum length of study notes that can seed
// practice questions. Anything shorter yields no questions.
const minNotesLen = 30

// ExamQuestion is one generated exam item.
type ExamQuestion struct {
	Q          string `json:"q"`
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"` // easy|medium|hard
	Type       string `json:"type"`       // concept|application|trap
}

// QA pairs a question with the student's answer.
type QA struct {
	Q string
	A string
}

// ExamReport summarizes a completed exam.
type ExamReport struct {
	Summary         string   `json:"summary"`
	ScoreEstimate   int      `json:"score_estimate"`
	WeakestConcepts []string `json:"weakest_concepts"`
	NextSteps       []string `json:"next_steps"`
}

// Examiner generates exam questions and grades completed exams.
type Examiner struct {
	provider llm.Provider
	cfg      Config
}

// NewExaminer creates an exam adapter.
func NewExaminer(provider llm.Provider, cfg Config) *Examiner {
	return &Examiner{provider: provider, cfg: cfg}
}

// GenerateQuestions creates n exam questions for a topic.
func (e *Examiner) GenerateQuestions(ctx context.Context, topic, style string, n int) ([]ExamQuestion, error) {
	ctx = llm.WithPurpose(ctx, "exam-gen")
	return e.questions(ctx, buildExamMessage(topic, style, n), topic)
}

// QuestionsFromNotes turns raw study notes into practice questions.
// Notes that are too short or off-topic yield an empty set, not an error.
func (e *Examiner) QuestionsFromNotes(ctx context.Context, notes, topic, style string) ([]ExamQuestion, error) {
	notes = strings.TrimSpace(notes)
	if len(notes) < minNotesLen || !scope.Academic(notes) {
		return nil, nil
	}

	ctx = llm.WithPurpose(ctx, "notes-questions")
	return e.questions(ctx, buildNotesMessage(notes, topic, style), topic)
}

func (e *Examiner) questions(ctx context.Context, message, topic string) ([]ExamQuestion, error) {
	resp, err := e.provider.Generate(ctx, llm.Request{
		System:      examSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: message}},
		Schema:      ExamSchema,
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
	})
	if err != nil {
		return nil, err
	}

	m, ok := feedback.DecodeJSON(string(resp.Content))
	if !ok {
		return nil, &llm.ErrInvalidResponse{
			Content: resp.Content,
			Err:     errors.New("exam questions: not a JSON object"),
		}
	}

	list, _ := m["questions"].([]any)
	out := make([]ExamQuestion, 0, len(list))
	for _, item := range list {
		qm, _ := item.(map[string]any)
		q := strings.TrimSpace(stringField(qm, "q"))
		if q == "" {
			continue
		}
		eq := ExamQuestion{
			Q:          q,
			Topic:      stringField(qm, "topic"),
			Difficulty: stringField(qm, "difficulty"),
			Type:       stringField(qm, "type"),
		}
		if eq.Topic == "" {
			eq.Topic = topic
		}
		if eq.Difficulty == "" {
			eq.Difficulty = "medium"
		}
		if eq.Type == "" {
			eq.Type = "concept"
		}
		out = append(out, eq)
	}
	return out, nil
}

// BuildReport grades a completed exam from its question/answer pairs.
func (e *Examiner) BuildReport(ctx context.Context, topic string, pairs []QA) (*ExamReport, error) {
	ctx = llm.WithPurpose(ctx, "exam-report")

	resp, err := e.provider.Generate(ctx, llm.Request{
		System:      examSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildReportMessage(topic, pairs)}},
		Schema:      ReportSchema,
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
	})
	if err != nil {
		return nil, err
	}

	m, ok := feedback.DecodeJSON(string(resp.Content))
	if !ok {
		return nil, &llm.ErrInvalidResponse{
			Content: resp.Content,
			Err:     errors.New("exam report: not a JSON object"),
		}
	}

	score := int(feedback.Clamp(floatField(m, "score_estimate"), 0, 100))
	report := &ExamReport{
		Summary:         stringField(m, "summary"),
		ScoreEstimate:   score,
		WeakestConcepts: stringSliceField(m, "weakest_concepts"),
		NextSteps:       stringSliceField(m, "next_steps"),
	}
	if report.Summary == "" {
		report.Summary = "Exam completed."
	}
	return report, nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func floatField(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func stringSliceField(m map[string]any, key string) []string {
	list, _ := m[key].([]any)
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
