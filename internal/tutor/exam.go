package tutor

import (
	"context"
	"strings"

	"github.com/abhisek/learnsense/internal/feedback"
	"github.com/abhisek/learnsense/internal/strategy"
)

// StartExam generates n exam questions for a topic. Off-topic requests
// terminate with the same guardrail envelope a tutoring turn would get.
func (e *Engine) StartExam(ctx context.Context, userID, topic, style string, n int) (*Response, error) {
	if strings.TrimSpace(topic) == "" || !e.inScope(topic) {
		return e.guardrail(ctx, userID, msgOffTopic)
	}

	questions, err := e.examiner.GenerateQuestions(ctx, topic, style, n)
	if err != nil {
		return e.failure(ctx, userID, ModeExam, 0, 1, strategy.FailureMessage(err, "Exam generation failed."))
	}

	return e.examResponse(ctx, userID, &ExamArtifacts{Questions: questions},
		"Exam ready. Answer each question in turn.")
}

// FinishExam grades a completed exam and records its weakest concepts as
// misconception signal so later turns personalize around them.
func (e *Engine) FinishExam(ctx context.Context, userID, topic string, pairs []strategy.QA) (*Response, error) {
	report, err := e.examiner.BuildReport(ctx, topic, pairs)
	if err != nil {
		return e.failure(ctx, userID, ModeExam, 0, 1, strategy.FailureMessage(err, "Exam grading failed."))
	}

	if len(report.WeakestConcepts) > 0 {
		if err := e.mastery.Update(ctx, userID, report.WeakestConcepts, false); err != nil {
			return nil, err
		}
	}

	return e.examResponse(ctx, userID, &ExamArtifacts{Report: report}, report.Summary)
}

// QuestionsFromNotes turns pasted study notes into practice questions.
// Unusable notes produce a guidance message rather than an error.
func (e *Engine) QuestionsFromNotes(ctx context.Context, userID, notes, topic, style string) (*Response, error) {
	questions, err := e.examiner.QuestionsFromNotes(ctx, notes, topic, style)
	if err != nil {
		return e.failure(ctx, userID, ModeExam, 0, 1, strategy.FailureMessage(err, "Question generation failed."))
	}
	if len(questions) == 0 {
		return e.guardrail(ctx, userID, "Share a longer passage of study notes and I'll turn it into practice questions.")
	}

	return e.examResponse(ctx, userID, &ExamArtifacts{Questions: questions},
		"Here are practice questions from your notes.")
}

func (e *Engine) examResponse(ctx context.Context, userID string, artifacts *ExamArtifacts, msg string) (*Response, error) {
	dash, err := e.mastery.Dashboard(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Response{
		Mode:           ModeExam,
		Confidence:     1,
		HintLevel:      1,
		Messages:       []ChatMessage{{Role: "assistant", Text: msg}},
		Misconceptions: []feedback.Misconception{},
		Artifacts: Artifacts{
			Exam:             artifacts,
			ConceptDashboard: dash,
		},
	}, nil
}
