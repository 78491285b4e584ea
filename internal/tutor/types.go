// Package tutor implements the turn router: the state machine that picks
// a pedagogical mode for each turn, applies mastery updates from the
// adapter's result, and assembles the user-facing response envelope.
package tutor

import (
	"github.com/abhisek/learnsense/internal/feedback"
	"github.com/abhisek/learnsense/internal/llm"
	"github.com/abhisek/learnsense/internal/store"
	"github.com/abhisek/learnsense/internal/strategy"
)

// Mode selects which adapter handled a turn.
type Mode string

const (
	ModeDiagnose Mode = "DIAGNOSE"
	ModeSocratic Mode = "SOCRATIC"
	ModeRubric   Mode = "RUBRIC"
	ModeExam     Mode = "EXAM"
)

// TurnRequest is the single entry-point payload for one tutoring turn.
type TurnRequest struct {
	UserID   string
	Question string
	Answer   string
	Topic    string
	Style    string

	// HintLevel 1..4; 0 derives it from the attempt count. 4 reveals.
	HintLevel int

	// GiveUp forces an immediate rubric reveal regardless of attempts.
	GiveUp bool

	Attachments []llm.Attachment

	// RequestID keys cooperative cancellation. Empty disables it.
	RequestID string
}

// ChatMessage is one user-facing message in the response envelope.
type ChatMessage struct {
	Role string `json:"role"` // "assistant"
	Text string `json:"text"`
}

// DiagnoseArtifacts carries step-level analysis output.
type DiagnoseArtifacts struct {
	Steps          []string `json:"steps"`
	WrongStepIndex int      `json:"wrong_step_index"` // -1 = fully correct
	Fix            string   `json:"fix"`
}

// RubricArtifacts carries the full answer reveal.
type RubricArtifacts struct {
	SolutionSteps []string              `json:"solution_steps"`
	Rubric        []feedback.RubricItem `json:"rubric"`
	MinimalFix    string                `json:"minimal_fix"`
	FinalAnswer   string                `json:"final_answer"`
}

// ExamArtifacts carries generated questions or a graded report.
type ExamArtifacts struct {
	Questions []strategy.ExamQuestion `json:"questions,omitempty"`
	Report    *strategy.ExamReport    `json:"report,omitempty"`
}

// Artifacts is a closed union keyed by mode. Exactly one mode pointer is
// set; ConceptDashboard is populated for every mode.
type Artifacts struct {
	Diagnose *DiagnoseArtifacts `json:"diagnose,omitempty"`
	Rubric   *RubricArtifacts   `json:"rubric,omitempty"`
	Exam     *ExamArtifacts     `json:"exam,omitempty"`

	ConceptDashboard *store.Dashboard `json:"concept_dashboard"`
}

// Response is the complete envelope for one turn. It is always
// schema-complete: failures surface as messages inside it, never as
// backend error text.
type Response struct {
	Mode           Mode                     `json:"mode"`
	IsCorrect      bool                     `json:"is_correct"`
	Confidence     float64                  `json:"confidence"`
	AttemptsUsed   int                      `json:"attempts_used"`
	HintLevel      int                      `json:"hint_level"`
	Messages       []ChatMessage            `json:"messages"`
	Misconceptions []feedback.Misconception `json:"misconceptions"`
	Artifacts      Artifacts                `json:"artifacts"`
}
