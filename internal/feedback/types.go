// Package feedback defines the strict internal shape of tutoring feedback
// and the total normalization that coerces untrusted LLM output into it.
package feedback

// Severity grades how badly a misconception blocks progress.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// HintLadderLen is the fixed length of a misconception's hint ladder,
// ordered subtle to explicit.
const HintLadderLen = 3

// Teaching is the remediation content attached to a misconception.
// Fields may be empty strings but are always present.
type Teaching struct {
	Explanation      string `json:"explanation"`
	Analogy          string `json:"analogy"`
	FollowUpQuestion string `json:"follow_up_question"`
}

// Misconception describes one specific wrong understanding, with a hint
// ladder and teaching content. A correct answer is represented by a single
// synthetic record with Concept "No misconception".
type Misconception struct {
	Concept            string   `json:"concept"`
	WhyWrong           string   `json:"why_wrong"`
	Hints              []string `json:"hints"` // always exactly HintLadderLen
	DiagnosticQuestion string   `json:"diagnostic_question"`
	Severity           Severity `json:"severity"`
	Teaching           Teaching `json:"teaching"`
	FinalAnswer        string   `json:"final_answer"`
	Memory             []string `json:"memory"` // read-only annotation, never persisted
}

// RubricItem is one graded step of a rubric reveal.
type RubricItem struct {
	Step         string `json:"step"`
	Marks        int    `json:"marks"`
	Expected     string `json:"expected"`
	CommonErrors string `json:"common_errors"`
	StudentError string `json:"student_error"`
}

// Result is the normalized outcome of one reasoning call. Every field is
// well-typed regardless of how malformed the raw output was. Err marks a
// total failure (unusable output or unavailable capability); the UI renders
// it as an "ask me again" state, never as backend error text.
type Result struct {
	Err        bool
	ErrMessage string

	IsCorrect  bool
	Confidence float64 // [0,1]

	Misconceptions []Misconception

	// Socratic
	NextQuestion string

	// Diagnose
	Steps          []string
	WrongStepIndex int // -1 = fully correct
	Fix            string

	// Rubric
	SolutionSteps []string
	Rubric        []RubricItem
	MinimalFix    string
	FinalAnswer   string
}

// Failure builds the canonical failure Result for a caller-supplied
// user-safe message. It is the only representation of total failure.
func Failure(msg string) *Result {
	return &Result{
		Err:            true,
		ErrMessage:     msg,
		IsCorrect:      false,
		Confidence:     0,
		Misconceptions: []Misconception{},
		WrongStepIndex: -1,
	}
}
