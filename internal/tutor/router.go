package tutor

import (
	"context"
	"errors"
	"strings"

	"github.com/abhisek/learnsense/internal/feedback"
	"github.com/abhisek/learnsense/internal/llm"
	"github.com/abhisek/learnsense/internal/scope"
	"github.com/abhisek/learnsense/internal/store"
	"github.com/abhisek/learnsense/internal/strategy"
)

const (
	// MaxAttemptsBeforeRubric is the attempt count at which a turn is
	// escalated to a forced rubric reveal.
	MaxAttemptsBeforeRubric = 4

	// minQuestionLen is the minimum trimmed question length the
	// guardrail accepts.
	minQuestionLen = 5

	// revealConcept tags the mastery update recorded on a rubric reveal.
	revealConcept = "Answer Reveal"
)

const (
	msgOffTopic      = "I can help only with academic/learning questions."
	msgNeedQuestion  = "Please share the full problem statement so I can help."
	msgRevealDefault = "Here's the correct answer and rubric."
	msgSolutionIdea  = "Here's the correct solution idea."
	msgFallbackDiag  = "What definition are you using?"
)

// ErrCancelled is returned when the turn's request ID was cancelled while
// the adapter call was in flight. The attempt record stays durable; no
// mastery update is applied.
var ErrCancelled = errors.New("turn cancelled")

// turnAdapter is the common shape of the Diagnose, Socratic and Rubric
// adapters.
type turnAdapter interface {
	Run(ctx context.Context, in strategy.TurnInput) *feedback.Result
}

// Engine is the turn router. It is stateless across turns: every routing
// decision is recomputed from the persisted attempt and mastery counters.
type Engine struct {
	attempts store.AttemptRepo
	mastery  store.MasteryRepo

	diagnose turnAdapter
	socratic turnAdapter
	rubric   turnAdapter
	examiner *strategy.Examiner

	inScope func(string) bool
	cancels *CancelRegistry
}

// NewEngine wires a router over the given provider and store.
func NewEngine(provider llm.Provider, st *store.Store, cfg strategy.Config) *Engine {
	return &Engine{
		attempts: st.AttemptRepo(),
		mastery:  st.MasteryRepo(),
		diagnose: strategy.NewDiagnoser(provider, cfg),
		socratic: strategy.NewSocratic(provider, cfg),
		rubric:   strategy.NewRubricer(provider, cfg),
		examiner: strategy.NewExaminer(provider, cfg),
		inScope:  scope.Academic,
		cancels:  NewCancelRegistry(),
	}
}

// Cancels exposes the cancellation registry so a UI can flag in-flight
// requests.
func (e *Engine) Cancels() *CancelRegistry {
	return e.cancels
}

// HandleTurn runs one tutoring turn through the sequential pipeline:
// guardrail, ledger write, adapter call, mastery write, envelope
// assembly. The only error paths are store failures and cancellation;
// everything else degrades into a schema-complete Response.
func (e *Engine) HandleTurn(ctx context.Context, req TurnRequest) (*Response, error) {
	question := strings.TrimSpace(req.Question)

	if len(question) < minQuestionLen {
		return e.guardrail(ctx, req.UserID, msgNeedQuestion)
	}
	if !e.inScope(question) || !e.inScope(req.Answer) {
		return e.guardrail(ctx, req.UserID, msgOffTopic)
	}

	attempts, err := e.attempts.RecordAttempt(ctx, req.UserID, question, req.Answer, len(req.Attachments) > 0)
	if err != nil {
		return nil, err
	}

	history, err := e.mastery.History(ctx, req.UserID, memoryRows)
	if err != nil {
		return nil, err
	}

	hintLevel := req.HintLevel
	if hintLevel < 1 {
		hintLevel = attempts
	}
	if hintLevel > 4 {
		hintLevel = 4
	}

	in := strategy.TurnInput{
		Question:    question,
		Answer:      req.Answer,
		MemoryBlock: memoryBlock(history),
		Style:       req.Style,
		Topic:       req.Topic,
		HintLevel:   hintLevel,
		Attachments: req.Attachments,
	}

	switch {
	case req.GiveUp || attempts >= MaxAttemptsBeforeRubric:
		return e.rubricTurn(ctx, req, in, attempts)
	case len(req.Attachments) > 0:
		return e.diagnoseTurn(ctx, req, in, attempts)
	default:
		return e.socraticTurn(ctx, req, in, attempts)
	}
}

// guardrail builds the terminal response for out-of-scope or malformed
// input. No ledger or mastery write happens on this path.
func (e *Engine) guardrail(ctx context.Context, userID, msg string) (*Response, error) {
	dash, err := e.mastery.Dashboard(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Response{
		Mode:           ModeSocratic,
		HintLevel:      1,
		Messages:       []ChatMessage{{Role: "assistant", Text: msg}},
		Misconceptions: []feedback.Misconception{},
		Artifacts:      Artifacts{ConceptDashboard: dash},
	}, nil
}

func (e *Engine) rubricTurn(ctx context.Context, req TurnRequest, in strategy.TurnInput, attempts int) (*Response, error) {
	in.HintLevel = 4

	res := e.rubric.Run(ctx, in)
	if e.cancels.take(req.RequestID) {
		return nil, ErrCancelled
	}
	if res.Err {
		return e.failure(ctx, req.UserID, ModeRubric, attempts, 4, res.ErrMessage)
	}

	if err := e.mastery.Update(ctx, req.UserID, []string{revealConcept}, false); err != nil {
		return nil, err
	}

	msg := res.FinalAnswer
	if strings.TrimSpace(msg) == "" {
		msg = msgRevealDefault
	}

	dash, err := e.mastery.Dashboard(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	// A reveal is never reported as correct, whatever the model judged.
	return &Response{
		Mode:           ModeRubric,
		IsCorrect:      false,
		Confidence:     0.8,
		AttemptsUsed:   attempts,
		HintLevel:      4,
		Messages:       []ChatMessage{{Role: "assistant", Text: msg}},
		Misconceptions: []feedback.Misconception{},
		Artifacts: Artifacts{
			Rubric: &RubricArtifacts{
				SolutionSteps: res.SolutionSteps,
				Rubric:        res.Rubric,
				MinimalFix:    res.MinimalFix,
				FinalAnswer:   res.FinalAnswer,
			},
			ConceptDashboard: dash,
		},
	}, nil
}

func (e *Engine) diagnoseTurn(ctx context.Context, req TurnRequest, in strategy.TurnInput, attempts int) (*Response, error) {
	res := e.diagnose.Run(ctx, in)
	if e.cancels.take(req.RequestID) {
		return nil, ErrCancelled
	}
	if res.Err {
		return e.failure(ctx, req.UserID, ModeDiagnose, attempts, in.HintLevel, res.ErrMessage)
	}

	if err := e.mastery.Update(ctx, req.UserID, concepts(res.Misconceptions), res.IsCorrect); err != nil {
		return nil, err
	}

	diag := msgFallbackDiag
	if len(res.Misconceptions) > 0 && strings.TrimSpace(res.Misconceptions[0].DiagnosticQuestion) != "" {
		diag = res.Misconceptions[0].DiagnosticQuestion
	}
	msg := diag
	if res.Fix != "" {
		msg = res.Fix + "\n\n" + diag
	}

	dash, err := e.mastery.Dashboard(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	return &Response{
		Mode:           ModeDiagnose,
		IsCorrect:      res.IsCorrect,
		Confidence:     res.Confidence,
		AttemptsUsed:   attempts,
		HintLevel:      in.HintLevel,
		Messages:       []ChatMessage{{Role: "assistant", Text: msg}},
		Misconceptions: res.Misconceptions,
		Artifacts: Artifacts{
			Diagnose: &DiagnoseArtifacts{
				Steps:          res.Steps,
				WrongStepIndex: res.WrongStepIndex,
				Fix:            res.Fix,
			},
			ConceptDashboard: dash,
		},
	}, nil
}

func (e *Engine) socraticTurn(ctx context.Context, req TurnRequest, in strategy.TurnInput, attempts int) (*Response, error) {
	res := e.socratic.Run(ctx, in)
	if e.cancels.take(req.RequestID) {
		return nil, ErrCancelled
	}
	if res.Err {
		return e.failure(ctx, req.UserID, ModeSocratic, attempts, in.HintLevel, res.ErrMessage)
	}

	if err := e.mastery.Update(ctx, req.UserID, concepts(res.Misconceptions), res.IsCorrect); err != nil {
		return nil, err
	}

	msg := socraticMessage(res, in.HintLevel)

	dash, err := e.mastery.Dashboard(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	return &Response{
		Mode:           ModeSocratic,
		IsCorrect:      res.IsCorrect,
		Confidence:     res.Confidence,
		AttemptsUsed:   attempts,
		HintLevel:      in.HintLevel,
		Messages:       []ChatMessage{{Role: "assistant", Text: msg}},
		Misconceptions: res.Misconceptions,
		Artifacts:      Artifacts{ConceptDashboard: dash},
	}, nil
}

// socraticMessage builds the lead message. Below the reveal level it
// pairs one ladder hint with the next question; at level 4 it is the
// first misconception's final answer.
func socraticMessage(res *feedback.Result, hintLevel int) string {
	if hintLevel >= 4 {
		if len(res.Misconceptions) > 0 && strings.TrimSpace(res.Misconceptions[0].FinalAnswer) != "" {
			return res.Misconceptions[0].FinalAnswer
		}
		return msgSolutionIdea
	}

	if len(res.Misconceptions) == 0 {
		return "### Try this\n" + res.NextQuestion
	}

	idx := hintLevel - 1
	if idx < 0 {
		idx = 0
	}
	if idx > feedback.HintLadderLen-1 {
		idx = feedback.HintLadderLen - 1
	}
	hint := res.Misconceptions[0].Hints[idx]

	return "### Hint\n" + hint + "\n\n### Try this\n" + res.NextQuestion
}

// failure assembles the in-mode failure envelope. It carries zero
// confidence, an explanatory message and a fresh dashboard read; no
// mastery update happens on this path.
func (e *Engine) failure(ctx context.Context, userID string, mode Mode, attempts, hintLevel int, msg string) (*Response, error) {
	dash, err := e.mastery.Dashboard(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Response{
		Mode:           mode,
		IsCorrect:      false,
		Confidence:     0,
		AttemptsUsed:   attempts,
		HintLevel:      hintLevel,
		Messages:       []ChatMessage{{Role: "assistant", Text: msg}},
		Misconceptions: []feedback.Misconception{},
		Artifacts:      Artifacts{ConceptDashboard: dash},
	}, nil
}

func concepts(list []feedback.Misconception) []string {
	out := make([]string, 0, len(list))
	for _, m := range list {
		out = append(out, m.Concept)
	}
	return out
}
