package tutor

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/abhisek/learnsense/internal/llm"
	"github.com/abhisek/learnsense/internal/store"
	"github.com/abhisek/learnsense/internal/strategy"
)

const testUser = "student-1"

func newTestEngine(t *testing.T, mock *llm.MockProvider) (*Engine, *store.Store) {
	t.Helper()
	st, err := store.Open("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewEngine(mock, st, strategy.DefaultConfig()), st
}

func socraticJSON() llm.MockResponse {
	return llm.MockResponse{Content: json.RawMessage(`{
		"is_correct": false,
		"confidence": 0.7,
		"next_question": "What does the power rule say?",
		"misconceptions": [{
			"concept": "Power rule",
			"why_wrong": "The exponent was dropped.",
			"hints": ["h1", "h2", "h3"],
			"diagnostic_question": "What is d/dx x^3?",
			"severity": "medium",
			"final_answer": "The derivative is 2x."
		}]
	}`)}
}

func diagnoseJSON() llm.MockResponse {
	return llm.MockResponse{Content: json.RawMessage(`{
		"is_correct": false,
		"confidence": 0.8,
		"steps": ["d/dx x^2", "= x"],
		"wrong_step_index": 1,
		"fix": "Multiply by the exponent first.",
		"misconceptions": [{
			"concept": "Power rule",
			"why_wrong": "Exponent dropped.",
			"hints": ["h1", "h2", "h3"],
			"diagnostic_question": "What is d/dx x^3?"
		}]
	}`)}
}

func rubricJSON() llm.MockResponse {
	content, _ := json.Marshal(`{
		"solution_steps": ["Apply the power rule.", "The derivative is 2x."],
		"rubric": [{"step": "Power rule", "marks": 5, "expected": "2x", "common_errors": "dropping the exponent", "student_error": "wrote x"}],
		"minimal_fix": "Multiply by the exponent.",
		"final_answer": "2x"
	}`)
	return llm.MockResponse{Content: content}
}

func turnRequest() TurnRequest {
	return TurnRequest{
		UserID:   testUser,
		Question: "What is the derivative of x^2?",
		Answer:   "x",
		Topic:    "Calculus",
		Style:    "Friendly",
	}
}

func TestHandleTurn_SocraticByDefault(t *testing.T) {
	mock := llm.NewMockProvider(socraticJSON())
	e, st := newTestEngine(t, mock)

	resp, err := e.HandleTurn(t.Context(), turnRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Mode != ModeSocratic {
		t.Errorf("expected SOCRATIC, got %s", resp.Mode)
	}
	if resp.AttemptsUsed != 1 {
		t.Errorf("expected 1 attempt, got %d", resp.AttemptsUsed)
	}
	if resp.HintLevel != 1 {
		t.Errorf("expected hint level 1, got %d", resp.HintLevel)
	}

	msg := resp.Messages[0].Text
	if !strings.Contains(msg, "### Hint\nh1") {
		t.Errorf("expected first-rung hint, got %q", msg)
	}
	if !strings.Contains(msg, "### Try this\nWhat does the power rule say?") {
		t.Errorf("expected next question, got %q", msg)
	}

	if resp.Artifacts.ConceptDashboard == nil {
		t.Fatal("expected dashboard in artifacts")
	}
	if len(resp.Artifacts.ConceptDashboard.Weakest) == 0 {
		t.Error("expected mastery update reflected in dashboard")
	}

	history, err := st.MasteryRepo().History(t.Context(), testUser, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].Concept != "Power rule" {
		t.Errorf("expected one history row for 'Power rule', got %+v", history)
	}
}

func TestHandleTurn_HintSelectionByLevel(t *testing.T) {
	mock := llm.NewMockProvider(socraticJSON(), socraticJSON())
	e, _ := newTestEngine(t, mock)

	req := turnRequest()
	req.HintLevel = 2
	resp, err := e.HandleTurn(t.Context(), req)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resp.Messages[0].Text, "### Hint\nh2") {
		t.Errorf("expected h2 at level 2, got %q", resp.Messages[0].Text)
	}

	req.HintLevel = 4
	resp, err = e.HandleTurn(t.Context(), req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Messages[0].Text != "The derivative is 2x." {
		t.Errorf("expected final answer at level 4, got %q", resp.Messages[0].Text)
	}
}

func TestHandleTurn_EscalatesOnFourthAttempt(t *testing.T) {
	mock := llm.NewMockProvider(socraticJSON(), socraticJSON(), socraticJSON(), rubricJSON())
	e, _ := newTestEngine(t, mock)

	var resp *Response
	var err error
	for i := 0; i < 4; i++ {
		resp, err = e.HandleTurn(t.Context(), turnRequest())
		if err != nil {
			t.Fatalf("turn %d: %v", i+1, err)
		}
	}

	if resp.Mode != ModeRubric {
		t.Errorf("expected 4th turn to be RUBRIC, got %s", resp.Mode)
	}
	if resp.AttemptsUsed != 4 {
		t.Errorf("expected 4 attempts, got %d", resp.AttemptsUsed)
	}
	if resp.HintLevel != 4 {
		t.Errorf("expected forced hint level 4, got %d", resp.HintLevel)
	}
	if resp.IsCorrect {
		t.Error("rubric reveal must never be correct")
	}
	if len(resp.Misconceptions) != 0 {
		t.Error("rubric envelope must not carry misconceptions")
	}
	if resp.Artifacts.Rubric == nil || resp.Artifacts.Rubric.FinalAnswer != "2x" {
		t.Errorf("expected rubric artifacts, got %+v", resp.Artifacts.Rubric)
	}
}

func TestHandleTurn_GiveUpForcesRubric(t *testing.T) {
	mock := llm.NewMockProvider(rubricJSON())
	e, st := newTestEngine(t, mock)

	req := turnRequest()
	req.GiveUp = true
	resp, err := e.HandleTurn(t.Context(), req)
	if err != nil {
		t.Fatal(err)
	}

	if resp.Mode != ModeRubric {
		t.Errorf("expected RUBRIC on give-up, got %s", resp.Mode)
	}
	if resp.Confidence != 0.8 {
		t.Errorf("expected reveal confidence 0.8, got %v", resp.Confidence)
	}
	if resp.Messages[0].Text != "2x" {
		t.Errorf("expected final answer as lead message, got %q", resp.Messages[0].Text)
	}

	history, err := st.MasteryRepo().History(t.Context(), testUser, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].Concept != "Answer Reveal" {
		t.Errorf("expected 'Answer Reveal' mastery update, got %+v", history)
	}
}

func TestHandleTurn_AttachmentRoutesToDiagnose(t *testing.T) {
	mock := llm.NewMockProvider(diagnoseJSON())
	e, _ := newTestEngine(t, mock)

	req := turnRequest()
	req.Attachments = []llm.Attachment{{Data: []byte{0xFF, 0xD8}, MIME: "image/jpeg"}}
	resp, err := e.HandleTurn(t.Context(), req)
	if err != nil {
		t.Fatal(err)
	}

	if resp.Mode != ModeDiagnose {
		t.Errorf("expected DIAGNOSE with attachment, got %s", resp.Mode)
	}
	want := "Multiply by the exponent first.\n\nWhat is d/dx x^3?"
	if resp.Messages[0].Text != want {
		t.Errorf("expected fix then diagnostic question, got %q", resp.Messages[0].Text)
	}
	if resp.Artifacts.Diagnose == nil || resp.Artifacts.Diagnose.WrongStepIndex != 1 {
		t.Errorf("expected diagnose artifacts, got %+v", resp.Artifacts.Diagnose)
	}
	if len(mock.Calls[0].Attachments) != 1 {
		t.Error("expected attachment forwarded to provider")
	}
}

func TestHandleTurn_GuardrailOffTopic(t *testing.T) {
	mock := llm.NewMockProvider()
	e, st := newTestEngine(t, mock)

	req := turnRequest()
	req.Question = "play a game with me"
	req.Answer = "ok"
	resp, err := e.HandleTurn(t.Context(), req)
	if err != nil {
		t.Fatal(err)
	}

	if resp.Mode != ModeSocratic {
		t.Errorf("expected SOCRATIC guardrail response, got %s", resp.Mode)
	}
	if len(resp.Misconceptions) != 0 {
		t.Error("guardrail response must carry no misconceptions")
	}
	if mock.CallCount() != 0 {
		t.Error("guardrail must not reach the provider")
	}

	count, err := st.AttemptRepo().Count(t.Context(), testUser, "play a game with me")
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Error("guardrail must not write the ledger")
	}
	history, _ := st.MasteryRepo().History(t.Context(), testUser, 10)
	if len(history) != 0 {
		t.Error("guardrail must not write mastery")
	}
}

func TestHandleTurn_GuardrailShortQuestion(t *testing.T) {
	mock := llm.NewMockProvider()
	e, _ := newTestEngine(t, mock)

	req := turnRequest()
	req.Question = "  hi "
	resp, err := e.HandleTurn(t.Context(), req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Messages[0].Text != msgNeedQuestion {
		t.Errorf("unexpected guardrail message %q", resp.Messages[0].Text)
	}
	if mock.CallCount() != 0 {
		t.Error("short question must not reach the provider")
	}
}

func TestHandleTurn_ProviderFailureEnvelope(t *testing.T) {
	// Seed mastery state so the failure envelope has a dashboard to show.
	mock := llm.NewMockProvider(socraticJSON())
	e, st := newTestEngine(t, mock)
	if _, err := e.HandleTurn(t.Context(), turnRequest()); err != nil {
		t.Fatal(err)
	}

	// Empty queue: the provider reports unavailable.
	resp, err := e.HandleTurn(t.Context(), turnRequest())
	if err != nil {
		t.Fatalf("provider failure must not propagate: %v", err)
	}

	if resp.Mode != ModeSocratic {
		t.Errorf("failure keeps the mode, got %s", resp.Mode)
	}
	if resp.IsCorrect || resp.Confidence != 0 {
		t.Error("failure envelope must carry is_correct=false, confidence 0")
	}
	if resp.Messages[0].Text != "Model unavailable." {
		t.Errorf("unexpected failure message %q", resp.Messages[0].Text)
	}
	if len(resp.Misconceptions) != 0 {
		t.Error("failure envelope must carry no misconceptions")
	}
	if resp.Artifacts.ConceptDashboard == nil || len(resp.Artifacts.ConceptDashboard.Weakest) == 0 {
		t.Error("failure envelope must still carry the dashboard")
	}

	// The attempt was durable, the mastery write was not.
	count, _ := st.AttemptRepo().Count(t.Context(), testUser, turnRequest().Question)
	if count != 2 {
		t.Errorf("expected 2 recorded attempts, got %d", count)
	}
	history, _ := st.MasteryRepo().History(t.Context(), testUser, 10)
	if len(history) != 1 {
		t.Errorf("expected no mastery write on failure, got %d rows", len(history))
	}
}

func TestHandleTurn_CancellationDiscardsResult(t *testing.T) {
	mock := llm.NewMockProvider(socraticJSON())
	e, st := newTestEngine(t, mock)

	req := turnRequest()
	req.RequestID = e.Cancels().NewRequestID()
	e.Cancels().Cancel(req.RequestID)

	_, err := e.HandleTurn(t.Context(), req)
	if err != ErrCancelled {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}

	// The attempt write is not cancellable; the mastery write is.
	count, _ := st.AttemptRepo().Count(t.Context(), testUser, req.Question)
	if count != 1 {
		t.Errorf("expected attempt to stay durable, got count %d", count)
	}
	history, _ := st.MasteryRepo().History(t.Context(), testUser, 10)
	if len(history) != 0 {
		t.Error("cancelled turn must not write mastery")
	}
}

func TestHandleTurn_FreshEngineRecomputesFromStore(t *testing.T) {
	mock := llm.NewMockProvider(socraticJSON(), socraticJSON(), socraticJSON())
	e, st := newTestEngine(t, mock)

	for i := 0; i < 3; i++ {
		if _, err := e.HandleTurn(t.Context(), turnRequest()); err != nil {
			t.Fatal(err)
		}
	}

	// A new engine over the same store sees the persisted count and
	// escalates immediately.
	e2 := NewEngine(llm.NewMockProvider(rubricJSON()), st, strategy.DefaultConfig())
	resp, err := e2.HandleTurn(t.Context(), turnRequest())
	if err != nil {
		t.Fatal(err)
	}
	if resp.Mode != ModeRubric {
		t.Errorf("expected RUBRIC from persisted attempts, got %s", resp.Mode)
	}
}

func TestMemoryBlock(t *testing.T) {
	if got := memoryBlock(nil); got != "No prior history." {
		t.Errorf("empty history: got %q", got)
	}

	history := []store.HistoryEntry{
		{Concept: "Power rule", Mastery: 40, Note: "Needs improvement"},
	}
	got := memoryBlock(history)
	if !strings.Contains(got, "- Power rule: mastery 40% (Needs improvement) on ") {
		t.Errorf("unexpected memory block %q", got)
	}
}

func TestExamFlow(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage(`{
			"questions": [{"q": "Define a limit.", "difficulty": "easy", "type": "concept"}]
		}`)},
		llm.MockResponse{Content: json.RawMessage(`{
			"summary": "Weak on computation.",
			"score_estimate": 60,
			"weakest_concepts": ["Limits"],
			"next_steps": ["Practice drills."]
		}`)},
	)
	e, st := newTestEngine(t, mock)

	resp, err := e.StartExam(t.Context(), testUser, "Limits", "Exam prep", 1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Mode != ModeExam || len(resp.Artifacts.Exam.Questions) != 1 {
		t.Fatalf("unexpected exam response %+v", resp)
	}

	resp, err = e.FinishExam(t.Context(), testUser, "Limits", []strategy.QA{
		{Q: "Define a limit.", A: "..."},
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Artifacts.Exam.Report == nil || resp.Artifacts.Exam.Report.ScoreEstimate != 60 {
		t.Fatalf("unexpected report %+v", resp.Artifacts.Exam)
	}

	// Weakest concepts become mastery signal.
	history, _ := st.MasteryRepo().History(t.Context(), testUser, 10)
	if len(history) != 1 || history[0].Concept != "Limits" {
		t.Errorf("expected weakest concept recorded, got %+v", history)
	}
}

func TestExam_OffTopicGuardrail(t *testing.T) {
	mock := llm.NewMockProvider()
	e, _ := newTestEngine(t, mock)

	resp, err := e.StartExam(t.Context(), testUser, "minecraft builds", "Friendly", 5)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Messages[0].Text != msgOffTopic {
		t.Errorf("expected off-topic guardrail, got %q", resp.Messages[0].Text)
	}
	if mock.CallCount() != 0 {
		t.Error("off-topic exam must not reach the provider")
	}
}

func TestNotesFlow_ShortNotesGuidance(t *testing.T) {
	mock := llm.NewMockProvider()
	e, _ := newTestEngine(t, mock)

	resp, err := e.QuestionsFromNotes(t.Context(), testUser, "too short", "Limits", "Friendly")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resp.Messages[0].Text, "longer passage") {
		t.Errorf("expected guidance for short notes, got %q", resp.Messages[0].Text)
	}
	if mock.CallCount() != 0 {
		t.Error("short notes must not reach the provider")
	}
}
