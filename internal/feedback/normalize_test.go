package feedback

import (
	"encoding/json"
	"testing"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("decode test input: %v", err)
	}
	return v
}

// assertComplete checks the full field contract every normalized
// misconception must satisfy.
func assertComplete(t *testing.T, m Misconception) {
	t.Helper()
	if m.Concept == "" {
		t.Error("concept must be non-empty")
	}
	if len(m.Hints) != HintLadderLen {
		t.Errorf("expected exactly %d hints, got %d", HintLadderLen, len(m.Hints))
	}
	for i, h := range m.Hints {
		if h == "" {
			t.Errorf("hint %d is empty", i)
		}
	}
	if m.DiagnosticQuestion == "" {
		t.Error("diagnostic question must be non-empty")
	}
	switch m.Severity {
	case SeverityLow, SeverityMedium, SeverityHigh:
	default:
		t.Errorf("invalid severity %q", m.Severity)
	}
	if m.Memory == nil {
		t.Error("memory must be non-nil")
	}
}

func TestNormalize_NonMappingIsCanonicalFailure(t *testing.T) {
	for _, raw := range []any{nil, "plain text", 42.0, []any{"a", "b"}, true} {
		r := Normalize(raw, "Unable to respond right now.")
		if !r.Err {
			t.Errorf("%T: expected failure result", raw)
		}
		if r.ErrMessage != "Unable to respond right now." {
			t.Errorf("%T: expected caller-supplied message, got %q", raw, r.ErrMessage)
		}
		if r.IsCorrect {
			t.Errorf("%T: failure must not be correct", raw)
		}
		if r.Confidence != 0 {
			t.Errorf("%T: failure confidence must be 0, got %v", raw, r.Confidence)
		}
		if len(r.Misconceptions) != 0 {
			t.Errorf("%T: failure must carry no misconceptions", raw)
		}
	}
}

func TestNormalize_DefaultsTopLevelScalars(t *testing.T) {
	r := Normalize(decode(t, `{}`), "unused")
	if r.Err {
		t.Fatal("empty mapping is not a failure")
	}
	if r.IsCorrect {
		t.Error("is_correct defaults to false")
	}
	if r.Confidence != 0.5 {
		t.Errorf("confidence defaults to 0.5, got %v", r.Confidence)
	}
	if r.WrongStepIndex != -1 {
		t.Errorf("wrong_step_index defaults to -1, got %d", r.WrongStepIndex)
	}
	if r.NextQuestion == "" {
		t.Error("next_question gets a default")
	}
}

func TestNormalize_ClampsConfidence(t *testing.T) {
	if r := Normalize(decode(t, `{"confidence": 7.5}`), ""); r.Confidence != 1 {
		t.Errorf("expected clamp to 1, got %v", r.Confidence)
	}
	if r := Normalize(decode(t, `{"confidence": -2}`), ""); r.Confidence != 0 {
		t.Errorf("expected clamp to 0, got %v", r.Confidence)
	}
	if r := Normalize(decode(t, `{"confidence": "high"}`), ""); r.Confidence != 0.5 {
		t.Errorf("wrong-typed confidence defaults to 0.5, got %v", r.Confidence)
	}
}

func TestNormalize_PadsAndTruncatesHints(t *testing.T) {
	r := Normalize(decode(t, `{"misconceptions": [
		{"concept": "Order of operations", "hints": ["only one hint"]},
		{"concept": "Sign errors", "hints": ["h1","h2","h3","h4","h5"]}
	]}`), "")

	if len(r.Misconceptions) != 2 {
		t.Fatalf("expected 2 misconceptions, got %d", len(r.Misconceptions))
	}
	for _, m := range r.Misconceptions {
		assertComplete(t, m)
	}
	if r.Misconceptions[0].Hints[0] != "only one hint" {
		t.Error("supplied hints must be kept in order")
	}
	if r.Misconceptions[1].Hints[2] != "h3" {
		t.Errorf("oversized ladder truncated at 3, got %v", r.Misconceptions[1].Hints)
	}
}

func TestNormalize_CapsMisconceptionsAtThree(t *testing.T) {
	r := Normalize(decode(t, `{"misconceptions": [{}, {}, {}, {}, {}]}`), "")
	if len(r.Misconceptions) != 3 {
		t.Errorf("expected at most 3 misconceptions, got %d", len(r.Misconceptions))
	}
	for _, m := range r.Misconceptions {
		assertComplete(t, m)
	}
}

func TestNormalize_SynthesizesPositiveRecordWhenCorrect(t *testing.T) {
	r := Normalize(decode(t, `{"is_correct": true}`), "")
	if len(r.Misconceptions) != 1 {
		t.Fatalf("expected exactly 1 synthetic record, got %d", len(r.Misconceptions))
	}
	m := r.Misconceptions[0]
	assertComplete(t, m)
	if m.Concept != "No misconception" {
		t.Errorf("expected synthetic concept, got %q", m.Concept)
	}
	if m.Severity != SeverityLow {
		t.Errorf("synthetic record severity should be low, got %q", m.Severity)
	}
}

func TestNormalize_NoSynthesisWhenIncorrect(t *testing.T) {
	r := Normalize(decode(t, `{"is_correct": false}`), "")
	if len(r.Misconceptions) != 0 {
		t.Errorf("incorrect answer with no misconceptions stays empty, got %d", len(r.Misconceptions))
	}
}

func TestNormalize_MalformedElementsDegrade(t *testing.T) {
	r := Normalize(decode(t, `{"misconceptions": ["not an object", 12, {"severity": "catastrophic", "teaching": "not an object"}]}`), "")
	if len(r.Misconceptions) != 3 {
		t.Fatalf("expected 3 degraded records, got %d", len(r.Misconceptions))
	}
	for _, m := range r.Misconceptions {
		assertComplete(t, m)
	}
	if r.Misconceptions[2].Severity != SeverityMedium {
		t.Errorf("unknown severity falls back to medium, got %q", r.Misconceptions[2].Severity)
	}
}

func TestNormalize_RubricItems(t *testing.T) {
	r := Normalize(decode(t, `{
		"solution_steps": ["step 1", "step 2"],
		"rubric": [{"step": "Setup", "marks": 5, "expected": "Correct formula"}, "garbage"],
		"minimal_fix": "Use the chain rule",
		"final_answer": "dy/dx = 2x"
	}`), "")

	if len(r.SolutionSteps) != 2 {
		t.Errorf("expected 2 solution steps, got %d", len(r.SolutionSteps))
	}
	if len(r.Rubric) != 2 {
		t.Fatalf("expected 2 rubric items, got %d", len(r.Rubric))
	}
	if r.Rubric[0].Marks != 5 || r.Rubric[0].Step != "Setup" {
		t.Errorf("unexpected rubric item: %+v", r.Rubric[0])
	}
	// The garbage element degrades to a zero-valued item, not a panic.
	if r.Rubric[1].Step != "" || r.Rubric[1].Marks != 0 {
		t.Errorf("expected zero-valued degraded item, got %+v", r.Rubric[1])
	}
	if r.FinalAnswer != "dy/dx = 2x" {
		t.Errorf("unexpected final answer %q", r.FinalAnswer)
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around", `Here you go: {"a":1} hope that helps`, `{"a":1}`},
		{"no object", "no json here", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.in); got != tt.want {
				t.Errorf("ExtractJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDecodeJSON_RejectsNonObjects(t *testing.T) {
	if _, ok := DecodeJSON(`{"a": 1}`); !ok {
		t.Error("expected valid object to decode")
	}
	if _, ok := DecodeJSON(`[1,2,3]`); ok {
		t.Error("expected array to be rejected")
	}
	if _, ok := DecodeJSON(`{"truncated": `); ok {
		t.Error("expected truncated JSON to be rejected")
	}
}
