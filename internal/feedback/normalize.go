package feedback

import "strings"

// Default texts used to pad missing fields. These face the learner, so
// they read as tutoring guidance rather than as placeholders.
const (
	genericHint       = "Start from the definition and test it with a simple example."
	defaultDiagnostic = "Can you explain the key definition in one sentence?"
	defaultNextQ      = "Can you explain your reasoning in one sentence?"
)

// Normalize coerces a decoded JSON value of any shape into a complete
// Result. It is pure and total: malformed input degrades into defaulted
// fields, never into an error. A non-mapping raw value yields the
// canonical failure payload carrying failMsg.
func Normalize(raw any, failMsg string) *Result {
	m, ok := raw.(map[string]any)
	if !ok {
		return Failure(failMsg)
	}

	isCorrect := asBool(m["is_correct"], false)

	r := &Result{
		IsCorrect:      isCorrect,
		Confidence:     Clamp(asFloat(m["confidence"], 0.5), 0, 1),
		NextQuestion:   asString(m["next_question"], defaultNextQ),
		Steps:          asStringSlice(m["steps"]),
		WrongStepIndex: int(asFloat(m["wrong_step_index"], -1)),
		Fix:            strings.TrimSpace(asString(m["fix"], "")),
		SolutionSteps:  asStringSlice(m["solution_steps"]),
		Rubric:         normalizeRubric(m["rubric"]),
		MinimalFix:     asString(m["minimal_fix"], ""),
		FinalAnswer:    asString(m["final_answer"], ""),
	}
	r.Misconceptions = NormalizeMisconceptions(m["misconceptions"], isCorrect)
	return r
}

// NormalizeMisconceptions coerces a raw misconception list to at most 3
// complete records. When the answer was correct and none were supplied,
// exactly one synthetic positive-affirmation record is synthesized.
func NormalizeMisconceptions(items any, isCorrect bool) []Misconception {
	list, _ := items.([]any)

	if isCorrect && len(list) == 0 {
		return []Misconception{{
			Concept:  "No misconception",
			WhyWrong: "Your answer looks correct.",
			Hints: []string{
				"Try a harder variant.",
				"Explain your reasoning in 1-2 sentences.",
				"Give a counterexample and why it fails.",
			},
			DiagnosticQuestion: "Can you justify it in one sentence?",
			Severity:           SeverityLow,
			Teaching: Teaching{
				Explanation:      "Nice — that matches the expected concept.",
				FollowUpQuestion: "Want a follow-up?",
			},
			FinalAnswer: "You're correct. Want to try a harder variant?",
			Memory:      []string{},
		}}
	}

	if len(list) > 3 {
		list = list[:3]
	}

	out := make([]Misconception, 0, len(list))
	for _, item := range list {
		out = append(out, normalizeMisconception(item, isCorrect))
	}
	return out
}

func normalizeMisconception(item any, isCorrect bool) Misconception {
	m, _ := item.(map[string]any)

	defaultConcept := "Conceptual misunderstanding"
	defaultWhy := "There is a misunderstanding."
	defaultSeverity := SeverityMedium
	defaultExplanation := "Let's fix this step by step."
	if isCorrect {
		defaultConcept = "No misconception"
		defaultWhy = "Your answer is correct."
		defaultSeverity = SeverityLow
		defaultExplanation = "Looks correct."
	}

	t, _ := m["teaching"].(map[string]any)

	return Misconception{
		Concept:            asString(m["concept"], defaultConcept),
		WhyWrong:           asString(m["why_wrong"], defaultWhy),
		Hints:              padHints(asStringSlice(m["hints"])),
		DiagnosticQuestion: asString(m["diagnostic_question"], defaultDiagnostic),
		Severity:           asSeverity(m["severity"], defaultSeverity),
		Teaching: Teaching{
			Explanation:      asString(t["explanation"], defaultExplanation),
			Analogy:          asString(t["analogy"], ""),
			FollowUpQuestion: asString(t["follow_up_question"], "Try again in your own words."),
		},
		FinalAnswer: asString(m["final_answer"], ""),
		Memory:      []string{},
	}
}

// padHints forces a hint ladder to exactly HintLadderLen entries:
// right-padded with the generic hint when short, truncated when long.
func padHints(hints []string) []string {
	out := make([]string, 0, HintLadderLen)
	for _, h := range hints {
		if len(out) == HintLadderLen {
			break
		}
		out = append(out, h)
	}
	for len(out) < HintLadderLen {
		out = append(out, genericHint)
	}
	return out
}

func normalizeRubric(raw any) []RubricItem {
	list, _ := raw.([]any)
	out := make([]RubricItem, 0, len(list))
	for _, item := range list {
		m, _ := item.(map[string]any)
		out = append(out, RubricItem{
			Step:         asString(m["step"], ""),
			Marks:        int(asFloat(m["marks"], 0)),
			Expected:     asString(m["expected"], ""),
			CommonErrors: asString(m["common_errors"], ""),
			StudentError: asString(m["student_error"], ""),
		})
	}
	return out
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Coercion helpers. Indexing a nil map is fine in Go, so callers pass
// m["field"] directly even when the mapping itself was absent.

func asBool(v any, def bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}

func asFloat(v any, def float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return def
}

func asString(v any, def string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}

func asStringSlice(v any) []string {
	list, _ := v.([]any)
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func asSeverity(v any, def Severity) Severity {
	if s, ok := v.(string); ok {
		switch Severity(s) {
		case SeverityLow, SeverityMedium, SeverityHigh:
			return Severity(s)
		}
	}
	return def
}
