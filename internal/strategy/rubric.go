package strategy

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/abhisek/learnsense/internal/feedback"
	"github.com/abhisek/learnsense/internal/llm"
)

const maxFallbackSteps = 6

// Rubricer reveals the full answer with a graded rubric. It is the
// terminal tutoring path, so it must produce something usable from any
// output the model gives, prose included.
type Rubricer struct {
	provider llm.Provider
	cfg      Config
}

// NewRubricer creates a rubric adapter.
func NewRubricer(provider llm.Provider, cfg Config) *Rubricer {
	return &Rubricer{provider: provider, cfg: cfg}
}

// Run generates the answer reveal. The request carries no JSON schema:
// the reveal must survive a model that ignores formatting, so prose
// output is salvaged into a rubric instead of rejected.
func (r *Rubricer) Run(ctx context.Context, in TurnInput) *feedback.Result {
	ctx = llm.WithPurpose(ctx, "rubric")

	resp, err := r.provider.Generate(ctx, llm.Request{
		System:      tutorSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildRubricMessage(in)}},
		MaxTokens:   r.cfg.MaxTokens,
		Temperature: r.cfg.Temperature,
	})
	if err != nil {
		return feedback.Failure(FailureMessage(err, "Rubric generation failed."))
	}

	raw := rawText(resp.Content)

	if m, ok := feedback.DecodeJSON(raw); ok {
		return feedback.Normalize(m, msgBadJSON)
	}
	return rubricFromText(raw)
}

// rawText unwraps the provider's content. Without a schema the content is
// a JSON-encoded string; with one it is an object, returned verbatim.
func rawText(content []byte) string {
	var s string
	if err := json.Unmarshal(content, &s); err == nil {
		return s
	}
	return string(content)
}

// rubricFromText salvages a prose reveal into the strict shape: the first
// non-empty lines become solution steps under a single-item rubric.
func rubricFromText(raw string) *feedback.Result {
	raw = strings.TrimSpace(raw)

	var steps []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		steps = append(steps, line)
		if len(steps) == maxFallbackSteps {
			break
		}
	}
	if len(steps) == 0 {
		steps = []string{"Review the core definition."}
	}

	final := raw
	if final == "" {
		final = "Here is the correct explanation of the concept."
	}

	return &feedback.Result{
		Confidence:     0.5,
		Misconceptions: []feedback.Misconception{},
		WrongStepIndex: -1,
		SolutionSteps:  steps,
		Rubric: []feedback.RubricItem{{
			Step:         "Overall understanding",
			Marks:        10,
			Expected:     "Correct explanation of the concept",
			CommonErrors: "Confusing definitions or order of operations",
			StudentError: "Gave up before articulating the concept",
		}},
		MinimalFix:  "Focus on the core definition first, then contrast it with the alternative.",
		FinalAnswer: final,
	}
}
