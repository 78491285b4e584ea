package strategy

import (
	"context"

	"github.com/abhisek/learnsense/internal/feedback"
	"github.com/abhisek/learnsense/internal/llm"
)

// Socratic guides the student with questions and a graded hint ladder
// instead of handing over the solution.
type Socratic struct {
	provider llm.Provider
	cfg      Config
}

// NewSocratic creates a socratic adapter.
func NewSocratic(provider llm.Provider, cfg Config) *Socratic {
	return &Socratic{provider: provider, cfg: cfg}
}

// Run produces the next socratic step for a turn. At HintLevel 4 the
// result carries the full answer in FinalAnswer; below that the model is
// instructed to withhold it.
func (s *Socratic) Run(ctx context.Context, in TurnInput) *feedback.Result {
	ctx = llm.WithPurpose(ctx, "socratic")

	resp, err := s.provider.Generate(ctx, llm.Request{
		System:      tutorSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildSocraticMessage(in)}},
		Schema:      SocraticSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return feedback.Failure(FailureMessage(err, "Socratic step failed."))
	}

	m, ok := feedback.DecodeJSON(string(resp.Content))
	if !ok {
		return feedback.Failure(msgBadJSON)
	}
	return feedback.Normalize(m, msgBadJSON)
}
