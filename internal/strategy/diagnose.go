package strategy

import (
	"context"

	"github.com/abhisek/learnsense/internal/feedback"
	"github.com/abhisek/learnsense/internal/llm"
)

// Diagnoser performs step-level analysis of a student's answer, used when
// the student attached an image of their working.
type Diagnoser struct {
	provider llm.Provider
	cfg      Config
}

// NewDiagnoser creates a diagnose adapter.
func NewDiagnoser(provider llm.Provider, cfg Config) *Diagnoser {
	return &Diagnoser{provider: provider, cfg: cfg}
}

// Run analyzes one turn. It never returns an error: unusable output or an
// unavailable provider degrades into a failure Result with a user-safe
// message.
func (d *Diagnoser) Run(ctx context.Context, in TurnInput) *feedback.Result {
	ctx = llm.WithPurpose(ctx, "diagnose")

	resp, err := d.provider.Generate(ctx, llm.Request{
		System:      tutorSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildDiagnoseMessage(in)}},
		Attachments: in.Attachments,
		Schema:      DiagnoseSchema,
		MaxTokens:   d.cfg.MaxTokens,
		Temperature: d.cfg.Temperature,
	})
	if err != nil {
		return feedback.Failure(FailureMessage(err, "Diagnosis failed."))
	}

	m, ok := feedback.DecodeJSON(string(resp.Content))
	if !ok {
		return feedback.Failure(msgBadJSON)
	}
	return feedback.Normalize(m, msgBadJSON)
}
