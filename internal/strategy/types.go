// Package strategy implements the four pedagogical reasoning adapters:
// Diagnose (step-level analysis), Socratic (hint ladder), Rubric (full
// reveal) and Exam (question generation and reporting). Each adapter
// builds a mode-specific prompt, invokes the LLM provider, and coerces
// the output into the strict feedback shape.
package strategy

import (
	"errors"

	"github.com/abhisek/learnsense/internal/llm"
)

// TurnInput carries everything an adapter needs to reason about one turn.
type TurnInput struct {
	Question    string
	Answer      string
	MemoryBlock string // rendered learning history, "No prior history." when empty
	Style       string // tutoring style label, e.g. "Exam prep", "Friendly"
	Topic       string
	HintLevel   int // 1..4; 4 means reveal
	Attachments []llm.Attachment
}

// Config holds adapter generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns generation settings suitable for tutoring turns.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   2048,
		Temperature: 0.3,
	}
}

// User-safe failure messages. These reach the learner verbatim, so they
// read as guidance and never leak upstream error text.
const (
	msgBusy        = "Model busy, try again."
	msgUnavailable = "Model unavailable."
	msgBadJSON     = "Invalid model JSON."
)

// FailureMessage maps a provider error to a user-safe message, falling
// back to the mode-specific generic text.
func FailureMessage(err error, generic string) string {
	var busy *llm.ErrRateLimit
	if errors.As(err, &busy) {
		return msgBusy
	}
	var unavail *llm.ErrProviderUnavailable
	if errors.As(err, &unavail) {
		return msgUnavailable
	}
	return generic
}
