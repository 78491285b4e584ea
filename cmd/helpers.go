package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/abhisek/learnsense/internal/llm"
	"github.com/abhisek/learnsense/internal/store"
	"github.com/abhisek/learnsense/internal/strategy"
	"github.com/abhisek/learnsense/internal/tutor"
	"github.com/spf13/cobra"
)

// openStore opens the database behind this command invocation.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// openEngine wires a turn engine over the configured LLM provider.
// Explicit LEARNSENSE_* configuration wins; otherwise standard API key
// env vars are probed.
func openEngine(ctx context.Context, cmd *cobra.Command, s *store.Store) (*tutor.Engine, error) {
	cfg := llm.ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		discovered, ok := llm.DiscoverConfig()
		if !ok {
			return nil, fmt.Errorf("no LLM provider configured: %w", err)
		}
		cfg = discovered
	}

	provider, err := llm.NewProvider(ctx, cfg, s.EventRepo())
	if err != nil {
		return nil, fmt.Errorf("initialize LLM provider: %w", err)
	}

	return tutor.NewEngine(provider, s, strategy.DefaultConfig()), nil
}

func userID(cmd *cobra.Command) string {
	u, _ := cmd.Flags().GetString("user")
	if u == "" {
		u = "default"
	}
	return u
}

// readAttachment loads one image file for a diagnose turn.
func readAttachment(path string) (llm.Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return llm.Attachment{}, fmt.Errorf("read attachment: %w", err)
	}
	mime := "image/png"
	if len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8 {
		mime = "image/jpeg"
	}
	return llm.Attachment{Data: data, MIME: mime}, nil
}
