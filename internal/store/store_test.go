package store

import (
	"context"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenMigrates(t *testing.T) {
	s := openTestStore(t)

	for _, table := range []string{"attempts", "concept_mastery", "history", "llm_events"} {
		var name string
		err := s.DB().QueryRow(
			`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table,
		).Scan(&name)
		if err != nil {
			t.Errorf("expected table %s to exist: %v", table, err)
		}
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so journal_mode is only meaningful with file-based DBs.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestResetAllClearsLearnerData(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.AttemptRepo().RecordAttempt(ctx, "u1", "What is a monad?", "no idea", false); err != nil {
		t.Fatalf("record attempt: %v", err)
	}
	if err := s.MasteryRepo().Update(ctx, "u1", []string{"Monads"}, false); err != nil {
		t.Fatalf("update mastery: %v", err)
	}
	if err := s.EventRepo().AppendLLMRequest(ctx, LLMRequestEventData{Purpose: "socratic"}); err != nil {
		t.Fatalf("append event: %v", err)
	}

	if err := s.ResetAll(); err != nil {
		t.Fatalf("reset: %v", err)
	}

	count, err := s.AttemptRepo().Count(ctx, "u1", "What is a monad?")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 attempts after reset, got %d", count)
	}

	dash, err := s.MasteryRepo().Dashboard(ctx, "u1")
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if len(dash.Weakest) != 0 {
		t.Errorf("expected empty dashboard after reset, got %d records", len(dash.Weakest))
	}

	// LLM events are operational telemetry and survive a learner reset.
	events, err := s.EventRepo().QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query events: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("expected llm events to survive reset, got %d", len(events))
	}
}
