package store

import (
	"context"
	"sync"
	"testing"
)

func TestFingerprint_TrimsButPreservesContent(t *testing.T) {
	base := Fingerprint("What is 2+2?")

	if got := Fingerprint("  What is 2+2?\n"); got != base {
		t.Errorf("leading/trailing whitespace should not change fingerprint: %q vs %q", got, base)
	}
	// Internal whitespace and case are identity-relevant: a reworded
	// question is a new question.
	if got := Fingerprint("What is  2+2?"); got == base {
		t.Error("internal whitespace change should produce a new fingerprint")
	}
	if got := Fingerprint("what is 2+2?"); got == base {
		t.Error("case change should produce a new fingerprint")
	}
	if len(base) != 16 {
		t.Errorf("expected 16 hex chars, got %d", len(base))
	}
}

func TestRecordAttempt_CountsPerQuestion(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.AttemptRepo()

	n, err := repo.RecordAttempt(ctx, "u1", "Define entropy.", "disorder?", false)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if n != 1 {
		t.Errorf("first attempt: expected count 1, got %d", n)
	}

	n, err = repo.RecordAttempt(ctx, "u1", "Define entropy.", "energy spread", false)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if n != 2 {
		t.Errorf("second attempt: expected count 2, got %d", n)
	}

	// A different question for the same user starts at 1.
	n, err = repo.RecordAttempt(ctx, "u1", "Define enthalpy.", "heat content", false)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if n != 1 {
		t.Errorf("new question: expected count 1, got %d", n)
	}

	// Same question for a different user also starts at 1.
	n, err = repo.RecordAttempt(ctx, "u2", "Define entropy.", "disorder", false)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if n != 1 {
		t.Errorf("new user: expected count 1, got %d", n)
	}
}

func TestRecordAttempt_ConcurrentIncrementsNeverLost(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.AttemptRepo()

	const writers = 8
	var wg sync.WaitGroup
	wg.Add(writers)
	for range writers {
		go func() {
			defer wg.Done()
			if _, err := repo.RecordAttempt(ctx, "u1", "Same question", "same answer", false); err != nil {
				t.Errorf("concurrent record: %v", err)
			}
		}()
	}
	wg.Wait()

	count, err := repo.Count(ctx, "u1", "Same question")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != writers {
		t.Errorf("expected %d attempts, got %d", writers, count)
	}
}
