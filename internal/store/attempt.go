package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// AttemptRepo is the append-only ledger of answer attempts. The attempt
// count per (user, question fingerprint) drives hint escalation.
type AttemptRepo interface {
	// RecordAttempt durably appends an attempt and returns the updated
	// number of attempts this user has made on this question, including
	// the one just written.
	RecordAttempt(ctx context.Context, userID, question, answer string, hasAttachment bool) (int, error)

	// Count returns the attempt count for (user, question) without writing.
	Count(ctx context.Context, userID, question string) (int, error)
}

// Fingerprint returns the stable identity token for a question: the first
// 16 hex characters (64 bits) of SHA-256 over the trimmed text. Whitespace
// inside the text and letter case are deliberately preserved, so a reworded
// question counts as a new question.
func Fingerprint(question string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(question)))
	return hex.EncodeToString(sum[:])[:16]
}

type attemptRepo struct {
	db *sql.DB
}

func (r *attemptRepo) RecordAttempt(ctx context.Context, userID, question, answer string, hasAttachment bool) (int, error) {
	fp := Fingerprint(question)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin attempt tx: %w", err)
	}
	defer tx.Rollback()

	attach := 0
	if hasAttachment {
		attach = 1
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO attempts (user_id, fingerprint, question, answer, has_attachment, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		userID, fp, question, answer, attach, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("append attempt: %w", err)
	}

	// Count inside the same transaction so the just-written row is included.
	var count int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attempts WHERE user_id = ? AND fingerprint = ?`,
		userID, fp,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit attempt: %w", err)
	}
	return count, nil
}

func (r *attemptRepo) Count(ctx context.Context, userID, question string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attempts WHERE user_id = ? AND fingerprint = ?`,
		userID, Fingerprint(question),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}
	return count, nil
}
