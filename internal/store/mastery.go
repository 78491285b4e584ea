package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Mastery update tuning. Estimates are additive and clamped to [0,100]
// so repeated wrong answers converge to 0 and repeated correct answers
// converge to 100 without overshoot.
const (
	masterySeedCorrect   = 55.0
	masterySeedIncorrect = 45.0
	masteryGainCorrect   = 4.0
	masteryLossIncorrect = 6.0

	// FallbackConcept receives the mastery signal when a turn produced
	// no identifiable concept. Signal is never dropped.
	FallbackConcept = "General Understanding"
)

// ConceptMastery is one (user, concept) mastery record.
type ConceptMastery struct {
	UserID             string    `json:"-"`
	Concept            string    `json:"concept"`
	Mastery            float64   `json:"mastery"`
	MisconceptionCount int       `json:"misconception_count"`
	CorrectCount       int       `json:"correct_count"`
	SeenCount          int       `json:"seen_count"`
	LastSeen           time.Time `json:"last_seen"`
}

// Dashboard summarizes a user's weakest and most frequently missed concepts.
type Dashboard struct {
	Weakest  []ConceptMastery `json:"weakest"`
	Frequent []ConceptMastery `json:"frequent"`
}

// HistoryEntry is one lightweight row of learning history, rendered into
// the prompt memory block on later turns.
type HistoryEntry struct {
	Concept   string
	Mastery   int
	Note      string
	CreatedAt time.Time
}

// MasteryRepo persists per-concept mastery estimates and learning history.
type MasteryRepo interface {
	// Update applies one turn's outcome to every named concept. An empty
	// concept list is treated as [FallbackConcept]. Existing records are
	// mutated additively; new records are seeded at 55 (correct) or 45.
	Update(ctx context.Context, userID string, concepts []string, isCorrect bool) error

	// Dashboard returns the top-3 weakest (ascending mastery) and top-3
	// most frequent (descending misconception count) concepts. Read-only.
	Dashboard(ctx context.Context, userID string) (*Dashboard, error)

	// History returns the newest history entries, most recent first.
	History(ctx context.Context, userID string, limit int) ([]HistoryEntry, error)
}

type masteryRepo struct {
	db *sql.DB
}

func (r *masteryRepo) Update(ctx context.Context, userID string, concepts []string, isCorrect bool) error {
	if len(concepts) == 0 {
		concepts = []string{FallbackConcept}
	}

	seed := masterySeedIncorrect
	delta := -masteryLossIncorrect
	miscInc, corrInc := 1, 0
	if isCorrect {
		seed = masterySeedCorrect
		delta = masteryGainCorrect
		miscInc, corrInc = 0, 1
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)

	for _, concept := range concepts {
		if concept == "" {
			concept = FallbackConcept
		}
		// Single upsert statement: the counter increments are atomic at
		// the database level even when duplicate submits race.
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO concept_mastery
				(user_id, concept, mastery, misconception_count, correct_count, last_seen)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT (user_id, concept) DO UPDATE SET
				mastery = MAX(0.0, MIN(100.0, concept_mastery.mastery + ?)),
				misconception_count = concept_mastery.misconception_count + ?,
				correct_count = concept_mastery.correct_count + ?,
				last_seen = excluded.last_seen`,
			userID, concept, seed, miscInc, corrInc, now,
			delta, miscInc, corrInc,
		)
		if err != nil {
			return fmt.Errorf("upsert mastery %q: %w", concept, err)
		}
	}

	// Lightweight history row for the memory block shown to the model.
	histMastery, note := 40, "Needs improvement"
	if isCorrect {
		histMastery, note = 70, "Correct response"
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO history (user_id, concept, mastery, note, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		userID, concepts[0], histMastery, note, now,
	)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func (r *masteryRepo) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	weakest, err := r.top(ctx, userID,
		`SELECT user_id, concept, mastery, misconception_count, correct_count, last_seen
		 FROM concept_mastery WHERE user_id = ?
		 ORDER BY mastery ASC, last_seen DESC, concept ASC LIMIT 3`)
	if err != nil {
		return nil, fmt.Errorf("weakest concepts: %w", err)
	}

	frequent, err := r.top(ctx, userID,
		`SELECT user_id, concept, mastery, misconception_count, correct_count, last_seen
		 FROM concept_mastery WHERE user_id = ?
		 ORDER BY misconception_count DESC, last_seen DESC, concept ASC LIMIT 3`)
	if err != nil {
		return nil, fmt.Errorf("frequent concepts: %w", err)
	}

	return &Dashboard{Weakest: weakest, Frequent: frequent}, nil
}

func (r *masteryRepo) top(ctx context.Context, userID, query string) ([]ConceptMastery, error) {
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ConceptMastery
	for rows.Next() {
		var cm ConceptMastery
		var lastSeen string
		if err := rows.Scan(&cm.UserID, &cm.Concept, &cm.Mastery,
			&cm.MisconceptionCount, &cm.CorrectCount, &lastSeen); err != nil {
			return nil, fmt.Errorf("scan mastery row: %w", err)
		}
		cm.SeenCount = cm.MisconceptionCount + cm.CorrectCount
		if t, err := time.Parse(time.RFC3339Nano, lastSeen); err == nil {
			cm.LastSeen = t
		}
		out = append(out, cm)
	}
	return out, rows.Err()
}

func (r *masteryRepo) History(ctx context.Context, userID string, limit int) ([]HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT concept, mastery, note, created_at FROM history
		 WHERE user_id = ? ORDER BY id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var h HistoryEntry
		var createdAt string
		if err := rows.Scan(&h.Concept, &h.Mastery, &h.Note, &createdAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			h.CreatedAt = t
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
