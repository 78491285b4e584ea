package tutor

import (
	"fmt"
	"strings"

	"github.com/abhisek/learnsense/internal/store"
)

// memoryRows is how many recent history entries are rendered into the
// prompt memory block.
const memoryRows = 6

// memoryBlock renders learning history for prompt injection, newest
// first. Adapters receive this verbatim as the "Student history" section.
func memoryBlock(entries []store.HistoryEntry) string {
	if len(entries) == 0 {
		return "No prior history."
	}
	if len(entries) > memoryRows {
		entries = entries[:memoryRows]
	}

	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "- %s: mastery %d%% (%s) on %s",
			e.Concept, e.Mastery, e.Note, e.CreatedAt.Format("2006-01-02"))
	}
	return b.String()
}
