package tutor

import (
	"sync"

	"github.com/google/uuid"
)

// CancelRegistry tracks stop-generation requests keyed by request ID.
// The router checks it right after the adapter call returns: a cancelled
// request's result is discarded before any mastery write. The attempt
// record itself is already durable and is never rolled back.
type CancelRegistry struct {
	mu        sync.Mutex
	requested map[string]struct{}
}

// NewCancelRegistry creates an empty registry.
func NewCancelRegistry() *CancelRegistry {
	return &CancelRegistry{requested: make(map[string]struct{})}
}

// NewRequestID mints a fresh identifier for an in-flight turn.
func (r *CancelRegistry) NewRequestID() string {
	return uuid.NewString()
}

// Cancel flags the given request. Safe to call for unknown or already
// finished IDs.
func (r *CancelRegistry) Cancel(id string) {
	if id == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requested[id] = struct{}{}
}

// take reports whether id was cancelled and consumes the flag.
func (r *CancelRegistry) take(id string) bool {
	if id == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.requested[id]
	delete(r.requested, id)
	return ok
}
