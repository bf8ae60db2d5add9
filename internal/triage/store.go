// Package triage holds the client-side triage core: the email store, the
// loader that fills it, card rendering, filtering, and inbox statistics.
// Nothing here touches the terminal; views receive plain descriptions.
package triage

import (
	"sync"
	"time"

	"github.com/nhle/inbox-triage/internal/model"
)

// EmailStore holds the last successfully fetched email set. The set is
// only ever replaced whole, never edited in place, and only the Loader
// replaces it.
type EmailStore struct {
	mu      sync.RWMutex
	records []model.EmailRecord
	loaded  bool
	updated time.Time
	now     func() time.Time
}

// NewEmailStore returns an empty store.
func NewEmailStore() *EmailStore {
	return &EmailStore{now: time.Now}
}

// replace swaps in a copy of records as the new set.
func (s *EmailStore) replace(records []model.EmailRecord) {
	next := make([]model.EmailRecord, len(records))
	copy(next, records)

	s.mu.Lock()
	s.records = next
	s.loaded = true
	s.updated = s.now()
	s.mu.Unlock()
}

// All returns a copy of the current set in server order.
func (s *EmailStore) All() []model.EmailRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.EmailRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of stored records.
func (s *EmailStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Loaded reports whether any load has succeeded yet.
func (s *EmailStore) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// UpdatedAt returns when the set was last replaced, or the zero time.
func (s *EmailStore) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updated
}
