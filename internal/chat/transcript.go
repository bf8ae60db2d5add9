// Package chat holds the conversation with the triage assistant: the
// transcript and the dispatcher that sends messages and interprets the
// assistant's directives.
package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/inbox-triage/internal/model"
)

// Transcript is the ordered list of chat entries for the session. Entries
// are only ever appended.
type Transcript struct {
	mu      sync.RWMutex
	entries []model.ChatEntry
	now     func() time.Time
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{now: time.Now}
}

// Append adds an entry and returns it with its id and timestamp filled in.
func (t *Transcript) Append(role model.Role, text string, failed bool) model.ChatEntry {
	e := model.ChatEntry{
		ID:     uuid.NewString(),
		Role:   role,
		Text:   text,
		At:     t.now(),
		Failed: failed,
	}

	t.mu.Lock()
	t.entries = append(t.entries, e)
	t.mu.Unlock()
	return e
}

// Entries returns a copy of the transcript.
func (t *Transcript) Entries() []model.ChatEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]model.ChatEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
