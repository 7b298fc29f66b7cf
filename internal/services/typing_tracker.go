package services

import (
	"fmt"
	"sync"
	"time"
)

// TypingTracker keeps "sender is typing to receiver" timestamps in process
// memory. Expiry is lazy: a stale entry reads as not typing and is only
// physically removed by an overwrite, a stop signal, or Sweep.
type TypingTracker struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	window  time.Duration
	now     func() time.Time
}

func NewTypingTracker(window time.Duration) *TypingTracker {
	return &TypingTracker{
		entries: make(map[string]time.Time),
		window:  window,
		now:     time.Now,
	}
}

func typingKey(senderID, receiverID int) string {
	return fmt.Sprintf("%d-%d", senderID, receiverID)
}

func (t *TypingTracker) SetTyping(senderID, receiverID int, isTyping bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := typingKey(senderID, receiverID)
	if isTyping {
		t.entries[key] = t.now()
	} else {
		delete(t.entries, key)
	}
	return nil
}

func (t *TypingTracker) IsTyping(senderID, receiverID int) (bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	recordedAt, ok := t.entries[typingKey(senderID, receiverID)]
	if !ok {
		return false, nil
	}
	return t.now().Sub(recordedAt) < t.window, nil
}

// Sweep drops entries past the window so memory stays bounded by active
// pairs rather than every pair that has ever typed. The query contract is
// unchanged whether or not Sweep ever runs.
func (t *TypingTracker) Sweep() {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-t.window)
	for key, recordedAt := range t.entries {
		if recordedAt.Before(cutoff) {
			delete(t.entries, key)
		}
	}
}
