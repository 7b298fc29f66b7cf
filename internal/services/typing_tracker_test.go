package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTypingTracker_ExpiresAfterWindow(t *testing.T) {
	now := time.Now()
	tracker := NewTypingTracker(5 * time.Second)
	tracker.now = func() time.Time { return now }

	assert.NoError(t, tracker.SetTyping(1, 2, true))

	typing, err := tracker.IsTyping(1, 2)
	assert.NoError(t, err)
	assert.True(t, typing)

	now = now.Add(4999 * time.Millisecond)
	typing, _ = tracker.IsTyping(1, 2)
	assert.True(t, typing)

	now = now.Add(time.Millisecond)
	typing, _ = tracker.IsTyping(1, 2)
	assert.False(t, typing)
}

func TestTypingTracker_Directional(t *testing.T) {
	tracker := NewTypingTracker(5 * time.Second)

	assert.NoError(t, tracker.SetTyping(1, 2, true))

	typing, _ := tracker.IsTyping(1, 2)
	assert.True(t, typing)

	// the reverse direction was never recorded
	typing, _ = tracker.IsTyping(2, 1)
	assert.False(t, typing)
}

func TestTypingTracker_StopClearsEntry(t *testing.T) {
	tracker := NewTypingTracker(5 * time.Second)

	assert.NoError(t, tracker.SetTyping(1, 2, true))
	assert.NoError(t, tracker.SetTyping(1, 2, false))

	typing, _ := tracker.IsTyping(1, 2)
	assert.False(t, typing)
}

func TestTypingTracker_SweepDropsStaleEntries(t *testing.T) {
	now := time.Now()
	tracker := NewTypingTracker(5 * time.Second)
	tracker.now = func() time.Time { return now }

	tracker.SetTyping(1, 2, true)
	tracker.SetTyping(3, 4, true)

	now = now.Add(10 * time.Second)
	tracker.SetTyping(5, 6, true)

	tracker.Sweep()

	assert.Len(t, tracker.entries, 1)
	typing, _ := tracker.IsTyping(5, 6)
	assert.True(t, typing)
}
