package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPostCooldown_WindowPerUser(t *testing.T) {
	now := time.Now()
	cooldown := newPostCooldown(time.Minute)
	cooldown.now = func() time.Time { return now }

	assert.Zero(t, cooldown.remaining(1))

	cooldown.touch(1)
	assert.Equal(t, time.Minute, cooldown.remaining(1))

	// a different user is unaffected
	assert.Zero(t, cooldown.remaining(2))

	now = now.Add(30 * time.Second)
	assert.Equal(t, 30*time.Second, cooldown.remaining(1))

	now = now.Add(30 * time.Second)
	assert.Zero(t, cooldown.remaining(1))
}
