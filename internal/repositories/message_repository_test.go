package repositories

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestRepo(t *testing.T) *MessageRepository {
	t.Helper()
	return NewMessageRepository(filepath.Join(t.TempDir(), "messages.json"), slog.Default())
}

func TestMessageRepository_IDsMonotonic(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	for want := 1; want <= 3; want++ {
		msg, err := repo.Append(ctx, 1, 2, "ciphertext")
		assert.NoError(t, err)
		assert.Equal(t, want, msg.ID)
		assert.False(t, msg.Read)
		assert.NotZero(t, msg.Timestamp)
	}
}

func TestMessageRepository_NoIDReuseAfterDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	for i := 0; i < 3; i++ {
		_, err := repo.Append(ctx, 1, 2, "ciphertext")
		assert.NoError(t, err)
	}

	removed, err := repo.RemoveByID(ctx, 3)
	assert.NoError(t, err)
	assert.True(t, removed)

	msg, err := repo.Append(ctx, 1, 2, "ciphertext")
	assert.NoError(t, err)
	assert.Equal(t, 4, msg.ID, "max+1 assignment must not reuse a deleted id")
}

func TestMessageRepository_RemoveByID(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	_, err := repo.Append(ctx, 1, 2, "ciphertext")
	assert.NoError(t, err)

	removed, err := repo.RemoveByID(ctx, 99)
	assert.NoError(t, err)
	assert.False(t, removed)

	removed, err = repo.RemoveByID(ctx, 1)
	assert.NoError(t, err)
	assert.True(t, removed)

	messages, err := repo.All(ctx)
	assert.NoError(t, err)
	assert.Empty(t, messages)
}

func TestMessageRepository_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "messages.json")

	first := NewMessageRepository(path, slog.Default())
	_, err := first.Append(ctx, 1, 2, "hello at rest")
	assert.NoError(t, err)

	second := NewMessageRepository(path, slog.Default())
	messages, err := second.All(ctx)
	assert.NoError(t, err)
	assert.Len(t, messages, 1)
	assert.Equal(t, "hello at rest", messages[0].Text)

	msg, err := second.Append(ctx, 2, 1, "reply")
	assert.NoError(t, err)
	assert.Equal(t, 2, msg.ID)
}

func TestMessageRepository_CorruptFileReadsAsEmpty(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "messages.json")
	assert.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	repo := NewMessageRepository(path, slog.Default())

	messages, err := repo.All(ctx)
	assert.NoError(t, err)
	assert.Empty(t, messages)

	// the next write replaces the corrupt document
	msg, err := repo.Append(ctx, 1, 2, "fresh start")
	assert.NoError(t, err)
	assert.Equal(t, 1, msg.ID)

	messages, err = repo.All(ctx)
	assert.NoError(t, err)
	assert.Len(t, messages, 1)
}
