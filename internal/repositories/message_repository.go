package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"xvo/internal/models"
)

// MessageRepository persists the message log as a single JSON array,
// rewritten wholesale on every mutation. The mutex serializes the whole
// read-modify-write cycle, so two concurrent appends can never observe the
// same max id or overwrite each other's write.
type MessageRepository struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
	now    func() time.Time
}

func NewMessageRepository(path string, logger *slog.Logger) *MessageRepository {
	return &MessageRepository{
		path:   path,
		logger: logger,
		now:    time.Now,
	}
}

func (r *MessageRepository) Append(ctx context.Context, senderID, receiverID int, ciphertext string) (models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	messages := r.load()

	nextID := 1
	for _, m := range messages {
		if m.ID >= nextID {
			nextID = m.ID + 1
		}
	}

	message := models.Message{
		ID:         nextID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       ciphertext,
		Timestamp:  r.now().UnixMilli(),
		Read:       false,
	}

	messages = append(messages, message)
	if err := writeDocument(r.path, messages); err != nil {
		return models.Message{}, fmt.Errorf("persist messages: %w", err)
	}

	return message, nil
}

func (r *MessageRepository) All(ctx context.Context) ([]models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load(), nil
}

func (r *MessageRepository) RemoveByID(ctx context.Context, id int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	messages := r.load()

	kept := messages[:0]
	for _, m := range messages {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(messages) {
		return false, nil
	}

	if err := writeDocument(r.path, kept); err != nil {
		return false, fmt.Errorf("persist messages: %w", err)
	}
	return true, nil
}

// load reads the backing document. An unreadable or corrupt file degrades to
// an empty store instead of failing the request; the next write replaces it.
func (r *MessageRepository) load() []models.Message {
	var messages []models.Message
	if err := readDocument(r.path, &messages); err != nil {
		r.logger.Warn("message store unreadable, treating as empty", "path", r.path, "error", err)
		return nil
	}
	return messages
}
