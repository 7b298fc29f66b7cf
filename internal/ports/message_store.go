package ports

import (
	"context"

	"xvo/internal/models"
)

// IMessageStore is the durable message log. Append assigns the id
// (max existing + 1, starting at 1), the timestamp and read=false, and
// persists before returning. All returns messages in storage order, which
// is not guaranteed to be time-sorted. Implementations serialize the
// read-modify-write cycle so concurrent appends cannot lose updates.
type IMessageStore interface {
	Append(ctx context.Context, senderID, receiverID int, ciphertext string) (models.Message, error)
	All(ctx context.Context) ([]models.Message, error)
	RemoveByID(ctx context.Context, id int) (bool, error)
}
