package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"xvo/internal/models"
)

const createMessagesTable = `
CREATE TABLE IF NOT EXISTS messages (
  id          INTEGER PRIMARY KEY,
  sender_id   INTEGER NOT NULL,
  receiver_id INTEGER NOT NULL,
  text        TEXT NOT NULL,
  timestamp   INTEGER NOT NULL,
  read        INTEGER NOT NULL DEFAULT 0
);`

// SQLiteMessageRepository is the embedded-store alternative to the JSON file,
// behind the same append/all/remove contract. Id assignment stays max+1 so
// deleted ids are never reused.
type SQLiteMessageRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteMessageRepository(path string, logger *slog.Logger) (*SQLiteMessageRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}

	// a single connection serializes writers at the driver level
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createMessagesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sqlite store: %w", err)
	}

	logger.Info("sqlite message store ready", "path", path)
	return &SQLiteMessageRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteMessageRepository) Append(ctx context.Context, senderID, receiverID int, ciphertext string) (models.Message, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Message{}, fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	var nextID int
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(id), 0) + 1 FROM messages").Scan(&nextID); err != nil {
		return models.Message{}, fmt.Errorf("assign message id: %w", err)
	}

	message := models.Message{
		ID:         nextID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       ciphertext,
		Timestamp:  r.now().UnixMilli(),
		Read:       false,
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO messages (id, sender_id, receiver_id, text, timestamp, read) VALUES (?, ?, ?, ?, ?, ?)",
		message.ID, message.SenderID, message.ReceiverID, message.Text, message.Timestamp, message.Read)
	if err != nil {
		return models.Message{}, fmt.Errorf("insert message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Message{}, fmt.Errorf("commit append: %w", err)
	}
	return message, nil
}

func (r *SQLiteMessageRepository) All(ctx context.Context) ([]models.Message, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, sender_id, receiver_id, text, timestamp, read FROM messages ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("scan messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Text, &m.Timestamp, &m.Read); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *SQLiteMessageRepository) RemoveByID(ctx context.Context, id int) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM messages WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete message: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *SQLiteMessageRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteMessageRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
