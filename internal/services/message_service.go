package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"xvo/internal/models"
	"xvo/internal/ports"
	"xvo/internal/websocket"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthorized    = errors.New("caller identity does not permit this operation")
	ErrMessageNotFound = errors.New("message not found")
	ErrSenderSuspended = errors.New("sender account is suspended")
)

// MessageService orchestrates the direct-messaging core: access guard,
// suspension check, encryption at rest, the append-only store, typing state
// and best-effort push. Every operation takes the authenticated caller id
// and rejects before touching storage when the identity rules fail.
type MessageService struct {
	store    ports.IMessageStore
	accounts ports.IAccountReader
	cipher   ports.IMessageCipher
	typing   ports.ITypingTracker
	logger   *slog.Logger
	wsHub    *websocket.Hub
	onStored func()
}

func NewMessageService(store ports.IMessageStore, accounts ports.IAccountReader, cipher ports.IMessageCipher, typing ports.ITypingTracker, logger *slog.Logger) *MessageService {
	return &MessageService{
		store:    store,
		accounts: accounts,
		cipher:   cipher,
		typing:   typing,
		logger:   logger,
	}
}

func (s *MessageService) SetWSHub(wsHub *websocket.Hub) {
	s.wsHub = wsHub
}

// SetStoredHook registers a callback run after each durable append. The
// container wires it to the messages-sent metric.
func (s *MessageService) SetStoredHook(fn func()) {
	s.onStored = fn
}

// Send guards, checks suspension, encrypts, appends, clears the lingering
// typing entry for the pair, and returns the stored message with plaintext
// text. Ciphertext never leaves the service.
func (s *MessageService) Send(ctx context.Context, senderID, receiverID int, text string, callerID int) (models.Message, error) {
	if callerID == 0 || callerID != senderID {
		s.logger.Warn("send rejected: caller is not the sender", "callerID", callerID, "senderID", senderID)
		return models.Message{}, ErrUnauthorized
	}
	if senderID <= 0 || receiverID <= 0 || text == "" {
		return models.Message{}, ErrInvalidInput
	}

	sender, err := s.accounts.GetByID(ctx, senderID)
	if err != nil {
		s.logger.Error("failed to look up sender account", "senderID", senderID, "error", err)
		return models.Message{}, fmt.Errorf("check sender: %w", err)
	}
	if sender != nil && sender.IsSuspended {
		s.logger.Warn("send rejected: sender suspended", "senderID", senderID)
		return models.Message{}, ErrSenderSuspended
	}

	ciphertext, err := s.cipher.Encrypt(text)
	if err != nil {
		s.logger.Error("message encryption failed", "error", err)
		return models.Message{}, fmt.Errorf("encrypt message: %w", err)
	}

	message, err := s.store.Append(ctx, senderID, receiverID, ciphertext)
	if err != nil {
		s.logger.Error("failed to store message", "senderID", senderID, "receiverID", receiverID, "error", err)
		return models.Message{}, err
	}

	// explicit state transition: typing → sent
	if err := s.typing.SetTyping(senderID, receiverID, false); err != nil {
		s.logger.Warn("failed to clear typing entry", "senderID", senderID, "error", err)
	}

	if s.onStored != nil {
		s.onStored()
	}

	message.Text = text
	s.notifyMessageReceived(message)

	s.logger.Info("message sent", "id", message.ID, "senderID", senderID, "receiverID", receiverID)
	return message, nil
}

// Conversations returns the caller's inbox: the latest decrypted message per
// distinct peer, most recent first. Only the user themselves may read it.
func (s *MessageService) Conversations(ctx context.Context, userID, callerID int) ([]models.ConversationEntry, error) {
	if callerID == 0 || callerID != userID {
		s.logger.Warn("conversation list rejected", "callerID", callerID, "userID", userID)
		return nil, ErrUnauthorized
	}

	messages, err := s.store.All(ctx)
	if err != nil {
		s.logger.Error("failed to read message store", "error", err)
		return nil, err
	}

	entries := aggregateConversations(messages, userID, s.cipher.Decrypt)
	s.logger.Debug("conversation list built", "userID", userID, "conversations", len(entries))
	return entries, nil
}

// Thread returns the full exchange between userID and otherUserID in
// chronological order. The caller must be userID; being the other
// participant is not enough.
func (s *MessageService) Thread(ctx context.Context, userID, otherUserID, callerID int) ([]models.Message, error) {
	if callerID == 0 || callerID != userID {
		s.logger.Warn("thread read rejected", "callerID", callerID, "userID", userID)
		return nil, ErrUnauthorized
	}

	messages, err := s.store.All(ctx)
	if err != nil {
		s.logger.Error("failed to read message store", "error", err)
		return nil, err
	}

	thread := threadBetween(messages, userID, otherUserID, s.cipher.Decrypt)
	s.logger.Debug("thread built", "userID", userID, "otherUserID", otherUserID, "messages", len(thread))
	return thread, nil
}

// Delete removes a message. Either participant may delete; anyone else is
// rejected without learning more than the message's existence.
func (s *MessageService) Delete(ctx context.Context, id, callerID int) error {
	if callerID == 0 {
		return ErrUnauthorized
	}

	messages, err := s.store.All(ctx)
	if err != nil {
		s.logger.Error("failed to read message store", "error", err)
		return err
	}

	var target *models.Message
	for i := range messages {
		if messages[i].ID == id {
			target = &messages[i]
			break
		}
	}
	if target == nil {
		return ErrMessageNotFound
	}
	if !target.Involves(callerID) {
		s.logger.Warn("delete rejected: caller is not a participant", "id", id, "callerID", callerID)
		return ErrUnauthorized
	}

	removed, err := s.store.RemoveByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete message", "id", id, "error", err)
		return err
	}
	if !removed {
		return ErrMessageNotFound
	}

	s.logger.Info("message deleted", "id", id, "callerID", callerID)
	return nil
}

// SetTyping records or stops a typing signal and pushes it to the receiver
// when they are connected. Best effort, no authentication, matching the
// polling contract.
func (s *MessageService) SetTyping(senderID, receiverID int, isTyping bool) error {
	if err := s.typing.SetTyping(senderID, receiverID, isTyping); err != nil {
		return err
	}
	s.notifyTyping(senderID, receiverID, isTyping)
	return nil
}

// QueryTyping answers "is otherUserID typing to userID right now". The
// direction is deliberately reversed relative to the path parameters: the
// inbox owner asks about their peer.
func (s *MessageService) QueryTyping(userID, otherUserID int) (bool, error) {
	return s.typing.IsTyping(otherUserID, userID)
}

func (s *MessageService) notifyMessageReceived(message models.Message) {
	if s.wsHub == nil {
		return
	}
	s.wsHub.BroadcastToUser(message.ReceiverID, map[string]interface{}{
		"type":    "message_received",
		"message": message,
	})
}

func (s *MessageService) notifyTyping(senderID, receiverID int, isTyping bool) {
	if s.wsHub == nil {
		return
	}
	s.wsHub.BroadcastToUser(receiverID, map[string]interface{}{
		"type":     "typing",
		"senderId": senderID,
		"isTyping": isTyping,
	})
}
