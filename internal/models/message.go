package models

// Message is a direct message as persisted. Text holds ciphertext at rest;
// handlers and services return it decrypted. Read is written false at
// creation and never mutated afterwards, kept for on-disk compatibility.
type Message struct {
	ID         int    `json:"id"`
	SenderID   int    `json:"senderId"`
	ReceiverID int    `json:"receiverId"`
	Text       string `json:"text"`
	Timestamp  int64  `json:"timestamp"`
	Read       bool   `json:"read"`
}

// Involves reports whether userID is the sender or the receiver.
func (m Message) Involves(userID int) bool {
	return m.SenderID == userID || m.ReceiverID == userID
}

// PeerOf returns the other participant relative to userID.
func (m Message) PeerOf(userID int) int {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}

// ConversationEntry is the derived inbox view: the latest message exchanged
// with one peer, already decrypted.
type ConversationEntry struct {
	OtherUserID int    `json:"otherUserId"`
	LastMessage string `json:"lastMessage"`
	Timestamp   int64  `json:"timestamp"`
}
