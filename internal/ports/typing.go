package ports

// ITypingTracker records "sender is typing to receiver" signals. Entries
// expire on the read side; a stale entry simply reads as not typing.
// IsTyping queries the sender→receiver direction as recorded, so an inbox
// asking "is my peer typing to me" passes (peer, self).
type ITypingTracker interface {
	SetTyping(senderID, receiverID int, isTyping bool) error
	IsTyping(senderID, receiverID int) (bool, error)
}
