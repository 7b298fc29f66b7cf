package services

import (
	"sort"

	"xvo/internal/models"
)

// aggregateConversations derives the inbox view from the full message log:
// one entry per distinct peer, carrying the chronologically last message
// exchanged with that peer, most recent conversation first.
func aggregateConversations(messages []models.Message, userID int, decrypt func(string) string) []models.ConversationEntry {
	latest := make(map[int]models.Message)
	for _, m := range messages {
		if !m.Involves(userID) {
			continue
		}
		peer := m.PeerOf(userID)
		if prev, ok := latest[peer]; !ok || m.Timestamp > prev.Timestamp {
			latest[peer] = m
		}
	}

	entries := make([]models.ConversationEntry, 0, len(latest))
	for peer, m := range latest {
		entries = append(entries, models.ConversationEntry{
			OtherUserID: peer,
			LastMessage: decrypt(m.Text),
			Timestamp:   m.Timestamp,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp > entries[j].Timestamp
	})
	return entries
}

// threadBetween returns every message exchanged between the two users in
// chronological reading order, decrypted.
func threadBetween(messages []models.Message, userID, otherUserID int, decrypt func(string) string) []models.Message {
	var thread []models.Message
	for _, m := range messages {
		matches := (m.SenderID == userID && m.ReceiverID == otherUserID) ||
			(m.SenderID == otherUserID && m.ReceiverID == userID)
		if !matches {
			continue
		}
		m.Text = decrypt(m.Text)
		thread = append(thread, m)
	}

	sort.Slice(thread, func(i, j int) bool {
		return thread[i].Timestamp < thread[j].Timestamp
	})
	return thread
}
