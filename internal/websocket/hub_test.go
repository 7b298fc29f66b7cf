package websocket

import (
	"log/slog"
	"testing"
)

// A reconnecting user makes Run close the replaced client's send channel
// while pushes to the same user are still in flight. The broadcast must
// never send on the channel Run just closed.
func TestHub_BroadcastDuringReconnect(t *testing.T) {
	hub := NewHub(slog.Default())
	go hub.Run()

	register := func() {
		hub.Register <- &Client{Hub: hub, Send: make(chan []byte, 1), UserID: 1}
	}
	register()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			hub.BroadcastToUser(1, map[string]interface{}{
				"type":     "typing",
				"senderId": 2,
				"isTyping": true,
			})
		}
	}()

	for i := 0; i < 500; i++ {
		register()
	}
	<-done
}

func TestHub_BroadcastToOfflineUserIsNoop(t *testing.T) {
	hub := NewHub(slog.Default())

	hub.BroadcastToUser(42, map[string]interface{}{"type": "typing"})
}
