package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	Send   chan []byte
	UserID int
}

// Hub tracks one connection per user and pushes direct-message events to
// whoever is online. Push is best effort only; the REST polling endpoints
// remain the authoritative source, so a dropped event is never data loss.
type Hub struct {
	Clients    map[int]*Client
	Register   chan *Client
	Unregister chan *Client
	Mutex      sync.RWMutex
	Logger     *slog.Logger

	// OnTyping receives typing signals sent over the socket instead of the
	// REST endpoint. Wired to the message service by the container.
	OnTyping func(senderID, receiverID int, isTyping bool)

	// OnClientCountChange feeds the active-connections gauge.
	OnClientCountChange func(count int)
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Clients:    make(map[int]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.Mutex.Lock()
			if existing, ok := h.Clients[client.UserID]; ok {
				close(existing.Send)
			}
			h.Clients[client.UserID] = client
			count := len(h.Clients)
			h.Mutex.Unlock()
			h.notifyClientCount(count)
			h.Logger.Info("client registered", "userID", client.UserID)

		case client := <-h.Unregister:
			h.Mutex.Lock()
			if current, ok := h.Clients[client.UserID]; ok && current == client {
				delete(h.Clients, client.UserID)
				close(client.Send)
			}
			count := len(h.Clients)
			h.Mutex.Unlock()
			h.notifyClientCount(count)
			h.Logger.Info("client unregistered", "userID", client.UserID)
		}
	}
}

func (h *Hub) notifyClientCount(count int) {
	if h.OnClientCountChange != nil {
		h.OnClientCountChange(count)
	}
}

// BroadcastToUser pushes one event to a connected user. Offline users and
// slow consumers are skipped; they catch up on the next poll.
func (h *Hub) BroadcastToUser(userID int, event map[string]interface{}) {
	data, err := json.Marshal(event)
	if err != nil {
		h.Logger.Error("failed to marshal event", "error", err)
		return
	}

	// the read lock is held through the send; Run closes replaced channels
	// under the write lock, so the send can never hit a closed channel
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	client, ok := h.Clients[userID]
	if !ok {
		return
	}

	select {
	case client.Send <- data:
		h.Logger.Debug("event pushed", "userID", userID, "type", event["type"])
	default:
		h.Logger.Warn("client send buffer full, dropping event", "userID", userID)
	}
}

func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.Logger.Error("websocket error", "error", err, "userID", c.UserID)
			}
			break
		}

		var event struct {
			Type       string `json:"type"`
			ReceiverID int    `json:"receiverId"`
			IsTyping   bool   `json:"isTyping"`
		}
		if err := json.Unmarshal(message, &event); err != nil {
			c.Hub.Logger.Warn("unparseable client event", "error", err, "userID", c.UserID)
			continue
		}

		if event.Type == "typing" && c.Hub.OnTyping != nil {
			c.Hub.OnTyping(c.UserID, event.ReceiverID, event.IsTyping)
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
