package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	libWebsocket "github.com/gorilla/websocket"

	"xvo/internal/services"
	internalWebsocket "xvo/internal/websocket"
)

type WebSocketHandler struct {
	Hub               *internalWebsocket.Hub
	AuthService       *services.AuthService
	allowLegacyHeader bool
	Logger            *slog.Logger
}

func NewWebSocketHandler(hub *internalWebsocket.Hub, authService *services.AuthService, allowLegacyHeader bool, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		Hub:               hub,
		AuthService:       authService,
		allowLegacyHeader: allowLegacyHeader,
		Logger:            logger,
	}
}

// HandleWebSocket upgrades GET /api/ws. Identity comes from a token query
// parameter or cookie; the legacy x-user-id header works only when the
// deployment allows it, same rules as the REST surface.
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	userID := h.resolveUser(c)
	if userID == 0 {
		h.Logger.Warn("unauthorized websocket connection attempt")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	upgrader := libWebsocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Error("websocket upgrade failed", "error", err)
		return
	}

	client := &internalWebsocket.Client{
		Hub:    h.Hub,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		UserID: userID,
	}

	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()

	h.Logger.Info("websocket connection established", "userID", userID)
}

func (h *WebSocketHandler) resolveUser(c *gin.Context) int {
	token := c.Query("token")
	if token == "" {
		if cookie, err := c.Request.Cookie("token"); err == nil {
			token = cookie.Value
		}
	}
	if token != "" {
		if id, err := h.AuthService.ValidateToken(token); err == nil {
			return id
		}
		return 0
	}

	if h.allowLegacyHeader {
		if raw := c.GetHeader("x-user-id"); raw != "" {
			if id, err := strconv.Atoi(raw); err == nil {
				return id
			}
		}
	}
	return 0
}
