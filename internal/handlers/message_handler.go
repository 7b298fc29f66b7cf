package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"xvo/internal/services"
)

type MessageHandler struct {
	service *services.MessageService
	logger  *slog.Logger
}

func NewMessageHandler(service *services.MessageService, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{service: service, logger: logger}
}

// GetConversations handles GET /api/messages/:userId. It returns the caller's inbox,
// one decrypted entry per peer, most recent first.
func (h *MessageHandler) GetConversations(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	conversations, err := h.service.Conversations(c.Request.Context(), userID, CallerID(c))
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized: You can only view your own messages"})
			return
		}
		h.logger.Error("failed to fetch conversations", "userID", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversations"})
		return
	}

	c.JSON(http.StatusOK, conversations)
}

// GetThread handles GET /api/messages/:userId/:otherUserId. It returns the full
// exchange between the two users, chronological.
func (h *MessageHandler) GetThread(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}
	otherUserID, err := strconv.Atoi(c.Param("otherUserId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	thread, err := h.service.Thread(c.Request.Context(), userID, otherUserID, CallerID(c))
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized: You can only view your own conversations"})
			return
		}
		h.logger.Error("failed to fetch thread", "userID", userID, "otherUserID", otherUserID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}

	c.JSON(http.StatusOK, thread)
}

// Send handles POST /api/messages.
func (h *MessageHandler) Send(c *gin.Context) {
	var req struct {
		SenderID   int    `json:"senderId"`
		ReceiverID int    `json:"receiverId"`
		Text       string `json:"text"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input format"})
		return
	}

	message, err := h.service.Send(c.Request.Context(), req.SenderID, req.ReceiverID, req.Text, CallerID(c))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnauthorized):
			c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized: You can only send messages as yourself"})
		case errors.Is(err, services.ErrSenderSuspended):
			c.JSON(http.StatusForbidden, gin.H{"error": "Your account is suspended. You cannot send messages."})
		case errors.Is(err, services.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("failed to send message", "senderID", req.SenderID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		}
		return
	}

	c.JSON(http.StatusOK, message)
}

// Delete handles DELETE /api/messages/:id.
func (h *MessageHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message id"})
		return
	}

	if callerID := CallerID(c); callerID == 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized: Authentication required"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, CallerID(c)); err != nil {
		switch {
		case errors.Is(err, services.ErrMessageNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		case errors.Is(err, services.ErrUnauthorized):
			c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized: You can only delete your own messages"})
		default:
			h.logger.Error("failed to delete message", "id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete message"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SetTyping handles POST /api/typing. Best effort, no auth enforced,
// mirroring the polling contract the client relies on.
func (h *MessageHandler) SetTyping(c *gin.Context) {
	var req struct {
		SenderID   int  `json:"senderId"`
		ReceiverID int  `json:"receiverId"`
		IsTyping   bool `json:"isTyping"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input format"})
		return
	}

	if err := h.service.SetTyping(req.SenderID, req.ReceiverID, req.IsTyping); err != nil {
		h.logger.Warn("failed to update typing status", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update typing status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetTyping handles GET /api/typing/:userId/:otherUserId, true iff
// otherUserId is typing to userId within the window.
func (h *MessageHandler) GetTyping(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}
	otherUserID, err := strconv.Atoi(c.Param("otherUserId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	isTyping, err := h.service.QueryTyping(userID, otherUserID)
	if err != nil {
		h.logger.Warn("failed to get typing status", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get typing status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"isTyping": isTyping})
}
