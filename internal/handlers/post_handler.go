package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"xvo/internal/services"
)

type PostHandler struct {
	service *services.PostService
	logger  *slog.Logger
}

func NewPostHandler(service *services.PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{service: service, logger: logger}
}

func (h *PostHandler) Create(c *gin.Context) {
	var req struct {
		UserID int    `json:"userId"`
		Text   string `json:"text"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input format"})
		return
	}

	post, err := h.service.Create(c.Request.Context(), req.UserID, req.Text, CallerID(c))
	if err != nil {
		var cooldown *services.CooldownError
		switch {
		case errors.As(err, &cooldown):
			remaining := int(cooldown.Remaining.Seconds() + 0.999)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":         cooldown.Error(),
				"remainingTime": remaining,
			})
		case errors.Is(err, services.ErrSenderSuspended):
			c.JSON(http.StatusForbidden, gin.H{"error": "Your account is suspended. You cannot post."})
		case errors.Is(err, services.ErrUnauthorized):
			c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized: You can only post as yourself"})
		case errors.Is(err, services.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("failed to create post", "userID", req.UserID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		}
		return
	}

	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) List(c *gin.Context) {
	posts, err := h.service.List(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to fetch posts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post id"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, CallerID(c)); err != nil {
		switch {
		case errors.Is(err, services.ErrPostNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		case errors.Is(err, services.ErrUnauthorized):
			c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized: You can only delete your own posts"})
		default:
			h.logger.Error("failed to delete post", "id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
