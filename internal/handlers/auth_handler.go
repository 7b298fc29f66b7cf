package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"xvo/internal/services"
)

type AuthHandler struct {
	service           *services.AuthService
	allowLegacyHeader bool
	logger            *slog.Logger
}

func NewAuthHandler(service *services.AuthService, allowLegacyHeader bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: service, allowLegacyHeader: allowLegacyHeader, logger: logger}
}

func (a *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		a.logger.Warn("invalid input format", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input format"})
		return
	}

	account, err := a.service.Register(c.Request.Context(), req.Name, req.Username, req.Password)
	if err != nil {
		a.logger.Warn("register failed", "username", req.Username, "error", err)
		if errors.Is(err, services.ErrUsernameTaken) || errors.Is(err, services.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create an account"})
		return
	}

	c.JSON(http.StatusOK, account)
}

func (a *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		a.logger.Warn("invalid input format", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input format"})
		return
	}

	account, token, err := a.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		a.logger.Error("login failed", "username", req.Username, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account, "token": token})
}

func (a *AuthHandler) Suspend(c *gin.Context) {
	var req struct {
		UserID    int  `json:"userId"`
		Suspended bool `json:"suspended"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input format"})
		return
	}

	err := a.service.SetSuspended(c.Request.Context(), CallerID(c), req.UserID, req.Suspended)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAdminOnly):
			c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized: Admin only"})
		case errors.Is(err, services.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update suspension"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// IdentityMiddleware resolves the caller's identity and stores it in the
// request context. A valid signed bearer token is the trusted source; an
// invalid or expired token makes the caller anonymous, never a failed
// request, so login stays reachable for clients holding a stale token. The
// legacy caller-asserted x-user-id header is honored only when the
// deployment opts in. The service layer rejects where identity is required.
func (a *AuthHandler) IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var callerID int

		if auth := c.GetHeader("Authorization"); auth != "" {
			tokenStr := strings.TrimPrefix(auth, "Bearer ")
			if id, err := a.service.ValidateToken(tokenStr); err == nil {
				callerID = id
			} else {
				a.logger.Warn("token validation failed, caller treated as anonymous", "error", err)
			}
		}
		if callerID == 0 && a.allowLegacyHeader {
			if raw := c.GetHeader("x-user-id"); raw != "" {
				if id, err := strconv.Atoi(raw); err == nil {
					callerID = id
				}
			}
		}

		c.Set("callerID", callerID)
		c.Next()
	}
}

// CallerID returns the authenticated caller's user id, zero when anonymous.
func CallerID(c *gin.Context) int {
	return c.GetInt("callerID")
}
