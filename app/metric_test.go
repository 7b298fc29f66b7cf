package main

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xvo/app/config"
	"xvo/internal/handlers"
	"xvo/internal/repositories"
	"xvo/internal/services"
	"xvo/internal/websocket"
)

// The request counters must observe /api traffic, which requires the
// middleware to be in place before the route group is registered.
func TestMetricsRecordAPIRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := slog.Default()
	dir := t.TempDir()

	store := repositories.NewMessageRepository(filepath.Join(dir, "messages.json"), logger)
	accounts := repositories.NewAccountRepository(filepath.Join(dir, "accounts.json"), logger)
	posts := repositories.NewPostRepository(filepath.Join(dir, "posts.json"), logger)

	cipher, err := services.NewAESMessageCipher("metrics-test-key")
	require.NoError(t, err)
	typing := services.NewTypingTracker(5 * time.Second)

	messageService := services.NewMessageService(store, accounts, cipher, typing, logger)
	authService := services.NewAuthService(accounts, &services.BcryptHasher{}, []byte("metrics-test-signing-key"), time.Hour, logger)
	postService := services.NewPostService(posts, accounts, time.Minute, logger)
	hub := websocket.NewHub(logger)

	c := &Container{
		Config: &config.Config{
			Environment: config.EnvironmentConfig{Current: "development"},
		},
		Logger:           logger,
		RateLimiter:      NewRateLimiter(100, time.Minute),
		Metrics:          NewMetrics(),
		AuthHandler:      handlers.NewAuthHandler(authService, true, logger),
		MessageHandler:   handlers.NewMessageHandler(messageService, logger),
		PostHandler:      handlers.NewPostHandler(postService, logger),
		WebSocketHandler: handlers.NewWebSocketHandler(hub, authService, true, logger),
	}
	c.GinEngine = c.initGinEngine()

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	rr := httptest.NewRecorder()
	c.GinEngine.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	assert.Equal(t, 1, testutil.CollectAndCount(c.Metrics.RequestsTotal),
		"http_requests_total saw no /api request")
	assert.Equal(t, 1, testutil.CollectAndCount(c.Metrics.RequestDuration))
}
