package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	otelgin "go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"

	"xvo/app/config"
	"xvo/internal/adapters"
	"xvo/internal/handlers"
	"xvo/internal/ports"
	"xvo/internal/repositories"
	"xvo/internal/services"
	"xvo/internal/websocket"
)

type Container struct {
	GinEngine   *gin.Engine
	Config      *config.Config
	Redis       *redis.Client
	RateLimiter *RateLimiter

	Metrics        *Metrics
	Logger         *slog.Logger
	TracerProvider *tracesdk.TracerProvider

	Server *http.Server

	Repository *repositories.RepositoryAdapter

	AuthService    *services.AuthService
	MessageService *services.MessageService
	PostService    *services.PostService
	TypingTracker  ports.ITypingTracker

	AuthHandler      *handlers.AuthHandler
	MessageHandler   *handlers.MessageHandler
	PostHandler      *handlers.PostHandler
	WebSocketHandler *handlers.WebSocketHandler

	WsHub *websocket.Hub

	sweepStop chan struct{}
}

func NewContainer() (*Container, error) {
	container := &Container{}

	if err := container.initCore(); err != nil {
		return nil, err
	}

	if err := container.initProductionFeatures(); err != nil {
		return nil, err
	}

	return container, nil
}

func (c *Container) initCore() error {
	var cfg, err = config.LoadConfig()
	if err != nil {
		return err
	}
	c.Config = &cfg

	c.Logger = c.initLogger()

	if err = c.initTracing(); err != nil {
		return err
	}

	c.Repository, err = repositories.NewRepositoryAdapter(cfg.Storage, c.Logger)
	if err != nil {
		c.Logger.Error("repository initialize error", "error", err.Error())
		return err
	}

	cipher, err := services.NewAESMessageCipher(cfg.Crypto.MessageKey)
	if err != nil {
		c.Logger.Error("cipher initialize error", "error", err.Error())
		return err
	}

	if err = c.initTypingTracker(); err != nil {
		return err
	}

	c.MessageService = services.NewMessageService(c.Repository.Messages, c.Repository.Accounts, cipher, c.TypingTracker, c.Logger)
	c.AuthService = services.NewAuthService(c.Repository.Accounts, &services.BcryptHasher{}, []byte(cfg.JWT.SecretKey), cfg.JWT.TTL, c.Logger)
	c.PostService = services.NewPostService(c.Repository.Posts, c.Repository.Accounts, cfg.Posts.Cooldown, c.Logger)

	c.WsHub = websocket.NewHub(c.Logger)
	c.WsHub.OnTyping = func(senderID, receiverID int, isTyping bool) {
		if err := c.MessageService.SetTyping(senderID, receiverID, isTyping); err != nil {
			c.Logger.Warn("typing update over websocket failed", "error", err)
		}
	}
	go c.WsHub.Run()

	c.MessageService.SetWSHub(c.WsHub)

	c.RateLimiter = NewRateLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
	c.Metrics = NewMetrics()

	c.AuthHandler = handlers.NewAuthHandler(c.AuthService, cfg.Auth.AllowLegacyHeader, c.Logger)
	c.MessageHandler = handlers.NewMessageHandler(c.MessageService, c.Logger)
	c.PostHandler = handlers.NewPostHandler(c.PostService, c.Logger)
	c.WebSocketHandler = handlers.NewWebSocketHandler(c.WsHub, c.AuthService, cfg.Auth.AllowLegacyHeader, c.Logger)

	c.GinEngine = c.initGinEngine()
	c.Server = &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: c.GinEngine,
	}

	return nil
}

func (c *Container) initLogger() *slog.Logger {
	var logger *slog.Logger
	if c.Config.Environment.Current == "development" {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	} else {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	slog.SetDefault(logger)
	return logger
}

// initTypingTracker picks the typing backend. The in-process tracker is the
// default; Redis is for deployments that want expiry handled by TTL or
// typing state shared across replicas.
func (c *Container) initTypingTracker() error {
	switch c.Config.Typing.Backend {
	case "redis":
		c.Redis = redis.NewClient(&redis.Options{
			Addr:     c.Config.Redis.Addr,
			Password: c.Config.Redis.Password,
			DB:       c.Config.Redis.DB,
		})
		c.TypingTracker = adapters.NewRedisTypingTracker(c.Redis, c.Config.Typing.Window)
		c.Logger.Info("typing tracker using redis", "addr", c.Config.Redis.Addr)
	default:
		tracker := services.NewTypingTracker(c.Config.Typing.Window)
		c.TypingTracker = tracker
		c.startSweeper(tracker)
	}
	return nil
}

// startSweeper bounds stale typing-entry memory. Lazy read-side expiry is
// authoritative either way.
func (c *Container) startSweeper(tracker *services.TypingTracker) {
	c.sweepStop = make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				tracker.Sweep()
			case <-c.sweepStop:
				return
			}
		}
	}()
}

func (c *Container) initGinEngine() *gin.Engine {
	if c.Config.Environment.Current != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	eng := gin.New()
	eng.Use(gin.Logger(), gin.Recovery())

	if c.Config.Tracing.Enabled {
		eng.Use(otelgin.Middleware(c.Config.Tracing.ServiceName))
	}

	eng.Use(services.RequestIDMiddleware())
	eng.Use(services.NoCacheMiddleware())

	// gin snapshots each route's handler chain at registration, so the
	// metrics middleware must be attached before any route below
	eng.Use(MetricsMiddleware(c.Metrics))

	api := eng.Group("/api")
	api.Use(RateLimitMiddleware(c.RateLimiter))
	api.Use(c.AuthHandler.IdentityMiddleware())
	{
		api.POST("/accounts", c.AuthHandler.Register)
		api.POST("/login", c.AuthHandler.Login)
		api.POST("/admin/suspend", c.AuthHandler.Suspend)

		api.GET("/messages/:userId", c.MessageHandler.GetConversations)
		api.GET("/messages/:userId/:otherUserId", c.MessageHandler.GetThread)
		api.POST("/messages", c.MessageHandler.Send)
		api.DELETE("/messages/:id", c.MessageHandler.Delete)

		api.POST("/typing", c.MessageHandler.SetTyping)
		api.GET("/typing/:userId/:otherUserId", c.MessageHandler.GetTyping)

		api.GET("/posts", c.PostHandler.List)
		api.POST("/posts", c.PostHandler.Create)
		api.DELETE("/posts/:id", c.PostHandler.Delete)

		api.GET("/ws", c.WebSocketHandler.HandleWebSocket)
	}

	return eng
}

func (c *Container) initProductionFeatures() error {
	c.MessageService.SetStoredHook(c.Metrics.MessagesSent.Inc)
	c.WsHub.OnClientCountChange = func(count int) {
		c.Metrics.ActiveWebSockets.Set(float64(count))
	}

	c.GinEngine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	c.initHealthRoutes(c.GinEngine)

	return nil
}

func (c *Container) initTracing() error {
	if !c.Config.Tracing.Enabled {
		c.Logger.Info("tracing disabled")
		return nil
	}

	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(c.Config.Tracing.Endpoint)))
	if err != nil {
		return err
	}

	c.TracerProvider = tracesdk.NewTracerProvider(
		tracesdk.WithBatcher(exp),
		tracesdk.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(c.Config.Tracing.ServiceName),
			attribute.String("environment", c.Config.Environment.Current),
		)),
	)

	otel.SetTracerProvider(c.TracerProvider)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	c.Logger.Info("tracing initialized", "endpoint", c.Config.Tracing.Endpoint)
	return nil
}

func (c *Container) initHealthRoutes(eng *gin.Engine) {
	eng.GET("/health", func(ctx *gin.Context) {
		health := map[string]string{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}

		if err := c.Repository.HealthCheck(ctx.Request.Context()); err != nil {
			health["storage"] = "unhealthy"
			health["status"] = "degraded"
			ctx.JSON(http.StatusServiceUnavailable, health)
			return
		}

		if c.Redis != nil {
			if err := c.Redis.Ping().Err(); err != nil {
				health["redis"] = "unhealthy"
				health["status"] = "degraded"
				ctx.JSON(http.StatusServiceUnavailable, health)
				return
			}
		}

		ctx.JSON(http.StatusOK, health)
	})
}

func (c *Container) Shutdown(ctx context.Context) error {
	if c.sweepStop != nil {
		close(c.sweepStop)
	}

	if err := c.Server.Shutdown(ctx); err != nil {
		return err
	}

	if c.TracerProvider != nil {
		if err := c.TracerProvider.Shutdown(ctx); err != nil {
			c.Logger.Warn("tracer shutdown failed", "error", err)
		}
	}

	return c.Repository.Close(c.Logger)
}
