package api

import (
	"context"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/campusmarket/chat-service/internal/api/handler"
	"github.com/campusmarket/chat-service/internal/api/middleware"
	"github.com/campusmarket/chat-service/internal/chat"
	"github.com/campusmarket/chat-service/internal/core/service"
	"github.com/campusmarket/chat-service/internal/infrastructure/config"
	mongodb "github.com/campusmarket/chat-service/internal/infrastructure/db/mongo"
	redisdb "github.com/campusmarket/chat-service/internal/infrastructure/db/redis"
	"github.com/campusmarket/chat-service/internal/infrastructure/queue"
	"github.com/campusmarket/chat-service/internal/ws"
)

// Router bundles the HTTP surface with the chat machinery the entrypoint
// has to start and stop alongside it.
type Router struct {
	Echo       *echo.Echo
	Gateway    *ws.Gateway
	Dispatcher *queue.Dispatcher
}

// NewRouter builds the Echo instance with all routes registered, plus the
// gateway and dispatcher behind /ws.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *Router {
	e := echo.New()
	e.HideBanner = true

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("chat"))

	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	e.Validator = handler.NewValidator()

	// --- Collaborators ---
	users := mongodb.NewUserRepository(db)
	listings := mongodb.NewListingRepository(db)
	messages := mongodb.NewMessageRepository(db)
	dedup := redisdb.NewDedupChecker(rdb)

	// --- Chat core ---
	verifier := service.NewTokenVerifier(cfg.JWTSecret)
	registry := chat.NewRegistry(log)
	chatService := service.NewChatService(verifier, users, listings, messages, registry, dedup, log)
	dispatcher := queue.NewDispatcher(cfg.Chat.Workers, chatService, log)
	gateway := ws.NewGateway(verifier, users, registry, dispatcher,
		cfg.Chat.SendBuffer, cfg.Chat.MaxMessageSize, log)

	// --- Auth ---
	authService := service.NewAuthService(users, cfg.JWTSecret, 24*time.Hour)
	authHandler := handler.NewAuthHandler(authService)
	authMiddleware := middleware.Auth(cfg.JWTSecret)

	e.POST("/auth/login", authHandler.Login)

	// --- Chat routes ---
	chatHandler := handler.NewChatHandler(gateway, log)
	e.GET("/ws", chatHandler.Serve)

	historyHandler := handler.NewHistoryHandler(messages, listings, users, cfg.Chat.HistoryLimit)
	e.GET("/listings/:id/messages", historyHandler.List, authMiddleware)

	statsHandler := handler.NewStatsHandler(registry, gateway)
	e.GET("/chat/stats", statsHandler.Stats, authMiddleware, middleware.RequireAdmin())

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler(
		handler.ReadinessCheck{Name: "mongodb", Ping: func(ctx context.Context) error {
			return db.Client().Ping(ctx, nil)
		}},
		handler.ReadinessCheck{Name: "redis", Ping: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}},
	)

	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?

	e.GET("/metrics", echoprometheus.NewHandler())

	return &Router{Echo: e, Gateway: gateway, Dispatcher: dispatcher}
}
