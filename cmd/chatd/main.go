package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/campusmarket/chat-service/internal/api"
	"github.com/campusmarket/chat-service/internal/infrastructure/config"
	mongodb "github.com/campusmarket/chat-service/internal/infrastructure/db/mongo"
	redisdb "github.com/campusmarket/chat-service/internal/infrastructure/db/redis"
	"github.com/campusmarket/chat-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log := logger.Init(cfg.LogLevel, cfg.Env == "development")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Dependencies ---
	mongoClient, db, err := mongodb.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	rdb, err := redisdb.Connect(ctx, cfg.Redis.Addr, cfg.Redis.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	if err := mongodb.NewMessageRepository(db).EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to ensure message indexes")
	}

	// --- Router, dispatcher, gateway ---
	router := api.NewRouter(db, rdb, cfg, log)

	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	router.Dispatcher.Start(dispatchCtx)

	go func() {
		if err := router.Echo.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("chat service listening")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	// Stop accepting HTTP first, then close live sessions, then drain the
	// dispatcher so in-flight messages still persist and fan out.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := router.Echo.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}

	router.Gateway.CloseAll()
	stopDispatch()
	router.Dispatcher.Drain()

	log.Info().Msg("shutdown complete")
}
