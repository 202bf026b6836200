package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/mr1hm/flood-response/internal/api"
	"github.com/mr1hm/flood-response/internal/assist"
	"github.com/mr1hm/flood-response/internal/auth"
	"github.com/mr1hm/flood-response/internal/config"
	"github.com/mr1hm/flood-response/internal/gemini"
	"github.com/mr1hm/flood-response/internal/logging"
	"github.com/mr1hm/flood-response/internal/repository"
	"github.com/mr1hm/flood-response/internal/session"
	"github.com/mr1hm/flood-response/internal/stream"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	sessions, err := session.NewRedisStore(cfg.Redis.URL)
	if err != nil {
		logging.Fatalf("Failed to connect to redis: %v", err)
	}
	defer sessions.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Change notifications fan out through a worker pool so writes
	// never block on slow subscribers.
	broadcaster := stream.NewBroadcaster()
	notifier := stream.NewNotifier(broadcaster, cfg.Worker.Count, cfg.Worker.BufferSize)
	notifier.Start(ctx)

	authService := auth.NewService(db, sessions, cfg.Auth.JWTSecret, cfg.Auth.AccessTTL, cfg.Auth.BcryptCost)

	geminiClient := gemini.NewClient(gemini.Config{
		APIKey:  cfg.Gemini.APIKey,
		BaseURL: cfg.Gemini.BaseURL,
		Model:   cfg.Gemini.Model,
		Timeout: cfg.Gemini.Timeout,
	})
	assistService := assist.NewService(geminiClient)

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	router.Use(api.RateLimitMiddleware(10)) // 10 req/s global limit

	authHandler := api.NewAuthHandler(authService)
	authHandler.RegisterRoutes(router)

	handler := api.NewHandler(db, db, assistService, broadcaster, notifier)
	handler.RegisterRoutes(router, api.AuthRequired(authService))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	// Stop accepting requests before tearing down the notifier so no
	// in-flight handler submits to a stopped pool.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	cancel()
	notifier.Stop()
	broadcaster.Close() // Close all streams gracefully

	slog.Info("shutdown complete")
}
