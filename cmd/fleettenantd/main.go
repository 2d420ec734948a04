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

	"github.com/joho/godotenv"
	"github.com/openfleet/fleettenant/internal/config"
	httpserver "github.com/openfleet/fleettenant/internal/http"
	"github.com/openfleet/fleettenant/pkg/auth"
	"github.com/openfleet/fleettenant/pkg/catalog"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Open the tenant catalog, rebuilding its index from the shard directory
	cat, err := catalog.Open(cfg.DataDir)
	if err != nil {
		logger.Error("failed to open tenant catalog", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}

	logger.Info("tenant catalog opened", "dir", cfg.DataDir)

	// Initialize services
	provisioner := auth.NewProvisioner(cat)
	authRouter := auth.NewRouter(cat)
	tokenIssuer := auth.NewTokenIssuer(auth.TokenConfig{
		Secret: []byte(cfg.JWTSecret),
		Issuer: cfg.JWTIssuer,
		TTL:    cfg.SessionTokenTTL,
	})

	// Create router
	router := httpserver.NewRouter(httpserver.RouterConfig{
		Logger:          logger,
		AuthRouter:      authRouter,
		Provisioner:     provisioner,
		TokenIssuer:     tokenIssuer,
		RateLimitConfig: cfg.RateLimit,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.ServerAddr, cfg.ServerPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
