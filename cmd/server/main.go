package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kiasamouie/loopy/internal/cache"
	"github.com/kiasamouie/loopy/internal/config"
	"github.com/kiasamouie/loopy/internal/database"
	"github.com/kiasamouie/loopy/internal/handlers"
	"github.com/kiasamouie/loopy/internal/loopy"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting loyalty proxy service")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize database
	ctx := context.Background()
	repo, err := database.NewRepository(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer repo.Close()

	// Initialize API client
	clientOpts := []loopy.Option{
		loopy.WithRepository(repo),
		loopy.WithLogger(logger),
		loopy.WithTokenTTL(cfg.TokenTTL),
	}

	// Shared campaign cache is optional; without it the resolver runs
	// memory -> datastore -> live fetch.
	if cfg.RedisURL != "" {
		campaignCache, err := cache.NewCache(cfg.RedisURL, logger)
		if err != nil {
			logger.Fatal("Failed to initialize cache", zap.Error(err))
		}
		defer campaignCache.Close()
		clientOpts = append(clientOpts, loopy.WithCampaignCache(campaignCache))
	}

	client := loopy.New(loopy.Credentials{
		APIKey:    cfg.APIKey,
		APISecret: cfg.APISecret,
		Username:  cfg.Username,
		BaseURL:   cfg.BaseURL,
	}, clientOpts...)

	// Initialize handlers
	addStampsHandler := handlers.NewAddStampsHandler(client, repo, logger)
	listCardsHandler := handlers.NewListCardsHandler(client, logger)
	sendMessageHandler := handlers.NewSendMessageHandler(client, logger)

	// Setup router
	router := SetupRouter(addStampsHandler, listCardsHandler, sendMessageHandler, logger)

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
