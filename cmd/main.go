/*
Package main is the entry point for the livechat server.

It is responsible for loading configuration, initializing the global logging system,
opening the message store, setting up the HTTP server, starting the chat Hub,
and gracefully handling operating system interrupt signals (SIGINT, SIGTERM)
to ensure a smooth server shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"livechat/internal/app/chat"
	"livechat/internal/app/db"
	"livechat/internal/app/store"
	"livechat/internal/app/user"
	"livechat/internal/configs"
	"livechat/internal/handler"
	"livechat/internal/pkg/logx"
)

// openStore opens the message store backend selected by the configuration.
func openStore(cfg *configs.AppConfig) (store.Store, error) {
	switch cfg.StoreBackend {
	case configs.StorePostgres:
		return db.Open(cfg.DatabaseDSN)
	case configs.StoreBadger:
		return store.OpenBadger(cfg.BadgerPath)
	case configs.StoreMemory:
		return store.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("store_backend", cfg.StoreBackend).
		Dur("gateway_timeout", cfg.GatewayTimeout).
		Int("history_limit", cfg.HistoryLimit).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(cfg)
	if err != nil {
		logx.Fatal(err, "Failed to open message store", "backend", cfg.StoreBackend)
	}

	hub := chat.NewHub(st, cfg.GatewayTimeout)

	deps := &handler.AppDeps{
		Hub:      hub,
		Config:   cfg,
		Messages: st,
		Users:    user.NewService(st),
	}

	// Setup HTTP server and routes
	router, stopLimiters := handler.Router(deps)

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("livechat server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	stopLimiters()

	// Disconnects every session and waits for queued sends and deletes to reach the store.
	hub.Shutdown()

	if err := st.Close(); err != nil {
		logx.Error(err, "Failed to close message store")
	}

	logx.Info("Server gracefully stopped.")
}
