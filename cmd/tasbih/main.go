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

	"github.com/drywaters/tasbih/internal/config"
	"github.com/drywaters/tasbih/internal/server"
	"github.com/drywaters/tasbih/internal/session"
	"github.com/drywaters/tasbih/internal/slideshow"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	slog.SetDefault(newLogger(cfg))

	slog.Info("starting tasbih", "port", cfg.Port, "images_dir", cfg.ImagesDir)

	// Scan slideshow images once; the set is fixed until restart
	ctx := context.Background()
	images, err := slideshow.Scan(ctx, cfg.ImagesDir)
	if err != nil {
		return fmt.Errorf("failed to scan images: %w", err)
	}
	if images.Empty() {
		slog.Warn("no slideshow images found", "dir", cfg.ImagesDir, "extensions", slideshow.Extensions)
	} else {
		slog.Info("loaded slideshow images", "count", images.Len())
	}
	renderer := slideshow.NewRenderer(slideshow.MaxWidth, slideshow.MaxHeight)

	if cfg.LoginRequired() {
		slog.Info("access key login enabled")
	}

	sessions := session.NewStore(cfg.SessionTTL)
	defer sessions.Close()

	// Create server
	srv := server.New(cfg, sessions, images, renderer)

	// Start HTTP server
	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case <-shutdownChan:
		slog.Info("shutting down...")
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	slog.Info("server stopped", "sessions_discarded", sessions.Len())
	return nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
