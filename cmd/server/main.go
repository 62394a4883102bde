package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tastelens/backend/config"
	"github.com/tastelens/backend/internal/bootstrap"
	httpDelivery "github.com/tastelens/backend/internal/delivery/http"
	"github.com/tastelens/backend/internal/infrastructure/logger"
)

const (
	version         = "1.0.0"
	shutdownTimeout = 10 * time.Second
	sessionMaxIdle  = 2 * time.Hour
	pruneInterval   = 10 * time.Minute
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "tastelens:", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	// Triage is the core of the server; matching is optional
	if err := cfg.RequireArena(); err != nil {
		return err
	}

	appLog, err := bootstrap.NewLogger(cfg, false)
	if err != nil {
		log.Printf("failed to create logger: %v", err)
		return err
	}
	defer func() { _ = appLog.Sync() }()

	appLog.Info("Starting TasteLens Backend",
		logger.String("version", version),
		logger.String("environment", cfg.Server.Environment),
		logger.String("port", cfg.Server.Port),
		logger.String("cache", cfg.Cache.Type),
		logger.String("data_dir", cfg.Index.DataDir))

	app, err := bootstrap.New(cfg, appLog)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := app.Close(); closeErr != nil {
			appLog.Error("Failed to close resources", logger.Error(closeErr))
		}
	}()

	if app.Matching == nil {
		appLog.Warn("Gemini API key not configured, /api/match is disabled",
			logger.String("env", config.EnvGeminiAPIKey))
	}

	// Create HTTP handler with dependencies
	var (
		matcher     httpDelivery.MatchUsecase
		styleGuides httpDelivery.StyleGuideUsecase
	)
	if app.Matching != nil {
		matcher = app.Matching
	}
	if app.StyleGuides != nil {
		styleGuides = app.StyleGuides
	}
	handler := httpDelivery.NewHandler(app.Triage, matcher, styleGuides, appLog)
	router := httpDelivery.SetupRouter(cfg, handler, app.Metrics.Handler(), appLog)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go pruneSessions(ctx, app, appLog)

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("Server listening", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	appLog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	appLog.Info("Server exited")
	return nil
}

// pruneSessions drops abandoned triage sessions until ctx is done
func pruneSessions(ctx context.Context, app *bootstrap.App, log logger.Logger) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := app.Sessions.Prune(sessionMaxIdle); n > 0 {
				log.Info("Pruned idle triage sessions", logger.Int("count", n))
			}
		}
	}
}
