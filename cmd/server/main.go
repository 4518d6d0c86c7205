package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/community/backend/internal/relations"
	"github.com/anonto42/community/backend/internal/router"
	"github.com/anonto42/community/backend/pkg/chat"
	"github.com/anonto42/community/backend/pkg/config"
	"github.com/anonto42/community/backend/pkg/firebase"
	"github.com/anonto42/community/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

func main() {
	if err := run(); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

// run returns instead of exiting so deferred closes always happen
func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logger.Configure(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	mode, err := relations.ParseMode(cfg.RelationsMode)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize databases: %w", err)
	}
	defer db.CloseDB()

	mongoDB := db.Database()
	if err := router.Migrate(ctx, mongoDB, db.Postgres); err != nil {
		return fmt.Errorf("prepare databases: %w", err)
	}

	deps := router.NewDependencies(mongoDB, db.Postgres)
	deps.RelationsMode = mode
	deps.SessionSecret = cfg.SessionSecret
	deps.SessionTTL = cfg.SessionTTL
	deps.SecureCookie = cfg.Env == "production"
	deps.BcryptCost = cfg.BcryptCost
	deps.ChatTokens = chat.NewTokenIssuer(chat.Config{
		AppID:     cfg.StreamAppID,
		APIKey:    cfg.StreamAPIKey,
		APISecret: cfg.StreamAPISecret,
	})

	// Image uploads are optional
	if cfg.FirebaseCredentialsPath != "" {
		app, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.FirebaseStorageBucket)
		if err != nil {
			return fmt.Errorf("initialize Firebase: %w", err)
		}
		uploader, err := firebase.NewStorageUploader(ctx, app)
		if err != nil {
			return fmt.Errorf("initialize Firebase Storage: %w", err)
		}
		deps.Images = uploader
	} else {
		logger.Warn().Msg("FIREBASE_CREDENTIALS_PATH not set, image uploads disabled")
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	config.SetupMiddleware(e, cfg)
	sessions := router.SetupRoutes(e, deps)
	if n, err := sessions.PurgeExpired(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to purge expired sessions")
	} else if n > 0 {
		logger.Info().Int64("count", n).Msg("Purged expired sessions")
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Msg("Server running")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server stopped unexpectedly: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
