package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lostfound/recovery/backend/internal/router"
	"github.com/lostfound/recovery/backend/pkg/config"
	"github.com/lostfound/recovery/backend/pkg/firebase"
	"github.com/lostfound/recovery/backend/pkg/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger := config.NewLogger(cfg.Env)

	// Initialize database connections
	db, err := config.InitDB(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize databases", "err", err)
	}
	defer db.CloseDB()

	// Firebase is optional; it enables Firebase auth and FCM push
	ctx := context.Background()
	var firebaseApp *firebase.App
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err = firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, logger)
		if err != nil {
			logger.Fatal("failed to initialize Firebase", "err", err)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	config.SetupMiddleware(e, cfg, logger)

	err = router.SetupRoutes(e, router.Deps{
		Config:   cfg,
		Logger:   logger,
		Postgres: db.Postgres,
		Mongo:    db.Mongo,
		Firebase: firebaseApp,
	})
	if err != nil {
		logger.Fatal("failed to set up routes", "err", err)
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
	logger.Info("server stopped")
}
