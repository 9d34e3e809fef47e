package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"carta-backend/internal/config"
	"carta-backend/internal/database"
	"carta-backend/internal/mail"
	"carta-backend/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The logger is configured from cfg, so fall back to a bare one.
		zap.NewExample().Fatal("invalid configuration", zap.Error(err))
	}

	logger, err := newLogger(cfg.Environment)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	db, err := database.Open(cfg, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}

	mailer, err := mail.New(cfg, logger)
	if err != nil {
		logger.Fatal("mailer", zap.Error(err))
	}

	app := server.New(server.Deps{
		Config: cfg,
		DB:     db,
		Logger: logger,
		Mailer: mailer,
	})

	go func() {
		logger.Info("listening",
			zap.String("port", cfg.HTTPPort),
			zap.String("onboarding_mode", string(cfg.OnboardingMode)),
			zap.String("session_mode", string(cfg.SessionMode)),
		)
		if err := app.Listen(":" + cfg.HTTPPort); err != nil {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
