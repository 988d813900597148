package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/godilite/sla-dashboard/internal/app"
	"github.com/godilite/sla-dashboard/internal/config"
)

const startupTimeout = 30 * time.Second

func main() {
	_ = godotenv.Load(".env")

	cfg := config.LoadFromEnv()

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting SLA dashboard",
		zap.String("env", cfg.AppEnv),
		zap.Int("http_port", cfg.HTTPPort),
		zap.Int("max_upload_mb", cfg.MaxUploadMB))

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	application, err := app.NewApp(ctx, cfg, logger)
	cancel()
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}

	if err := application.Run(); err != nil {
		logger.Fatal("Application exited with error", zap.Error(err))
	}
}
