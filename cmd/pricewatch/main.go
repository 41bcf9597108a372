package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"pricewatch/internal/config"
	"pricewatch/internal/engine"
	"pricewatch/internal/logger"
)

func main() {
	_ = godotenv.Load() // load .env if present; not fatal if missing

	cfg := config.FromEnv()
	logger.Init(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := engine.New(ctx, cfg)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to initialize engine")
	}

	if err := e.Run(ctx); err != nil {
		logger.Logger.Fatal().Err(err).Msg("engine exited with error")
	}

	logger.Logger.Info().Msg("exited")
}
