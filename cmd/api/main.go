package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/markdave123-py/docqa/internal/app"
	"github.com/markdave123-py/docqa/internal/config"
	"github.com/markdave123-py/docqa/internal/logger"
)

func main() {
	// Handle SIGINT/SIGTERM for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logg := logger.New(cfg.LogLevel, cfg.LogFormat)
	for _, w := range cfg.Warnings {
		logg.Warn("config value ignored", "detail", w)
	}

	application, err := app.NewApp(ctx, cfg, logg)
	if err != nil {
		logg.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	logg.Info("docqa is running", "port", cfg.Port, "llm", cfg.LLMProvider, "queue", cfg.QueueDriver)
	if err := application.Run(ctx); err != nil {
		logg.Error("server stopped", "error", err)
		application.Close()
		os.Exit(1)
	}
	logg.Info("shutdown complete")
}
