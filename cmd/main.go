package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"trade_exchange/internal/application"
	"trade_exchange/pkg/contextx"
	"trade_exchange/pkg/logx"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log := logx.NewConsoleLogger(os.Stdout, slog.LevelDebug).With(
		slog.String(logx.FieldAppName, application.AppName),
		slog.String(logx.FieldAppVersion, application.Version),
	)
	slog.SetDefault(log)

	ctx = contextx.WithLogger(ctx, log)

	if err := application.Run(ctx); err != nil {
		log.Error("application failed", logx.Error(err))
		os.Exit(1) //nolint:gocritic
	}

	log.Info("application stopped")
}
