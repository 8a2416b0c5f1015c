package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/orderlens/orderlens/internal/demo/orders"
)

func main() {
	if len(os.Args) < 2 {
		_, _ = fmt.Fprintln(os.Stderr, "usage: orderlens-demo <csv|ask>")
		os.Exit(2)
	}

	cfg, err := orders.LoadConfigFromEnv(os.LookupEnv)
	if err != nil {
		slog.Error("failed to load demo config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	switch os.Args[1] {
	case "csv":
		generator := orders.NewGenerator(cfg.Seed, cfg.Customers, cfg.StartDate, cfg.Days)
		if err := generator.WriteCSVFile(cfg.OutputPath, cfg.Rows); err != nil {
			logger.Error("failed to write demo dataset", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info(
			"wrote demo dataset",
			slog.String("path", cfg.OutputPath),
			slog.Int("rows", cfg.Rows),
			slog.Int64("seed", cfg.Seed),
		)
	case "ask":
		asker, err := orders.NewAsker(cfg, logger, nil)
		if err != nil {
			logger.Error("failed to initialize demo asker", slog.Any("error", err))
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger.Info(
			"demo asker started",
			slog.String("api_url", cfg.APIBaseURL),
			slog.Int("batch_size", cfg.BatchSize),
			slog.Duration("interval", cfg.Interval),
		)
		err = asker.Run(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("demo asker stopped with error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("demo asker stopped")
	default:
		_, _ = fmt.Fprintf(os.Stderr, "unknown mode %q\n", os.Args[1])
		os.Exit(2)
	}
}
