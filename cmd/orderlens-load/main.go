package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/orderlens/orderlens/internal/config"
	"github.com/orderlens/orderlens/internal/dataset"
	"github.com/orderlens/orderlens/internal/observability"
	s3store "github.com/orderlens/orderlens/internal/storage/s3"
	"github.com/orderlens/orderlens/internal/store"
)

func main() {
	force := flag.Bool("force", false, "reload the dataset even when the table already has rows")
	fromSnapshot := flag.Bool("from-snapshot", false, "restore the latest published snapshot instead of reading the source CSV")
	source := flag.String("source", "", "source CSV path; overrides ORDERLENS_DATASET_SOURCE_CSV")
	flag.Parse()

	cfg, err := config.LoadFromEnv("orderlens-load")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg, os.Stdout)
	if *source != "" {
		cfg.Dataset.SourceCSV = *source
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, dialect, err := store.Open(ctx, store.Config{
		Driver:       cfg.Store.Driver,
		DSN:          cfg.Store.DSN,
		MaxOpenConns: cfg.Store.MaxOpenConns,
	})
	if err != nil {
		logger.Error("failed to open store", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	var publisher *dataset.Publisher
	if cfg.ObjectStore.PublishSnapshots || *fromSnapshot {
		objectStore, err := s3store.New(ctx, cfg.ObjectStore)
		if err != nil {
			logger.Error("failed to initialize object store", slog.Any("error", err))
			os.Exit(1)
		}
		publisher = dataset.NewPublisher(objectStore, cfg.Dataset.Table)
	}

	result, err := dataset.NewBootstrapper(db, dialect, cfg.Dataset.Table, publisher, logger).Run(ctx, dataset.BootstrapConfig{
		SourceCSV: cfg.Dataset.SourceCSV,
		Options: dataset.Options{
			Delimiter:       []rune(cfg.Dataset.Delimiter)[0],
			SelectedColumns: cfg.Dataset.SelectedColumns,
		},
		OutputCSV:    cfg.Dataset.OutputCSV,
		Force:        *force,
		FromSnapshot: *fromSnapshot,
	})
	if err != nil {
		logger.Error("dataset load failed", slog.Any("error", err))
		os.Exit(1)
	}
	if result.Skipped {
		fmt.Printf("table %s already has %d row(s); use -force to reload\n", cfg.Dataset.Table, result.Rows)
		return
	}
	fmt.Printf("loaded %d row(s) into %s\n", result.Rows, cfg.Dataset.Table)
	if result.Snapshot != nil {
		fmt.Printf("published snapshot %s (%d object(s))\n", result.Snapshot.ID, len(result.Snapshot.Objects))
	}
}
