package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/orderlens/orderlens/internal/migrations"
	"github.com/orderlens/orderlens/internal/observability"
	"github.com/orderlens/orderlens/internal/store"
)

type BootstrapConfig struct {
	SourceCSV string
	Options   Options
	// OutputCSV receives the processed dataset when set.
	OutputCSV string
	// Force reloads even when the table already has rows.
	Force bool
	// FromSnapshot restores the latest published snapshot instead of
	// reading SourceCSV.
	FromSnapshot bool
}

type BootstrapResult struct {
	Skipped  bool
	Rows     int
	Snapshot *Snapshot
}

// Bootstrapper prepares the store for answering questions: it migrates the
// schema and loads the dataset once.
type Bootstrapper struct {
	db        *sql.DB
	dialect   store.Dialect
	table     string
	publisher *Publisher
	logger    *slog.Logger
}

// NewBootstrapper builds a bootstrapper. publisher may be nil when snapshots
// are not published.
func NewBootstrapper(db *sql.DB, dialect store.Dialect, table string, publisher *Publisher, logger *slog.Logger) *Bootstrapper {
	if logger == nil {
		logger = observability.DiscardLogger()
	}
	return &Bootstrapper{db: db, dialect: dialect, table: table, publisher: publisher, logger: logger}
}

func (b *Bootstrapper) Run(ctx context.Context, cfg BootstrapConfig) (BootstrapResult, error) {
	applied, err := migrations.NewRunner(b.dialect, b.table).Up(ctx, b.db, 0)
	if err != nil {
		return BootstrapResult{}, fmt.Errorf("migrate store: %w", err)
	}
	if applied > 0 {
		b.logger.InfoContext(ctx, "applied store migrations", slog.Int("count", applied))
	}

	loader := NewLoader(b.db, b.dialect, b.table)
	existing, err := loader.Count(ctx)
	if err != nil {
		return BootstrapResult{}, err
	}
	if existing > 0 && !cfg.Force {
		b.logger.InfoContext(ctx, "dataset already loaded", slog.String("table", b.table), slog.Int64("rows", existing))
		return BootstrapResult{Skipped: true, Rows: int(existing)}, nil
	}

	var processed *Dataset
	if cfg.FromSnapshot {
		if b.publisher == nil {
			return BootstrapResult{}, fmt.Errorf("restore from snapshot requires an object store")
		}
		processed, err = b.publisher.FetchLatest(ctx)
		if err != nil {
			return BootstrapResult{}, err
		}
	} else {
		raw, err := LoadFile(cfg.SourceCSV, cfg.Options)
		if err != nil {
			return BootstrapResult{}, err
		}
		processed = raw.Preprocess()
	}

	rows, err := loader.Replace(ctx, processed)
	if err != nil {
		return BootstrapResult{}, err
	}
	b.logger.InfoContext(ctx, "dataset loaded", slog.String("table", b.table), slog.Int("rows", rows))

	result := BootstrapResult{Rows: rows}
	if cfg.OutputCSV != "" {
		if err := processed.WriteCSVFile(cfg.OutputCSV); err != nil {
			return BootstrapResult{}, err
		}
	}
	if b.publisher != nil && !cfg.FromSnapshot {
		snapshot, err := b.publisher.Publish(ctx, processed)
		if err != nil {
			return BootstrapResult{}, err
		}
		b.logger.InfoContext(ctx, "dataset snapshot published", slog.String("snapshot_id", snapshot.ID), slog.Int("objects", len(snapshot.Objects)))
		result.Snapshot = &snapshot
	}
	return result, nil
}
