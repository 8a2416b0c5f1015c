package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/orderlens/orderlens/internal/answer"
	"github.com/orderlens/orderlens/internal/api"
	"github.com/orderlens/orderlens/internal/config"
	"github.com/orderlens/orderlens/internal/dataset"
	"github.com/orderlens/orderlens/internal/nl2sql"
	"github.com/orderlens/orderlens/internal/observability"
	"github.com/orderlens/orderlens/internal/query"
	"github.com/orderlens/orderlens/internal/query/sqlengine"
	s3store "github.com/orderlens/orderlens/internal/storage/s3"
	"github.com/orderlens/orderlens/internal/store"
)

const schemaSampleRows = 5

func main() {
	cfg, err := config.LoadFromEnv("orderlens-api")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)
	db, dialect, err := store.Open(context.Background(), store.Config{
		Driver:          cfg.Store.Driver,
		DSN:             cfg.Store.DSN,
		MaxOpenConns:    cfg.Store.MaxOpenConns,
		MaxIdleConns:    cfg.Store.MaxIdleConns,
		ConnMaxIdleTime: cfg.Store.ConnMaxIdleTime,
		ConnMaxLifetime: cfg.Store.ConnMaxLifetime,
	})
	if err != nil {
		logger.Error("failed to open store", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if cfg.Dataset.Bootstrap {
		var publisher *dataset.Publisher
		if cfg.ObjectStore.PublishSnapshots {
			objectStore, err := s3store.New(context.Background(), cfg.ObjectStore)
			if err != nil {
				logger.Error("failed to initialize object store", slog.Any("error", err))
				os.Exit(1)
			}
			publisher = dataset.NewPublisher(objectStore, cfg.Dataset.Table)
		}
		bootstrapper := dataset.NewBootstrapper(db, dialect, cfg.Dataset.Table, publisher, logger)
		result, err := bootstrapper.Run(context.Background(), dataset.BootstrapConfig{
			SourceCSV: cfg.Dataset.SourceCSV,
			Options: dataset.Options{
				Delimiter:       []rune(cfg.Dataset.Delimiter)[0],
				SelectedColumns: cfg.Dataset.SelectedColumns,
			},
			OutputCSV: cfg.Dataset.OutputCSV,
		})
		if err != nil {
			logger.Error("failed to bootstrap dataset", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("dataset ready", slog.Bool("skipped", result.Skipped), slog.Int("rows", result.Rows))
	}

	schema, err := query.NewSchema(cfg.Dataset.Table, query.ProductsSchema().Columns())
	if err != nil {
		logger.Error("invalid dataset schema", slog.Any("error", err))
		os.Exit(1)
	}
	engine := sqlengine.NewEngine(db)

	deps := api.Dependencies{
		Logger:            logger,
		Readiness:         api.CheckStore(engine),
		DependencyTimeout: time.Second,
		Schema:            &schema,
	}

	if cfg.AI.APIKey == "" {
		logger.Warn("ORDERLENS_AI_API_KEY is not set; query endpoints are disabled")
	} else {
		sampleCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		schemaContext := nl2sql.LoadSchemaContext(sampleCtx, engine, schema, schemaSampleRows)
		cancel()

		translator, err := nl2sql.NewTranslator(cfg.AI, schemaContext)
		if err != nil {
			logger.Error("failed to initialize query translator", slog.Any("error", err))
			os.Exit(1)
		}
		generator := nl2sql.NewGenerator(translator, cfg.AI.Timeout)
		deps.Translator = translator
		deps.Answerer = answer.NewOrchestrator(generator, answer.NewRunner(engine, schema), logger)
	}

	handler := api.NewHandler(cfg, deps)
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting api server", slog.String("addr", cfg.HTTP.Address), slog.String("store", cfg.Store.Driver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}
