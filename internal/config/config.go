package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type LookupFunc func(string) (string, bool)

type Profile string

const (
	ProfileDev  Profile = "dev"
	ProfileTest Profile = "test"
	ProfileProd Profile = "prod"
)

const (
	AIProviderOpenAI    = "openai"
	AIProviderAnthropic = "anthropic"
)

type Config struct {
	Profile       Profile
	Service       ServiceConfig
	HTTP          HTTPConfig
	Store         StoreConfig
	Dataset       DatasetConfig
	ObjectStore   ObjectStoreConfig
	Query         QueryConfig
	AI            AIConfig
	Observability ObservabilityConfig
}

type ServiceConfig struct {
	Name string
}

type HTTPConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// StoreConfig selects the relational store the questions are answered from.
// Driver is one of duckdb, sqlite3 or pgx.
type StoreConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

type DatasetConfig struct {
	Bootstrap       bool
	SourceCSV       string
	Delimiter       string
	SelectedColumns []string
	OutputCSV       string
	Table           string
}

type ObjectStoreConfig struct {
	PublishSnapshots bool
	Endpoint         string
	Region           string
	Bucket           string
	AccessKeyID      string
	SecretAccessKey  string
	UseSSL           bool
	Prefix           string
	AutoCreateBucket bool
}

type QueryConfig struct {
	BatchTimeout time.Duration
	MaxBatchSize int
}

type AIConfig struct {
	Provider    string
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

type ObservabilityConfig struct {
	LogLevel slog.Level
	LogJSON  bool
}

func LoadFromEnv(serviceName string) (Config, error) {
	return Load(serviceName, os.LookupEnv)
}

func Load(serviceName string, lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	profile := ProfileDev
	if raw, ok := lookup("ORDERLENS_PROFILE"); ok {
		profile = Profile(strings.ToLower(strings.TrimSpace(raw)))
	}
	if !isValidProfile(profile) {
		return Config{}, fmt.Errorf("invalid ORDERLENS_PROFILE: %q", profile)
	}

	cfg := defaultsForProfile(profile)
	if serviceName != "" {
		cfg.Service.Name = serviceName
	}

	if err := applyString(lookup, "ORDERLENS_SERVICE_NAME", &cfg.Service.Name); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ORDERLENS_HTTP_ADDR", &cfg.HTTP.Address); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "ORDERLENS_HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "ORDERLENS_HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "ORDERLENS_HTTP_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout); err != nil {
		return Config{}, err
	}

	if err := applyString(lookup, "ORDERLENS_STORE_DRIVER", &cfg.Store.Driver); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ORDERLENS_STORE_DSN", &cfg.Store.DSN); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "ORDERLENS_STORE_MAX_OPEN_CONNS", &cfg.Store.MaxOpenConns); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "ORDERLENS_STORE_MAX_IDLE_CONNS", &cfg.Store.MaxIdleConns); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "ORDERLENS_STORE_CONN_MAX_IDLE_TIME", &cfg.Store.ConnMaxIdleTime); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "ORDERLENS_STORE_CONN_MAX_LIFETIME", &cfg.Store.ConnMaxLifetime); err != nil {
		return Config{}, err
	}

	if err := applyBool(lookup, "ORDERLENS_DATASET_BOOTSTRAP", &cfg.Dataset.Bootstrap); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ORDERLENS_DATASET_SOURCE_CSV", &cfg.Dataset.SourceCSV); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ORDERLENS_DATASET_DELIMITER", &cfg.Dataset.Delimiter); err != nil {
		return Config{}, err
	}
	if err := applyList(lookup, "ORDERLENS_DATASET_COLUMNS", &cfg.Dataset.SelectedColumns); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ORDERLENS_DATASET_OUTPUT_CSV", &cfg.Dataset.OutputCSV); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ORDERLENS_DATASET_TABLE", &cfg.Dataset.Table); err != nil {
		return Config{}, err
	}

	if err := applyBool(lookup, "ORDERLENS_OBJECTSTORE_PUBLISH_SNAPSHOTS", &cfg.ObjectStore.PublishSnapshots); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ORDERLENS_OBJECTSTORE_ENDPOINT", &cfg.ObjectStore.Endpoint); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ORDERLENS_OBJECTSTORE_REGION", &cfg.ObjectStore.Region); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ORDERLENS_OBJECTSTORE_BUCKET", &cfg.ObjectStore.Bucket); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ORDERLENS_OBJECTSTORE_ACCESS_KEY", &cfg.ObjectStore.AccessKeyID); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ORDERLENS_OBJECTSTORE_SECRET_KEY", &cfg.ObjectStore.SecretAccessKey); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "ORDERLENS_OBJECTSTORE_USE_SSL", &cfg.ObjectStore.UseSSL); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ORDERLENS_OBJECTSTORE_PREFIX", &cfg.ObjectStore.Prefix); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "ORDERLENS_OBJECTSTORE_AUTO_CREATE_BUCKET", &cfg.ObjectStore.AutoCreateBucket); err != nil {
		return Config{}, err
	}

	if err := applyDuration(lookup, "ORDERLENS_QUERY_BATCH_TIMEOUT", &cfg.Query.BatchTimeout); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "ORDERLENS_QUERY_MAX_BATCH", &cfg.Query.MaxBatchSize); err != nil {
		return Config{}, err
	}

	if err := applyString(lookup, "ORDERLENS_AI_PROVIDER", &cfg.AI.Provider); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ORDERLENS_AI_BASE_URL", &cfg.AI.BaseURL); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ORDERLENS_AI_API_KEY", &cfg.AI.APIKey); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ORDERLENS_AI_MODEL", &cfg.AI.Model); err != nil {
		return Config{}, err
	}
	if err := applyFloat(lookup, "ORDERLENS_AI_TEMPERATURE", &cfg.AI.Temperature); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "ORDERLENS_AI_MAX_TOKENS", &cfg.AI.MaxTokens); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "ORDERLENS_AI_TIMEOUT", &cfg.AI.Timeout); err != nil {
		return Config{}, err
	}

	if err := applyBool(lookup, "ORDERLENS_LOG_JSON", &cfg.Observability.LogJSON); err != nil {
		return Config{}, err
	}
	if err := applyLogLevel(lookup, "ORDERLENS_LOG_LEVEL", &cfg.Observability.LogLevel); err != nil {
		return Config{}, err
	}

	if cfg.Service.Name == "" {
		return Config{}, fmt.Errorf("service name is required")
	}
	if cfg.HTTP.Address == "" {
		return Config{}, fmt.Errorf("http address is required")
	}
	if !isValidDriver(cfg.Store.Driver) {
		return Config{}, fmt.Errorf("invalid ORDERLENS_STORE_DRIVER: %q", cfg.Store.Driver)
	}
	if cfg.AI.Provider != AIProviderOpenAI && cfg.AI.Provider != AIProviderAnthropic {
		return Config{}, fmt.Errorf("invalid ORDERLENS_AI_PROVIDER: %q", cfg.AI.Provider)
	}
	if cfg.Query.MaxBatchSize <= 0 {
		return Config{}, fmt.Errorf("ORDERLENS_QUERY_MAX_BATCH must be positive")
	}
	if len([]rune(cfg.Dataset.Delimiter)) != 1 {
		return Config{}, fmt.Errorf("ORDERLENS_DATASET_DELIMITER must be a single character")
	}
	return cfg, nil
}

func defaultsForProfile(profile Profile) Config {
	cfg := Config{
		Profile: profile,
		Service: ServiceConfig{Name: "orderlens-api"},
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 2 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		Store: StoreConfig{
			Driver:          "sqlite3",
			DSN:             "data/products.db",
			MaxOpenConns:    1,
			MaxIdleConns:    1,
			ConnMaxIdleTime: 0,
			ConnMaxLifetime: 0,
		},
		Dataset: DatasetConfig{
			Bootstrap:       false,
			SourceCSV:       "take_home_dataset.csv",
			Delimiter:       ";",
			SelectedColumns: []string{"Order_ID", "Order_date", "Product_Category", "Customer_Name"},
			OutputCSV:       "data/products.csv",
			Table:           "products",
		},
		ObjectStore: ObjectStoreConfig{
			PublishSnapshots: false,
			Endpoint:         "localhost:9000",
			Region:           "us-east-1",
			Bucket:           "orderlens",
			AccessKeyID:      "minio",
			SecretAccessKey:  "miniostorage",
			UseSSL:           false,
			Prefix:           "",
			AutoCreateBucket: true,
		},
		Query: QueryConfig{
			BatchTimeout: 90 * time.Second,
			MaxBatchSize: 50,
		},
		AI: AIConfig{
			// BaseURL and Model default per provider in nl2sql.
			Provider:    AIProviderOpenAI,
			Temperature: 0,
			MaxTokens:   512,
			Timeout:     20 * time.Second,
		},
		Observability: ObservabilityConfig{
			LogLevel: slog.LevelDebug,
			LogJSON:  true,
		},
	}

	switch profile {
	case ProfileTest:
		cfg.HTTP.Address = ":18080"
		cfg.Store.DSN = ""
		cfg.Observability.LogLevel = slog.LevelWarn
	case ProfileProd:
		cfg.Observability.LogLevel = slog.LevelInfo
		cfg.ObjectStore.UseSSL = true
		cfg.ObjectStore.AutoCreateBucket = false
	}

	return cfg
}

func isValidProfile(profile Profile) bool {
	switch profile {
	case ProfileDev, ProfileTest, ProfileProd:
		return true
	default:
		return false
	}
}

func isValidDriver(driver string) bool {
	switch driver {
	case "duckdb", "sqlite3", "pgx":
		return true
	default:
		return false
	}
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

// applyList splits a comma separated value, dropping empty entries.
func applyList(lookup LookupFunc, key string, dst *[]string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	items := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			items = append(items, part)
		}
	}
	if len(items) == 0 {
		return fmt.Errorf("invalid %s: at least one entry is required", key)
	}
	*dst = items
	return nil
}

func applyDuration(lookup LookupFunc, key string, dst *time.Duration) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyBool(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyFloat(lookup LookupFunc, key string, dst *float64) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyLogLevel(lookup LookupFunc, key string, dst *slog.Level) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	level := strings.ToLower(strings.TrimSpace(raw))
	switch level {
	case "debug":
		*dst = slog.LevelDebug
	case "info":
		*dst = slog.LevelInfo
	case "warn", "warning":
		*dst = slog.LevelWarn
	case "error":
		*dst = slog.LevelError
	default:
		return fmt.Errorf("invalid %s: %q", key, raw)
	}
	return nil
}
