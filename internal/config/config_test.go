package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaultsForDevProfile(t *testing.T) {
	cfg, err := Load("orderlens-api", mapLookup(map[string]string{}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Profile != ProfileDev {
		t.Fatalf("Profile = %q, want %q", cfg.Profile, ProfileDev)
	}
	if cfg.HTTP.Address != ":8080" {
		t.Fatalf("HTTP.Address = %q", cfg.HTTP.Address)
	}
	if cfg.Observability.LogLevel != slog.LevelDebug {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
	if cfg.Store.Driver != "sqlite3" || cfg.Store.DSN != "data/products.db" {
		t.Fatalf("Store.Driver = %q", cfg.Store.Driver)
	}
	if cfg.Store.MaxOpenConns != 1 {
		t.Fatalf("Store.MaxOpenConns = %d", cfg.Store.MaxOpenConns)
	}
	if cfg.Dataset.Delimiter != ";" {
		t.Fatalf("Dataset.Delimiter = %q", cfg.Dataset.Delimiter)
	}
	if len(cfg.Dataset.SelectedColumns) != 4 || cfg.Dataset.SelectedColumns[0] != "Order_ID" {
		t.Fatalf("Dataset.SelectedColumns = %#v", cfg.Dataset.SelectedColumns)
	}
	if cfg.Dataset.Table != "products" {
		t.Fatalf("Dataset.Table = %q", cfg.Dataset.Table)
	}
	if cfg.ObjectStore.PublishSnapshots {
		t.Fatal("ObjectStore.PublishSnapshots should default to false")
	}
	if cfg.Query.MaxBatchSize != 50 {
		t.Fatalf("Query.MaxBatchSize = %d", cfg.Query.MaxBatchSize)
	}
	if cfg.AI.Provider != AIProviderOpenAI {
		t.Fatalf("AI.Provider = %q", cfg.AI.Provider)
	}
}

func TestLoadProdProfileDefaults(t *testing.T) {
	cfg, err := Load("orderlens-api", mapLookup(map[string]string{"ORDERLENS_PROFILE": "prod"}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Profile != ProfileProd {
		t.Fatalf("Profile = %q, want %q", cfg.Profile, ProfileProd)
	}
	if cfg.Observability.LogLevel != slog.LevelInfo {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
	if !cfg.ObjectStore.UseSSL {
		t.Fatal("ObjectStore.UseSSL should default to true in prod")
	}
	if cfg.ObjectStore.AutoCreateBucket {
		t.Fatal("ObjectStore.AutoCreateBucket should default to false in prod")
	}
}

func TestLoadTestProfileUsesInMemoryStore(t *testing.T) {
	cfg, err := Load("orderlens-api", mapLookup(map[string]string{"ORDERLENS_PROFILE": "test"}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store.DSN != "" {
		t.Fatalf("Store.DSN = %q, want in-memory", cfg.Store.DSN)
	}
	if cfg.HTTP.Address != ":18080" {
		t.Fatalf("HTTP.Address = %q", cfg.HTTP.Address)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	lookup := mapLookup(map[string]string{
		"ORDERLENS_PROFILE":                       "test",
		"ORDERLENS_SERVICE_NAME":                  "orderlens-custom",
		"ORDERLENS_HTTP_ADDR":                     ":9999",
		"ORDERLENS_HTTP_READ_TIMEOUT":             "2s",
		"ORDERLENS_HTTP_WRITE_TIMEOUT":            "3s",
		"ORDERLENS_LOG_LEVEL":                     "error",
		"ORDERLENS_STORE_DRIVER":                  "duckdb",
		"ORDERLENS_STORE_DSN":                     "data/products.duckdb",
		"ORDERLENS_STORE_MAX_OPEN_CONNS":          "4",
		"ORDERLENS_DATASET_BOOTSTRAP":             "true",
		"ORDERLENS_DATASET_SOURCE_CSV":            "orders.csv",
		"ORDERLENS_DATASET_DELIMITER":             ",",
		"ORDERLENS_DATASET_COLUMNS":               "Order_ID, Customer_Name,",
		"ORDERLENS_DATASET_OUTPUT_CSV":            "out/products.csv",
		"ORDERLENS_OBJECTSTORE_PUBLISH_SNAPSHOTS": "true",
		"ORDERLENS_OBJECTSTORE_BUCKET":            "orderlens-prod",
		"ORDERLENS_OBJECTSTORE_PREFIX":            "snapshots",
		"ORDERLENS_QUERY_BATCH_TIMEOUT":           "45s",
		"ORDERLENS_QUERY_MAX_BATCH":               "7",
		"ORDERLENS_AI_PROVIDER":                   "anthropic",
		"ORDERLENS_AI_BASE_URL":                   "https://api.example.com",
		"ORDERLENS_AI_API_KEY":                    "secret-key",
		"ORDERLENS_AI_MODEL":                      "claude-test",
		"ORDERLENS_AI_TEMPERATURE":                "0.3",
		"ORDERLENS_AI_MAX_TOKENS":                 "256",
		"ORDERLENS_AI_TIMEOUT":                    "21s",
	})
	cfg, err := Load("orderlens-api", lookup)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Service.Name != "orderlens-custom" {
		t.Fatalf("Service.Name = %q", cfg.Service.Name)
	}
	if cfg.HTTP.Address != ":9999" {
		t.Fatalf("HTTP.Address = %q", cfg.HTTP.Address)
	}
	if cfg.HTTP.ReadTimeout != 2*time.Second {
		t.Fatalf("HTTP.ReadTimeout = %s", cfg.HTTP.ReadTimeout)
	}
	if cfg.HTTP.WriteTimeout != 3*time.Second {
		t.Fatalf("HTTP.WriteTimeout = %s", cfg.HTTP.WriteTimeout)
	}
	if cfg.Observability.LogLevel != slog.LevelError {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
	if cfg.Store.Driver != "duckdb" || cfg.Store.DSN != "data/products.duckdb" || cfg.Store.MaxOpenConns != 4 {
		t.Fatalf("Store = %#v", cfg.Store)
	}
	if !cfg.Dataset.Bootstrap {
		t.Fatal("Dataset.Bootstrap = false, want true")
	}
	if cfg.Dataset.SourceCSV != "orders.csv" || cfg.Dataset.Delimiter != "," || cfg.Dataset.OutputCSV != "out/products.csv" {
		t.Fatalf("Dataset = %#v", cfg.Dataset)
	}
	if len(cfg.Dataset.SelectedColumns) != 2 || cfg.Dataset.SelectedColumns[1] != "Customer_Name" {
		t.Fatalf("Dataset.SelectedColumns = %#v", cfg.Dataset.SelectedColumns)
	}
	if !cfg.ObjectStore.PublishSnapshots || cfg.ObjectStore.Bucket != "orderlens-prod" || cfg.ObjectStore.Prefix != "snapshots" {
		t.Fatalf("ObjectStore = %#v", cfg.ObjectStore)
	}
	if cfg.Query.BatchTimeout != 45*time.Second {
		t.Fatalf("Query.BatchTimeout = %s", cfg.Query.BatchTimeout)
	}
	if cfg.Query.MaxBatchSize != 7 {
		t.Fatalf("Query.MaxBatchSize = %d", cfg.Query.MaxBatchSize)
	}
	if cfg.AI.Provider != AIProviderAnthropic {
		t.Fatalf("AI.Provider = %q", cfg.AI.Provider)
	}
	if cfg.AI.BaseURL != "https://api.example.com" {
		t.Fatalf("AI.BaseURL = %q", cfg.AI.BaseURL)
	}
	if cfg.AI.APIKey != "secret-key" {
		t.Fatalf("AI.APIKey = %q", cfg.AI.APIKey)
	}
	if cfg.AI.Model != "claude-test" {
		t.Fatalf("AI.Model = %q", cfg.AI.Model)
	}
	if cfg.AI.Temperature != 0.3 {
		t.Fatalf("AI.Temperature = %f", cfg.AI.Temperature)
	}
	if cfg.AI.MaxTokens != 256 {
		t.Fatalf("AI.MaxTokens = %d", cfg.AI.MaxTokens)
	}
	if cfg.AI.Timeout != 21*time.Second {
		t.Fatalf("AI.Timeout = %s", cfg.AI.Timeout)
	}
}

func TestLoadErrorsOnInvalidValues(t *testing.T) {
	tests := []map[string]string{
		{"ORDERLENS_PROFILE": "oops"},
		{"ORDERLENS_HTTP_READ_TIMEOUT": "NaN"},
		{"ORDERLENS_STORE_DRIVER": "mysql"},
		{"ORDERLENS_STORE_MAX_OPEN_CONNS": "oops"},
		{"ORDERLENS_DATASET_DELIMITER": ";;"},
		{"ORDERLENS_DATASET_COLUMNS": " , "},
		{"ORDERLENS_DATASET_BOOTSTRAP": "not-bool"},
		{"ORDERLENS_QUERY_MAX_BATCH": "0"},
		{"ORDERLENS_AI_PROVIDER": "cohere"},
		{"ORDERLENS_AI_TEMPERATURE": "bad"},
		{"ORDERLENS_LOG_LEVEL": "verbose"},
	}
	for _, env := range tests {
		_, err := Load("orderlens-api", mapLookup(env))
		if err == nil {
			t.Fatalf("Load() expected error for env %#v", env)
		}
	}
}

func mapLookup(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}
