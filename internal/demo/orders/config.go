package orders

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type LookupFunc func(string) (string, bool)

type Config struct {
	OutputPath  string
	Rows        int
	Customers   int
	StartDate   time.Time
	Days        int
	Seed        int64
	APIBaseURL  string
	BatchSize   int
	Interval    time.Duration
	HTTPTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		OutputPath:  "data/orders.csv",
		Rows:        500,
		Customers:   60,
		StartDate:   time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC),
		Days:        90,
		Seed:        time.Now().UTC().UnixNano(),
		APIBaseURL:  "http://localhost:8080",
		BatchSize:   3,
		Interval:    5 * time.Second,
		HTTPTimeout: 60 * time.Second,
	}
}

func LoadConfigFromEnv(lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	cfg := DefaultConfig()
	if err := applyString(lookup, "ORDERLENS_DEMO_OUTPUT", &cfg.OutputPath); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "ORDERLENS_DEMO_ROWS", &cfg.Rows); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "ORDERLENS_DEMO_CUSTOMERS", &cfg.Customers); err != nil {
		return Config{}, err
	}
	if err := applyDate(lookup, "ORDERLENS_DEMO_START_DATE", &cfg.StartDate); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "ORDERLENS_DEMO_DAYS", &cfg.Days); err != nil {
		return Config{}, err
	}
	if err := applyInt64(lookup, "ORDERLENS_DEMO_SEED", &cfg.Seed); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ORDERLENS_DEMO_API_URL", &cfg.APIBaseURL); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "ORDERLENS_DEMO_BATCH_SIZE", &cfg.BatchSize); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "ORDERLENS_DEMO_INTERVAL", &cfg.Interval); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "ORDERLENS_DEMO_HTTP_TIMEOUT", &cfg.HTTPTimeout); err != nil {
		return Config{}, err
	}

	if strings.TrimSpace(cfg.OutputPath) == "" {
		return Config{}, fmt.Errorf("ORDERLENS_DEMO_OUTPUT is required")
	}
	if cfg.Rows <= 0 {
		return Config{}, fmt.Errorf("ORDERLENS_DEMO_ROWS must be > 0")
	}
	if cfg.Customers <= 0 {
		return Config{}, fmt.Errorf("ORDERLENS_DEMO_CUSTOMERS must be > 0")
	}
	if cfg.Days <= 0 {
		return Config{}, fmt.Errorf("ORDERLENS_DEMO_DAYS must be > 0")
	}
	if strings.TrimSpace(cfg.APIBaseURL) == "" {
		return Config{}, fmt.Errorf("ORDERLENS_DEMO_API_URL is required")
	}
	if cfg.BatchSize <= 0 {
		return Config{}, fmt.Errorf("ORDERLENS_DEMO_BATCH_SIZE must be > 0")
	}
	if cfg.Interval <= 0 {
		return Config{}, fmt.Errorf("ORDERLENS_DEMO_INTERVAL must be > 0")
	}
	if cfg.HTTPTimeout <= 0 {
		return Config{}, fmt.Errorf("ORDERLENS_DEMO_HTTP_TIMEOUT must be > 0")
	}

	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	return cfg, nil
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

func applyDuration(lookup LookupFunc, key string, dst *time.Duration) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	v, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = v
	return nil
}

func applyDate(lookup LookupFunc, key string, dst *time.Time) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	v, err := time.Parse(time.DateOnly, strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = v
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = v
	return nil
}

func applyInt64(lookup LookupFunc, key string, dst *int64) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = v
	return nil
}
