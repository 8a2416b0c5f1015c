// Package store opens the long-lived relational store handle that generated
// SQL runs against. A single *sql.DB is opened at startup and shared by every
// query in the process.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/marcboeker/go-duckdb/v2"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverDuckDB   = "duckdb"
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

type Config struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

// Dialect captures the few places where the supported drivers disagree.
type Dialect struct {
	Driver string
}

// Placeholder returns the bind parameter marker for the 1-based position n.
func (d Dialect) Placeholder(n int) string {
	if d.Driver == DriverPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func (d Dialect) QuoteIdent(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

func Open(ctx context.Context, cfg Config) (*sql.DB, Dialect, error) {
	driver := strings.TrimSpace(cfg.Driver)
	dsn := cfg.DSN
	switch driver {
	case DriverDuckDB:
		if err := ensureParentDir(dsn); err != nil {
			return nil, Dialect{}, err
		}
	case DriverSQLite:
		if strings.TrimSpace(dsn) == "" {
			dsn = ":memory:"
		}
		if err := ensureParentDir(dsn); err != nil {
			return nil, Dialect{}, err
		}
	case DriverPostgres:
		if strings.TrimSpace(dsn) == "" {
			return nil, Dialect{}, fmt.Errorf("postgres dsn is required")
		}
	default:
		return nil, Dialect{}, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, Dialect{}, fmt.Errorf("open %s store: %w", driver, err)
	}

	maxOpen := cfg.MaxOpenConns
	if driver == DriverSQLite {
		// Every sqlite connection to :memory: is its own database.
		maxOpen = 1
	}
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, Dialect{}, fmt.Errorf("ping %s store: %w", driver, err)
	}

	return db, Dialect{Driver: driver}, nil
}

// ensureParentDir creates the directory holding a file-backed embedded store.
// In-memory and URI-style DSNs are left alone.
func ensureParentDir(dsn string) error {
	path := strings.TrimSpace(dsn)
	if idx := strings.IndexByte(path, '?'); idx >= 0 {
		path = path[:idx]
	}
	if path == "" || path == ":memory:" || strings.HasPrefix(path, "file:") {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store directory %s: %w", dir, err)
	}
	return nil
}
