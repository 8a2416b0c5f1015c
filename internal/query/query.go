package query

import (
	"context"
	"errors"
	"time"
)

var (
	ErrEmptySQL = errors.New("sql is required")
	// ErrStoreUnavailable marks failures of the store itself rather than of
	// the statement being executed.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Result is a raw result set as returned by the store, before any column
// extraction. Columns are the driver-reported names.
type Result struct {
	Columns  []string
	Rows     [][]any
	Duration time.Duration
}

// Engine executes SQL text verbatim against a relational store.
type Engine interface {
	Execute(ctx context.Context, sqlText string) (Result, error)
	Ping(ctx context.Context) error
}
