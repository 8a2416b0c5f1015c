package sqlengine

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/orderlens/orderlens/internal/query"
)

// Engine runs SQL against a shared *sql.DB. The handle is owned by the caller;
// concurrent use is safe as far as the underlying driver allows, and callers
// that need strictly serialized access must arrange it themselves.
type Engine struct {
	db *sql.DB
}

func NewEngine(db *sql.DB) *Engine {
	return &Engine{db: db}
}

func (e *Engine) Ping(ctx context.Context) error {
	if e.db == nil {
		return fmt.Errorf("%w: no database handle", query.ErrStoreUnavailable)
	}
	if err := e.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", query.ErrStoreUnavailable, err)
	}
	return nil
}

func (e *Engine) Execute(ctx context.Context, sqlText string) (query.Result, error) {
	if strings.TrimSpace(sqlText) == "" {
		return query.Result{}, query.ErrEmptySQL
	}
	if e.db == nil {
		return query.Result{}, fmt.Errorf("%w: no database handle", query.ErrStoreUnavailable)
	}

	start := time.Now()
	rows, err := e.db.QueryContext(ctx, sqlText)
	if err != nil {
		return query.Result{}, classify("execute query", err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return query.Result{}, classify("query columns", err)
	}

	resultRows := make([][]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return query.Result{}, classify("scan row", err)
		}
		resultRows = append(resultRows, normalizeValues(values))
	}
	if err := rows.Err(); err != nil {
		return query.Result{}, classify("iterate rows", err)
	}

	return query.Result{
		Columns:  columns,
		Rows:     resultRows,
		Duration: time.Since(start),
	}, nil
}

func classify(step string, err error) error {
	switch {
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w: %w", step, query.ErrStoreUnavailable, err)
	default:
		return fmt.Errorf("%s: %w", step, err)
	}
}

// normalizeValues maps driver specific scalars onto a small JSON friendly set:
// int64, float64, string, bool, time.Time and nil. NaN and infinities have no
// JSON encoding and become nil.
func normalizeValues(values []any) []any {
	normalized := make([]any, len(values))
	for i, value := range values {
		normalized[i] = normalizeValue(value)
	}
	return normalized
}

func normalizeValue(value any) any {
	switch typed := value.(type) {
	case []byte:
		return string(typed)
	case int:
		return int64(typed)
	case int8:
		return int64(typed)
	case int16:
		return int64(typed)
	case int32:
		return int64(typed)
	case uint8:
		return int64(typed)
	case uint16:
		return int64(typed)
	case uint32:
		return int64(typed)
	case uint64:
		if typed <= 1<<63-1 {
			return int64(typed)
		}
		return fmt.Sprintf("%d", typed)
	case float64:
		return finiteOrNil(typed)
	case float32:
		return finiteOrNil(float64(typed))
	case *big.Int:
		if typed == nil {
			return nil
		}
		if typed.IsInt64() {
			return typed.Int64()
		}
		return typed.String()
	case interface{ Float64() float64 }:
		return finiteOrNil(typed.Float64())
	default:
		return typed
	}
}

func finiteOrNil(value float64) any {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return nil
	}
	return value
}
