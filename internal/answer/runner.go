package answer

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/orderlens/orderlens/internal/observability"
	"github.com/orderlens/orderlens/internal/query"
)

type Status int

const (
	StatusRows Status = iota
	StatusNoData
	StatusNoValidColumns
)

// RawResult pairs the columns named by the generated SELECT list with the
// rows the store returned. Every row has len(Columns) values.
type RawResult struct {
	Columns []string
	Rows    [][]any
}

type Execution struct {
	Status Status
	Result RawResult
}

type Runner struct {
	engine query.Engine
	schema query.Schema
}

func NewRunner(engine query.Engine, schema query.Schema) *Runner {
	return &Runner{engine: engine, schema: schema}
}

func (r *Runner) Schema() query.Schema {
	return r.schema
}

func (r *Runner) Ping(ctx context.Context) error {
	if r.engine == nil {
		return fmt.Errorf("%w: no engine configured", query.ErrStoreUnavailable)
	}
	return r.engine.Ping(ctx)
}

// Run executes sqlText verbatim. Store failures are returned as-is and match
// query.ErrStoreUnavailable; every other failure is an *ExecutionError.
func (r *Runner) Run(ctx context.Context, sqlText string) (Execution, error) {
	if r.engine == nil {
		return Execution{}, fmt.Errorf("%w: no engine configured", query.ErrStoreUnavailable)
	}
	result, err := r.engine.Execute(ctx, sqlText)
	if err != nil {
		if errors.Is(err, query.ErrStoreUnavailable) {
			observability.ObserveSQLExecution("unavailable", result.Duration)
			return Execution{}, err
		}
		observability.ObserveSQLExecution("error", result.Duration)
		return Execution{}, &ExecutionError{SQL: sqlText, Err: err}
	}
	observability.ObserveSQLExecution("ok", result.Duration)

	if len(result.Rows) == 0 {
		return Execution{Status: StatusNoData}, nil
	}
	columns := query.ExtractColumns(sqlText, r.schema)
	if len(columns) == 0 {
		return Execution{Status: StatusNoValidColumns}, nil
	}
	for i, row := range result.Rows {
		if len(row) != len(columns) {
			return Execution{}, &ExecutionError{
				SQL: sqlText,
				Err: fmt.Errorf("%w: row %d has %d values for %d columns", ErrColumnMismatch, i, len(row), len(columns)),
			}
		}
	}
	if !slices.Contains(columns, query.RowIDColumn) {
		return Execution{}, &ExecutionError{SQL: sqlText, Err: ErrMissingRowID}
	}
	return Execution{
		Status: StatusRows,
		Result: RawResult{Columns: columns, Rows: result.Rows},
	}, nil
}
