package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/orderlens/orderlens/internal/store"
)

var integerColumns = map[string]bool{"row_id": true, "order_id": true}

// Loader writes processed datasets into the products table.
type Loader struct {
	db      *sql.DB
	dialect store.Dialect
	table   string
}

func NewLoader(db *sql.DB, dialect store.Dialect, table string) *Loader {
	return &Loader{db: db, dialect: dialect, table: table}
}

// Count returns the number of rows currently in the table.
func (l *Loader) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+l.dialect.QuoteIdent(l.table)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count %s rows: %w", l.table, err)
	}
	return count, nil
}

// Replace swaps the table contents for ds in one transaction.
func (l *Loader) Replace(ctx context.Context, ds *Dataset) (int, error) {
	if len(ds.Columns) == 0 {
		return 0, fmt.Errorf("dataset has no columns")
	}
	quotedColumns := make([]string, 0, len(ds.Columns))
	placeholders := make([]string, 0, len(ds.Columns))
	for i, column := range ds.Columns {
		quotedColumns = append(quotedColumns, l.dialect.QuoteIdent(column))
		placeholders = append(placeholders, l.dialect.Placeholder(i+1))
	}
	table := l.dialect.QuoteIdent(l.table)
	insert := `INSERT INTO ` + table + ` (` + strings.Join(quotedColumns, ", ") + `) VALUES (` + strings.Join(placeholders, ", ") + `)`

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
		return 0, fmt.Errorf("clear %s: %w", l.table, err)
	}
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, row := range ds.Rows {
		args, err := l.rowArgs(ds.Columns, row)
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", i+1, err)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit load: %w", err)
	}
	return len(ds.Rows), nil
}

func (l *Loader) rowArgs(columns, row []string) ([]any, error) {
	if len(row) != len(columns) {
		return nil, fmt.Errorf("has %d values for %d columns", len(row), len(columns))
	}
	args := make([]any, len(row))
	for i, cell := range row {
		switch {
		case cell == "":
			args[i] = nil
		case integerColumns[columns[i]]:
			value, err := strconv.ParseInt(cell, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid %s %q: %w", columns[i], cell, err)
			}
			args[i] = value
		default:
			args[i] = cell
		}
	}
	return args, nil
}
