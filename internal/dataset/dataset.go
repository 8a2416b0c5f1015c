// Package dataset turns the raw orders CSV into the products table: it
// selects and renames columns, numbers rows, and writes the result to the
// store, to disk and to the object store.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/orderlens/orderlens/internal/query"
)

var ErrMissingColumn = errors.New("selected column not in dataset")

type Options struct {
	Delimiter rune
	// SelectedColumns are kept in the given order. Empty keeps every column.
	SelectedColumns []string
}

// Dataset is a rectangular table of string cells. An empty cell is a
// missing value.
type Dataset struct {
	Columns []string
	Rows    [][]string
}

func LoadFile(path string, opts Options) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %q: %w", path, err)
	}
	defer func() { _ = file.Close() }()
	return Load(file, opts)
}

func Load(r io.Reader, opts Options) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.Comma = opts.Delimiter
	if reader.Comma == 0 {
		reader.Comma = ';'
	}
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("dataset is empty")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	selected := opts.SelectedColumns
	if len(selected) == 0 {
		selected = header
	}
	positions := make([]int, 0, len(selected))
	for _, column := range selected {
		idx := indexOf(header, column)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, column)
		}
		positions = append(positions, idx)
	}

	ds := &Dataset{Columns: append([]string(nil), selected...)}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		row := make([]string, len(positions))
		for i, pos := range positions {
			if pos < len(record) {
				row[i] = strings.TrimSpace(record[pos])
			}
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}

// Preprocess snake_cases the headers and prepends a row_id column numbered
// from 1. The receiver is not modified.
func (d *Dataset) Preprocess() *Dataset {
	columns := make([]string, 0, len(d.Columns)+1)
	columns = append(columns, query.RowIDColumn)
	for _, column := range d.Columns {
		columns = append(columns, SnakeCase(column))
	}
	rows := make([][]string, 0, len(d.Rows))
	for i, row := range d.Rows {
		processed := make([]string, 0, len(row)+1)
		processed = append(processed, strconv.Itoa(i+1))
		processed = append(processed, row...)
		rows = append(rows, processed)
	}
	return &Dataset{Columns: columns, Rows: rows}
}

func SnakeCase(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
}

// WriteCSV writes the dataset comma separated with a header line.
func (d *Dataset) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(d.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := writer.WriteAll(d.Rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

func (d *Dataset) WriteCSVFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %q: %w", path, err)
	}
	if err := d.WriteCSV(file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// Schema describes the processed dataset as a query schema.
func (d *Dataset) Schema(table string) (query.Schema, error) {
	return query.NewSchema(table, d.Columns)
}

func indexOf(values []string, target string) int {
	for i, value := range values {
		if value == target {
			return i
		}
	}
	return -1
}
