package answer

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"time"

	"github.com/orderlens/orderlens/internal/query"
)

// Shape converts a row-oriented result into one record per selected column
// other than row_id, in column order. row_ids keeps every row's id in row
// order; value keeps distinct values in first-seen order. Non-finite floats
// are reported as nil.
func Shape(raw RawResult) ([]Record, error) {
	idIndex := slices.Index(raw.Columns, query.RowIDColumn)
	if idIndex < 0 {
		return nil, ErrMissingRowID
	}
	for i, row := range raw.Rows {
		if len(row) != len(raw.Columns) {
			return nil, fmt.Errorf("%w: row %d has %d values for %d columns", ErrColumnMismatch, i, len(row), len(raw.Columns))
		}
	}

	records := make([]Record, 0, len(raw.Columns)-1)
	for col, name := range raw.Columns {
		if col == idIndex {
			continue
		}
		rowIDs := make([]any, 0, len(raw.Rows))
		values := make([]any, 0, len(raw.Rows))
		seen := make(map[any]struct{}, len(raw.Rows))
		for _, row := range raw.Rows {
			rowIDs = append(rowIDs, finiteValue(row[idIndex]))
			value := finiteValue(row[col])
			key := distinctKey(value)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			values = append(values, value)
		}
		columnName := name
		records = append(records, Record{
			ColumnName: &columnName,
			Value:      values,
			RowIDs:     rowIDs,
		})
	}
	return records, nil
}

func finiteValue(value any) any {
	switch typed := value.(type) {
	case float64:
		if math.IsNaN(typed) || math.IsInf(typed, 0) {
			return nil
		}
	case float32:
		if math.IsNaN(float64(typed)) || math.IsInf(float64(typed), 0) {
			return nil
		}
	}
	return value
}

type renderedKey struct {
	typ  string
	repr string
}

func distinctKey(value any) any {
	switch typed := value.(type) {
	case nil:
		return nil
	case time.Time:
		return renderedKey{typ: "time", repr: typed.UTC().Format(time.RFC3339Nano)}
	case string, bool, int64, float64:
		return typed
	}
	kind := reflect.TypeOf(value).Kind()
	switch kind {
	case reflect.Slice, reflect.Map, reflect.Func, reflect.Struct, reflect.Array, reflect.Interface, reflect.Pointer:
		return renderedKey{typ: fmt.Sprintf("%T", value), repr: fmt.Sprintf("%#v", value)}
	}
	return value
}
