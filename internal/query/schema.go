package query

import (
	"fmt"
	"strings"
)

const RowIDColumn = "row_id"

// Schema describes the single table questions are answered from. It is
// immutable after construction.
type Schema struct {
	table   string
	columns []string
	index   map[string]int
}

// ProductsSchema is the fixed orders table loaded from the source dataset.
func ProductsSchema() Schema {
	schema, err := NewSchema("products", []string{RowIDColumn, "order_id", "order_date", "product_category", "customer_name"})
	if err != nil {
		panic(err)
	}
	return schema
}

func NewSchema(table string, columns []string) (Schema, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return Schema{}, fmt.Errorf("table name is required")
	}
	index := make(map[string]int, len(columns))
	ordered := make([]string, 0, len(columns))
	for _, column := range columns {
		column = strings.TrimSpace(column)
		if column == "" {
			return Schema{}, fmt.Errorf("empty column name in schema for %q", table)
		}
		if _, exists := index[column]; exists {
			return Schema{}, fmt.Errorf("duplicate column %q in schema for %q", column, table)
		}
		index[column] = len(ordered)
		ordered = append(ordered, column)
	}
	if _, ok := index[RowIDColumn]; !ok {
		return Schema{}, fmt.Errorf("schema for %q must contain %q", table, RowIDColumn)
	}
	return Schema{table: table, columns: ordered, index: index}, nil
}

func (s Schema) Table() string {
	return s.table
}

// Columns returns a copy of the ordered column names.
func (s Schema) Columns() []string {
	return append([]string(nil), s.columns...)
}

func (s Schema) Has(column string) bool {
	_, ok := s.index[column]
	return ok
}
