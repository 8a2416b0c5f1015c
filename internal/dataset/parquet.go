package dataset

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/parquet-go/parquet-go"
)

type ParquetEncodeResult struct {
	Data        []byte
	RecordCount int64
}

type productRow struct {
	RowID           int64   `parquet:"row_id"`
	OrderID         *int64  `parquet:"order_id,optional"`
	OrderDate       *string `parquet:"order_date,optional"`
	ProductCategory *string `parquet:"product_category,optional"`
	CustomerName    *string `parquet:"customer_name,optional"`
}

var productColumns = []string{"row_id", "order_id", "order_date", "product_category", "customer_name"}

// EncodeParquet encodes a processed products dataset.
func (d *Dataset) EncodeParquet() (ParquetEncodeResult, error) {
	positions := make([]int, len(productColumns))
	for i, column := range productColumns {
		positions[i] = indexOf(d.Columns, column)
		if positions[i] < 0 {
			return ParquetEncodeResult{}, fmt.Errorf("%w: %q", ErrMissingColumn, column)
		}
	}

	rows := make([]productRow, 0, len(d.Rows))
	for i, record := range d.Rows {
		rowID, err := strconv.ParseInt(record[positions[0]], 10, 64)
		if err != nil {
			return ParquetEncodeResult{}, fmt.Errorf("row %d: invalid row_id %q: %w", i, record[positions[0]], err)
		}
		row := productRow{
			RowID:           rowID,
			OrderDate:       optionalString(record[positions[2]]),
			ProductCategory: optionalString(record[positions[3]]),
			CustomerName:    optionalString(record[positions[4]]),
		}
		if raw := record[positions[1]]; raw != "" {
			orderID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return ParquetEncodeResult{}, fmt.Errorf("row %d: invalid order_id %q: %w", i, raw, err)
			}
			row.OrderID = &orderID
		}
		rows = append(rows, row)
	}

	buf := bytes.NewBuffer(nil)
	writer := parquet.NewGenericWriter[productRow](buf)
	if _, err := writer.Write(rows); err != nil {
		return ParquetEncodeResult{}, fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return ParquetEncodeResult{}, fmt.Errorf("close parquet writer: %w", err)
	}
	return ParquetEncodeResult{Data: buf.Bytes(), RecordCount: int64(len(rows))}, nil
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
