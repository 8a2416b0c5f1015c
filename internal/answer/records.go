// Package answer turns generated SQL into column-grouped answers and drives
// the bounded generate-and-execute retry for each question of a batch.
package answer

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	MessageNoData         = "No data found for the query"
	MessageNoValidColumns = "No valid columns found in the query"
)

var (
	ErrColumnMismatch = errors.New("row width does not match extracted columns")
	ErrMissingRowID   = errors.New("row_id column not selected")
)

// Record groups one output column: its distinct values and the id of every
// row that contributed to it. A zero Record encodes as the null record.
type Record struct {
	ColumnName *string `json:"column_name"`
	Value      []any   `json:"value"`
	RowIDs     []any   `json:"row_ids"`
}

func NullRecord() Record {
	return Record{}
}

func (r Record) IsNull() bool {
	return r.ColumnName == nil && r.Value == nil && r.RowIDs == nil
}

type OutcomeKind string

const (
	OutcomeRecords        OutcomeKind = "records"
	OutcomeNoData         OutcomeKind = "no_data"
	OutcomeNoValidColumns OutcomeKind = "no_valid_columns"
	OutcomeNull           OutcomeKind = "null"
)

// Outcome is the answer to one question. It encodes as a record list, a
// {"message": ...} object or a singleton list holding the null record.
type Outcome struct {
	Kind    OutcomeKind
	Records []Record
	Message string
}

func RecordsOutcome(records []Record) Outcome {
	if records == nil {
		records = []Record{}
	}
	return Outcome{Kind: OutcomeRecords, Records: records}
}

func NullOutcome() Outcome {
	return Outcome{Kind: OutcomeNull, Records: []Record{NullRecord()}}
}

func NoDataOutcome() Outcome {
	return Outcome{Kind: OutcomeNoData, Message: MessageNoData}
}

func NoValidColumnsOutcome() Outcome {
	return Outcome{Kind: OutcomeNoValidColumns, Message: MessageNoValidColumns}
}

type messageBody struct {
	Message string `json:"message"`
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	switch o.Kind {
	case OutcomeNoData, OutcomeNoValidColumns:
		return json.Marshal(messageBody{Message: o.Message})
	case OutcomeNull:
		return json.Marshal([]Record{NullRecord()})
	case OutcomeRecords, "":
		records := o.Records
		if records == nil {
			records = []Record{}
		}
		return json.Marshal(records)
	default:
		return nil, fmt.Errorf("unknown outcome kind %q", o.Kind)
	}
}

func (o *Outcome) UnmarshalJSON(data []byte) error {
	var message messageBody
	if err := json.Unmarshal(data, &message); err == nil {
		switch message.Message {
		case MessageNoData:
			*o = NoDataOutcome()
		case MessageNoValidColumns:
			*o = NoValidColumnsOutcome()
		default:
			return fmt.Errorf("unknown diagnostic message %q", message.Message)
		}
		return nil
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("decode outcome: %w", err)
	}
	if len(records) == 1 && records[0].IsNull() {
		*o = NullOutcome()
		return nil
	}
	*o = RecordsOutcome(records)
	return nil
}

// ExecutionError reports generated SQL that the store rejected or whose
// result could not be shaped.
type ExecutionError struct {
	SQL string
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execute generated sql: %v", e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
