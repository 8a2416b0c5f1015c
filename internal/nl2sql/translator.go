package nl2sql

import (
	"context"
	"strings"
	"time"
)

type ColumnContext struct {
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Samples []string `json:"samples"`
}

// SchemaContext is the table description embedded in every prompt.
type SchemaContext struct {
	TableName string          `json:"table_name"`
	Columns   []ColumnContext `json:"columns"`
}

type Result struct {
	SQL      string `json:"sql"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// Translator turns one question into SQL. An empty Result.SQL with a nil
// error means the model declined to produce a query.
type Translator interface {
	Translate(ctx context.Context, question string) (Result, error)
}

// Generator adapts a Translator to the single-string contract used by the
// answer pipeline and bounds every call with a timeout.
type Generator struct {
	translator Translator
	timeout    time.Duration
}

func NewGenerator(translator Translator, timeout time.Duration) *Generator {
	return &Generator{translator: translator, timeout: timeout}
}

func (g *Generator) Generate(ctx context.Context, question string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	result, err := g.translator.Translate(ctx, question)
	if err != nil {
		return "", err
	}
	return result.SQL, nil
}

func stripMarkdownSQL(value string) string {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```sql")
		trimmed = strings.TrimPrefix(trimmed, "```SQL")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		trimmed = strings.TrimSpace(trimmed)
	}
	if len(trimmed) >= 2 && trimmed[0] == '"' && trimmed[len(trimmed)-1] == '"' {
		trimmed = strings.TrimSpace(trimmed[1 : len(trimmed)-1])
	}
	return trimmed
}
