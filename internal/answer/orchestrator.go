package answer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/orderlens/orderlens/internal/observability"
	"github.com/orderlens/orderlens/internal/query"
)

// maxAttempts bounds generator invocations per question.
const maxAttempts = 2

// Generator translates a natural-language question into SQL text.
type Generator interface {
	Generate(ctx context.Context, question string) (string, error)
}

type Orchestrator struct {
	generator Generator
	runner    *Runner
	logger    *slog.Logger

	mu sync.Mutex
}

func NewOrchestrator(generator Generator, runner *Runner, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = observability.DiscardLogger()
	}
	return &Orchestrator{generator: generator, runner: runner, logger: logger}
}

// AnswerBatch answers every question in order. The returned slice always has
// len(questions) entries; an error means the whole batch failed and no
// partial results are returned.
func (o *Orchestrator) AnswerBatch(ctx context.Context, questions []string) ([]Outcome, error) {
	if o.generator == nil || o.runner == nil {
		return nil, errors.New("orchestrator is not configured")
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	observability.ObserveBatchSize(len(questions))
	if len(questions) > 0 {
		if err := o.runner.Ping(ctx); err != nil {
			return nil, fmt.Errorf("answer batch: %w", err)
		}
	}

	outcomes := make([]Outcome, 0, len(questions))
	for i, question := range questions {
		outcome, err := o.answer(ctx, question)
		if err != nil {
			return nil, fmt.Errorf("answer batch: question %d: %w", i, err)
		}
		observability.ObserveQuestionOutcome(string(outcome.Kind))
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

func (o *Orchestrator) answer(ctx context.Context, question string) (Outcome, error) {
	if strings.TrimSpace(question) == "" {
		return NullOutcome(), nil
	}
	logger := o.logger.With(slog.String("trace_id", observability.TraceIDFromContext(ctx)))

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			observability.IncrementGenerationRetry()
		}
		sqlText, err := o.generator.Generate(ctx, question)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Outcome{}, fmt.Errorf("generate sql: %w", ctxErr)
			}
			observability.ObserveGenerationAttempt("error")
			logger.WarnContext(ctx, "sql generation failed", slog.Int("attempt", attempt), slog.Any("error", err))
			continue
		}
		if strings.TrimSpace(sqlText) == "" {
			observability.ObserveGenerationAttempt("empty")
			logger.DebugContext(ctx, "generator returned no sql", slog.Int("attempt", attempt))
			return NullOutcome(), nil
		}
		observability.ObserveGenerationAttempt("ok")
		logger.DebugContext(ctx, "generated sql", slog.Int("attempt", attempt), slog.String("sql", sqlText))

		execution, err := o.runner.Run(ctx, sqlText)
		if err != nil {
			if errors.Is(err, query.ErrStoreUnavailable) {
				return Outcome{}, err
			}
			logger.WarnContext(ctx, "generated sql failed", slog.Int("attempt", attempt), slog.Any("error", err))
			continue
		}
		switch execution.Status {
		case StatusNoData:
			return NoDataOutcome(), nil
		case StatusNoValidColumns:
			return NoValidColumnsOutcome(), nil
		}
		records, err := Shape(execution.Result)
		if err != nil {
			logger.WarnContext(ctx, "shape result failed", slog.Int("attempt", attempt), slog.Any("error", err))
			continue
		}
		return RecordsOutcome(records), nil
	}

	logger.WarnContext(ctx, "question fell back to null record", slog.Int("attempts", maxAttempts))
	return NullOutcome(), nil
}
