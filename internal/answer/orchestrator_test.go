package answer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/orderlens/orderlens/internal/query"
)

func newTestOrchestrator(engine *fakeEngine, generator Generator) *Orchestrator {
	return NewOrchestrator(generator, NewRunner(engine, query.ProductsSchema()), nil)
}

func annEngine() *fakeEngine {
	return &fakeEngine{results: map[string]query.Result{
		annSQL: {Rows: [][]any{{int64(1), "Ann"}, {int64(3), "Ann"}}},
	}}
}

func TestAnswerBatchShapesRecords(t *testing.T) {
	generator := newScriptedGenerator(map[string][]generation{
		"Who is Ann?": {{sql: annSQL}},
	})
	outcomes, err := newTestOrchestrator(annEngine(), generator).AnswerBatch(context.Background(), []string{"Who is Ann?"})
	if err != nil {
		t.Fatalf("AnswerBatch() error = %v", err)
	}
	raw, err := json.Marshal(outcomes)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `[[{"column_name":"customer_name","value":["Ann"],"row_ids":[1,3]}]]`
	if string(raw) != want {
		t.Fatalf("outcomes = %s, want %s", raw, want)
	}
}

func TestAnswerBatchEmptyQuestionSkipsGenerator(t *testing.T) {
	generator := newScriptedGenerator(nil)
	engine := annEngine()
	outcomes, err := newTestOrchestrator(engine, generator).AnswerBatch(context.Background(), []string{"", "   "})
	if err != nil {
		t.Fatalf("AnswerBatch() error = %v", err)
	}
	for i, outcome := range outcomes {
		if outcome.Kind != OutcomeNull {
			t.Fatalf("outcome[%d] = %v, want null", i, outcome.Kind)
		}
	}
	if generator.total() != 0 {
		t.Fatalf("generator calls = %d, want 0", generator.total())
	}
	if len(engine.calls) != 0 {
		t.Fatalf("engine calls = %d, want 0", len(engine.calls))
	}
}

func TestAnswerBatchEmptyGeneratedSQLIsNull(t *testing.T) {
	generator := newScriptedGenerator(map[string][]generation{"hello": {{sql: "  "}}})
	outcomes, err := newTestOrchestrator(annEngine(), generator).AnswerBatch(context.Background(), []string{"hello"})
	if err != nil {
		t.Fatalf("AnswerBatch() error = %v", err)
	}
	if outcomes[0].Kind != OutcomeNull {
		t.Fatalf("outcome = %v, want null", outcomes[0].Kind)
	}
	if generator.calls["hello"] != 1 {
		t.Fatalf("generator calls = %d, want 1", generator.calls["hello"])
	}
}

func TestAnswerBatchRetriesOnceWithSameQuestion(t *testing.T) {
	generator := newScriptedGenerator(map[string][]generation{
		"Who is Ann?": {{sql: "SELEC broken"}, {sql: annSQL}},
	})
	outcomes, err := newTestOrchestrator(annEngine(), generator).AnswerBatch(context.Background(), []string{"Who is Ann?"})
	if err != nil {
		t.Fatalf("AnswerBatch() error = %v", err)
	}
	if outcomes[0].Kind != OutcomeRecords || len(outcomes[0].Records) != 1 {
		t.Fatalf("outcome = %#v", outcomes[0])
	}
	if generator.calls["Who is Ann?"] != 2 {
		t.Fatalf("generator calls = %d, want 2", generator.calls["Who is Ann?"])
	}
}

func TestAnswerBatchBoundedRetry(t *testing.T) {
	generator := newScriptedGenerator(map[string][]generation{
		"q": {{sql: "SELEC one"}, {sql: "SELEC two"}, {sql: annSQL}},
	})
	outcomes, err := newTestOrchestrator(annEngine(), generator).AnswerBatch(context.Background(), []string{"q"})
	if err != nil {
		t.Fatalf("AnswerBatch() error = %v", err)
	}
	if outcomes[0].Kind != OutcomeNull {
		t.Fatalf("outcome = %v, want null", outcomes[0].Kind)
	}
	if generator.calls["q"] != 2 {
		t.Fatalf("generator calls = %d, want exactly 2", generator.calls["q"])
	}
}

func TestAnswerBatchGeneratorErrorsAreRetried(t *testing.T) {
	generator := newScriptedGenerator(map[string][]generation{
		"q": {{err: errors.New("rate limited")}, {sql: annSQL}},
	})
	outcomes, err := newTestOrchestrator(annEngine(), generator).AnswerBatch(context.Background(), []string{"q"})
	if err != nil {
		t.Fatalf("AnswerBatch() error = %v", err)
	}
	if outcomes[0].Kind != OutcomeRecords {
		t.Fatalf("outcome = %v, want records", outcomes[0].Kind)
	}
}

func TestAnswerBatchIsolatesFailures(t *testing.T) {
	noDataSQL := "SELECT row_id, order_id FROM products WHERE order_id = 'none'"
	engine := annEngine()
	engine.results[noDataSQL] = query.Result{}
	generator := newScriptedGenerator(map[string][]generation{
		"good":    {{sql: annSQL}},
		"bad":     {{sql: "SELEC x"}, {sql: "SELEC y"}},
		"nothing": {{sql: noDataSQL}},
	})
	outcomes, err := newTestOrchestrator(engine, generator).AnswerBatch(context.Background(), []string{"good", "bad", "nothing"})
	if err != nil {
		t.Fatalf("AnswerBatch() error = %v", err)
	}
	if len(outcomes) != 3 {
		t.Fatalf("len(outcomes) = %d, want 3", len(outcomes))
	}
	want := []OutcomeKind{OutcomeRecords, OutcomeNull, OutcomeNoData}
	for i := range want {
		if outcomes[i].Kind != want[i] {
			t.Fatalf("outcome[%d] = %v, want %v", i, outcomes[i].Kind, want[i])
		}
	}
}

func TestAnswerBatchAllNullStillReturnsFullList(t *testing.T) {
	generator := newScriptedGenerator(nil)
	outcomes, err := newTestOrchestrator(annEngine(), generator).AnswerBatch(context.Background(), []string{"a", "b", "c", "d"})
	if err != nil {
		t.Fatalf("AnswerBatch() error = %v", err)
	}
	if len(outcomes) != 4 {
		t.Fatalf("len(outcomes) = %d, want 4", len(outcomes))
	}
	for i, outcome := range outcomes {
		if outcome.Kind != OutcomeNull {
			t.Fatalf("outcome[%d] = %v, want null", i, outcome.Kind)
		}
	}
}

func TestAnswerBatchNoDataIsNotNull(t *testing.T) {
	sqlText := "SELECT row_id, customer_name FROM products WHERE customer_name = 'Zed'"
	engine := &fakeEngine{results: map[string]query.Result{sqlText: {}}}
	generator := newScriptedGenerator(map[string][]generation{"Zed?": {{sql: sqlText}}})
	outcomes, err := newTestOrchestrator(engine, generator).AnswerBatch(context.Background(), []string{"Zed?"})
	if err != nil {
		t.Fatalf("AnswerBatch() error = %v", err)
	}
	raw, _ := json.Marshal(outcomes[0])
	if string(raw) != `{"message":"No data found for the query"}` {
		t.Fatalf("outcome = %s", raw)
	}
	if generator.calls["Zed?"] != 1 {
		t.Fatalf("no-data must not retry, calls = %d", generator.calls["Zed?"])
	}
}

func TestAnswerBatchStoreUnavailableAbortsBatch(t *testing.T) {
	engine := &fakeEngine{pingErr: fmt.Errorf("%w: closed", query.ErrStoreUnavailable)}
	generator := newScriptedGenerator(map[string][]generation{"q": {{sql: annSQL}}})
	outcomes, err := newTestOrchestrator(engine, generator).AnswerBatch(context.Background(), []string{"q"})
	if !errors.Is(err, query.ErrStoreUnavailable) {
		t.Fatalf("AnswerBatch() error = %v, want ErrStoreUnavailable", err)
	}
	if outcomes != nil {
		t.Fatalf("outcomes = %#v, want nil", outcomes)
	}

	engine = &fakeEngine{errs: map[string]error{annSQL: fmt.Errorf("%w: bad conn", query.ErrStoreUnavailable)}}
	_, err = newTestOrchestrator(engine, generator).AnswerBatch(context.Background(), []string{"q"})
	if !errors.Is(err, query.ErrStoreUnavailable) {
		t.Fatalf("AnswerBatch() error = %v, want ErrStoreUnavailable mid-batch", err)
	}
}

func TestAnswerBatchCancelledContextFailsBatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	generator := newScriptedGenerator(map[string][]generation{"q": {{err: context.Canceled}}})
	_, err := newTestOrchestrator(annEngine(), generator).AnswerBatch(ctx, []string{"q"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("AnswerBatch() error = %v, want context.Canceled", err)
	}
}

func TestAnswerBatchEmptyBatch(t *testing.T) {
	outcomes, err := newTestOrchestrator(annEngine(), newScriptedGenerator(nil)).AnswerBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("AnswerBatch() error = %v", err)
	}
	if outcomes == nil || len(outcomes) != 0 {
		t.Fatalf("outcomes = %#v, want empty", outcomes)
	}
}
