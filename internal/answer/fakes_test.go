package answer

import (
	"context"
	"errors"
	"strings"

	"github.com/orderlens/orderlens/internal/query"
)

type fakeEngine struct {
	results map[string]query.Result
	errs    map[string]error
	pingErr error
	calls   []string
}

func (f *fakeEngine) Execute(_ context.Context, sqlText string) (query.Result, error) {
	f.calls = append(f.calls, sqlText)
	if err, ok := f.errs[sqlText]; ok {
		return query.Result{}, err
	}
	if result, ok := f.results[sqlText]; ok {
		return result, nil
	}
	return query.Result{}, errors.New("no such table")
}

func (f *fakeEngine) Ping(context.Context) error {
	return f.pingErr
}

type generation struct {
	sql string
	err error
}

// scriptedGenerator replays a fixed sequence of generations per question.
type scriptedGenerator struct {
	scripts map[string][]generation
	calls   map[string]int
}

func newScriptedGenerator(scripts map[string][]generation) *scriptedGenerator {
	return &scriptedGenerator{scripts: scripts, calls: map[string]int{}}
}

func (g *scriptedGenerator) Generate(_ context.Context, question string) (string, error) {
	n := g.calls[question]
	g.calls[question] = n + 1
	script := g.scripts[question]
	if n >= len(script) {
		return "", errors.New("script exhausted: " + strings.TrimSpace(question))
	}
	return script[n].sql, script[n].err
}

func (g *scriptedGenerator) total() int {
	total := 0
	for _, n := range g.calls {
		total += n
	}
	return total
}
