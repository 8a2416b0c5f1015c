package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"time"
)

// Questions are the sample questions the demo asker draws from.
var Questions = []string{
	"Show me all orders for Apparel",
	"Which customers bought Electronics?",
	"List the order dates of orders placed by ElecHouse",
	"Which product categories did MobileMax order?",
	"Show orders that are not Apparel or Groceries",
	"What did customers buy on 2023-07-01?",
	"Which customers ordered clothes?",
}

// Asker periodically posts batches of sample questions to the query API.
type Asker struct {
	cfg  Config
	log  *slog.Logger
	http *http.Client
	rnd  *rand.Rand
}

type askRequest struct {
	Queries []string `json:"queries"`
}

type askResponse struct {
	Results []json.RawMessage `json:"results"`
}

func NewAsker(cfg Config, logger *slog.Logger, client *http.Client) (*Asker, error) {
	if strings.TrimSpace(cfg.APIBaseURL) == "" {
		return nil, fmt.Errorf("api base url is required")
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be > 0")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	return &Asker{
		cfg:  cfg,
		log:  logger,
		http: client,
		rnd:  rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

func (a *Asker) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.cfg.Interval)
	defer ticker.Stop()

	for {
		if err := a.askOnce(ctx); err != nil {
			a.log.Error("failed to ask demo questions", slog.Any("error", err))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (a *Asker) nextBatch() []string {
	batch := make([]string, 0, a.cfg.BatchSize)
	for i := 0; i < a.cfg.BatchSize; i++ {
		batch = append(batch, Questions[a.rnd.Intn(len(Questions))])
	}
	return batch
}

func (a *Asker) askOnce(ctx context.Context) error {
	request := askRequest{Queries: a.nextBatch()}
	raw, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.APIBaseURL+"/v1/query", bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("query request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("query request status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var response askResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(response.Results) != len(request.Queries) {
		return fmt.Errorf("got %d results for %d questions", len(response.Results), len(request.Queries))
	}

	for i, result := range response.Results {
		a.log.Info(
			"answered demo question",
			slog.String("question", request.Queries[i]),
			slog.String("result", string(result)),
		)
	}
	return nil
}
