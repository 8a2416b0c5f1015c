package nl2sql

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
)

const DefaultAnthropicModel = "claude-3-5-haiku-latest"

type AnthropicConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

type AnthropicTranslator struct {
	client      *anthropic.Client
	model       string
	temperature float32
	maxTokens   int
	schema      SchemaContext
}

func NewAnthropicTranslator(cfg AnthropicConfig, schema SchemaContext) (*AnthropicTranslator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultAnthropicModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 512
	}

	options := []anthropic.ClientOption{anthropic.WithHTTPClient(&http.Client{Timeout: timeout})}
	if baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); baseURL != "" {
		options = append(options, anthropic.WithBaseURL(baseURL))
	}
	return &AnthropicTranslator{
		client:      anthropic.NewClient(strings.TrimSpace(cfg.APIKey), options...),
		model:       model,
		temperature: float32(cfg.Temperature),
		maxTokens:   maxTokens,
		schema:      schema,
	}, nil
}

func (t *AnthropicTranslator) Translate(ctx context.Context, question string) (Result, error) {
	prompt := BuildPrompt(t.schema, question)
	temperature := t.temperature
	resp, err := t.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(t.model),
		MaxTokens:   t.maxTokens,
		System:      SystemPrompt,
		Temperature: &temperature,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
				{Type: "text", Text: &prompt},
			}},
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("create message: %w", err)
	}
	return Result{
		SQL:      stripMarkdownSQL(responseText(resp)),
		Provider: "anthropic",
		Model:    t.model,
	}, nil
}

func responseText(resp anthropic.MessagesResponse) string {
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			return *block.Text
		}
	}
	return ""
}
