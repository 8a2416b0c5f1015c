package nl2sql

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/orderlens/orderlens/internal/query"
)

func TestOpenAITranslatorSendsPromptAndStripsFences(t *testing.T) {
	var captured struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"m","choices":[{"index":0,"message":{"role":"assistant","content":"` + "```sql\\nSELECT row_id FROM products\\n```" + `"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	translator, err := NewOpenAITranslator(OpenAIConfig{
		BaseURL: server.URL + "/v1/",
		APIKey:  "test-key",
		Model:   "test-model",
	}, DefaultSchemaContext(query.ProductsSchema()))
	if err != nil {
		t.Fatalf("NewOpenAITranslator() error = %v", err)
	}
	result, err := translator.Translate(context.Background(), "all rows")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if result.SQL != "SELECT row_id FROM products" {
		t.Fatalf("SQL = %q", result.SQL)
	}
	if result.Provider != "openai-compatible" || result.Model != "test-model" {
		t.Fatalf("result = %#v", result)
	}
	if captured.Model != "test-model" {
		t.Fatalf("request model = %q", captured.Model)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Content != SystemPrompt {
		t.Fatalf("messages = %#v", captured.Messages)
	}
	if !strings.Contains(captured.Messages[1].Content, "`all rows`") {
		t.Fatalf("user prompt missing question: %s", captured.Messages[1].Content)
	}
}

func TestOpenAITranslatorReportsUpstreamErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit"}}`))
	}))
	defer server.Close()

	translator, err := NewOpenAITranslator(OpenAIConfig{BaseURL: server.URL, APIKey: "k"}, SchemaContext{TableName: "products"})
	if err != nil {
		t.Fatalf("NewOpenAITranslator() error = %v", err)
	}
	if _, err := translator.Translate(context.Background(), "q"); err == nil {
		t.Fatal("expected error for 429 response")
	}
}

func TestNewOpenAITranslatorRequiresKey(t *testing.T) {
	if _, err := NewOpenAITranslator(OpenAIConfig{}, SchemaContext{}); err == nil {
		t.Fatal("expected error without api key")
	}
}
