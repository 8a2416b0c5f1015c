package nl2sql

import (
	"fmt"

	"github.com/orderlens/orderlens/internal/config"
)

func NewTranslator(cfg config.AIConfig, schema SchemaContext) (Translator, error) {
	switch cfg.Provider {
	case config.AIProviderOpenAI, "":
		return NewOpenAITranslator(OpenAIConfig{
			BaseURL:     cfg.BaseURL,
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout,
		}, schema)
	case config.AIProviderAnthropic:
		return NewAnthropicTranslator(AnthropicConfig{
			BaseURL:     cfg.BaseURL,
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout,
		}, schema)
	default:
		return nil, fmt.Errorf("unsupported ai provider %q", cfg.Provider)
	}
}
