package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	DefaultOpenAIEndpoint = "https://api.openai.com/v1/chat/completions"
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultGeminiModel    = "gemini-2.5-flash"
	DefaultEmbedModel     = "text-embedding-004"
	DefaultMaxTokens      = 2000
	DefaultTemperature    = 0.7
	DefaultModelTimeout   = 60 * time.Second
)

// ModelConfig is the immutable configuration of a model client.
type ModelConfig struct {
	Provider    string
	Endpoint    string
	Model       string
	APIKey      string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

func (c ModelConfig) withDefaults() ModelConfig {
	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	if c.Model == "" {
		if c.Provider == ProviderGemini {
			c.Model = DefaultGeminiModel
		} else {
			c.Model = DefaultOpenAIModel
		}
	}
	if c.Endpoint == "" && c.Provider == ProviderOpenAI {
		c.Endpoint = DefaultOpenAIEndpoint
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Temperature <= 0 {
		c.Temperature = DefaultTemperature
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultModelTimeout
	}
	return c
}

// ModelClient returns the raw textual answer of the remote model for one prompt.
// Implementations never substitute a default answer: a missing answer is a *ModelCallError.
type ModelClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// NewModelClient builds the client for cfg.Provider.
func NewModelClient(ctx context.Context, cfg ModelConfig, log *zap.Logger) (ModelClient, error) {
	cfg = cfg.withDefaults()

	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(cfg, nil, log)
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unsupported model provider: %q", cfg.Provider)
	}
}
