package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/ats-checker/internal/services"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("LLM_TIMEOUT", "")
	t.Setenv("MAX_FILE_SIZE", "")

	cfg := Load()

	assert.Equal(t, services.ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, services.DefaultMaxTokens, cfg.LLM.MaxTokens)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, services.DefaultMaxDocumentSize, cfg.Storage.MaxFileSize)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("LLM_TEMPERATURE", "0.2")
	t.Setenv("LLM_TIMEOUT", "15s")
	t.Setenv("LLM_RATE_LIMIT_RPS", "2.5")
	t.Setenv("MAX_FILE_SIZE", "1024")
	t.Setenv("WORKER_POLL_INTERVAL", "not-a-duration")

	cfg := Load()

	assert.Equal(t, services.ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, 0.2, cfg.LLM.Temperature)
	assert.Equal(t, 15*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 2.5, cfg.LLM.RateLimitRPS)
	assert.Equal(t, int64(1024), cfg.Storage.MaxFileSize)
	assert.Equal(t, 30*time.Second, cfg.Worker.PollInterval)
}

func TestModelConfig_Gemini(t *testing.T) {
	cfg := &Config{
		LLM:    LLMConfig{Provider: services.ProviderGemini, APIKey: "openai-key", MaxTokens: 512},
		Gemini: GeminiConfig{APIKey: "gemini-key", Model: "gemini-2.5-pro"},
	}

	modelCfg := cfg.ModelConfig()

	assert.Equal(t, "gemini-key", modelCfg.APIKey)
	assert.Equal(t, "gemini-2.5-pro", modelCfg.Model)
	assert.Equal(t, 512, modelCfg.MaxTokens)
}

func TestModelConfig_ExplicitModelWins(t *testing.T) {
	cfg := &Config{
		LLM:    LLMConfig{Provider: services.ProviderGemini, Model: "gemini-custom"},
		Gemini: GeminiConfig{Model: "gemini-2.5-flash"},
	}

	assert.Equal(t, "gemini-custom", cfg.ModelConfig().Model)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			LLM:     LLMConfig{Provider: services.ProviderOpenAI, APIKey: "sk-test"},
			Storage: StorageConfig{MaxFileSize: 1024},
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "openai without key", mutate: func(c *Config) { c.LLM.APIKey = "" }},
		{name: "gemini without key", mutate: func(c *Config) { c.LLM.Provider = services.ProviderGemini }},
		{name: "unknown provider", mutate: func(c *Config) { c.LLM.Provider = "llama" }},
		{name: "zero file size", mutate: func(c *Config) { c.Storage.MaxFileSize = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestIndexEnabled(t *testing.T) {
	cfg := &Config{
		Index:  IndexConfig{Enabled: true},
		Gemini: GeminiConfig{APIKey: "key"},
		Qdrant: QdrantConfig{URL: "http://localhost:6334"},
	}
	assert.True(t, cfg.IndexEnabled())

	cfg.Gemini.APIKey = ""
	assert.False(t, cfg.IndexEnabled())

	cfg.Gemini.APIKey = "key"
	cfg.Index.Enabled = false
	assert.False(t, cfg.IndexEnabled())
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "ats"}}

	assert.Equal(t, "host=db port=5432 user=u password=p dbname=ats sslmode=disable", cfg.GetDatabaseDSN())
}
