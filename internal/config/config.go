package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"alfredoptarigan/ats-checker/internal/services"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	LLM      LLMConfig
	Gemini   GeminiConfig
	Qdrant   QdrantConfig
	Storage  StorageConfig
	Worker   WorkerConfig
	Index    IndexConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// LLMConfig selects and tunes the completion backend used for analysis.
type LLMConfig struct {
	Provider       string
	Endpoint       string
	Model          string
	APIKey         string
	MaxTokens      int
	Temperature    float64
	Timeout        time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
}

type GeminiConfig struct {
	APIKey     string
	Model      string
	EmbedModel string
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	VectorSize uint64
}

type StorageConfig struct {
	UploadPath     string
	ArchiveUploads bool
	MaxFileSize    int64
}

type WorkerConfig struct {
	Concurrency  int
	PollInterval time.Duration
}

type IndexConfig struct {
	Enabled bool
}

type LogConfig struct {
	JSON  bool
	Debug bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "ats_checker"),
		},
		LLM: LLMConfig{
			Provider:       strings.ToLower(getEnv("LLM_PROVIDER", services.ProviderOpenAI)),
			Endpoint:       getEnv("LLM_ENDPOINT", ""),
			Model:          getEnv("LLM_MODEL", ""),
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			MaxTokens:      getEnvAsInt("LLM_MAX_TOKENS", services.DefaultMaxTokens),
			Temperature:    getEnvAsFloat("LLM_TEMPERATURE", services.DefaultTemperature),
			Timeout:        getEnvAsDuration("LLM_TIMEOUT", "60s"),
			RateLimitRPS:   getEnvAsFloat("LLM_RATE_LIMIT_RPS", 0),
			RateLimitBurst: getEnvAsInt("LLM_RATE_LIMIT_BURST", 1),
		},
		Gemini: GeminiConfig{
			APIKey:     getEnv("GEMINI_API_KEY", ""),
			Model:      getEnv("GEMINI_MODEL", services.DefaultGeminiModel),
			EmbedModel: getEnv("GEMINI_EMBED_MODEL", services.DefaultEmbedModel),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", "http://localhost:6334"),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "ats_job_descriptions"),
			VectorSize: uint64(getEnvAsInt64("QDRANT_VECTOR_SIZE", 768)),
		},
		Storage: StorageConfig{
			UploadPath:     getEnv("UPLOAD_PATH", "./uploads"),
			ArchiveUploads: getEnvAsBool("ARCHIVE_UPLOADS", true),
			MaxFileSize:    getEnvAsInt64("MAX_FILE_SIZE", services.DefaultMaxDocumentSize),
		},
		Worker: WorkerConfig{
			Concurrency:  getEnvAsInt("WORKER_CONCURRENCY", 2),
			PollInterval: getEnvAsDuration("WORKER_POLL_INTERVAL", "30s"),
		},
		Index: IndexConfig{
			Enabled: getEnvAsBool("INDEX_ENABLED", false),
		},
		Log: LogConfig{
			JSON:  getEnvAsBool("LOG_JSON", false),
			Debug: getEnvAsBool("LOG_DEBUG", false),
		},
	}
}

// ModelConfig derives the immutable model client configuration for the selected provider.
func (c *Config) ModelConfig() services.ModelConfig {
	cfg := services.ModelConfig{
		Provider:    c.LLM.Provider,
		Endpoint:    c.LLM.Endpoint,
		Model:       c.LLM.Model,
		APIKey:      c.LLM.APIKey,
		MaxTokens:   c.LLM.MaxTokens,
		Temperature: c.LLM.Temperature,
		Timeout:     c.LLM.Timeout,
	}

	if cfg.Provider == services.ProviderGemini {
		cfg.APIKey = c.Gemini.APIKey
		if cfg.Model == "" {
			cfg.Model = c.Gemini.Model
		}
	}

	return cfg
}

// IndexEnabled reports whether the job description index can run.
func (c *Config) IndexEnabled() bool {
	return c.Index.Enabled && c.Gemini.APIKey != "" && c.Qdrant.URL != ""
}

func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case services.ProviderOpenAI:
		if c.LLM.APIKey == "" {
			return errors.New("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
	case services.ProviderGemini:
		if c.Gemini.APIKey == "" {
			return errors.New("GEMINI_API_KEY is required when LLM_PROVIDER=gemini")
		}
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER: %q", c.LLM.Provider)
	}

	if c.Storage.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be positive, got %d", c.Storage.MaxFileSize)
	}

	return nil
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
