// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.docchat/config.yaml)
//  3. Default values
//
// Main configuration categories:
//   - AI: chat model, embedder model, OpenAI API key
//   - Storage: PostgreSQL connection (see storage.go)
//   - Ingestion: chunk size/overlap, embedding batch size
//   - Retrieval: default top-K, query timeout
//
// Sensitive values (passwords, API keys) are bound from environment
// variables only and never logged. Validation is fail-fast with sentinel
// errors so callers can match with errors.Is().
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/docchat/docchat/internal/history"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingAPIKey indicates the OpenAI API key is missing.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidModelName indicates the chat model name is invalid.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidEmbedderModel indicates the embedder model is invalid.
	ErrInvalidEmbedderModel = errors.New("invalid embedder model")

	// ErrInvalidChunking indicates chunk size/overlap are misconfigured.
	ErrInvalidChunking = errors.New("invalid chunking parameters")

	// ErrInvalidTopK indicates the default top-K value is out of range.
	ErrInvalidTopK = errors.New("invalid top_k")

	// ErrInvalidBatchSize indicates the embedding batch size is out of range.
	ErrInvalidBatchSize = errors.New("invalid embed batch size")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is invalid.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is invalid.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")

	// ErrInvalidPostgresSSLMode indicates the PostgreSQL SSL mode is invalid.
	ErrInvalidPostgresSSLMode = errors.New("invalid PostgreSQL SSL mode")
)

const (
	// DefaultEmbedderModel is the default OpenAI embedding model.
	DefaultEmbedderModel = "text-embedding-3-small"

	// DefaultChatModel is the default chat completion model.
	DefaultChatModel = "gpt-4.1"

	// DefaultChunkSize is the default chunk window in characters.
	DefaultChunkSize = 1000

	// DefaultChunkOverlap is the default overlap between consecutive chunks.
	DefaultChunkOverlap = 200

	// DefaultTopK is the default number of chunks injected into a chat turn.
	DefaultTopK = 3

	// DefaultEmbedBatchSize is the default maximum texts per embedding call.
	DefaultEmbedBatchSize = 64

	// DefaultMaxHistoryMessages bounds how many history messages are loaded
	// into a chat turn.
	DefaultMaxHistoryMessages = history.DefaultMessageLimit

	// DefaultQueryTimeout bounds a single retrieval query.
	DefaultQueryTimeout = 10 * time.Second
)

// Config stores application configuration.
type Config struct {
	// AI configuration
	OpenAIAPIKey  string `mapstructure:"openai_api_key"` // SENSITIVE: env only, never logged
	ChatModel     string `mapstructure:"chat_model"`
	EmbedderModel string `mapstructure:"embedder_model"`

	// Ingestion configuration
	ChunkSize      int `mapstructure:"chunk_size"`
	ChunkOverlap   int `mapstructure:"chunk_overlap"`
	EmbedBatchSize int `mapstructure:"embed_batch_size"`

	// Retrieval configuration
	TopK         int           `mapstructure:"top_k"`
	QueryTimeout time.Duration `mapstructure:"query_timeout"`

	// Chat configuration
	MaxHistoryMessages int `mapstructure:"max_history_messages"`

	// Storage configuration (see storage.go)
	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"` // SENSITIVE: never logged
	PostgresDBName   string `mapstructure:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode"`
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".docchat")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".") // Also support current directory

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// Configuration file not found is not an error, use default values
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// DATABASE_URL overrides individual postgres_* settings when set.
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("chat_model", DefaultChatModel)
	v.SetDefault("embedder_model", DefaultEmbedderModel)

	v.SetDefault("chunk_size", DefaultChunkSize)
	v.SetDefault("chunk_overlap", DefaultChunkOverlap)
	v.SetDefault("embed_batch_size", DefaultEmbedBatchSize)

	v.SetDefault("top_k", DefaultTopK)
	v.SetDefault("query_timeout", DefaultQueryTimeout)
	v.SetDefault("max_history_messages", DefaultMaxHistoryMessages)

	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "docchat")
	v.SetDefault("postgres_password", "docchat_dev_password")
	v.SetDefault("postgres_db_name", "docchat")
	v.SetDefault("postgres_ssl_mode", "disable")
}

// bindEnvVariables binds environment variables explicitly.
// Secrets are only ever read from the environment, never from the file.
func bindEnvVariables(v *viper.Viper) {
	// Errors from BindEnv only occur with zero arguments; safe to ignore here.
	_ = v.BindEnv("openai_api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("postgres_password", "DOCCHAT_POSTGRES_PASSWORD")
	_ = v.BindEnv("postgres_host", "DOCCHAT_POSTGRES_HOST")
	_ = v.BindEnv("postgres_port", "DOCCHAT_POSTGRES_PORT")
	_ = v.BindEnv("postgres_user", "DOCCHAT_POSTGRES_USER")
	_ = v.BindEnv("postgres_db_name", "DOCCHAT_POSTGRES_DB")
	_ = v.BindEnv("chat_model", "DOCCHAT_CHAT_MODEL")
	_ = v.BindEnv("embedder_model", "DOCCHAT_EMBEDDER_MODEL")
}
