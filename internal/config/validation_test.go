package config

import (
	"errors"
	"testing"
	"time"
)

// validConfig returns a configuration that passes validation.
// Tests mutate single fields to exercise individual checks.
func validConfig() *Config {
	return &Config{
		OpenAIAPIKey:       "sk-test",
		ChatModel:          DefaultChatModel,
		EmbedderModel:      DefaultEmbedderModel,
		ChunkSize:          DefaultChunkSize,
		ChunkOverlap:       DefaultChunkOverlap,
		EmbedBatchSize:     DefaultEmbedBatchSize,
		TopK:               DefaultTopK,
		QueryTimeout:       DefaultQueryTimeout,
		MaxHistoryMessages: DefaultMaxHistoryMessages,
		PostgresHost:       "localhost",
		PostgresPort:       5432,
		PostgresUser:       "docchat",
		PostgresPassword:   "secret",
		PostgresDBName:     "docchat",
		PostgresSSLMode:    "disable",
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidate_NilConfig(t *testing.T) {
	var cfg *Config
	if err := cfg.Validate(); !errors.Is(err, ErrConfigNil) {
		t.Errorf("expected ErrConfigNil, got %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"empty chat model", func(c *Config) { c.ChatModel = " " }, ErrInvalidModelName},
		{"empty embedder model", func(c *Config) { c.EmbedderModel = "" }, ErrInvalidEmbedderModel},
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }, ErrInvalidChunking},
		{"negative overlap", func(c *Config) { c.ChunkOverlap = -1 }, ErrInvalidChunking},
		{"overlap equals size", func(c *Config) { c.ChunkOverlap = c.ChunkSize }, ErrInvalidChunking},
		{"overlap exceeds size", func(c *Config) { c.ChunkOverlap = c.ChunkSize + 10 }, ErrInvalidChunking},
		{"top_k zero", func(c *Config) { c.TopK = 0 }, ErrInvalidTopK},
		{"top_k too large", func(c *Config) { c.TopK = 101 }, ErrInvalidTopK},
		{"batch size zero", func(c *Config) { c.EmbedBatchSize = 0 }, ErrInvalidBatchSize},
		{"empty postgres host", func(c *Config) { c.PostgresHost = "" }, ErrInvalidPostgresHost},
		{"port out of range", func(c *Config) { c.PostgresPort = 70000 }, ErrInvalidPostgresPort},
		{"empty db name", func(c *Config) { c.PostgresDBName = "" }, ErrInvalidPostgresDBName},
		{"bad sslmode", func(c *Config) { c.PostgresSSLMode = "mandatory" }, ErrInvalidPostgresSSLMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRequireAPIKey(t *testing.T) {
	cfg := validConfig()
	if err := cfg.RequireAPIKey(); err != nil {
		t.Errorf("unexpected error with key set: %v", err)
	}

	cfg.OpenAIAPIKey = ""
	if err := cfg.RequireAPIKey(); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestDefaults(t *testing.T) {
	// Literal defaults are load-bearing: they mirror the ingestion
	// parameters the rest of the system is tuned for.
	if DefaultChunkSize != 1000 || DefaultChunkOverlap != 200 {
		t.Errorf("unexpected chunking defaults: size=%d overlap=%d", DefaultChunkSize, DefaultChunkOverlap)
	}
	if DefaultTopK != 3 {
		t.Errorf("unexpected top_k default: %d", DefaultTopK)
	}
	if DefaultQueryTimeout != 10*time.Second {
		t.Errorf("unexpected query timeout default: %v", DefaultQueryTimeout)
	}
}
