package config

import (
	"fmt"
	"strings"
)

// validSSLModes are the SSL modes accepted by PostgreSQL.
var validSSLModes = map[string]bool{
	"disable":     true,
	"allow":       true,
	"prefer":      true,
	"require":     true,
	"verify-ca":   true,
	"verify-full": true,
}

// Validate checks the configuration for invalid values.
// Returns a sentinel error (wrapped with detail) on the first violation so
// startup fails fast with an actionable message.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	if strings.TrimSpace(c.ChatModel) == "" {
		return fmt.Errorf("%w: chat_model must not be empty", ErrInvalidModelName)
	}
	if strings.TrimSpace(c.EmbedderModel) == "" {
		return fmt.Errorf("%w: embedder_model must not be empty", ErrInvalidEmbedderModel)
	}

	// Chunking invariant: size > overlap >= 0. A window that does not
	// advance would loop forever during ingestion.
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive, got %d", ErrInvalidChunking, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("%w: chunk_overlap must not be negative, got %d", ErrInvalidChunking, c.ChunkOverlap)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap (%d) must be smaller than chunk_size (%d)",
			ErrInvalidChunking, c.ChunkOverlap, c.ChunkSize)
	}

	if c.TopK < 1 || c.TopK > 100 {
		return fmt.Errorf("%w: top_k must be between 1 and 100, got %d", ErrInvalidTopK, c.TopK)
	}
	if c.EmbedBatchSize < 1 || c.EmbedBatchSize > 2048 {
		return fmt.Errorf("%w: embed_batch_size must be between 1 and 2048, got %d",
			ErrInvalidBatchSize, c.EmbedBatchSize)
	}

	if strings.TrimSpace(c.PostgresHost) == "" {
		return fmt.Errorf("%w: postgres_host must not be empty", ErrInvalidPostgresHost)
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: postgres_port must be between 1 and 65535, got %d",
			ErrInvalidPostgresPort, c.PostgresPort)
	}
	if strings.TrimSpace(c.PostgresDBName) == "" {
		return fmt.Errorf("%w: postgres_db_name must not be empty", ErrInvalidPostgresDBName)
	}
	if !validSSLModes[c.PostgresSSLMode] {
		return fmt.Errorf("%w: %q is not a valid sslmode", ErrInvalidPostgresSSLMode, c.PostgresSSLMode)
	}

	return nil
}

// RequireAPIKey validates that the OpenAI API key is present.
// Separate from Validate so offline commands (migrate, kb list) work
// without credentials.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.OpenAIAPIKey) == "" {
		return fmt.Errorf("%w: set OPENAI_API_KEY", ErrMissingAPIKey)
	}
	return nil
}
