// Package ingest turns uploaded documents into queryable knowledge bases:
// extract text, split into overlapping chunks, embed, and persist.
//
// Ingestion is all-or-nothing. Chunking and embedding happen before any
// write, and the store commits metadata and chunks in one transaction, so
// a failure at any point leaves no partial knowledge base visible to
// readers.
package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/docchat/docchat/internal/chunker"
	"github.com/docchat/docchat/internal/embedding"
	"github.com/docchat/docchat/internal/knowledge"
)

// KnowledgeStore persists a complete knowledge base atomically.
// Satisfied by *knowledge.Store.
type KnowledgeStore interface {
	Create(ctx context.Context, ownerID, sourceName string, chunks []knowledge.ChunkData) (uuid.UUID, error)
}

// Config holds the chunking and batching parameters for ingestion.
type Config struct {
	ChunkSize    int // window size in characters
	ChunkOverlap int // shared characters between consecutive windows
}

// Service is the ingestion pipeline.
type Service struct {
	store    KnowledgeStore
	embedder embedding.Embedder
	cfg      Config
	logger   *slog.Logger
}

// NewService creates an ingestion Service with injected dependencies
// (nil logger = slog.Default()).
func NewService(store KnowledgeStore, embedder embedding.Embedder, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    store,
		embedder: embedder,
		cfg:      cfg,
		logger:   logger,
	}
}

// IngestPDF parses PDF bytes, chunks the extracted text, embeds every
// chunk, and persists the result as a new knowledge base owned by ownerID.
// Returns the new knowledge base id.
func (s *Service) IngestPDF(ctx context.Context, ownerID, filename string, raw []byte) (uuid.UUID, error) {
	text, err := extractPDFText(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("extracting text from %q: %w", filename, err)
	}
	return s.IngestText(ctx, ownerID, filename, text)
}

// IngestText ingests already-extracted text under the given source name.
// An empty text produces a valid knowledge base with zero chunks.
func (s *Service) IngestText(ctx context.Context, ownerID, sourceName, text string) (uuid.UUID, error) {
	texts, err := chunker.Split(text, s.cfg.ChunkSize, s.cfg.ChunkOverlap)
	if err != nil {
		return uuid.Nil, fmt.Errorf("chunking %q: %w", sourceName, err)
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return uuid.Nil, fmt.Errorf("embedding chunks of %q: %w", sourceName, err)
	}
	if len(vectors) != len(texts) {
		return uuid.Nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(texts))
	}

	chunks := make([]knowledge.ChunkData, len(texts))
	for i := range texts {
		chunks[i] = knowledge.ChunkData{Text: texts[i], Embedding: vectors[i]}
	}

	kbID, err := s.store.Create(ctx, ownerID, sourceName, chunks)
	if err != nil {
		return uuid.Nil, fmt.Errorf("storing knowledge base for %q: %w", sourceName, err)
	}

	s.logger.Info("ingested document",
		"kb_id", kbID, "owner_id", ownerID, "source", sourceName, "chunks", len(chunks))
	return kbID, nil
}
