// Package retrieval ranks stored chunks against a query by exact cosine
// similarity.
//
// The engine performs a linear scan over every chunk of one knowledge
// base. That is O(n·d) per query, which is fine for the single-document
// corpora this system targets; a caller needing indexed nearest-neighbor
// search can provide a different implementation behind the same contract
// without touching consumers.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/docchat/docchat/internal/embedding"
	"github.com/docchat/docchat/internal/knowledge"
)

// zeroNormScore is the sentinel similarity for vectors with zero norm.
// It is the minimum cosine score, so degenerate vectors sort last instead
// of crashing the ranking with a division by zero.
const zeroNormScore = -1

// DefaultTopK is the number of chunks returned when no option overrides it.
const DefaultTopK = 3

// DefaultQueryTimeout bounds one retrieval query end to end.
const DefaultQueryTimeout = 10 * time.Second

// ChunkSource supplies the chunks of one knowledge base, scoped to the
// requesting owner. Satisfied by *knowledge.Store.
type ChunkSource interface {
	FetchChunks(ctx context.Context, kbID uuid.UUID, ownerID string) ([]knowledge.Chunk, error)
}

// Match is one ranked retrieval result.
type Match struct {
	Text       string
	Index      int     // chunk position in the source document
	Similarity float32 // cosine similarity in [-1, 1]
}

// Option configures a retrieval call using the functional options pattern.
type Option func(*searchConfig)

type searchConfig struct {
	topK    int
	timeout time.Duration
}

// WithTopK sets the maximum number of chunks to return.
func WithTopK(k int) Option {
	return func(c *searchConfig) {
		if k > 0 {
			c.topK = k
		}
	}
}

// WithTimeout overrides the per-query timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *searchConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func buildSearchConfig(opts []Option) *searchConfig {
	cfg := &searchConfig{
		topK:    DefaultTopK,
		timeout: DefaultQueryTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Engine embeds queries and ranks chunks by cosine similarity.
//
// Engine holds no mutable state; concurrent Retrieve calls are independent
// reads and need no coordination.
type Engine struct {
	chunks   ChunkSource
	embedder embedding.Embedder
	logger   *slog.Logger
}

// NewEngine creates an Engine. Dependencies are injected; nothing is
// shared through package state (nil logger = slog.Default()).
func NewEngine(chunks ChunkSource, embedder embedding.Embedder, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		chunks:   chunks,
		embedder: embedder,
		logger:   logger,
	}
}

// Retrieve returns the texts of the most relevant chunks for the query,
// ordered by descending similarity. An empty or foreign-owned knowledge
// base yields an empty result, not an error.
func (e *Engine) Retrieve(ctx context.Context, ownerID string, kbID uuid.UUID, query string, opts ...Option) ([]string, error) {
	matches, err := e.RetrieveScored(ctx, ownerID, kbID, query, opts...)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(matches))
	for i, m := range matches {
		texts[i] = m.Text
	}
	return texts, nil
}

// RetrieveScored is Retrieve with similarity scores and chunk indexes
// attached, for consumers that need to inspect or threshold the ranking.
func (e *Engine) RetrieveScored(ctx context.Context, ownerID string, kbID uuid.UUID, query string, opts ...Option) ([]Match, error) {
	cfg := buildSearchConfig(opts)

	queryCtx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	queryVec, err := e.embedder.EmbedOne(queryCtx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	chunks, err := e.chunks.FetchChunks(queryCtx, kbID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("fetching chunks: %w", err)
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	matches := make([]Match, len(chunks))
	for i, c := range chunks {
		matches[i] = Match{
			Text:       c.Text,
			Index:      c.Index,
			Similarity: cosineSimilarity(queryVec, c.Embedding),
		}
	}

	// Descending similarity; equal scores break by ascending chunk index
	// so results are deterministic.
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].Index < matches[j].Index
	})

	if len(matches) > cfg.topK {
		matches = matches[:cfg.topK]
	}

	e.logger.Debug("retrieved chunks",
		"kb_id", kbID, "candidates", len(chunks), "returned", len(matches))
	return matches, nil
}

// cosineSimilarity computes dot(a,b) / (‖a‖·‖b‖). Mismatched lengths are
// compared over the shorter prefix; a zero-norm vector scores the minimum
// so it ranks last.
func cosineSimilarity(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	for _, v := range a {
		normA += float64(v) * float64(v)
	}
	for _, v := range b {
		normB += float64(v) * float64(v)
	}

	if normA == 0 || normB == 0 {
		return zeroNormScore
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
