package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var (
	// ErrService indicates a failure calling the embedding provider
	// (network, timeout, quota). Callers abort the surrounding operation;
	// ingestion in particular must not leave partial state behind.
	ErrService = errors.New("embedding service error")

	// ErrEmptyEmbedding indicates the provider answered without vectors.
	ErrEmptyEmbedding = errors.New("provider returned no embedding")
)

// DefaultMaxBatchSize caps how many texts are sent per embeddings request
// when the caller does not configure a limit.
const DefaultMaxBatchSize = 64

// OpenAI is an Embedder backed by the OpenAI embeddings API.
//
// Safe for concurrent use: the underlying client is stateless between
// requests.
type OpenAI struct {
	client   openai.Client
	model    string
	maxBatch int
	logger   *slog.Logger
}

// OpenAIOption configures the OpenAI embedder.
type OpenAIOption func(*OpenAI)

// WithMaxBatchSize caps the number of texts per embeddings request.
// Larger inputs are transparently split into sub-batches.
func WithMaxBatchSize(n int) OpenAIOption {
	return func(o *OpenAI) {
		if n > 0 {
			o.maxBatch = n
		}
	}
}

// WithLogger sets the logger (nil = slog.Default()).
func WithLogger(logger *slog.Logger) OpenAIOption {
	return func(o *OpenAI) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewOpenAI creates an OpenAI embedder for the given model.
//
// The client is constructed here and injected into consumers rather than
// shared through a package-level singleton, so tests can substitute fakes.
func NewOpenAI(apiKey, model string, opts ...OpenAIOption) *OpenAI {
	o := &OpenAI{
		client:   openai.NewClient(option.WithAPIKey(apiKey)),
		model:    model,
		maxBatch: DefaultMaxBatchSize,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// EmbedBatch embeds all texts, splitting into sub-batches of at most
// maxBatch inputs. Output order matches input order. An empty input yields
// an empty output without calling the provider.
func (o *OpenAI) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, 0, len(texts))
	for _, batch := range splitBatches(texts, o.maxBatch) {
		embedded, err := o.embed(ctx, batch)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, embedded...)
	}

	o.logger.Debug("embedded batch", "texts", len(texts), "model", o.model)
	return vectors, nil
}

// EmbedOne embeds a single text.
func (o *OpenAI) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := o.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// splitBatches slices texts into consecutive sub-batches of at most max
// entries, preserving order.
func splitBatches(texts []string, max int) [][]string {
	if max <= 0 {
		max = DefaultMaxBatchSize
	}

	batches := make([][]string, 0, (len(texts)+max-1)/max)
	for start := 0; start < len(texts); start += max {
		end := start + max
		if end > len(texts) {
			end = len(texts)
		}
		batches = append(batches, texts[start:end])
	}
	return batches
}

// embed performs one embeddings API call for at most maxBatch texts.
func (o *OpenAI) embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := o.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Model: openai.EmbeddingModel(o.model),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrService, err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", ErrEmptyEmbedding, len(resp.Data), len(texts))
	}

	// The API is documented to return data in input order, but each entry
	// also carries its index; honor it.
	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(vectors) {
			return nil, fmt.Errorf("%w: embedding index %d out of range", ErrEmptyEmbedding, d.Index)
		}
		if len(d.Embedding) == 0 {
			return nil, ErrEmptyEmbedding
		}
		v := make([]float32, len(d.Embedding))
		for i, f := range d.Embedding {
			v[i] = float32(f)
		}
		vectors[d.Index] = v
	}

	return vectors, nil
}
