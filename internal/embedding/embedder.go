// Package embedding maps text to fixed-dimension vectors through an
// external embedding service.
//
// The Embedder interface is the seam between the retrieval core and the
// remote provider: production code uses the OpenAI adapter, tests inject
// fakes with hand-picked vectors.
package embedding

import "context"

// Embedder converts text into embedding vectors.
//
// All vectors produced by one Embedder have identical dimensionality;
// callers never rank vectors from different embedders together.
// Implementations must preserve input order in the output and honor
// context cancellation.
type Embedder interface {
	// EmbedBatch embeds every text, one vector per input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedOne embeds a single text, typically a retrieval query.
	EmbedOne(ctx context.Context, text string) ([]float32, error)
}
