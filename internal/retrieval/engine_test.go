package retrieval

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/docchat/docchat/internal/knowledge"
	"github.com/docchat/docchat/internal/log"
)

// fakeEmbedder returns a fixed vector for any input, or a configured error.
type fakeEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (f *fakeEmbedder) EmbedOne(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		v, err := f.EmbedOne(ctx, texts[i])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// fakeChunkSource serves chunks keyed by (kb, owner), mirroring the
// owner-scoping contract of the real store.
type fakeChunkSource struct {
	chunks map[uuid.UUID]map[string][]knowledge.Chunk
	err    error
}

func (f *fakeChunkSource) FetchChunks(_ context.Context, kbID uuid.UUID, ownerID string) ([]knowledge.Chunk, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.chunks[kbID][ownerID], nil
}

func testChunks(kbID uuid.UUID, owner string, embeddings ...[]float32) []knowledge.Chunk {
	texts := []string{
		"The cat sat.",
		"The cat sat on the mat.",
		"Unrelated text about cars.",
	}
	chunks := make([]knowledge.Chunk, len(embeddings))
	for i, emb := range embeddings {
		text := ""
		if i < len(texts) {
			text = texts[i]
		}
		chunks[i] = knowledge.Chunk{
			KBID:      kbID,
			OwnerID:   owner,
			Index:     i,
			Text:      text,
			Embedding: emb,
		}
	}
	return chunks
}

func newTestEngine(source ChunkSource, embedder *fakeEmbedder) *Engine {
	return NewEngine(source, embedder, log.NewNop())
}

// TestRetrieve_RanksByRelevance is the worked scenario: cat-related chunks
// outrank the car chunk for a cat-related query.
func TestRetrieve_RanksByRelevance(t *testing.T) {
	kbID := uuid.New()
	source := &fakeChunkSource{chunks: map[uuid.UUID]map[string][]knowledge.Chunk{
		kbID: {"alice": testChunks(kbID, "alice",
			[]float32{1, 0},
			[]float32{0.9, 0.1},
			[]float32{0, 1},
		)},
	}}
	embedder := &fakeEmbedder{vector: []float32{0.95, 0.05}}

	got, err := newTestEngine(source, embedder).Retrieve(context.Background(), "alice", kbID, "cat mat", WithTopK(2))
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}

	want := []string{"The cat sat.", "The cat sat on the mat."}
	if len(got) != len(want) {
		t.Fatalf("got %d chunks, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("rank %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRetrieveScored_ExactMatchScoresOne(t *testing.T) {
	kbID := uuid.New()
	exact := []float32{0.6, 0.8}
	source := &fakeChunkSource{chunks: map[uuid.UUID]map[string][]knowledge.Chunk{
		kbID: {"alice": testChunks(kbID, "alice",
			exact,
			[]float32{1, 0},
		)},
	}}
	embedder := &fakeEmbedder{vector: exact}

	matches, err := newTestEngine(source, embedder).RetrieveScored(context.Background(), "alice", kbID, "q")
	if err != nil {
		t.Fatalf("RetrieveScored: %v", err)
	}
	if len(matches) == 0 {
		t.Fatal("no matches")
	}

	if matches[0].Index != 0 {
		t.Errorf("exact-match chunk not ranked first, got index %d", matches[0].Index)
	}
	if math.Abs(float64(matches[0].Similarity)-1.0) > 1e-6 {
		t.Errorf("exact match similarity = %v, want 1.0", matches[0].Similarity)
	}
}

func TestRetrieve_ZeroVectorSafety(t *testing.T) {
	kbID := uuid.New()
	source := &fakeChunkSource{chunks: map[uuid.UUID]map[string][]knowledge.Chunk{
		kbID: {"alice": testChunks(kbID, "alice",
			[]float32{0, 0}, // degenerate stored vector
			[]float32{1, 0},
		)},
	}}
	embedder := &fakeEmbedder{vector: []float32{1, 0}}

	matches, err := newTestEngine(source, embedder).RetrieveScored(context.Background(), "alice", kbID, "q")
	if err != nil {
		t.Fatalf("RetrieveScored: %v", err)
	}

	// The positive-similarity chunk must outrank the zero vector.
	if matches[0].Index != 1 {
		t.Errorf("zero-vector chunk ranked above positive match: %+v", matches)
	}
	if matches[1].Similarity != zeroNormScore {
		t.Errorf("zero-vector similarity = %v, want %v", matches[1].Similarity, zeroNormScore)
	}
}

func TestRetrieve_ZeroQueryVector(t *testing.T) {
	kbID := uuid.New()
	source := &fakeChunkSource{chunks: map[uuid.UUID]map[string][]knowledge.Chunk{
		kbID: {"alice": testChunks(kbID, "alice", []float32{1, 0}, []float32{0, 1})},
	}}
	embedder := &fakeEmbedder{vector: []float32{0, 0}}

	matches, err := newTestEngine(source, embedder).RetrieveScored(context.Background(), "alice", kbID, "q")
	if err != nil {
		t.Fatalf("RetrieveScored: %v", err)
	}

	// Every score degenerates to the sentinel; ties break by chunk index.
	for i, m := range matches {
		if m.Similarity != zeroNormScore {
			t.Errorf("similarity = %v, want sentinel", m.Similarity)
		}
		if m.Index != i {
			t.Errorf("tie-break order broken: position %d has index %d", i, m.Index)
		}
	}
}

func TestRetrieve_OwnershipIsolation(t *testing.T) {
	kbID := uuid.New()
	source := &fakeChunkSource{chunks: map[uuid.UUID]map[string][]knowledge.Chunk{
		kbID: {"bob": testChunks(kbID, "bob", []float32{1, 0})},
	}}
	embedder := &fakeEmbedder{vector: []float32{1, 0}}

	got, err := newTestEngine(source, embedder).Retrieve(context.Background(), "alice", kbID, "q")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("alice retrieved bob's chunks: %v", got)
	}
}

func TestRetrieve_TopKBound(t *testing.T) {
	kbID := uuid.New()
	embeddings := [][]float32{{1, 0}, {0.9, 0.1}, {0.8, 0.2}}
	source := &fakeChunkSource{chunks: map[uuid.UUID]map[string][]knowledge.Chunk{
		kbID: {"alice": testChunks(kbID, "alice", embeddings...)},
	}}
	embedder := &fakeEmbedder{vector: []float32{1, 0}}
	engine := newTestEngine(source, embedder)

	// topK larger than available returns everything.
	got, err := engine.Retrieve(context.Background(), "alice", kbID, "q", WithTopK(10))
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) != len(embeddings) {
		t.Errorf("got %d chunks, want %d", len(got), len(embeddings))
	}

	// topK smaller than available truncates.
	got, err = engine.Retrieve(context.Background(), "alice", kbID, "q", WithTopK(1))
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("got %d chunks, want 1", len(got))
	}
}

func TestRetrieve_EmptyKnowledgeBase(t *testing.T) {
	source := &fakeChunkSource{chunks: map[uuid.UUID]map[string][]knowledge.Chunk{}}
	embedder := &fakeEmbedder{vector: []float32{1, 0}}

	got, err := newTestEngine(source, embedder).Retrieve(context.Background(), "alice", uuid.New(), "q")
	if err != nil {
		t.Fatalf("empty knowledge base must not error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}

func TestRetrieve_EmbedderFailure(t *testing.T) {
	embedErr := errors.New("quota exceeded")
	source := &fakeChunkSource{chunks: map[uuid.UUID]map[string][]knowledge.Chunk{}}
	embedder := &fakeEmbedder{err: embedErr}

	_, err := newTestEngine(source, embedder).Retrieve(context.Background(), "alice", uuid.New(), "q")
	if !errors.Is(err, embedErr) {
		t.Errorf("expected wrapped embed error, got %v", err)
	}
}

func TestRetrieve_StorageFailure(t *testing.T) {
	storeErr := errors.New("connection reset")
	source := &fakeChunkSource{err: storeErr}
	embedder := &fakeEmbedder{vector: []float32{1, 0}}

	_, err := newTestEngine(source, embedder).Retrieve(context.Background(), "alice", uuid.New(), "q")
	if !errors.Is(err, storeErr) {
		t.Errorf("expected wrapped storage error, got %v", err)
	}
}

func TestRetrieve_TieBreakByIndex(t *testing.T) {
	kbID := uuid.New()
	same := []float32{1, 0}
	source := &fakeChunkSource{chunks: map[uuid.UUID]map[string][]knowledge.Chunk{
		kbID: {"alice": testChunks(kbID, "alice", same, same, same)},
	}}
	embedder := &fakeEmbedder{vector: []float32{1, 0}}

	matches, err := newTestEngine(source, embedder).RetrieveScored(context.Background(), "alice", kbID, "q", WithTopK(3))
	if err != nil {
		t.Fatalf("RetrieveScored: %v", err)
	}

	for i, m := range matches {
		if m.Index != i {
			t.Errorf("position %d has chunk index %d, want %d", i, m.Index, i)
		}
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"zero left", []float32{0, 0}, []float32{1, 0}, zeroNormScore},
		{"zero right", []float32{1, 0}, []float32{0, 0}, zeroNormScore},
		{"scaled", []float32{2, 0}, []float32{5, 0}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if math.Abs(float64(got)-tt.want) > 1e-6 {
				t.Errorf("cosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}
