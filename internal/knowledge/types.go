package knowledge

import (
	"time"

	"github.com/google/uuid"
)

// KnowledgeBase is the registry record for one ingested document.
// All fields are immutable after creation; a knowledge base is only ever
// deleted as a whole, together with its chunks.
type KnowledgeBase struct {
	ID         uuid.UUID
	OwnerID    string
	SourceName string // original filename
	ChunkCount int
	CreatedAt  time.Time
}

// Chunk is one bounded text window of a source document, paired with its
// embedding vector.
//
// OwnerID is denormalized from the owning KnowledgeBase so every read can
// be owner-scoped without a join.
type Chunk struct {
	KBID      uuid.UUID
	OwnerID   string
	Index     int // zero-based position in the source document
	Text      string
	Embedding []float32
}

// ChunkData is the input for knowledge-base creation: chunk text with its
// already-computed embedding, in document order.
type ChunkData struct {
	Text      string
	Embedding []float32
}
