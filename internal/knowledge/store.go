// Package knowledge persists knowledge bases and their embedded chunks in
// PostgreSQL.
//
// A knowledge base and its chunks are one logical aggregate stored in two
// tables; Create writes both inside a single transaction so readers never
// observe a partially ingested knowledge base.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// ErrNotFound indicates the requested knowledge base does not exist or is
// not visible to the requesting owner.
var ErrNotFound = errors.New("knowledge base not found")

// Store manages knowledge bases and chunks.
//
// Every query is scoped to the requesting owner at the SQL level: asking
// for another user's knowledge base yields empty results, not their data.
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewStore creates a Store on top of the given connection pool.
// The pool's lifecycle is owned by the caller (nil logger = slog.Default()).
func NewStore(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}
}

// Create allocates a new knowledge base and persists its full chunk set in
// one transaction. It returns the generated id once everything is durably
// stored; on any failure nothing is visible to readers.
//
// An empty chunk slice is valid and produces a queryable knowledge base
// that returns no results.
func (s *Store) Create(ctx context.Context, ownerID, sourceName string, chunks []ChunkData) (uuid.UUID, error) {
	kbID := uuid.New()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		// No-op after a successful commit.
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx,
		`INSERT INTO knowledge_bases (id, owner_id, source_name, chunk_count, created_at)
		 VALUES ($1, $2, $3, $4, now())`,
		kbID, ownerID, sourceName, len(chunks))
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting knowledge base: %w", err)
	}

	if len(chunks) > 0 {
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"kb_chunks"},
			[]string{"kb_id", "owner_id", "chunk_index", "content", "embedding"},
			pgx.CopyFromSlice(len(chunks), func(i int) ([]any, error) {
				return []any{kbID, ownerID, i, chunks[i].Text, pgvector.NewVector(chunks[i].Embedding)}, nil
			}))
		if err != nil {
			return uuid.Nil, fmt.Errorf("inserting chunks: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("committing knowledge base: %w", err)
	}

	s.logger.Debug("created knowledge base",
		"kb_id", kbID, "owner_id", ownerID, "source", sourceName, "chunks", len(chunks))
	return kbID, nil
}

// List returns all knowledge bases belonging to ownerID, newest first.
func (s *Store) List(ctx context.Context, ownerID string) ([]KnowledgeBase, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, owner_id, source_name, chunk_count, created_at
		 FROM knowledge_bases
		 WHERE owner_id = $1
		 ORDER BY created_at DESC`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing knowledge bases: %w", err)
	}
	defer rows.Close()

	var kbs []KnowledgeBase
	for rows.Next() {
		var kb KnowledgeBase
		if err := rows.Scan(&kb.ID, &kb.OwnerID, &kb.SourceName, &kb.ChunkCount, &kb.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning knowledge base: %w", err)
		}
		kbs = append(kbs, kb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading knowledge bases: %w", err)
	}

	return kbs, nil
}

// Get returns one knowledge base scoped to its owner.
// Returns ErrNotFound both for a missing id and for an id owned by someone
// else; callers cannot distinguish the two.
func (s *Store) Get(ctx context.Context, kbID uuid.UUID, ownerID string) (KnowledgeBase, error) {
	var kb KnowledgeBase
	err := s.pool.QueryRow(ctx,
		`SELECT id, owner_id, source_name, chunk_count, created_at
		 FROM knowledge_bases
		 WHERE id = $1 AND owner_id = $2`,
		kbID, ownerID).Scan(&kb.ID, &kb.OwnerID, &kb.SourceName, &kb.ChunkCount, &kb.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return KnowledgeBase{}, ErrNotFound
	}
	if err != nil {
		return KnowledgeBase{}, fmt.Errorf("getting knowledge base %s: %w", kbID, err)
	}
	return kb, nil
}

// FetchChunks returns all chunks of a knowledge base scoped to the
// requesting owner, in document order. A kb_id owned by a different user
// yields an empty slice, never their chunks.
func (s *Store) FetchChunks(ctx context.Context, kbID uuid.UUID, ownerID string) ([]Chunk, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT kb_id, owner_id, chunk_index, content, embedding
		 FROM kb_chunks
		 WHERE kb_id = $1 AND owner_id = $2
		 ORDER BY chunk_index`,
		kbID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("fetching chunks for %s: %w", kbID, err)
	}
	defer rows.Close()

	var chunks []Chunk
	for rows.Next() {
		var (
			c   Chunk
			vec pgvector.Vector
		)
		if err := rows.Scan(&c.KBID, &c.OwnerID, &c.Index, &c.Text, &vec); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		c.Embedding = vec.Slice()
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading chunks: %w", err)
	}

	return chunks, nil
}

// CountChunks returns the number of stored chunks for a knowledge base.
func (s *Store) CountChunks(ctx context.Context, kbID uuid.UUID) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM kb_chunks WHERE kb_id = $1`, kbID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting chunks for %s: %w", kbID, err)
	}
	return count, nil
}

// Delete removes a knowledge base and all its chunks as one logical
// operation (chunks go via ON DELETE CASCADE). Owner-scoped: deleting a
// knowledge base you do not own is ErrNotFound.
func (s *Store) Delete(ctx context.Context, kbID uuid.UUID, ownerID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM knowledge_bases WHERE id = $1 AND owner_id = $2`,
		kbID, ownerID)
	if err != nil {
		return fmt.Errorf("deleting knowledge base %s: %w", kbID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	s.logger.Debug("deleted knowledge base", "kb_id", kbID, "owner_id", ownerID)
	return nil
}
