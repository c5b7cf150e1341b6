// Package history persists per-user conversation history and per-session
// system prompts in PostgreSQL.
//
// History is plumbing around the retrieval core: the chat service loads
// prior messages to rebuild conversation context and appends each new
// user/assistant exchange after a completed turn.
package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Message roles, matching the chat completion API.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultMessageLimit bounds how many messages a history read returns when
// the caller does not give a limit. Shared by the chat flow and the
// configuration defaults.
const DefaultMessageLimit = 100

// Message is one stored conversation message.
type Message struct {
	UserID    string
	SessionID uuid.UUID
	Role      string
	Content   string
	CreatedAt time.Time
}

// SessionSummary describes one conversation session for listing.
// LastMessage carries the text of the most recent message as a preview.
type SessionSummary struct {
	SessionID     uuid.UUID
	MessageCount  int
	LastMessage   string
	LastMessageAt time.Time
}

// Store manages conversation history. All reads and writes are scoped to
// the owning user. Safe for concurrent use.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewStore creates a history Store (nil logger = slog.Default()).
func NewStore(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}
}

// SaveMessage appends one message to a session, creating the session
// record on first write.
func (s *Store) SaveMessage(ctx context.Context, userID string, sessionID uuid.UUID, role, content string) error {
	if role != RoleSystem && role != RoleUser && role != RoleAssistant {
		return fmt.Errorf("invalid message role %q", role)
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO chat_sessions (session_id, user_id, created_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (session_id) DO NOTHING`,
		sessionID, userID)
	if err != nil {
		return fmt.Errorf("ensuring session %s: %w", sessionID, err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO chat_messages (user_id, session_id, role, content, created_at)
		 VALUES ($1, $2, $3, $4, now())`,
		userID, sessionID, role, content)
	if err != nil {
		return fmt.Errorf("saving message: %w", err)
	}

	return nil
}

// Messages returns up to limit messages of one session in chronological
// order. A session belonging to another user yields an empty slice.
func (s *Store) Messages(ctx context.Context, userID string, sessionID uuid.UUID, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = DefaultMessageLimit
	}

	rows, err := s.pool.Query(ctx,
		`SELECT user_id, session_id, role, content, created_at
		 FROM chat_messages
		 WHERE user_id = $1 AND session_id = $2
		 ORDER BY created_at, id
		 LIMIT $3`,
		userID, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("loading messages for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.UserID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading messages: %w", err)
	}

	return messages, nil
}

// Sessions lists the user's sessions, most recently active first.
func (s *Store) Sessions(ctx context.Context, userID string) ([]SessionSummary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT session_id, count(*),
		        (array_agg(content ORDER BY created_at DESC, id DESC))[1],
		        max(created_at)
		 FROM chat_messages
		 WHERE user_id = $1
		 GROUP BY session_id
		 ORDER BY max(created_at) DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionSummary
	for rows.Next() {
		var sum SessionSummary
		if err := rows.Scan(&sum.SessionID, &sum.MessageCount, &sum.LastMessage, &sum.LastMessageAt); err != nil {
			return nil, fmt.Errorf("scanning session summary: %w", err)
		}
		sessions = append(sessions, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading sessions: %w", err)
	}

	return sessions, nil
}

// DeleteSession removes a session and all its messages for the given user.
// Returns the number of messages deleted.
func (s *Store) DeleteSession(ctx context.Context, userID string, sessionID uuid.UUID) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	tag, err := tx.Exec(ctx,
		`DELETE FROM chat_messages WHERE user_id = $1 AND session_id = $2`,
		userID, sessionID)
	if err != nil {
		return 0, fmt.Errorf("deleting messages: %w", err)
	}

	_, err = tx.Exec(ctx,
		`DELETE FROM chat_sessions WHERE user_id = $1 AND session_id = $2`,
		userID, sessionID)
	if err != nil {
		return 0, fmt.Errorf("deleting session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing session delete: %w", err)
	}

	s.logger.Debug("deleted session",
		"user_id", userID, "session_id", sessionID, "messages", tag.RowsAffected())
	return tag.RowsAffected(), nil
}

// SystemPrompt returns the custom system prompt for a session, or an empty
// string when none is set.
func (s *Store) SystemPrompt(ctx context.Context, userID string, sessionID uuid.UUID) (string, error) {
	var prompt *string
	err := s.pool.QueryRow(ctx,
		`SELECT system_prompt FROM chat_sessions
		 WHERE user_id = $1 AND session_id = $2`,
		userID, sessionID).Scan(&prompt)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("loading system prompt: %w", err)
	}
	if prompt == nil {
		return "", nil
	}
	return *prompt, nil
}

// SetSystemPrompt stores a custom system prompt for a session, creating
// the session record if needed.
func (s *Store) SetSystemPrompt(ctx context.Context, userID string, sessionID uuid.UUID, prompt string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO chat_sessions (session_id, user_id, system_prompt, created_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (session_id) DO UPDATE
		 SET system_prompt = EXCLUDED.system_prompt
		 WHERE chat_sessions.user_id = EXCLUDED.user_id`,
		sessionID, userID, prompt)
	if err != nil {
		return fmt.Errorf("setting system prompt: %w", err)
	}
	return nil
}
