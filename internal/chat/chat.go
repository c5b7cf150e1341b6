// Package chat orchestrates a retrieval-augmented conversation turn:
// load history, inject retrieved document context, call the completion
// model, persist the exchange.
package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/docchat/docchat/internal/history"
	"github.com/docchat/docchat/internal/retrieval"
)

// Prompt is one message sent to the completion model.
type Prompt struct {
	Role    string // history.RoleSystem / RoleUser / RoleAssistant
	Content string
}

// Completer produces a chat completion for an ordered prompt sequence.
// Satisfied by *OpenAICompleter; tests inject fakes.
type Completer interface {
	Complete(ctx context.Context, prompts []Prompt) (string, error)
}

// Retriever returns ranked chunk texts for a query against one knowledge
// base. Satisfied by *retrieval.Engine.
type Retriever interface {
	Retrieve(ctx context.Context, ownerID string, kbID uuid.UUID, query string, opts ...retrieval.Option) ([]string, error)
}

// HistoryStore is the subset of history persistence the chat flow needs.
// Satisfied by *history.Store.
type HistoryStore interface {
	SaveMessage(ctx context.Context, userID string, sessionID uuid.UUID, role, content string) error
	Messages(ctx context.Context, userID string, sessionID uuid.UUID, limit int) ([]history.Message, error)
	SystemPrompt(ctx context.Context, userID string, sessionID uuid.UUID) (string, error)
}

// Config holds chat flow parameters.
type Config struct {
	// TopK chunks of document context injected per turn.
	TopK int

	// MaxHistoryMessages bounds how much history is replayed to the model.
	MaxHistoryMessages int
}

// Service runs retrieval-augmented chat turns.
type Service struct {
	completer Completer
	retriever Retriever
	hist      HistoryStore
	cfg       Config
	logger    *slog.Logger
}

// NewService creates a chat Service (nil logger = slog.Default()).
func NewService(completer Completer, retriever Retriever, hist HistoryStore, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TopK <= 0 {
		cfg.TopK = retrieval.DefaultTopK
	}
	if cfg.MaxHistoryMessages <= 0 {
		cfg.MaxHistoryMessages = history.DefaultMessageLimit
	}
	return &Service{
		completer: completer,
		retriever: retriever,
		hist:      hist,
		cfg:       cfg,
		logger:    logger,
	}
}

// Respond runs one conversation turn for userID. A nil sessionID starts a
// new session. A non-nil kbID grounds the reply in that knowledge base;
// when retrieval fails the turn proceeds without document context rather
// than failing the conversation.
//
// Returns the session id (newly allocated when none was given) and the
// assistant's reply.
func (s *Service) Respond(ctx context.Context, userID string, sessionID uuid.UUID, message string, kbID uuid.UUID) (uuid.UUID, string, error) {
	if sessionID == uuid.Nil {
		sessionID = uuid.New()
	}

	prior, err := s.hist.Messages(ctx, userID, sessionID, s.cfg.MaxHistoryMessages)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("loading history: %w", err)
	}

	prompts := make([]Prompt, 0, len(prior)+3)

	// Knowledge-base context first, then the user's custom system prompt,
	// then the conversation so far.
	if kbID != uuid.Nil {
		chunks, err := s.retriever.Retrieve(ctx, userID, kbID, message, retrieval.WithTopK(s.cfg.TopK))
		if err != nil {
			// Degrade-and-continue: a retrieval failure must not kill the
			// conversation, the reply just loses document grounding.
			s.logger.Warn("knowledge base retrieval failed, continuing without context",
				"kb_id", kbID, "error", err)
		} else if docContext := BuildContext(chunks); docContext != "" {
			prompts = append(prompts, Prompt{Role: history.RoleSystem, Content: docContext})
		}
	}

	customPrompt, err := s.hist.SystemPrompt(ctx, userID, sessionID)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("loading system prompt: %w", err)
	}
	if customPrompt != "" {
		prompts = append(prompts, Prompt{Role: history.RoleSystem, Content: customPrompt})
	}

	for _, m := range prior {
		prompts = append(prompts, Prompt{Role: m.Role, Content: m.Content})
	}
	prompts = append(prompts, Prompt{Role: history.RoleUser, Content: message})

	reply, err := s.completer.Complete(ctx, prompts)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("chat completion: %w", err)
	}

	if err := s.hist.SaveMessage(ctx, userID, sessionID, history.RoleUser, message); err != nil {
		return uuid.Nil, "", fmt.Errorf("saving user message: %w", err)
	}
	if err := s.hist.SaveMessage(ctx, userID, sessionID, history.RoleAssistant, reply); err != nil {
		return uuid.Nil, "", fmt.Errorf("saving assistant message: %w", err)
	}

	return sessionID, reply, nil
}
