// Package app is the composition root: it constructs and wires every
// component from configuration.
//
// All services are explicitly constructed and injected here; no package
// holds client or store singletons, so tests can assemble the same graph
// from fakes.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docchat/docchat/internal/chat"
	"github.com/docchat/docchat/internal/config"
	"github.com/docchat/docchat/internal/database"
	"github.com/docchat/docchat/internal/embedding"
	"github.com/docchat/docchat/internal/history"
	"github.com/docchat/docchat/internal/ingest"
	"github.com/docchat/docchat/internal/knowledge"
	"github.com/docchat/docchat/internal/log"
	"github.com/docchat/docchat/internal/retrieval"
)

// App is the application container holding every wired component.
type App struct {
	Config *config.Config
	Logger log.Logger

	DBPool    *pgxpool.Pool
	Knowledge *knowledge.Store
	History   *history.Store
	Embedder  embedding.Embedder
	Retrieval *retrieval.Engine
	Ingest    *ingest.Service
	Chat      *chat.Service
}

// New builds the full component graph: config → database pool → stores →
// embedder → retrieval engine → ingestion and chat services.
func New(ctx context.Context, cfg *config.Config, logger log.Logger) (*App, error) {
	if logger == nil {
		logger = log.New(log.Config{})
	}

	pool, err := database.NewPool(ctx, cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	knowledgeStore := knowledge.NewStore(pool, logger.With("component", "knowledge"))
	historyStore := history.NewStore(pool, logger.With("component", "history"))

	embedder := embedding.NewOpenAI(cfg.OpenAIAPIKey, cfg.EmbedderModel,
		embedding.WithMaxBatchSize(cfg.EmbedBatchSize),
		embedding.WithLogger(logger.With("component", "embedding")))

	engine := retrieval.NewEngine(knowledgeStore, embedder, logger.With("component", "retrieval"))

	ingestSvc := ingest.NewService(knowledgeStore, embedder, ingest.Config{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
	}, logger.With("component", "ingest"))

	completer := chat.NewOpenAICompleter(cfg.OpenAIAPIKey, cfg.ChatModel)
	chatSvc := chat.NewService(completer, engine, historyStore, chat.Config{
		TopK:               cfg.TopK,
		MaxHistoryMessages: cfg.MaxHistoryMessages,
	}, logger.With("component", "chat"))

	return &App{
		Config:    cfg,
		Logger:    logger,
		DBPool:    pool,
		Knowledge: knowledgeStore,
		History:   historyStore,
		Embedder:  embedder,
		Retrieval: engine,
		Ingest:    ingestSvc,
		Chat:      chatSvc,
	}, nil
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.DBPool != nil {
		a.DBPool.Close()
		a.Logger.Debug("database pool closed")
	}
}
