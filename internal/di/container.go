package di

import (
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"notice-orchestrator/internal/adapter/extract"
	"notice-orchestrator/internal/adapter/notice_llm"
	"notice-orchestrator/internal/adapter/repository"
	"notice-orchestrator/internal/domain"
	"notice-orchestrator/internal/infra/config"
	"notice-orchestrator/internal/usecase"
	"notice-orchestrator/internal/worker"
)

// ApplicationComponents holds all wired dependencies for the application.
type ApplicationComponents struct {
	ChunkRepo *repository.NoticeChunkRepository

	IngestUsecase   usecase.IngestDocumentUsecase
	RetrieveUsecase usecase.RetrieveContextUsecase
	GenerateUsecase usecase.GenerateNoticeUsecase
	DraftUsecase    usecase.DraftNoticeUsecase
	Planner         usecase.ClarificationPlanner
	GapDetector     *usecase.GapDetector

	AutoIngest *worker.AutoIngestWorker
}

// NewApplicationComponents wires all dependencies from config and
// database pool.
func NewApplicationComponents(cfg *config.Config, pool *pgxpool.Pool, log *slog.Logger) (*ApplicationComponents, error) {
	chunkRepo := repository.NewNoticeChunkRepository(pool, cfg.EmbeddingDim)

	embedder := notice_llm.NewEmbedder(cfg.EmbedderURL, cfg.EmbeddingModel, cfg.EmbedderTimeout)
	encoder, err := notice_llm.NewCachingEncoder(embedder, cfg.EmbedCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to build embedding cache: %w", err)
	}
	llm := notice_llm.NewChatClient(cfg.LLMAPIURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout, cfg.LLMRequestsPS)

	extractor := extract.NewDocumentExtractor()
	chunker := domain.NewWordChunker(cfg.ChunkMaxWords)
	builder := usecase.NewNoticePromptBuilder()
	gap := usecase.NewGapDetector()

	ingestUsecase := usecase.NewIngestDocumentUsecase(chunkRepo, extractor, encoder, chunker, log)
	retrieveUsecase := usecase.NewRetrieveContextUsecase(chunkRepo, encoder, log)
	planner := usecase.NewClarificationPlanner(llm, builder, log)
	generateUsecase := usecase.NewGenerateNoticeUsecase(gap, planner, retrieveUsecase, builder, llm, cfg.DefaultMaxTokens, log)
	draftUsecase := usecase.NewDraftNoticeUsecase(retrieveUsecase, builder, llm, planner, cfg.DefaultMaxTokens, log)

	autoIngest := worker.NewAutoIngestWorker(chunkRepo, ingestUsecase, cfg.AutoIngestDir, log)

	return &ApplicationComponents{
		ChunkRepo:       chunkRepo,
		IngestUsecase:   ingestUsecase,
		RetrieveUsecase: retrieveUsecase,
		GenerateUsecase: generateUsecase,
		DraftUsecase:    draftUsecase,
		Planner:         planner,
		GapDetector:     gap,
		AutoIngest:      autoIngest,
	}, nil
}
