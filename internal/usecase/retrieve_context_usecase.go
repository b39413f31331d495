package usecase

import (
	"context"
	"log/slog"

	"notice-orchestrator/internal/domain"
)

const (
	// DefaultK is the number of hits retrieved when the caller gives none.
	DefaultK = 6
	// MaxK bounds the per-request retrieval size.
	MaxK = 10
)

// RetrieveContextInput defines the parameters of a top-k retrieval.
type RetrieveContextInput struct {
	Query string
	K     int
}

// RetrieveContextUsecase wraps a top-k semantic query against the
// vector store. Retrieval is best-effort: any encoder or store failure
// degrades to zero hits so drafting can proceed with an explicit
// no-context marker instead of failing the request.
type RetrieveContextUsecase interface {
	Execute(ctx context.Context, input RetrieveContextInput) []domain.Hit
}

type retrieveContextUsecase struct {
	repo    domain.ChunkRepository
	encoder domain.VectorEncoder
	log     *slog.Logger
}

func NewRetrieveContextUsecase(repo domain.ChunkRepository, encoder domain.VectorEncoder, log *slog.Logger) RetrieveContextUsecase {
	return &retrieveContextUsecase{repo: repo, encoder: encoder, log: log}
}

func (u *retrieveContextUsecase) Execute(ctx context.Context, input RetrieveContextInput) []domain.Hit {
	k := ClampK(input.K)

	embeddings, err := u.encoder.Encode(ctx, []string{input.Query})
	if err != nil || len(embeddings) == 0 {
		u.log.Warn("query embedding failed, proceeding without context", "error", err)
		return nil
	}

	results, err := u.repo.Search(ctx, embeddings[0], k)
	if err != nil {
		u.log.Warn("vector search failed, proceeding without context", "error", err)
		return nil
	}

	hits := make([]domain.Hit, 0, len(results))
	for _, res := range results {
		hits = append(hits, domain.Hit{
			ChunkID:     res.Chunk.ID,
			Document:    res.Chunk.Content,
			Source:      res.Chunk.Source,
			SourceLabel: res.Chunk.SourceLabel,
			Score:       res.Score,
		})
	}
	return hits
}

// ClampK normalizes a caller-supplied k into [1, MaxK], defaulting to
// DefaultK when unset.
func ClampK(k int) int {
	switch {
	case k <= 0:
		return DefaultK
	case k > MaxK:
		return MaxK
	default:
		return k
	}
}
