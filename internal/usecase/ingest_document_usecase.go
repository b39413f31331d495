package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"notice-orchestrator/internal/domain"
)

// IngestDocumentUsecase turns a document file into indexed chunks.
// Each call inserts fresh chunks; there is no dedup across calls.
type IngestDocumentUsecase interface {
	// Ingest returns the number of chunks inserted and the resolved
	// source path. Zero chunks is a valid, non-error result.
	Ingest(ctx context.Context, path, label string) (int, string, error)
}

type ingestDocumentUsecase struct {
	repo      domain.ChunkRepository
	extractor domain.PageExtractor
	encoder   domain.VectorEncoder
	chunker   *domain.WordChunker
	log       *slog.Logger
}

func NewIngestDocumentUsecase(
	repo domain.ChunkRepository,
	extractor domain.PageExtractor,
	encoder domain.VectorEncoder,
	chunker *domain.WordChunker,
	log *slog.Logger,
) IngestDocumentUsecase {
	return &ingestDocumentUsecase{
		repo:      repo,
		extractor: extractor,
		encoder:   encoder,
		chunker:   chunker,
		log:       log,
	}
}

func (u *ingestDocumentUsecase) Ingest(ctx context.Context, path, label string) (int, string, error) {
	resolved, err := filepath.Abs(path)
	if err != nil {
		resolved = path
	}

	info, err := os.Stat(resolved)
	if err != nil || !info.Mode().IsRegular() {
		return 0, resolved, fmt.Errorf("no file found at %s: %w", resolved, domain.ErrDocumentNotFound)
	}

	pages, err := u.extractor.ExtractPages(resolved)
	if err != nil {
		// Unreadable documents (e.g. scanned images with no text
		// layer) yield zero chunks rather than an error.
		u.log.Warn("text extraction failed, ingesting nothing", "path", resolved, "error", err)
		return 0, resolved, nil
	}

	// Chunk each page independently so a chunk never spans a page
	// boundary. Pages without extractable text are skipped.
	var contents []string
	for _, page := range pages {
		contents = append(contents, u.chunker.Chunk(page)...)
	}
	if len(contents) == 0 {
		return 0, resolved, nil
	}

	sourceLabel := strings.TrimSpace(label)
	if sourceLabel == "" {
		sourceLabel = fileStem(resolved)
	}

	embeddings, err := u.encoder.Encode(ctx, contents)
	if err != nil {
		return 0, resolved, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(embeddings) != len(contents) {
		return 0, resolved, fmt.Errorf("expected %d embeddings, got %d", len(contents), len(embeddings))
	}

	now := time.Now()
	chunks := make([]domain.Chunk, len(contents))
	for i, content := range contents {
		chunks[i] = domain.Chunk{
			ID:          uuid.New(),
			Content:     content,
			Source:      resolved,
			SourceLabel: sourceLabel,
			Embedding:   pgvector.NewVector(embeddings[i]),
			CreatedAt:   now,
		}
	}

	if err := u.repo.BulkInsertChunks(ctx, chunks); err != nil {
		return 0, resolved, fmt.Errorf("failed to insert chunks: %w", err)
	}

	u.log.Info("document ingested", "path", resolved, "label", sourceLabel, "chunks", len(chunks))
	return len(chunks), resolved, nil
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
