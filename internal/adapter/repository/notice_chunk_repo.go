package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"notice-orchestrator/internal/domain"
)

type NoticeChunkRepository struct {
	pool *pgxpool.Pool
	dim  int
}

// NewNoticeChunkRepository creates the pgvector-backed chunk store.
// dim is the embedding dimensionality used for the vector column.
func NewNoticeChunkRepository(pool *pgxpool.Pool, dim int) *NoticeChunkRepository {
	return &NoticeChunkRepository{pool: pool, dim: dim}
}

var _ domain.ChunkRepository = (*NoticeChunkRepository)(nil)

// EnsureSchema creates the extension, table and ivfflat index if they
// do not exist yet.
func (r *NoticeChunkRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS notice_chunks (
			id UUID PRIMARY KEY,
			content TEXT NOT NULL,
			source TEXT NOT NULL,
			source_label TEXT NOT NULL,
			embedding vector(%d),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, r.dim)
	if _, err := r.pool.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create notice_chunks table: %w", err)
	}

	createIndex := `
		CREATE INDEX IF NOT EXISTS notice_chunks_embedding_idx
		ON notice_chunks
		USING ivfflat (embedding vector_cosine_ops)
		WITH (lists = 100)`
	if _, err := r.pool.Exec(ctx, createIndex); err != nil {
		return fmt.Errorf("failed to create embedding index: %w", err)
	}

	return nil
}

func (r *NoticeChunkRepository) BulkInsertChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	rows := make([][]interface{}, len(chunks))
	for i, chunk := range chunks {
		rows[i] = []interface{}{
			chunk.ID,
			chunk.Content,
			chunk.Source,
			chunk.SourceLabel,
			chunk.Embedding,
			chunk.CreatedAt,
		}
	}

	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"notice_chunks"},
		[]string{"id", "content", "source", "source_label", "embedding", "created_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to bulk insert chunks: %w", err)
	}

	return nil
}

func (r *NoticeChunkRepository) Search(ctx context.Context, queryVector []float32, limit int) ([]domain.SearchResult, error) {
	query := `
		SELECT id, content, source, source_label, embedding, created_at,
		       1 - (embedding <=> $1) AS score
		FROM notice_chunks
		ORDER BY embedding <=> $1
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, pgvector.NewVector(queryVector), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var results []domain.SearchResult
	for rows.Next() {
		var res domain.SearchResult
		if err := rows.Scan(
			&res.Chunk.ID,
			&res.Chunk.Content,
			&res.Chunk.Source,
			&res.Chunk.SourceLabel,
			&res.Chunk.Embedding,
			&res.Chunk.CreatedAt,
			&res.Score,
		); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return results, nil
}

func (r *NoticeChunkRepository) HasChunks(ctx context.Context) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM notice_chunks)").Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check notice_chunks: %w", err)
	}
	return exists, nil
}

func (r *NoticeChunkRepository) CountChunks(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM notice_chunks").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count notice_chunks: %w", err)
	}
	return count, nil
}
