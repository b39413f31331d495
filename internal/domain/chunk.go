package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// ErrDocumentNotFound is returned when an ingest path does not resolve
// to a regular file.
var ErrDocumentNotFound = errors.New("document not found")

// Chunk is one indexed span of source document text. Chunks are
// immutable: they are inserted once at ingestion and never updated.
type Chunk struct {
	ID          uuid.UUID
	Content     string
	Source      string // resolved path of the source document
	SourceLabel string // human-readable label, defaults to filename stem
	Embedding   pgvector.Vector
	CreatedAt   time.Time
}

// Hit is a single retrieval result. Hits are constructed fresh per
// query and never persisted; rank is the store's similarity order.
type Hit struct {
	ChunkID     uuid.UUID
	Document    string
	Source      string
	SourceLabel string
	Score       float32
}

// SearchResult pairs a stored chunk with its similarity score.
type SearchResult struct {
	Chunk Chunk
	Score float32
}

// ChunkRepository defines the vector-store operations the service needs.
type ChunkRepository interface {
	// BulkInsertChunks inserts all chunks in one batch. No dedup.
	BulkInsertChunks(ctx context.Context, chunks []Chunk) error

	// Search returns up to limit chunks ordered most-similar-first.
	Search(ctx context.Context, queryVector []float32, limit int) ([]SearchResult, error)

	// HasChunks reports whether the store holds any chunks at all.
	HasChunks(ctx context.Context) (bool, error)

	// CountChunks returns the number of indexed chunks.
	CountChunks(ctx context.Context) (int64, error)
}
