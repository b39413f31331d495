package domain

import "context"

// VectorEncoder maps texts to embedding vectors.
type VectorEncoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
	Version() string
}
