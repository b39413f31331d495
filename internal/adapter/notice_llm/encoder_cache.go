package notice_llm

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"notice-orchestrator/internal/domain"
)

// CachingEncoder memoizes embeddings per input text in an LRU cache.
// Retrieval embeds the same short queries repeatedly across the
// clarify, generate and dynamic-draft paths; caching spares the
// embedder round-trip. The cache is safe for concurrent use.
type CachingEncoder struct {
	inner domain.VectorEncoder
	cache *lru.Cache[string, []float32]
}

func NewCachingEncoder(inner domain.VectorEncoder, size int) (*CachingEncoder, error) {
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, err
	}
	return &CachingEncoder{inner: inner, cache: cache}, nil
}

func (c *CachingEncoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int

	for i, t := range texts {
		if v, ok := c.cache.Get(t); ok {
			out[i] = v
			continue
		}
		missing = append(missing, t)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) > 0 {
		embedded, err := c.inner.Encode(ctx, missing)
		if err != nil {
			return nil, err
		}
		if len(embedded) != len(missing) {
			return nil, fmt.Errorf("expected %d embeddings, got %d", len(missing), len(embedded))
		}
		for j, idx := range missingIdx {
			out[idx] = embedded[j]
			c.cache.Add(missing[j], embedded[j])
		}
	}

	return out, nil
}

func (c *CachingEncoder) Version() string {
	return c.inner.Version()
}

var _ domain.VectorEncoder = (*CachingEncoder)(nil)
