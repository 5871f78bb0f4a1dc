// Package memory provides an in-process VectorIndex backed by a plain
// slice and exact cosine similarity. It is the default adapter when no
// database connection is configured and is also used by tests.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/shopgraph/backend/pkg/common"
	"github.com/shopgraph/backend/pkg/store"
)

// Embedder is the subset of the AI client the index needs.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, input string) ([]float32, error)
}

type Index struct {
	mu       sync.RWMutex
	chunks   []store.Chunk
	embedder Embedder
}

func NewIndex(embedder Embedder) *Index {
	return &Index{embedder: embedder}
}

func (m *Index) Insert(ctx context.Context, chunks []store.Chunk) error {
	prepared := make([]store.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if c.Text == "" {
			return fmt.Errorf("%w: chunk text must not be empty", common.ErrValidation)
		}
		if len(c.Embedding) == 0 {
			embedding, err := m.embedder.GenerateEmbedding(ctx, c.Text)
			if err != nil {
				return fmt.Errorf("embedding chunk: %w", err)
			}
			c.Embedding = embedding
		}
		if c.ID == "" {
			id, err := gonanoid.New()
			if err != nil {
				return fmt.Errorf("generating chunk id: %w", err)
			}
			c.ID = id
		}
		prepared = append(prepared, c)
	}

	m.mu.Lock()
	m.chunks = append(m.chunks, prepared...)
	m.mu.Unlock()
	return nil
}

func (m *Index) Search(ctx context.Context, query string, topK int) ([]store.ScoredChunk, error) {
	if topK <= 0 {
		return []store.ScoredChunk{}, nil
	}
	queryEmbedding, err := m.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	m.mu.RLock()
	scored := make([]store.ScoredChunk, 0, len(m.chunks))
	for _, c := range m.chunks {
		score := cosineSimilarity(queryEmbedding, c.Embedding)
		scored = append(scored, store.ScoredChunk{Chunk: c, Score: clamp01(score)})
	}
	m.mu.RUnlock()

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

func (m *Index) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.chunks = nil
	m.mu.Unlock()
	return nil
}

func (m *Index) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.chunks)), nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
