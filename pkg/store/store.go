package store

import "context"

// Chunk is an embedded unit of ingested text. The engine treats chunks as
// opaque scored items; ownership of their content stays with the ingestion
// pipeline.
type Chunk struct {
	ID        string    `json:"chunk_id"`
	Text      string    `json:"text"`
	Source    string    `json:"source"`
	Title     string    `json:"title,omitempty"`
	Embedding []float32 `json:"-"`
}

// ScoredChunk is a chunk paired with its similarity score in [0,1];
// higher means more similar.
type ScoredChunk struct {
	Chunk
	Score float64 `json:"score"`
}

// VectorIndex defines nearest-neighbor search over embedded chunks.
// Implementations embed the query text themselves.
type VectorIndex interface {
	Search(ctx context.Context, query string, topK int) ([]ScoredChunk, error)
	Insert(ctx context.Context, chunks []Chunk) error
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}
