// Package pgx implements VectorIndex on PostgreSQL with the pgvector
// extension. Chosen over the in-process index when DATABASE_URL is set.
package pgx

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/pgvector/pgvector-go"

	"github.com/shopgraph/backend/pkg/common"
	"github.com/shopgraph/backend/pkg/logger"
	"github.com/shopgraph/backend/pkg/store"
)

// pgxIConn abstracts the pool so tests can swap in a recording fake.
type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Embedder is the subset of the AI client the index needs.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, input string) ([]float32, error)
}

type Index struct {
	conn     pgxIConn
	embedder Embedder
}

type NewIndexParams struct {
	Conn          pgxIConn
	Embedder      Embedder
	DatabaseURL   string
	MigrationsDir string
}

// NewIndex wires the adapter and brings the schema up to date. Pass an
// empty MigrationsDir to skip migrations, e.g. in tests.
func NewIndex(params NewIndexParams) (*Index, error) {
	if params.MigrationsDir != "" {
		m, err := migrate.New("file://"+params.MigrationsDir, params.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("opening migrations: %w", err)
		}
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			logger.Warn("Failed to close migration handles", "sourceErr", srcErr, "dbErr", dbErr)
		}
	}
	return &Index{conn: params.Conn, embedder: params.Embedder}, nil
}

func (p *Index) Insert(ctx context.Context, chunks []store.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	tx, err := p.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning insert transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, c := range chunks {
		if c.Text == "" {
			return fmt.Errorf("%w: chunk text must not be empty", common.ErrValidation)
		}
		if len(c.Embedding) == 0 {
			embedding, err := p.embedder.GenerateEmbedding(ctx, c.Text)
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
		_, err := tx.Exec(ctx, `
			INSERT INTO chunks (id, text, source, title, embedding)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE
			SET text = EXCLUDED.text, source = EXCLUDED.source,
			    title = EXCLUDED.title, embedding = EXCLUDED.embedding
		`, c.ID, c.Text, c.Source, c.Title, pgvector.NewVector(c.Embedding))
		if err != nil {
			return fmt.Errorf("inserting chunk %s: %w", c.ID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing insert transaction: %w", err)
	}
	return nil
}

func (p *Index) Search(ctx context.Context, query string, topK int) ([]store.ScoredChunk, error) {
	if topK <= 0 {
		return []store.ScoredChunk{}, nil
	}
	queryEmbedding, err := p.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	rows, err := p.conn.Query(ctx, `
		SELECT id, text, source, title, embedding <=> $1 AS distance
		FROM chunks
		ORDER BY distance ASC
		LIMIT $2
	`, pgvector.NewVector(queryEmbedding), topK)
	if err != nil {
		return nil, fmt.Errorf("searching chunks: %w", err)
	}
	defer rows.Close()

	results := make([]store.ScoredChunk, 0, topK)
	for rows.Next() {
		var sc store.ScoredChunk
		var distance float64
		if err := rows.Scan(&sc.ID, &sc.Text, &sc.Source, &sc.Title, &distance); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		// Cosine distance runs 0..2; anything past 1 is dissimilar.
		sc.Score = 1 - distance
		if sc.Score < 0 {
			sc.Score = 0
		} else if sc.Score > 1 {
			sc.Score = 1
		}
		results = append(results, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return results, nil
}

func (p *Index) Clear(ctx context.Context) error {
	if _, err := p.conn.Exec(ctx, "DELETE FROM chunks"); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}
	return nil
}

func (p *Index) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := p.conn.QueryRow(ctx, "SELECT COUNT(*) FROM chunks").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}
