package memory

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopgraph/backend/pkg/common"
	"github.com/shopgraph/backend/pkg/store"
)

// axisEmbedder maps known phrases onto fixed unit vectors so similarity
// ordering is predictable.
type axisEmbedder struct{}

func (axisEmbedder) GenerateEmbedding(ctx context.Context, input string) ([]float32, error) {
	switch {
	case strings.Contains(input, "running"):
		return []float32{1, 0, 0}, nil
	case strings.Contains(input, "headphones"):
		return []float32{0, 1, 0}, nil
	case strings.Contains(input, "jogging"):
		return []float32{0.9, 0.1, 0}, nil
	default:
		return []float32{0, 0, 1}, nil
	}
}

func seedIndex(t *testing.T) *Index {
	t.Helper()
	idx := NewIndex(axisEmbedder{})
	err := idx.Insert(context.Background(), []store.Chunk{
		{Text: "Nike Air Max 270 running shoes with Air cushioning", Source: "product:nike_air_max_270"},
		{Text: "Sony WH-1000XM5 noise cancelling headphones", Source: "product:sony_wh_1000xm5"},
		{Text: "A cast iron skillet for even heating", Source: "product:skillet"},
	})
	if err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	return idx
}

func TestSearchOrdersByScore(t *testing.T) {
	idx := seedIndex(t)

	results, err := idx.Search(context.Background(), "best shoes for jogging", 2)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Source != "product:nike_air_max_270" {
		t.Errorf("expected running shoes first, got %s", results[0].Source)
	}
	if results[0].Score < results[1].Score {
		t.Errorf("results not sorted by score: %f < %f", results[0].Score, results[1].Score)
	}
	for _, r := range results {
		if r.Score < 0 || r.Score > 1 {
			t.Errorf("score %f outside [0,1]", r.Score)
		}
	}
}

func TestSearchTopKZero(t *testing.T) {
	idx := seedIndex(t)
	results, err := idx.Search(context.Background(), "anything", 0)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results for topK=0, got %d", len(results))
	}
}

func TestInsertAssignsIDs(t *testing.T) {
	idx := NewIndex(axisEmbedder{})
	if err := idx.Insert(context.Background(), []store.Chunk{{Text: "running gear"}}); err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	results, err := idx.Search(context.Background(), "running", 1)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(results) != 1 || results[0].ID == "" {
		t.Errorf("expected generated chunk id, got %+v", results)
	}
}

func TestInsertRejectsEmptyText(t *testing.T) {
	idx := NewIndex(axisEmbedder{})
	err := idx.Insert(context.Background(), []store.Chunk{{Text: ""}})
	if !errors.Is(err, common.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestClearAndCount(t *testing.T) {
	idx := seedIndex(t)
	ctx := context.Background()

	count, err := idx.Count(ctx)
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	if count != 3 {
		t.Errorf("expected count 3, got %d", count)
	}

	if err := idx.Clear(ctx); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	count, err = idx.Count(ctx)
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	if count != 0 {
		t.Errorf("expected count 0 after clear, got %d", count)
	}
}
