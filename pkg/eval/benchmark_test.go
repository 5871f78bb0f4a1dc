package eval

import (
	"errors"
	"testing"

	"github.com/shopgraph/backend/pkg/common"
)

func TestFilterByCategoryAndLimit(t *testing.T) {
	questions := DefaultBenchmark()

	filtered, err := Filter(questions, CategoryEntityLookup, "", 3)
	if err != nil {
		t.Fatalf("Filter returned error: %v", err)
	}
	if len(filtered) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(filtered))
	}
	for _, q := range filtered {
		if q.Category != CategoryEntityLookup {
			t.Errorf("question %s has category %s", q.ID, q.Category)
		}
	}
}

func TestFilterByDifficulty(t *testing.T) {
	filtered, err := Filter(DefaultBenchmark(), "", DifficultyHard, 0)
	if err != nil {
		t.Fatalf("Filter returned error: %v", err)
	}
	if len(filtered) == 0 {
		t.Fatal("expected hard questions in the default benchmark")
	}
	for _, q := range filtered {
		if q.Difficulty != DifficultyHard {
			t.Errorf("question %s has difficulty %s", q.ID, q.Difficulty)
		}
	}
}

func TestFilterUnknownValues(t *testing.T) {
	if _, err := Filter(DefaultBenchmark(), Category("trivia"), "", 0); !errors.Is(err, common.ErrValidation) {
		t.Errorf("expected validation error for unknown category, got %v", err)
	}
	if _, err := Filter(DefaultBenchmark(), "", Difficulty("impossible"), 0); !errors.Is(err, common.ErrValidation) {
		t.Errorf("expected validation error for unknown difficulty, got %v", err)
	}
}

func TestDefaultBenchmarkCoversAllCategories(t *testing.T) {
	stats := Statistics(DefaultBenchmark())
	if stats.TotalQuestions == 0 {
		t.Fatal("default benchmark is empty")
	}
	for _, c := range []Category{
		CategoryEntityLookup, CategoryRelationship, CategoryComparison,
		CategoryAggregation, CategoryReasoning,
	} {
		if stats.ByCategory[c] == 0 {
			t.Errorf("no questions in category %s", c)
		}
	}
	for _, d := range []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard} {
		if stats.ByDifficulty[d] == 0 {
			t.Errorf("no questions with difficulty %s", d)
		}
	}
}
