package eval

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopgraph/backend/pkg/ai"
	"github.com/shopgraph/backend/pkg/common"
	"github.com/shopgraph/backend/pkg/graph"
	"github.com/shopgraph/backend/pkg/retriever"
	"github.com/shopgraph/backend/pkg/store"
)

// stubAIClient answers instantly with a canned response; the small delay
// keeps jobs observable mid-run.
type stubAIClient struct {
	delay time.Duration
}

func (s stubAIClient) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	return "ok", nil
}

func (s stubAIClient) GenerateCompletionWithFormat(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
	return common.ErrExternalService
}

func (s stubAIClient) GenerateAnswer(ctx context.Context, question string, items []common.ContextItem) (ai.Answer, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return ai.Answer{}, ctx.Err()
		}
	}
	return ai.Answer{
		Text:    "The Nike Air Max 270 costs around ₹8000 and is made by Nike.",
		Sources: []common.Source{{Source: "doc:1", Score: 0.8}},
	}, nil
}

func (s stubAIClient) GenerateEmbedding(ctx context.Context, input string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

type emptyIndex struct{}

func (emptyIndex) Search(ctx context.Context, query string, topK int) ([]store.ScoredChunk, error) {
	return []store.ScoredChunk{}, nil
}
func (emptyIndex) Insert(ctx context.Context, chunks []store.Chunk) error { return nil }
func (emptyIndex) Clear(ctx context.Context) error                        { return nil }
func (emptyIndex) Count(ctx context.Context) (int64, error)               { return 0, nil }

func fiveQuestionBenchmark() []Question {
	return []Question{
		{ID: "Q1", Question: "What is the price of Nike Air Max 270?", Category: CategoryEntityLookup, Difficulty: DifficultyEasy, GroundTruth: "Around ₹8000.", ExpectedEntities: []string{"Nike"}},
		{ID: "Q2", Question: "What brand makes the UltraBoost Light?", Category: CategoryEntityLookup, Difficulty: DifficultyEasy, GroundTruth: "Adidas."},
		{ID: "Q3", Question: "Compare Nike and Adidas shoes", Category: CategoryComparison, Difficulty: DifficultyMedium, GroundTruth: "Both make running shoes."},
		{ID: "Q4", Question: "Which brands are in the Footwear category?", Category: CategoryRelationship, Difficulty: DifficultyMedium, GroundTruth: "Nike and Adidas."},
		{ID: "Q5", Question: "Recommend running shoes under ₹10000", Category: CategoryReasoning, Difficulty: DifficultyHard, GroundTruth: "Mid-range Nike models."},
	}
}

func newTestHarness(t *testing.T, delay time.Duration, benchmark []Question) *Harness {
	t.Helper()
	g := graph.NewStore()
	if _, err := g.UpsertEntity(graph.TypeBrand, "Nike", nil); err != nil {
		t.Fatalf("UpsertEntity returned error: %v", err)
	}
	r := retriever.New(g, emptyIndex{})
	return NewHarness(NewHarnessParams{
		Retriever: r,
		Client:    stubAIClient{delay: delay},
		Graph:     g,
		Engine:    NewEngine(HeuristicJudge{}, nil),
		Benchmark: benchmark,
	})
}

func waitForCompletion(t *testing.T, h *Harness) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if !h.Progress().Running {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("evaluation did not finish in time")
}

func TestStartSingleFlight(t *testing.T) {
	h := newTestHarness(t, 5*time.Millisecond, fiveQuestionBenchmark())

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.Start([]retriever.Mode{retriever.ModeHybrid}, "", "", 0)
		}(i)
	}
	wg.Wait()

	conflicts := 0
	for _, err := range errs {
		if errors.Is(err, common.ErrConflict) {
			conflicts++
		} else if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if conflicts != 1 {
		t.Errorf("expected exactly one conflict, got %d", conflicts)
	}
	waitForCompletion(t, h)
}

func TestProgressMonotonicToExactly100(t *testing.T) {
	h := newTestHarness(t, 2*time.Millisecond, fiveQuestionBenchmark())

	if _, err := h.Start([]retriever.Mode{retriever.ModeHybrid}, "", "", 0); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	last := -1.0
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		p := h.Progress()
		if p.Percentage < last {
			t.Fatalf("progress regressed from %f to %f", last, p.Percentage)
		}
		last = p.Percentage
		if !p.Running {
			break
		}
		time.Sleep(time.Millisecond)
	}

	final := h.Progress()
	if final.Running {
		t.Fatal("evaluation did not finish in time")
	}
	if final.Percentage != 100 {
		t.Errorf("expected exactly 100 percent, got %f", final.Percentage)
	}
	if res := h.Results(); res.Status != StatusComplete {
		t.Errorf("expected complete status, got %s", res.Status)
	}
}

func TestStartAggregatesExactlyRequestedModes(t *testing.T) {
	h := newTestHarness(t, 0, fiveQuestionBenchmark())

	info, err := h.Start([]retriever.Mode{retriever.ModeVectorOnly, retriever.ModeHybrid}, "", "", 2)
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if info.TotalEvaluations != 4 {
		t.Errorf("expected total_evaluations 4, got %d", info.TotalEvaluations)
	}
	waitForCompletion(t, h)

	res := h.Results()
	if len(res.Results) != 4 {
		t.Errorf("expected 4 records, got %d", len(res.Results))
	}
	if len(res.Aggregated) != 2 {
		t.Fatalf("expected aggregates for exactly 2 modes, got %d", len(res.Aggregated))
	}
	for _, mode := range []retriever.Mode{retriever.ModeVectorOnly, retriever.ModeHybrid} {
		agg, ok := res.Aggregated[mode]
		if !ok {
			t.Errorf("missing aggregate for mode %s", mode)
			continue
		}
		if agg.Count != 2 {
			t.Errorf("mode %s: expected 2 records, got %d", mode, agg.Count)
		}
		if agg.HallucinationRate < 0 || agg.HallucinationRate > 1 {
			t.Errorf("mode %s: hallucination rate %f outside [0,1]", mode, agg.HallucinationRate)
		}
	}
}

func TestStartUnknownModeAndCategory(t *testing.T) {
	h := newTestHarness(t, 0, fiveQuestionBenchmark())

	if _, err := h.Start([]retriever.Mode{"keyword"}, "", "", 0); !errors.Is(err, common.ErrValidation) {
		t.Errorf("expected validation error for unknown mode, got %v", err)
	}
	if _, err := h.Start(nil, Category("trivia"), "", 0); !errors.Is(err, common.ErrValidation) {
		t.Errorf("expected validation error for unknown category, got %v", err)
	}
}

func TestResultsNoResultsBeforeFirstRun(t *testing.T) {
	h := newTestHarness(t, 0, fiveQuestionBenchmark())
	if res := h.Results(); res.Status != StatusNoResults {
		t.Errorf("expected no_results before any run, got %s", res.Status)
	}
}

func TestRunSingleBypassesJobState(t *testing.T) {
	h := newTestHarness(t, 0, fiveQuestionBenchmark())

	records, err := h.RunSingle(context.Background(),
		"What is the price of Nike Air Max 270?", "Around ₹8000.",
		[]retriever.Mode{retriever.ModeGraphOnly, retriever.ModeHybrid})
	if err != nil {
		t.Fatalf("RunSingle returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	for mode, r := range records {
		if r.Error != "" {
			t.Errorf("mode %s: unexpected error %q", mode, r.Error)
		}
		if r.RelevanceScore < 1 || r.RelevanceScore > 5 {
			t.Errorf("mode %s: relevance %f outside [1,5]", mode, r.RelevanceScore)
		}
	}
	if h.Progress().Total != 0 {
		t.Error("RunSingle must not touch the job state")
	}

	if _, err := h.RunSingle(context.Background(), "", "", nil); !errors.Is(err, common.ErrValidation) {
		t.Errorf("expected validation error for empty question, got %v", err)
	}
}
