package eval

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopgraph/backend/pkg/ai"
	"github.com/shopgraph/backend/pkg/logger"
)

// Judgment grades a response. Relevance is on a 1-5 scale; Accuracy is
// normalized to [0,1] and only meaningful when a ground truth was given.
type Judgment struct {
	Relevance float64
	Accuracy  float64
}

// Judge scores a response against a question and optional ground truth.
type Judge interface {
	Score(ctx context.Context, question, response, groundTruth string) (Judgment, error)
}

// judgeVerdict is the structured output requested from the model.
type judgeVerdict struct {
	Relevance int `json:"relevance" jsonschema_description:"How directly the response addresses the question, 1-5"`
	Accuracy  int `json:"accuracy" jsonschema_description:"Factual correctness against the ground truth, 1-5"`
}

// LLMJudge grades with a model and falls back to deterministic token
// overlap whenever the call fails or returns garbage. Score never returns
// an error.
type LLMJudge struct {
	client   ai.Client
	fallback HeuristicJudge
}

func NewLLMJudge(client ai.Client) *LLMJudge {
	return &LLMJudge{client: client}
}

func (j *LLMJudge) Score(ctx context.Context, question, response, groundTruth string) (Judgment, error) {
	prompt := fmt.Sprintf(ai.JudgePrompt, question, groundTruth, response)

	var verdict judgeVerdict
	err := j.client.GenerateCompletionWithFormat(
		ctx,
		"response_verdict",
		"Relevance and accuracy grades for a generated answer",
		prompt,
		&verdict,
		ai.WithTemperature(0.0),
	)
	if err != nil || verdict.Relevance < 1 {
		logger.Warn("Judge call failed, using overlap fallback", "err", err)
		return j.fallback.Score(ctx, question, response, groundTruth)
	}

	return Judgment{
		Relevance: clampRange(float64(verdict.Relevance), 1, 5),
		Accuracy:  clampRange(float64(verdict.Accuracy), 1, 5) / 5,
	}, nil
}

// HeuristicJudge scores by word overlap. Deterministic and dependency-free;
// the harness uses it directly when no AI client is configured.
type HeuristicJudge struct{}

func (HeuristicJudge) Score(ctx context.Context, question, response, groundTruth string) (Judgment, error) {
	responseWords := wordSet(response)

	relevance := 3.0
	if questionWords := wordSet(question); len(questionWords) > 0 {
		overlap := overlapRatio(responseWords, questionWords)
		relevance = clampRange(float64(int(overlap*4))+1, 1, 5)
	}

	accuracy := 0.5
	if truthWords := wordSet(groundTruth); len(truthWords) > 0 {
		accuracy = overlapRatio(responseWords, truthWords)
	}

	return Judgment{Relevance: relevance, Accuracy: accuracy}, nil
}

func wordSet(text string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[w] = struct{}{}
	}
	return set
}

// overlapRatio returns |a ∩ b| / |b|.
func overlapRatio(a, b map[string]struct{}) float64 {
	if len(b) == 0 {
		return 0
	}
	common := 0
	for w := range b {
		if _, ok := a[w]; ok {
			common++
		}
	}
	return float64(common) / float64(len(b))
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
