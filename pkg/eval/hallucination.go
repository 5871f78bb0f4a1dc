package eval

import (
	"context"
	"fmt"

	"github.com/shopgraph/backend/pkg/ai"
)

// HallucinationChecker looks for fabricated claims the lexical heuristics
// cannot catch. Check returns a short description of what was fabricated,
// or "" when the response is clean.
type HallucinationChecker interface {
	Check(ctx context.Context, question, response, groundTruth string) (string, error)
}

// hallucinationVerdict is the structured output requested from the model.
type hallucinationVerdict struct {
	Hallucinated bool   `json:"hallucinated" jsonschema_description:"Whether the response makes claims unsupported by or contradicting the ground truth"`
	Details      string `json:"details" jsonschema_description:"Brief description of the fabricated claims, empty when none"`
}

const maxHallucinationDetails = 200

// LLMHallucinationChecker asks a model whether the response fabricates
// information beyond what the ground truth supports.
type LLMHallucinationChecker struct {
	client ai.Client
}

func NewLLMHallucinationChecker(client ai.Client) *LLMHallucinationChecker {
	return &LLMHallucinationChecker{client: client}
}

func (c *LLMHallucinationChecker) Check(ctx context.Context, question, response, groundTruth string) (string, error) {
	prompt := fmt.Sprintf(ai.HallucinationPrompt, question, groundTruth, response)

	var verdict hallucinationVerdict
	err := c.client.GenerateCompletionWithFormat(
		ctx,
		"hallucination_verdict",
		"Whether a generated answer fabricates information",
		prompt,
		&verdict,
		ai.WithTemperature(0.0),
	)
	if err != nil {
		return "", err
	}
	if !verdict.Hallucinated {
		return "", nil
	}

	details := verdict.Details
	if details == "" {
		details = "model flagged claims unsupported by the ground truth"
	}
	if len(details) > maxHallucinationDetails {
		details = details[:maxHallucinationDetails]
	}
	return details, nil
}
