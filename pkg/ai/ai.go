package ai

import (
	"context"

	"github.com/shopgraph/backend/pkg/common"
)

// GenerateOptions holds configuration for AI generation requests.
type GenerateOptions struct {
	Model         string   // Model identifier to use for generation
	SystemPrompts []string // System prompts prepended to the request
	Temperature   float64  // Sampling temperature (0.0-2.0)
}

// GenerateOption is a functional option for configuring AI generation requests.
type GenerateOption func(*GenerateOptions)

// WithModel returns a GenerateOption that sets the model to use for generation.
func WithModel(model string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Model = model
	}
}

// WithSystemPrompts returns a GenerateOption that sets the system prompts
// to prepend to the generation request.
func WithSystemPrompts(prompts ...string) GenerateOption {
	return func(o *GenerateOptions) {
		o.SystemPrompts = prompts
	}
}

// WithTemperature returns a GenerateOption that sets the sampling temperature.
// Higher values (e.g., 1.0) produce more random outputs, while lower values
// (e.g., 0.2) make outputs more focused and deterministic.
func WithTemperature(temp float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temp
	}
}

// Answer is a generated answer together with the sources it cites.
type Answer struct {
	Text    string          `json:"answer"`
	Sources []common.Source `json:"sources"`
}

// Client defines the AI capabilities the engine consumes: free-form and
// schema-constrained completions, grounded answer generation, and text
// embeddings. Implementations handle transport, models and credentials.
type Client interface {
	GenerateCompletion(
		ctx context.Context,
		prompt string,
		opts ...GenerateOption,
	) (string, error)
	GenerateCompletionWithFormat(
		ctx context.Context,
		name string,
		description string,
		prompt string,
		out any,
		opts ...GenerateOption,
	) error

	// GenerateAnswer produces an answer to the question grounded in the
	// given context items. It must accept an empty context, in which case
	// it degrades to an "I don't know" style answer instead of failing.
	GenerateAnswer(
		ctx context.Context,
		question string,
		items []common.ContextItem,
	) (Answer, error)

	GenerateEmbedding(ctx context.Context, input string) ([]float32, error)
}
