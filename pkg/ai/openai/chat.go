package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"

	"github.com/shopgraph/backend/pkg/ai"
	"github.com/shopgraph/backend/pkg/common"
)

// GenerateCompletion sends a single-turn prompt to the chat model and
// returns the generated completion as plain text.
func (c *Client) GenerateCompletion(
	ctx context.Context,
	prompt string,
	opts ...ai.GenerateOption,
) (string, error) {
	client := c.ChatClient
	if client == nil {
		return "", fmt.Errorf("%w: no chat endpoint configured", common.ErrExternalService)
	}

	options := ai.GenerateOptions{
		Model:       c.chatModel,
		Temperature: 0.3,
	}
	for _, o := range opts {
		o(&options)
	}

	msgs := []openai.ChatCompletionMessageParamUnion{}
	for _, sp := range options.SystemPrompts {
		msgs = append(msgs, openai.SystemMessage(sp))
	}
	msgs = append(msgs, openai.UserMessage(prompt))

	body := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(options.Model),
		Messages:    msgs,
		Temperature: openai.Float(options.Temperature),
	}

	response, err := client.Chat.Completions.New(ctx, body)
	if err != nil {
		return "", fmt.Errorf("%w: chat completion: %v", common.ErrExternalService, err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("%w: chat completion returned no choices", common.ErrExternalService)
	}

	return response.Choices[0].Message.Content, nil
}

// GenerateCompletionWithFormat sends a prompt to the chat model and
// unmarshals the response into the provided output struct, using a JSON
// schema to enforce structure. Malformed model output is repaired before
// unmarshaling.
func (c *Client) GenerateCompletionWithFormat(
	ctx context.Context,
	name string,
	description string,
	prompt string,
	out any,
	opts ...ai.GenerateOption,
) error {
	client := c.ChatClient
	if client == nil {
		return fmt.Errorf("%w: no chat endpoint configured", common.ErrExternalService)
	}

	schema := ai.GenerateSchema(out)
	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        name,
		Description: openai.String(description),
		Schema:      schema,
		Strict:      openai.Bool(true),
	}

	options := ai.GenerateOptions{
		Model:       c.chatModel,
		Temperature: 0.1,
	}
	for _, o := range opts {
		o(&options)
	}

	msgs := []openai.ChatCompletionMessageParamUnion{}
	for _, sp := range options.SystemPrompts {
		msgs = append(msgs, openai.SystemMessage(sp))
	}
	msgs = append(msgs, openai.UserMessage(prompt))

	body := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(options.Model),
		Messages:    msgs,
		Temperature: openai.Float(options.Temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: schemaParam,
			},
		},
	}

	response, err := client.Chat.Completions.New(ctx, body)
	if err != nil {
		return fmt.Errorf("%w: structured completion: %v", common.ErrExternalService, err)
	}
	if len(response.Choices) == 0 {
		return fmt.Errorf("%w: structured completion returned no choices", common.ErrExternalService)
	}

	if err := ai.UnmarshalFlexible(response.Choices[0].Message.Content, out); err != nil {
		return fmt.Errorf("%w: %v", common.ErrExternalService, err)
	}
	return nil
}

// GenerateAnswer produces an answer to the question grounded in the given
// context items. With an empty context it degrades to a short "no data"
// response rather than failing.
func (c *Client) GenerateAnswer(
	ctx context.Context,
	question string,
	items []common.ContextItem,
) (ai.Answer, error) {
	if len(items) == 0 {
		text, err := c.GenerateCompletion(ctx, question, ai.WithSystemPrompts(ai.NoDataPrompt))
		if err != nil {
			return ai.Answer{}, err
		}
		return ai.Answer{Text: text, Sources: []common.Source{}}, nil
	}

	prompt := fmt.Sprintf(ai.AnswerPrompt, ai.BuildContextBlock(items))
	text, err := c.GenerateCompletion(ctx, question, ai.WithSystemPrompts(prompt))
	if err != nil {
		return ai.Answer{}, err
	}

	return ai.Answer{Text: text, Sources: CiteSources(items)}, nil
}

// CiteSources converts context items into citations, deduplicated by source
// while keeping the highest score seen per source.
func CiteSources(items []common.ContextItem) []common.Source {
	sources := []common.Source{}
	index := map[string]int{}
	for _, item := range items {
		name := item.Source
		if name == "" {
			name = "unknown"
		}
		if i, ok := index[name]; ok {
			if item.Score > sources[i].Score {
				sources[i].Score = item.Score
			}
			continue
		}
		index[name] = len(sources)
		sources = append(sources, common.Source{
			Source: name,
			Title:  item.Title,
			Score:  item.Score,
		})
	}
	return sources
}
