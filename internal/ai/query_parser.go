// file: internal/ai/query_parser.go
// version: 1.1.0
// guid: 9a0b1c2d-3e4f-5a6b-7c8d-9e0f1a2b3c4d

package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"
)

// GuessedTitle represents a movie title extracted from a free-form query
type GuessedTitle struct {
	Title      string `json:"title"`
	Confidence string `json:"confidence"` // high, medium, low
}

// QueryParser handles AI-powered interpretation of free-form movie queries
// using OpenAI. It is an optional collaborator: when disabled, every call
// fails fast and the recommendation path treats that as "no guess".
type QueryParser struct {
	client  *openai.Client
	model   string
	enabled bool
}

// NewQueryParser creates a new query parser
func NewQueryParser(apiKey string, enabled bool) *QueryParser {
	if !enabled || apiKey == "" {
		return &QueryParser{enabled: false}
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	return &QueryParser{
		client:  &client,
		model:   "gpt-4o-mini", // Fast and cost-effective
		enabled: true,
	}
}

// IsEnabled returns whether the parser is enabled
func (p *QueryParser) IsEnabled() bool {
	return p.enabled
}

// GuessTitle uses OpenAI to extract the most likely movie title from a
// free-form description ("that dream heist movie with DiCaprio").
func (p *QueryParser) GuessTitle(ctx context.Context, text string) (string, error) {
	if !p.enabled {
		return "", fmt.Errorf("query parser is not enabled")
	}

	systemPrompt := `You are an expert at identifying movies from vague descriptions. Given a user's free-form text, name the single movie they are most likely referring to.

Return ONLY valid JSON:
{
  "title": "movie title",
  "confidence": "high|medium|low"
}

Use the movie's common English release title. If no movie can be identified, return an empty title.`

	userPrompt := fmt.Sprintf("Identify the movie:\n\n%s", text)

	jsonObjectFormat := shared.NewResponseFormatJSONObjectParam()

	completion, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Model:       shared.ChatModel(p.model),
		Temperature: param.NewOpt(0.1),
		MaxTokens:   param.NewOpt[int64](100),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &jsonObjectFormat,
		},
	})

	if err != nil {
		return "", fmt.Errorf("OpenAI API call failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	var guess GuessedTitle
	content := completion.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), &guess); err != nil {
		return "", fmt.Errorf("failed to parse OpenAI response: %w", err)
	}

	if guess.Title == "" {
		return "", fmt.Errorf("no movie identified")
	}

	return guess.Title, nil
}
