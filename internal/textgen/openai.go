package textgen

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"codeberg.org/snonux/vocabquiz/internal/quiz"
)

// OpenAI generates quiz records with the OpenAI chat completion API
type OpenAI struct {
	config Config
	labels *labelPicker
}

// NewOpenAI creates an OpenAI text producer
func NewOpenAI(cfg Config) *OpenAI {
	if cfg.Model == "" {
		cfg.Model = DefaultConfig("openai").Model
	}
	return &OpenAI{
		config: cfg,
		labels: &labelPicker{rng: newRand(cfg.Rand)},
	}
}

// Name returns the producer name
func (o *OpenAI) Name() string {
	return "openai"
}

// Generate asks OpenAI for a quiz record for req.Word
func (o *OpenAI) Generate(ctx context.Context, req Request) (*quiz.Record, error) {
	if req.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	clientConfig := openai.DefaultConfig(req.APIKey)
	if o.config.BaseURL != "" {
		clientConfig.BaseURL = o.config.BaseURL
	}
	client := openai.NewClientWithConfig(clientConfig)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(req.Word, o.config.Language, o.labels.pick())},
		},
		Temperature: o.config.Temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices returned", ErrInvalidResponse)
	}
	if resp.Choices[0].FinishReason == openai.FinishReasonContentFilter {
		return nil, ErrContentBlocked
	}

	return ParseRecord(resp.Choices[0].Message.Content, req.Word)
}
