package models

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

const pingPrompt = "Reply with the single word: pong"

// Ping sends one short prompt to the text model of provider and returns
// the reply
func (l *Lister) Ping(ctx context.Context, provider, model string) (string, error) {
	switch provider {
	case "gemini":
		client, err := l.geminiClient(ctx)
		if err != nil {
			return "", err
		}
		resp, err := client.Models.GenerateContent(ctx, model, genai.Text(pingPrompt), nil)
		if err != nil {
			return "", fmt.Errorf("gemini ping failed: %w", err)
		}
		return strings.TrimSpace(resp.Text()), nil

	case "openai":
		if l.config.OpenAIKey == "" {
			return "", fmt.Errorf("openai: %w", ErrNoAPIKey)
		}
		resp, err := l.openAIClient().CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: pingPrompt},
			},
		})
		if err != nil {
			return "", fmt.Errorf("OpenAI ping failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("OpenAI ping returned no choices")
		}
		return strings.TrimSpace(resp.Choices[0].Message.Content), nil
	}
	return "", fmt.Errorf("unknown text provider: %s", provider)
}
