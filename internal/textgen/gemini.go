package textgen

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"

	"codeberg.org/snonux/vocabquiz/internal/quiz"
)

// Gemini generates quiz records with the Gemini API
type Gemini struct {
	config Config
	labels *labelPicker

	mu      sync.Mutex
	clients map[string]*genai.Client // keyed by API key
}

// NewGemini creates a Gemini text producer
func NewGemini(cfg Config) *Gemini {
	if cfg.Model == "" {
		cfg.Model = DefaultConfig("gemini").Model
	}
	return &Gemini{
		config:  cfg,
		labels:  &labelPicker{rng: newRand(cfg.Rand)},
		clients: make(map[string]*genai.Client),
	}
}

// Name returns the producer name
func (g *Gemini) Name() string {
	return "gemini"
}

// Generate asks Gemini for a quiz record for req.Word
func (g *Gemini) Generate(ctx context.Context, req Request) (*quiz.Record, error) {
	if req.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	client, err := g.client(ctx, req.APIKey)
	if err != nil {
		return nil, err
	}

	prompt := BuildPrompt(req.Word, g.config.Language, g.labels.pick())
	temp := g.config.Temperature
	resp, err := client.Models.GenerateContent(ctx, g.config.Model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       &temp,
		ResponseMIMEType:  "application/json",
		ResponseSchema:    recordSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("gemini API error: %w", err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("%w: %s", ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return nil, ErrContentBlocked
	}

	return ParseRecord(resp.Text(), req.Word)
}

// client returns a cached client for the API key, creating it on first use.
// The key can change at runtime when the user enters a new one.
func (g *Gemini) client(ctx context.Context, apiKey string) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if c, ok := g.clients[apiKey]; ok {
		return c, nil
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if g.config.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: g.config.BaseURL}
	}

	c, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	g.clients[apiKey] = c
	return c, nil
}

func recordSchema() *genai.Schema {
	str := &genai.Schema{Type: genai.TypeString}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"word":         str,
			"phonetic":     str,
			"memory_cue":   str,
			"image_prompt": str,
			"options": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"label": {Type: genai.TypeString, Enum: quiz.Labels},
						"text":  str,
					},
					Required: []string{"label", "text"},
				},
			},
			"correct_label": {Type: genai.TypeString, Enum: quiz.Labels},
		},
		Required:         []string{"word", "phonetic", "memory_cue", "image_prompt", "options", "correct_label"},
		PropertyOrdering: []string{"word", "phonetic", "memory_cue", "image_prompt", "options", "correct_label"},
	}
}
