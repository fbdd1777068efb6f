package models

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// ErrNoAPIKey is returned when a provider has no API key configured
var ErrNoAPIKey = errors.New("API key not configured")

// Category groups models by what they are used for
type Category string

const (
	CategoryText  Category = "text"
	CategoryImage Category = "image"
	CategoryAudio Category = "audio"
	CategoryOther Category = "other"
)

// Model is one listed model
type Model struct {
	ID       string
	Provider string
	Category Category
}

// Config holds the credentials and endpoints used for listing
type Config struct {
	OpenAIKey     string
	OpenAIBaseURL string
	GeminiKey     string
	GeminiBaseURL string
}

// Lister lists models of both providers
type Lister struct {
	config Config
}

// NewLister creates a new model lister
func NewLister(config Config) *Lister {
	return &Lister{config: config}
}

// OpenAI lists the OpenAI models available to the configured key
func (l *Lister) OpenAI(ctx context.Context) ([]Model, error) {
	if l.config.OpenAIKey == "" {
		return nil, fmt.Errorf("openai: %w (set OPENAI_API_KEY or openai.api_key)", ErrNoAPIKey)
	}

	resp, err := l.openAIClient().ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list OpenAI models: %w", err)
	}

	models := make([]Model, 0, len(resp.Models))
	for _, m := range resp.Models {
		models = append(models, Model{ID: m.ID, Provider: "openai", Category: categorizeOpenAI(m.ID)})
	}
	sortModels(models)
	return models, nil
}

// Gemini lists the Gemini models available to the configured key. Only
// models that can generate content or images are returned.
func (l *Lister) Gemini(ctx context.Context) ([]Model, error) {
	client, err := l.geminiClient(ctx)
	if err != nil {
		return nil, err
	}

	var models []Model
	for m, err := range client.Models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("failed to list Gemini models: %w", err)
		}
		category := categorizeGemini(m.Name, m.SupportedActions)
		if category == CategoryOther {
			continue
		}
		models = append(models, Model{
			ID:       strings.TrimPrefix(m.Name, "models/"),
			Provider: "gemini",
			Category: category,
		})
	}
	sortModels(models)
	return models, nil
}

// All lists the models of every provider with a key. A provider without a
// key is skipped; the first listing error is returned.
func (l *Lister) All(ctx context.Context) ([]Model, error) {
	var all []Model

	listers := []struct {
		key  string
		list func(context.Context) ([]Model, error)
	}{
		{l.config.GeminiKey, l.Gemini},
		{l.config.OpenAIKey, l.OpenAI},
	}
	for _, p := range listers {
		if p.key == "" {
			continue
		}
		models, err := p.list(ctx)
		if err != nil {
			return all, err
		}
		all = append(all, models...)
	}

	if len(all) == 0 && l.config.GeminiKey == "" && l.config.OpenAIKey == "" {
		return nil, fmt.Errorf("%w: set GEMINI_API_KEY or OPENAI_API_KEY", ErrNoAPIKey)
	}
	return all, nil
}

func (l *Lister) openAIClient() *openai.Client {
	cfg := openai.DefaultConfig(l.config.OpenAIKey)
	if l.config.OpenAIBaseURL != "" {
		cfg.BaseURL = l.config.OpenAIBaseURL
	}
	return openai.NewClientWithConfig(cfg)
}

func (l *Lister) geminiClient(ctx context.Context) (*genai.Client, error) {
	if l.config.GeminiKey == "" {
		return nil, fmt.Errorf("gemini: %w (set GEMINI_API_KEY or gemini.api_key)", ErrNoAPIKey)
	}
	cc := &genai.ClientConfig{
		APIKey:  l.config.GeminiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if l.config.GeminiBaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: l.config.GeminiBaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return client, nil
}

func categorizeOpenAI(id string) Category {
	switch {
	case strings.Contains(id, "tts") || strings.Contains(id, "audio"):
		return CategoryAudio
	case strings.Contains(id, "dall-e") || strings.Contains(id, "image"):
		return CategoryImage
	case strings.Contains(id, "gpt") || strings.Contains(id, "chat") || strings.HasPrefix(id, "o"):
		return CategoryText
	}
	return CategoryOther
}

func categorizeGemini(name string, actions []string) Category {
	switch {
	case strings.Contains(name, "imagen") || slices.Contains(actions, "predict"):
		return CategoryImage
	case strings.Contains(name, "tts"):
		return CategoryAudio
	case slices.Contains(actions, "generateContent"):
		return CategoryText
	}
	return CategoryOther
}

func sortModels(models []Model) {
	sort.Slice(models, func(i, j int) bool {
		if models[i].Category != models[j].Category {
			return models[i].Category < models[j].Category
		}
		return models[i].ID < models[j].ID
	})
}

// Print writes models grouped by provider and category
func Print(w io.Writer, models []Model) {
	if len(models) == 0 {
		fmt.Fprintln(w, "No models found")
		return
	}

	var provider string
	var category Category
	for _, m := range models {
		if m.Provider != provider {
			fmt.Fprintf(w, "\n%s models:\n", displayName(m.Provider))
			provider, category = m.Provider, ""
		}
		if m.Category != category {
			fmt.Fprintf(w, "  %s:\n", m.Category)
			category = m.Category
		}
		fmt.Fprintf(w, "    %s\n", m.ID)
	}
}

func displayName(provider string) string {
	switch provider {
	case "openai":
		return "OpenAI"
	case "gemini":
		return "Gemini"
	}
	return provider
}
