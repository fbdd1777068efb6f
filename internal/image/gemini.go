package image

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Gemini renders images with the Imagen models of the Gemini API
type Gemini struct {
	model   string
	baseURL string
}

// NewGemini creates an Imagen producer
func NewGemini(cfg Config) *Gemini {
	if cfg.Model == "" {
		cfg.Model = DefaultConfig("gemini").Model
	}
	return &Gemini{model: cfg.Model, baseURL: cfg.BaseURL}
}

// Name returns the producer name
func (g *Gemini) Name() string {
	return "gemini"
}

// Generate renders the prompt and returns the image bytes
func (g *Gemini) Generate(ctx context.Context, req Request) (*Image, error) {
	if req.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required for image generation")
	}

	cc := &genai.ClientConfig{APIKey: req.APIKey, Backend: genai.BackendGeminiAPI}
	if g.baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: g.baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	prompt := promptFor(req)
	resp, err := client.Models.GenerateImages(ctx, g.model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    "1:1",
	})
	if err != nil {
		return nil, fmt.Errorf("gemini image API error: %w", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil ||
		len(resp.GeneratedImages[0].Image.ImageBytes) == 0 {
		return nil, ErrNoImage
	}

	out := resp.GeneratedImages[0].Image
	mime := out.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return &Image{Data: out.ImageBytes, MIMEType: mime, Source: g.Name(), Prompt: prompt}, nil
}
