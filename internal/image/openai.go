package image

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAI renders images with DALL-E
type OpenAI struct {
	model   string
	size    string
	baseURL string
}

// NewOpenAI creates a DALL-E producer
func NewOpenAI(cfg Config) *OpenAI {
	if cfg.Model == "" {
		cfg.Model = openai.CreateImageModelDallE2
	}
	if cfg.Size == "" {
		cfg.Size = openai.CreateImageSize512x512
	}
	return &OpenAI{model: cfg.Model, size: cfg.Size, baseURL: cfg.BaseURL}
}

// Name returns the producer name
func (o *OpenAI) Name() string {
	return "openai"
}

// Generate renders the prompt and returns the PNG bytes
func (o *OpenAI) Generate(ctx context.Context, req Request) (*Image, error) {
	if req.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required for image generation")
	}

	clientConfig := openai.DefaultConfig(req.APIKey)
	if o.baseURL != "" {
		clientConfig.BaseURL = o.baseURL
	}
	client := openai.NewClientWithConfig(clientConfig)

	prompt := promptFor(req)
	imgReq := openai.ImageRequest{
		Prompt:         prompt,
		Model:          o.model,
		N:              1,
		Size:           o.size,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	}
	// dall-e-3 needs a quality and style, the older model rejects them
	if strings.HasPrefix(o.model, "dall-e-3") {
		imgReq.Quality = openai.CreateImageQualityStandard
		imgReq.Style = openai.CreateImageStyleVivid
	}

	resp, err := client.CreateImage(ctx, imgReq)
	if err != nil {
		return nil, fmt.Errorf("OpenAI image API error: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, ErrNoImage
	}

	first := resp.Data[0]
	if first.B64JSON == "" {
		if first.URL == "" {
			return nil, ErrNoImage
		}
		return &Image{URL: first.URL, Source: o.Name(), Prompt: prompt}, nil
	}

	data, err := base64.StdEncoding.DecodeString(first.B64JSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image data: %w", err)
	}
	return &Image{Data: data, MIMEType: "image/png", Source: o.Name(), Prompt: prompt}, nil
}
