// Package image produces illustrations for quiz words. A producer returns
// either a URL the frontend can load directly or the raw image bytes.
package image

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNoImage is returned when a service answered without an image
var ErrNoImage = errors.New("no image returned")

// Image is a rendered illustration. Exactly one of URL or Data is set.
type Image struct {
	URL      string `json:"url,omitempty"`
	Data     []byte `json:"-"`
	MIMEType string `json:"mime_type,omitempty"`
	Source   string `json:"source"` // producer or "library"
	Prompt   string `json:"prompt,omitempty"`
}

// HasData reports whether the image bytes are held in memory
func (img *Image) HasData() bool {
	return img != nil && len(img.Data) > 0
}

// Request asks for an illustration of a word
type Request struct {
	Word   string
	Prompt string // falls back to FallbackPrompt(Word) when empty
	APIKey string
	Seed   uint32 // 0 derives a stable seed from Word
}

// Producer renders an illustration
type Producer interface {
	Generate(ctx context.Context, req Request) (*Image, error)
	Name() string
}

// FallbackPrompt is the illustration prompt used when no generated prompt
// is available for the word yet.
func FallbackPrompt(word string) string {
	return fmt.Sprintf("Cartoon illustration of %s, vector art, white background, vivid colors", strings.TrimSpace(word))
}

func promptFor(req Request) string {
	if p := strings.TrimSpace(req.Prompt); p != "" {
		return p
	}
	return FallbackPrompt(req.Word)
}

// Config configures the image producers
type Config struct {
	Model    string
	Size     string // "WIDTHxHEIGHT"
	BaseURL  string // override for tests and proxies
	Prefetch bool   // download URL images so the bytes are cached
}

// DefaultConfig returns the defaults for the named provider
func DefaultConfig(provider string) Config {
	cfg := Config{Size: "512x512"}
	switch provider {
	case "openai":
		cfg.Model = "dall-e-2"
	case "gemini":
		cfg.Model = "imagen-3.0-generate-002"
	}
	return cfg
}

// New creates the named image producer. "none" returns nil, nil and the
// session then only uses the static library.
func New(provider string, cfg Config) (Producer, error) {
	switch provider {
	case "pollinations", "":
		return NewPollinations(cfg), nil
	case "openai":
		return NewOpenAI(cfg), nil
	case "gemini":
		return NewGemini(cfg), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown image provider: %s", provider)
	}
}

// sizeWidthHeight parses a "WIDTHxHEIGHT" size, defaulting to 512x512
func sizeWidthHeight(size string) (int, int) {
	w, h, ok := strings.Cut(size, "x")
	if !ok {
		return 512, 512
	}
	width, err1 := strconv.Atoi(w)
	height, err2 := strconv.Atoi(h)
	if err1 != nil || err2 != nil || width <= 0 || height <= 0 {
		return 512, 512
	}
	return width, height
}
