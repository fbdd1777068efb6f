package image

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"codeberg.org/snonux/vocabquiz/internal"
)

const pollinationsBaseURL = "https://image.pollinations.ai"

// Pollinations renders images through the free pollinations.ai endpoint.
// The image is addressed by URL, so with Prefetch off Generate does not
// touch the network at all.
type Pollinations struct {
	baseURL    string
	size       string
	prefetch   bool
	httpClient *http.Client
}

// NewPollinations creates a Pollinations producer
func NewPollinations(cfg Config) *Pollinations {
	base := cfg.BaseURL
	if base == "" {
		base = pollinationsBaseURL
	}
	return &Pollinations{
		baseURL:    strings.TrimSuffix(base, "/"),
		size:       cfg.Size,
		prefetch:   cfg.Prefetch,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Name returns the producer name
func (p *Pollinations) Name() string {
	return "pollinations"
}

// Generate returns the image URL for the prompt, downloading it first when
// prefetching is enabled.
func (p *Pollinations) Generate(ctx context.Context, req Request) (*Image, error) {
	prompt := promptFor(req)
	seed := req.Seed
	if seed == 0 {
		seed = internal.WordSeed(req.Word)
	}
	img := &Image{
		URL:    p.URL(prompt, seed),
		Source: p.Name(),
		Prompt: prompt,
	}
	if !p.prefetch {
		return img, nil
	}

	data, mime, err := Fetch(ctx, p.httpClient, img.URL, DefaultMaxBytes)
	if err != nil {
		return nil, fmt.Errorf("pollinations: %w", err)
	}
	img.Data = data
	img.MIMEType = mime
	return img, nil
}

// URL builds the deterministic image URL for a prompt and seed, so the same
// word always maps to the same picture.
func (p *Pollinations) URL(prompt string, seed uint32) string {
	params := url.Values{}
	params.Set("nolog", "true")
	params.Set("seed", fmt.Sprintf("%d", seed))
	if p.size != "" {
		w, h := sizeWidthHeight(p.size)
		params.Set("width", fmt.Sprintf("%d", w))
		params.Set("height", fmt.Sprintf("%d", h))
	}
	return p.baseURL + "/prompt/" + url.PathEscape(prompt) + "?" + params.Encode()
}
