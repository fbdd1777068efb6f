package audio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	gttsBaseURL        = "https://translate.google.com/translate_tts"
	gttsRequestTimeout = 10 * time.Second
	gttsUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// GoogleTTS uses the free Google Translate speech endpoint. No API key is
// needed.
type GoogleTTS struct {
	language   string
	baseURL    string
	httpClient *http.Client
}

// NewGoogleTTS creates a Google Translate TTS provider
func NewGoogleTTS(language, baseURL string) *GoogleTTS {
	if language == "" {
		language = "en"
	}
	if baseURL == "" {
		baseURL = gttsBaseURL
	}
	return &GoogleTTS{
		language:   language,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: gttsRequestTimeout},
	}
}

// Synthesize fetches the MP3 for text
func (g *GoogleTTS) Synthesize(ctx context.Context, text string) (io.ReadCloser, error) {
	if err := ValidateText(text); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)

	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", text)
	params.Set("tl", g.language)
	params.Set("client", "tw-ob")
	params.Set("textlen", fmt.Sprintf("%d", len(text)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	// Google rejects requests without a browser user agent
	req.Header.Set("User-Agent", gttsUserAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch audio: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// Name returns the provider name
func (g *GoogleTTS) Name() string {
	return "gtts"
}

// IsAvailable always succeeds since the endpoint needs no configuration
func (g *GoogleTTS) IsAvailable() error {
	return nil
}
