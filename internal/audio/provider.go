// Package audio synthesizes pronunciation audio for quiz words. Audio is a
// cosmetic extra: callers treat every failure here as "no audio".
package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Provider defines the interface for text-to-speech providers
type Provider interface {
	// Synthesize returns the spoken audio for text as an MP3 or WAV stream
	Synthesize(ctx context.Context, text string) (io.ReadCloser, error)

	// Name returns the provider name
	Name() string

	// IsAvailable checks if the provider is properly configured and available
	IsAvailable() error
}

// Config holds common configuration for audio providers
type Config struct {
	Provider string // "gtts", "openai" or "espeak"
	Language string // language code spoken by gtts and espeak
	CacheDir string // empty disables the disk cache

	// OpenAI-specific settings
	OpenAIKey         string
	OpenAIModel       string  // "tts-1", "tts-1-hd", or "gpt-4o-mini-tts"
	OpenAIVoice       string  // "alloy", "ash", "coral", "echo", "nova", ...
	OpenAISpeed       float64 // 0.25 to 4.0
	OpenAIInstruction string  // Voice instructions for gpt-4o-mini-tts model
	OpenAIBaseURL     string

	// Google Translate TTS endpoint override, used in tests
	GTTSBaseURL string
}

// DefaultProviderConfig returns default configuration
func DefaultProviderConfig() *Config {
	return &Config{
		Provider:          "gtts",
		Language:          "en",
		OpenAIModel:       "gpt-4o-mini-tts",
		OpenAIVoice:       "alloy",
		OpenAISpeed:       1.0,
		OpenAIInstruction: "Pronounce the English word clearly and slowly for a language learner, with natural stress.",
	}
}

// NewProvider creates the appropriate audio provider based on configuration.
// When espeak-ng is installed it is used as fallback for the online
// providers.
func NewProvider(config *Config, log *slog.Logger) (Provider, error) {
	if config == nil {
		config = DefaultProviderConfig()
	}

	var primary Provider
	switch config.Provider {
	case "gtts", "":
		primary = NewGoogleTTS(config.Language, config.GTTSBaseURL)
	case "openai":
		if config.OpenAIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		p, err := NewOpenAIProvider(config)
		if err != nil {
			return nil, err
		}
		primary = p
	case "espeak", "espeak-ng":
		e, err := NewESpeak(&ESpeakConfig{Voice: config.Language})
		if err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown audio provider: %s", config.Provider)
	}

	if fallback, err := NewESpeak(&ESpeakConfig{Voice: config.Language}); err == nil {
		return NewProviderWithFallback(primary, fallback, log), nil
	}
	return primary, nil
}

// ProviderWithFallback wraps a primary provider with a fallback option
type ProviderWithFallback struct {
	primary  Provider
	fallback Provider
	log      *slog.Logger
}

// NewProviderWithFallback creates a provider that falls back to secondary if primary fails
func NewProviderWithFallback(primary, fallback Provider, log *slog.Logger) Provider {
	if log == nil {
		log = slog.Default()
	}
	return &ProviderWithFallback{
		primary:  primary,
		fallback: fallback,
		log:      log,
	}
}

// Synthesize tries primary provider first, falls back to secondary on error
func (p *ProviderWithFallback) Synthesize(ctx context.Context, text string) (io.ReadCloser, error) {
	rc, err := p.primary.Synthesize(ctx, text)
	if err == nil {
		return rc, nil
	}

	p.log.Warn("primary audio provider failed, falling back",
		"primary", p.primary.Name(),
		"fallback", p.fallback.Name(),
		"error", err)
	return p.fallback.Synthesize(ctx, text)
}

// Name returns the provider name
func (p *ProviderWithFallback) Name() string {
	return fmt.Sprintf("%s (fallback: %s)", p.primary.Name(), p.fallback.Name())
}

// IsAvailable checks if at least one provider is available
func (p *ProviderWithFallback) IsAvailable() error {
	primaryErr := p.primary.IsAvailable()
	if primaryErr == nil {
		return nil
	}

	fallbackErr := p.fallback.IsAvailable()
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("both providers unavailable: primary=%v, fallback=%v",
		primaryErr, fallbackErr)
}

// ValidateText checks that there is something to pronounce
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text cannot be empty")
	}
	return nil
}

// readAllNonEmpty drains rc and fails on an empty stream
func readAllNonEmpty(rc io.ReadCloser, provider string) ([]byte, error) {
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio from %s: %w", provider, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("no audio data received from %s", provider)
	}
	return data, nil
}

func nopCloser(data []byte) io.ReadCloser {
	return io.NopCloser(bytes.NewReader(data))
}
