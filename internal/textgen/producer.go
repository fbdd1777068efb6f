package textgen

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"codeberg.org/snonux/vocabquiz/internal/quiz"
)

var (
	// ErrNoAPIKey is returned when a request carries no credential
	ErrNoAPIKey = errors.New("no API key configured")
	// ErrInvalidResponse is returned for empty, unparseable or invalid output
	ErrInvalidResponse = errors.New("invalid response from text service")
	// ErrContentBlocked is returned when the service refused to answer
	ErrContentBlocked = errors.New("response blocked by content filter")
)

// Request asks for a quiz record for one word
type Request struct {
	Word   string
	APIKey string
}

// Producer generates a quiz record for a word
type Producer interface {
	Generate(ctx context.Context, req Request) (*quiz.Record, error)
	Name() string
}

// Config holds settings shared by the text producers
type Config struct {
	Model       string
	Language    string // language the meanings are written in
	Temperature float32
	BaseURL     string // override for tests and proxies
	Rand        *rand.Rand
}

// DefaultConfig returns the defaults for the named provider
func DefaultConfig(provider string) Config {
	cfg := Config{
		Language:    "Simplified Chinese",
		Temperature: 0.7,
	}
	switch provider {
	case "openai":
		cfg.Model = "gpt-4o-mini"
	default:
		cfg.Model = "gemini-2.5-flash"
	}
	return cfg
}

// New creates the named text producer
func New(provider string, cfg Config) (Producer, error) {
	switch provider {
	case "gemini", "":
		return NewGemini(cfg), nil
	case "openai":
		return NewOpenAI(cfg), nil
	default:
		return nil, fmt.Errorf("unknown text provider: %s", provider)
	}
}

func newRand(r *rand.Rand) *rand.Rand {
	if r != nil {
		return r
	}
	seed := uint64(time.Now().UnixNano())
	return rand.New(rand.NewPCG(seed, seed>>1))
}
