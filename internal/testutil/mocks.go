package testutil

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"codeberg.org/snonux/vocabquiz/internal/image"
	"codeberg.org/snonux/vocabquiz/internal/quiz"
	"codeberg.org/snonux/vocabquiz/internal/textgen"
)

// NewRecord builds a valid quiz record for word with the given correct label
func NewRecord(word, correctLabel string) *quiz.Record {
	opts := make([]quiz.Option, 0, len(quiz.Labels))
	for _, label := range quiz.Labels {
		text := fmt.Sprintf("wrong meaning %s of %s", label, word)
		if label == correctLabel {
			text = "meaning of " + word
		}
		opts = append(opts, quiz.Option{Label: label, Text: text})
	}
	return &quiz.Record{
		Word:         word,
		Phonetic:     word,
		ImagePrompt:  "prompt for " + word,
		MemoryCue:    "cue for " + word,
		Options:      opts,
		CorrectLabel: correctLabel,
	}
}

// wait sleeps for delay and blocks on gate, whichever applies, giving up
// when ctx ends. With ignoreCtx it sleeps the full delay regardless, like a
// client that does not honour cancellation.
func wait(ctx context.Context, delay time.Duration, gate <-chan struct{}, ignoreCtx bool) error {
	if ignoreCtx {
		time.Sleep(delay)
		return nil
	}
	if delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	if gate != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-gate:
		}
	}
	return nil
}

// TextProducer is a scripted textgen.Producer
type TextProducer struct {
	Records      map[string]*quiz.Record // per word, default NewRecord(word, "B")
	Err          error                   // returned for every word
	Errs         map[string]error        // returned for specific words
	CorrectLabel string
	Delay        time.Duration
	IgnoreCtx    bool          // sleep the whole Delay even when ctx ends
	Gate         chan struct{} // when set, Generate blocks until it is closed
	Started      chan string   // when set, receives the word as a call starts

	mu    sync.Mutex
	calls []textgen.Request
}

// Name returns the producer name
func (f *TextProducer) Name() string { return "fake-text" }

// Generate records the call and returns the scripted outcome
func (f *TextProducer) Generate(ctx context.Context, req textgen.Request) (*quiz.Record, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	rec, hasRec := f.Records[req.Word]
	wordErr, err := f.Errs[req.Word], f.Err
	started, gate, ignoreCtx := f.Started, f.Gate, f.IgnoreCtx
	f.mu.Unlock()

	if started != nil {
		started <- req.Word
	}
	if err := wait(ctx, f.Delay, gate, ignoreCtx); err != nil {
		return nil, err
	}

	if wordErr != nil {
		return nil, wordErr
	}
	if err != nil {
		return nil, err
	}
	if hasRec {
		return rec, nil
	}
	label := f.CorrectLabel
	if label == "" {
		label = "B"
	}
	return NewRecord(req.Word, label), nil
}

// Calls returns all requests seen so far
func (f *TextProducer) Calls() []textgen.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]textgen.Request(nil), f.calls...)
}

// CallCount returns how often word was requested
func (f *TextProducer) CallCount(word string) int {
	n := 0
	for _, c := range f.Calls() {
		if c.Word == word {
			n++
		}
	}
	return n
}

// ImageProducer is a scripted image.Producer
type ImageProducer struct {
	BaseURL   string // image URLs are BaseURL+word, default "https://images.test/"
	Err       error
	Delay     time.Duration
	IgnoreCtx bool
	Gate      chan struct{}
	Started   chan string

	mu    sync.Mutex
	calls []image.Request
}

// Name returns the producer name
func (f *ImageProducer) Name() string { return "fake-image" }

// Generate records the call and returns an image URL derived from the word
func (f *ImageProducer) Generate(ctx context.Context, req image.Request) (*image.Image, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	err := f.Err
	started, gate, ignoreCtx := f.Started, f.Gate, f.IgnoreCtx
	base := f.BaseURL
	f.mu.Unlock()

	if started != nil {
		started <- req.Word
	}
	if err := wait(ctx, f.Delay, gate, ignoreCtx); err != nil {
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	if base == "" {
		base = "https://images.test/"
	}
	return &image.Image{
		URL:    base + req.Word,
		Source: f.Name(),
		Prompt: req.Prompt,
	}, nil
}

// Calls returns all requests seen so far
func (f *ImageProducer) Calls() []image.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]image.Request(nil), f.calls...)
}

// CallCount returns how often word was requested
func (f *ImageProducer) CallCount(word string) int {
	n := 0
	for _, c := range f.Calls() {
		if c.Word == word {
			n++
		}
	}
	return n
}

// AudioProvider is a scripted audio.Provider
type AudioProvider struct {
	Data string
	Err  error

	mu    sync.Mutex
	calls []string
}

// Synthesize returns Data followed by the text
func (f *AudioProvider) Synthesize(ctx context.Context, text string) (io.ReadCloser, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}
	data := f.Data
	if data == "" {
		data = "audio"
	}
	return io.NopCloser(strings.NewReader(data + ":" + text)), nil
}

// Name returns the provider name
func (f *AudioProvider) Name() string { return "fake-audio" }

// IsAvailable always succeeds
func (f *AudioProvider) IsAvailable() error { return nil }

// Calls returns the texts synthesized so far
func (f *AudioProvider) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}
