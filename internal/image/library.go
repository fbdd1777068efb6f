package image

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"codeberg.org/snonux/vocabquiz/internal"
)

// LibrarySource marks images served from the static library
const LibrarySource = "library"

// Library is a fixed word to image URL table loaded once at startup. It is
// never written to while the app runs.
type Library struct {
	entries map[string]string
}

// NewLibrary creates a library from a word to URL map
func NewLibrary(entries map[string]string) *Library {
	lib := &Library{entries: make(map[string]string, len(entries))}
	for word, u := range entries {
		lib.entries[word] = u
	}
	return lib
}

// LoadLibrary reads a JSON library file. A missing file yields an empty
// library because the library is optional.
func LoadLibrary(path string) (*Library, error) {
	if path == "" {
		return NewLibrary(nil), nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewLibrary(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read image library: %w", err)
	}

	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse image library %s: %w", path, err)
	}
	return NewLibrary(entries), nil
}

// Lookup returns the library image for word. An exact match wins over a
// case-insensitive one.
func (l *Library) Lookup(word string) (*Image, bool) {
	if l == nil || len(l.entries) == 0 {
		return nil, false
	}

	u, ok := l.entries[word]
	if !ok {
		u, ok = l.entries[strings.ToLower(strings.TrimSpace(word))]
	}
	if !ok || u == "" {
		return nil, false
	}
	return &Image{URL: u, Source: LibrarySource}, true
}

// Len returns the number of entries
func (l *Library) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// Save writes the library as indented JSON with sorted keys
func (l *Library) Save(path string) error {
	data, err := json.MarshalIndent(l.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode image library: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write image library: %w", err)
	}
	return nil
}

// BuildOptions configures BuildLibrary
type BuildOptions struct {
	Producer *Pollinations
	Delay    time.Duration // pause between words to go easy on the service
	Progress func(word string)
}

// BuildLibrary generates a library entry for every word. Entries use the
// deterministic Pollinations URL built from the fallback prompt, so building
// twice yields the same file.
func BuildLibrary(ctx context.Context, words []string, opts BuildOptions) (*Library, error) {
	p := opts.Producer
	if p == nil {
		p = NewPollinations(Config{})
	}

	entries := make(map[string]string, len(words))
	for i, word := range words {
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		if _, dup := entries[word]; dup {
			continue
		}

		entries[word] = p.URL(FallbackPrompt(word), internal.WordSeed(word))
		if opts.Progress != nil {
			opts.Progress(word)
		}

		if opts.Delay > 0 && i < len(words)-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(opts.Delay):
			}
		}
	}
	return NewLibrary(entries), nil
}
