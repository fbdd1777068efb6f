package audio

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/singleflight"
)

// Cache keeps synthesized audio on disk so a word is only spoken once per
// provider. Concurrent requests for the same text share one synthesis.
type Cache struct {
	provider Provider
	dir      string
	group    singleflight.Group
}

// NewCache wraps provider with a disk cache in dir. An empty dir keeps
// nothing on disk and only deduplicates concurrent requests.
func NewCache(provider Provider, dir string) (*Cache, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}
	return &Cache{provider: provider, dir: dir}, nil
}

// Provider returns the wrapped provider
func (c *Cache) Provider() Provider {
	return c.provider
}

// Get returns the audio for text, synthesizing it on a miss
func (c *Cache) Get(ctx context.Context, text string) ([]byte, error) {
	if err := ValidateText(text); err != nil {
		return nil, err
	}
	path := c.path(text)

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil && len(data) > 0 {
			return data, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read cached audio: %w", err)
		}
	}

	v, err, _ := c.group.Do(c.key(text), func() (interface{}, error) {
		rc, err := c.provider.Synthesize(ctx, text)
		if err != nil {
			return nil, err
		}
		data, err := readAllNonEmpty(rc, c.provider.Name())
		if err != nil {
			return nil, err
		}
		if path != "" {
			// a failed cache write only costs a later re-synthesis
			_ = writeAtomic(path, data)
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (c *Cache) key(text string) string {
	hash := md5.Sum([]byte(c.provider.Name() + "|" + strings.ToLower(strings.TrimSpace(text))))
	return hex.EncodeToString(hash[:])
}

func (c *Cache) path(text string) string {
	if c.dir == "" {
		return ""
	}
	return filepath.Join(c.dir, c.key(text)+".audio")
}

// writeAtomic renames a temp file into place so readers never see a
// partial file
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".audio-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Extension guesses the file extension of synthesized audio. espeak-ng
// writes WAV, the online providers return MP3.
func Extension(data []byte) string {
	if len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WAVE" {
		return ".wav"
	}
	return ".mp3"
}

// MIMEType returns the content type matching Extension
func MIMEType(data []byte) string {
	if Extension(data) == ".wav" {
		return "audio/wav"
	}
	return "audio/mpeg"
}
