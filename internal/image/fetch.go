package image

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxBytes caps downloaded images at 10MB
const DefaultMaxBytes int64 = 10 * 1024 * 1024

// Fetch downloads an image into memory. Responses larger than maxBytes
// (0 means no limit) are rejected.
func Fetch(ctx context.Context, client *http.Client, imageURL string, maxBytes int64) ([]byte, string, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	var reader io.Reader = resp.Body
	if maxBytes > 0 {
		// one extra byte tells us the body was larger than allowed
		reader = io.LimitReader(resp.Body, maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, "", fmt.Errorf("image exceeds maximum size of %d bytes", maxBytes)
	}
	if len(data) == 0 {
		return nil, "", ErrNoImage
	}

	mime := resp.Header.Get("Content-Type")
	if mime == "" || !strings.HasPrefix(mime, "image/") {
		mime = http.DetectContentType(data)
	}
	return data, mime, nil
}

// Bytes returns the image data, downloading URL images on demand
func Bytes(ctx context.Context, client *http.Client, img *Image) ([]byte, string, error) {
	if img == nil {
		return nil, "", ErrNoImage
	}
	if img.HasData() {
		mime := img.MIMEType
		if mime == "" {
			mime = http.DetectContentType(img.Data)
		}
		return img.Data, mime, nil
	}
	if img.URL == "" {
		return nil, "", ErrNoImage
	}
	return Fetch(ctx, client, img.URL, DefaultMaxBytes)
}

// Extension returns the file extension matching a MIME type
func Extension(mime string) string {
	switch {
	case strings.Contains(mime, "jpeg"), strings.Contains(mime, "jpg"):
		return ".jpg"
	case strings.Contains(mime, "webp"):
		return ".webp"
	case strings.Contains(mime, "gif"):
		return ".gif"
	default:
		return ".png"
	}
}

// WriteFile stores image bytes at path, creating the directory if needed
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write image file: %w", err)
	}
	return nil
}
