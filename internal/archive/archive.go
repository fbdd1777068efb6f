package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Dir is the directory, next to the file, that archived copies move into
const Dir = "archive"

// Existing moves the file at path into the archive directory beside it,
// stamped with the current time, and returns the new location. A missing
// file is not an error and returns "".
func Existing(path string) (string, error) {
	return existing(path, time.Now())
}

func existing(path string, now time.Time) (string, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("cannot archive %s: is a directory", path)
	}

	archiveDir := filepath.Join(filepath.Dir(path), Dir)
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	target := filepath.Join(archiveDir, fmt.Sprintf("%s-%s%s", stem, now.Format("20060102-150405"), ext))

	// two exports within the same second
	if _, err := os.Stat(target); err == nil {
		target = filepath.Join(archiveDir, fmt.Sprintf("%s-%s%s", stem, now.Format("20060102-150405.000000"), ext))
	}

	if err := os.Rename(path, target); err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", path, err)
	}
	return target, nil
}
