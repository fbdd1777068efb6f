package archive

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestExistingMissingFile(t *testing.T) {
	got, err := Existing(filepath.Join(t.TempDir(), "deck.apkg"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("Expected no archive path for a missing file, got %q", got)
	}
}

func TestExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deck.apkg")
	if err := os.WriteFile(path, []byte("old deck"), 0644); err != nil {
		t.Fatal(err)
	}

	now := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	got, err := existing(path, now)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := filepath.Join(dir, Dir, "deck-20260314-150926.apkg")
	if got != want {
		t.Errorf("Archive path = %q, want %q", got, want)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Original file should have been moved")
	}
	data, err := os.ReadFile(got)
	if err != nil {
		t.Fatalf("Failed to read archived file: %v", err)
	}
	if string(data) != "old deck" {
		t.Errorf("Archived content = %q", data)
	}
}

func TestExistingSameSecond(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deck.apkg")
	now := time.Date(2026, 3, 14, 15, 9, 26, 123456000, time.UTC)

	var paths []string
	for i := 0; i < 2; i++ {
		if err := os.WriteFile(path, []byte("deck"), 0644); err != nil {
			t.Fatal(err)
		}
		got, err := existing(path, now)
		if err != nil {
			t.Fatalf("Archive %d failed: %v", i, err)
		}
		paths = append(paths, got)
	}

	if paths[0] == paths[1] {
		t.Fatalf("Both archives went to %s", paths[0])
	}
	if filepath.Base(paths[1]) != "deck-20260314-150926.123456.apkg" {
		t.Errorf("Unexpected second archive name %s", filepath.Base(paths[1]))
	}
}

func TestExistingDirectory(t *testing.T) {
	if _, err := Existing(t.TempDir()); err == nil {
		t.Error("Expected an error when archiving a directory")
	}
}
