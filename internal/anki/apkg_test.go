package anki

import (
	"archive/zip"
	"database/sql"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codeberg.org/snonux/vocabquiz/internal/testutil"
)

func TestGenerateAPKGEmpty(t *testing.T) {
	gen := NewAPKGGenerator("Empty")
	if err := gen.GenerateAPKG(filepath.Join(t.TempDir(), "out.apkg")); err == nil {
		t.Error("Expected an error when exporting without cards")
	}
}

func TestCardFromRecord(t *testing.T) {
	rec := testutil.NewRecord("apple", "C")
	card := CardFromRecord(rec)

	if card.Word != "apple" {
		t.Errorf("Word = %q, want apple", card.Word)
	}
	if card.Meaning != "meaning of apple" {
		t.Errorf("Meaning = %q, want the correct option text", card.Meaning)
	}
	if card.MemoryCue != rec.MemoryCue {
		t.Errorf("MemoryCue = %q, want %q", card.MemoryCue, rec.MemoryCue)
	}
}

func TestMediaName(t *testing.T) {
	tests := []struct {
		word, kind string
		ext        string
		want       string
	}{
		{"apple", "image", ".png", "vocabquiz_apple_image.png"},
		{"Ice Cream", "audio", "mp3", "vocabquiz_ice_cream_audio.mp3"},
		{"x", "image", "", "vocabquiz_x_image"},
	}
	for _, tt := range tests {
		if got := mediaName(tt.word, tt.kind, &Media{Ext: tt.ext}); got != tt.want {
			t.Errorf("mediaName(%q, %q, %q) = %q, want %q", tt.word, tt.kind, tt.ext, got, tt.want)
		}
	}
}

func TestGenerateAPKG(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "nested", "deck.apkg")

	gen := NewAPKGGenerator("Quiz Deck")
	apple := CardFromRecord(testutil.NewRecord("apple", "A"))
	apple.Image = &Media{Data: []byte("png-bytes"), Ext: ".png"}
	apple.Audio = &Media{Data: []byte("mp3-bytes"), Ext: ".mp3"}
	gen.AddCard(apple)
	gen.AddCard(CardFromRecord(testutil.NewRecord("<b>bold</b>", "B")))

	if gen.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", gen.Len())
	}
	if err := gen.GenerateAPKG(out); err != nil {
		t.Fatalf("GenerateAPKG failed: %v", err)
	}

	entries := readZip(t, out)

	for _, name := range []string{"collection.anki2", "media", "0", "1"} {
		if _, ok := entries[name]; !ok {
			t.Errorf("Package is missing entry %q", name)
		}
	}

	var index map[string]string
	if err := json.Unmarshal(entries["media"], &index); err != nil {
		t.Fatalf("Media index is not JSON: %v", err)
	}
	if index["0"] != "vocabquiz_apple_image.png" || index["1"] != "vocabquiz_apple_audio.mp3" {
		t.Errorf("Unexpected media index: %v", index)
	}
	if string(entries["0"]) != "png-bytes" {
		t.Errorf("Media 0 = %q, want image bytes", entries["0"])
	}

	dbPath := filepath.Join(dir, "collection.anki2")
	if err := os.WriteFile(dbPath, entries["collection.anki2"], 0644); err != nil {
		t.Fatal(err)
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var notes, cards int
	if err := db.QueryRow("SELECT COUNT(*) FROM notes").Scan(&notes); err != nil {
		t.Fatal(err)
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM cards").Scan(&cards); err != nil {
		t.Fatal(err)
	}
	if notes != 2 || cards != 4 {
		t.Errorf("Got %d notes and %d cards, want 2 and 4", notes, cards)
	}

	var flds string
	if err := db.QueryRow("SELECT flds FROM notes WHERE sfld = ?", "apple").Scan(&flds); err != nil {
		t.Fatal(err)
	}
	fields := strings.Split(flds, "\x1f")
	if len(fields) != len(fieldNames) {
		t.Fatalf("Got %d fields, want %d", len(fields), len(fieldNames))
	}
	if fields[2] != "meaning of apple" {
		t.Errorf("Meaning field = %q", fields[2])
	}
	if fields[4] != `<img src="vocabquiz_apple_image.png">` {
		t.Errorf("Image field = %q", fields[4])
	}
	if fields[5] != "[sound:vocabquiz_apple_audio.mp3]" {
		t.Errorf("Audio field = %q", fields[5])
	}

	if err := db.QueryRow("SELECT flds FROM notes WHERE sfld = ?", "<b>bold</b>").Scan(&flds); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(flds, "&lt;b&gt;bold&lt;/b&gt;\x1f") {
		t.Errorf("Word field was not escaped: %q", flds)
	}

	var decks string
	if err := db.QueryRow("SELECT decks FROM col").Scan(&decks); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(decks, "Quiz Deck") {
		t.Errorf("Deck name missing from collection: %s", decks)
	}
}

func TestGuidStable(t *testing.T) {
	if guid("Apple") != guid("apple") {
		t.Error("guid should ignore case")
	}
	if guid("apple") == guid("pear") {
		t.Error("Different words should get different guids")
	}
}

func readZip(t *testing.T, path string) map[string][]byte {
	t.Helper()

	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("Failed to open package: %v", err)
	}
	defer r.Close()

	entries := make(map[string][]byte)
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		entries[f.Name] = data
	}
	return entries
}
