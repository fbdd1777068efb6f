// Package anki exports quizzed words as an Anki package (.apkg) so the
// learner can keep reviewing them with spaced repetition.
package anki

import (
	"fmt"
	"strings"

	"codeberg.org/snonux/vocabquiz/internal"
	"codeberg.org/snonux/vocabquiz/internal/quiz"
)

// Media is an attachment embedded in the package
type Media struct {
	Data []byte
	Ext  string // file extension including the dot
}

// Card is one exported word
type Card struct {
	Word      string
	Phonetic  string
	Meaning   string
	MemoryCue string
	Image     *Media
	Audio     *Media
}

// CardFromRecord builds a card from a quiz record. Media is attached by the
// caller.
func CardFromRecord(rec *quiz.Record) Card {
	return Card{
		Word:      rec.Word,
		Phonetic:  rec.Phonetic,
		Meaning:   rec.CorrectOption().Text,
		MemoryCue: rec.MemoryCue,
	}
}

// mediaName returns a stable, unique attachment file name for a card
func mediaName(word, kind string, m *Media) string {
	ext := m.Ext
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return fmt.Sprintf("vocabquiz_%s_%s%s", internal.SanitizeFilename(strings.ToLower(word)), kind, ext)
}
