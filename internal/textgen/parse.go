package textgen

import (
	"encoding/json"
	"fmt"
	"strings"

	"codeberg.org/snonux/vocabquiz/internal/quiz"
)

// wireRecord accepts the field names older prompts used as well
type wireRecord struct {
	Word         string        `json:"word"`
	Phonetic     string        `json:"phonetic"`
	IPA          string        `json:"ipa"`
	ImagePrompt  string        `json:"image_prompt"`
	MemoryCue    string        `json:"memory_cue"`
	VisualCue    string        `json:"visual_cue"`
	Options      []quiz.Option `json:"options"`
	CorrectLabel string        `json:"correct_label"`
}

// ParseRecord turns raw model output into a validated record. The expected
// word is used when the response leaves the word out.
func ParseRecord(raw, word string) (*quiz.Record, error) {
	body := extractJSON(raw)
	if body == "" {
		return nil, fmt.Errorf("%w: no JSON object in response", ErrInvalidResponse)
	}

	var w wireRecord
	if err := json.Unmarshal([]byte(body), &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	rec := &quiz.Record{
		Word:         firstNonEmpty(w.Word, word),
		Phonetic:     firstNonEmpty(w.Phonetic, w.IPA),
		ImagePrompt:  w.ImagePrompt,
		MemoryCue:    firstNonEmpty(w.MemoryCue, w.VisualCue),
		Options:      w.Options,
		CorrectLabel: w.CorrectLabel,
	}
	rec.Normalize()

	if err := quiz.Validate(rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return rec, nil
}

// extractJSON strips Markdown fences and any chatter around the outermost
// JSON object.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
