package textgen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validJSON = `{
  "word": "apple",
  "phonetic": "/ˈæp.əl/",
  "memory_cue": "A red apple falls on Newton's head",
  "image_prompt": "cartoon apple falling on a scientist",
  "options": [
    {"label": "A", "text": "香蕉"},
    {"label": "B", "text": "苹果"},
    {"label": "C", "text": "橙子"},
    {"label": "D", "text": "葡萄"}
  ],
  "correct_label": "B"
}`

func TestParseRecordValid(t *testing.T) {
	rec, err := ParseRecord(validJSON, "apple")
	require.NoError(t, err)

	assert.Equal(t, "apple", rec.Word)
	assert.Equal(t, "ˈæp.əl", rec.Phonetic)
	assert.Equal(t, "B", rec.CorrectLabel)
	assert.Equal(t, "苹果", rec.CorrectOption().Text)
	assert.Len(t, rec.Options, 4)
}

func TestParseRecordStripsFencesAndChatter(t *testing.T) {
	raw := "Sure! Here is your question:\n```json\n" + validJSON + "\n```\nGood luck."
	rec, err := ParseRecord(raw, "apple")
	require.NoError(t, err)
	assert.Equal(t, "apple", rec.Word)
}

func TestParseRecordLegacyFieldNames(t *testing.T) {
	raw := `{"word":"ocean","ipa":"ˈoʊʃən","visual_cue":"waves everywhere",
"options":[{"label":"a","text":"海洋"},{"label":"b","text":"山"},{"label":"c","text":"河"},{"label":"d","text":"湖"}],
"correct_label":"a"}`

	rec, err := ParseRecord(raw, "ocean")
	require.NoError(t, err)
	assert.Equal(t, "ˈoʊʃən", rec.Phonetic)
	assert.Equal(t, "waves everywhere", rec.MemoryCue)
	assert.Equal(t, "A", rec.CorrectLabel)
}

func TestParseRecordFillsMissingWord(t *testing.T) {
	raw := `{"options":[{"label":"A","text":"1"},{"label":"B","text":"2"},{"label":"C","text":"3"},{"label":"D","text":"4"}],"correct_label":"C"}`
	rec, err := ParseRecord(raw, "galaxy")
	require.NoError(t, err)
	assert.Equal(t, "galaxy", rec.Word)
}

func TestParseRecordRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"prose only", "I cannot help with that."},
		{"broken json", `{"word": "apple", "options": [`},
		{"three options", `{"word":"apple","options":[{"label":"A","text":"1"},{"label":"B","text":"2"},{"label":"C","text":"3"}],"correct_label":"A"}`},
		{"duplicate labels", `{"word":"apple","options":[{"label":"A","text":"1"},{"label":"A","text":"2"},{"label":"C","text":"3"},{"label":"D","text":"4"}],"correct_label":"A"}`},
		{"correct label missing", `{"word":"apple","options":[{"label":"A","text":"1"},{"label":"B","text":"2"},{"label":"C","text":"3"},{"label":"D","text":"4"}]}`},
		{"correct label out of range", `{"word":"apple","options":[{"label":"A","text":"1"},{"label":"B","text":"2"},{"label":"C","text":"3"},{"label":"D","text":"4"}],"correct_label":"E"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := ParseRecord(tt.raw, "apple")
			assert.Nil(t, rec)
			assert.True(t, errors.Is(err, ErrInvalidResponse), "got %v", err)
		})
	}
}
