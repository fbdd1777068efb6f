package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appleRecord() *Record {
	return &Record{
		Word:        "apple",
		Phonetic:    "ˈæp.əl",
		ImagePrompt: "a shiny red apple on a wooden table",
		MemoryCue:   "一个红苹果",
		Options: []Option{
			{Label: "A", Text: "香蕉"},
			{Label: "B", Text: "苹果"},
			{Label: "C", Text: "橙子"},
			{Label: "D", Text: "葡萄"},
		},
		CorrectLabel: "B",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *Record)
		wantErr bool
	}{
		{name: "valid", mutate: func(r *Record) {}},
		{name: "missing word", mutate: func(r *Record) { r.Word = "" }, wantErr: true},
		{name: "three options", mutate: func(r *Record) { r.Options = r.Options[:3] }, wantErr: true},
		{name: "duplicate label", mutate: func(r *Record) { r.Options[3].Label = "A" }, wantErr: true},
		{name: "label outside A-D", mutate: func(r *Record) { r.Options[3].Label = "E" }, wantErr: true},
		{name: "empty option text", mutate: func(r *Record) { r.Options[0].Text = "" }, wantErr: true},
		{name: "missing correct label", mutate: func(r *Record) { r.CorrectLabel = "" }, wantErr: true},
		{name: "correct label not an option", mutate: func(r *Record) { r.CorrectLabel = "F" }, wantErr: true},
		{name: "phonetic optional", mutate: func(r *Record) { r.Phonetic = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := appleRecord()
			tt.mutate(rec)
			err := Validate(rec)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidRecord)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.ErrorIs(t, Validate(nil), ErrInvalidRecord)
}

func TestNormalize(t *testing.T) {
	rec := appleRecord()
	rec.Word = "  apple "
	rec.Phonetic = "/ˈæp.əl/"
	rec.CorrectLabel = " b"
	rec.Options[0].Label = "a"

	rec.Normalize()

	assert.Equal(t, "apple", rec.Word)
	assert.Equal(t, "ˈæp.əl", rec.Phonetic)
	assert.Equal(t, "B", rec.CorrectLabel)
	assert.Equal(t, "A", rec.Options[0].Label)
	assert.NoError(t, Validate(rec))
}

func TestEvaluate(t *testing.T) {
	rec := appleRecord()

	tests := []struct {
		name        string
		selected    string
		wantCorrect bool
	}{
		{"correct label", "B", true},
		{"correct label lower case", " b ", true},
		{"wrong label", "A", false},
		{"label outside options", "Z", false},
		{"empty label", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Evaluate(rec, tt.selected)
			assert.Equal(t, tt.wantCorrect, v.Correct)
			assert.Equal(t, "B", v.CorrectLabel)
			assert.Equal(t, "苹果", v.CorrectText)
		})
	}
}

func TestRecordOption(t *testing.T) {
	rec := appleRecord()

	opt, ok := rec.Option("c")
	require.True(t, ok)
	assert.Equal(t, "橙子", opt.Text)

	_, ok = rec.Option("E")
	assert.False(t, ok)
	assert.Equal(t, "苹果", rec.CorrectOption().Text)
}
