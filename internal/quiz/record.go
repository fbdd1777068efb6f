package quiz

import "strings"

// Labels are the option labels every question must carry, in display order
var Labels = []string{"A", "B", "C", "D"}

// Option is one labeled answer choice
type Option struct {
	Label string `json:"label" validate:"required,oneof=A B C D"`
	Text  string `json:"text" validate:"required"`
}

// Record is a generated quiz question for a single word
type Record struct {
	Word         string   `json:"word" validate:"required"`
	Phonetic     string   `json:"phonetic"`
	ImagePrompt  string   `json:"image_prompt"`
	MemoryCue    string   `json:"memory_cue"`
	Options      []Option `json:"options" validate:"len=4,unique=Label,dive"`
	CorrectLabel string   `json:"correct_label" validate:"required,oneof=A B C D"`
}

// Option returns the option with the given label
func (r *Record) Option(label string) (Option, bool) {
	label = NormalizeLabel(label)
	for _, opt := range r.Options {
		if opt.Label == label {
			return opt, true
		}
	}
	return Option{}, false
}

// CorrectOption returns the option marked correct
func (r *Record) CorrectOption() Option {
	opt, _ := r.Option(r.CorrectLabel)
	return opt
}

// IsCorrect reports whether the option with the given label is the right answer
func (r *Record) IsCorrect(label string) bool {
	return NormalizeLabel(label) == r.CorrectLabel
}

// NormalizeLabel trims and upper-cases a label so "b " and "B" compare equal
func NormalizeLabel(label string) string {
	return strings.ToUpper(strings.TrimSpace(label))
}
