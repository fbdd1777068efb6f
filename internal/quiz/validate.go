package quiz

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidRecord is returned when a generated record fails validation
var ErrInvalidRecord = errors.New("invalid quiz record")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(correctLabelPresent, Record{})
	return v
}

// correctLabelPresent makes sure the correct label points at an actual option
func correctLabelPresent(sl validator.StructLevel) {
	rec := sl.Current().Interface().(Record)
	for _, opt := range rec.Options {
		if opt.Label == rec.CorrectLabel {
			return
		}
	}
	sl.ReportError(rec.CorrectLabel, "CorrectLabel", "correct_label", "option_exists", "")
}

// Normalize trims whitespace in every field and upper-cases labels. It is
// applied to producer output before validation.
func (r *Record) Normalize() {
	r.Word = strings.TrimSpace(r.Word)
	r.Phonetic = strings.Trim(strings.TrimSpace(r.Phonetic), "/[]")
	r.ImagePrompt = strings.TrimSpace(r.ImagePrompt)
	r.MemoryCue = strings.TrimSpace(r.MemoryCue)
	r.CorrectLabel = NormalizeLabel(r.CorrectLabel)
	for i := range r.Options {
		r.Options[i].Label = NormalizeLabel(r.Options[i].Label)
		r.Options[i].Text = strings.TrimSpace(r.Options[i].Text)
	}
}

// Validate checks that the record is a well-formed four-option question with
// exactly one correct answer. A record that fails is never used in part.
func Validate(r *Record) error {
	if r == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return nil
}
