package quiz

// Verdict is the outcome of answering a question
type Verdict struct {
	Selected     string `json:"selected"`
	Correct      bool   `json:"correct"`
	CorrectLabel string `json:"correct_label"`
	CorrectText  string `json:"correct_text"`
}

// Evaluate compares the selected label against the record. Labels that do not
// name any option are simply incorrect.
func Evaluate(r *Record, selected string) Verdict {
	correct := r.CorrectOption()
	return Verdict{
		Selected:     NormalizeLabel(selected),
		Correct:      r.IsCorrect(selected),
		CorrectLabel: r.CorrectLabel,
		CorrectText:  correct.Text,
	}
}
