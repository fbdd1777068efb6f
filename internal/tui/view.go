package tui

import (
	"fmt"
	"strings"

	"codeberg.org/snonux/vocabquiz/internal/image"
	"codeberg.org/snonux/vocabquiz/internal/session"
)

// View renders the model
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.header())
	b.WriteString("\n\n")

	switch m.mode {
	case modeCredential:
		b.WriteString("Enter the API key of the text provider.\n\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	case modeWords:
		b.WriteString("Enter words separated by commas.\n\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	default:
		b.WriteString(m.question())
	}

	b.WriteString("\n")
	if m.busy != "" {
		b.WriteString(m.spinner.View() + " " + m.busy + "...\n")
	}
	if m.status != "" {
		b.WriteString(styleSubtle.Render(m.status) + "\n")
	}
	if m.err != nil {
		b.WriteString(styleError.Render("Error: "+m.err.Error()) + "\n")
	}
	b.WriteString("\n" + styleSubtle.Render(m.help()))
	return b.String()
}

func (m Model) header() string {
	sc := m.state.Score
	line := fmt.Sprintf("%d/%d correct", sc.Correct, sc.Answered)
	if sc.Round > 0 {
		line += fmt.Sprintf(" · round %d", sc.Round)
	}
	line += fmt.Sprintf(" · %d of %d words left", m.state.Remaining, m.state.PoolSize)
	return styleTitle.Render("vocabquiz") + "  " + styleSubtle.Render(line)
}

func (m Model) question() string {
	q := m.state.Current
	if q == nil || q.Record == nil {
		if m.state.Phase == session.PhaseIdle {
			return "Press enter to start.\n"
		}
		return ""
	}
	rec := q.Record

	var b strings.Builder
	b.WriteString(styleWord.Render(rec.Word))
	if rec.Phonetic != "" {
		b.WriteString(" " + stylePhonetic.Render(rec.Phonetic))
	}
	b.WriteString("\n")
	if img := imageLine(q.Image); img != "" {
		b.WriteString(styleSubtle.Render(img) + "\n")
	}
	b.WriteString("\n")

	verdict := m.state.Verdict
	var opts []string
	for _, opt := range rec.Options {
		line := fmt.Sprintf("%s) %s", strings.ToLower(opt.Label), opt.Text)
		switch {
		case verdict != nil && opt.Label == verdict.CorrectLabel:
			line = styleCorrect.Render(line)
		case verdict != nil && opt.Label == verdict.Selected:
			line = styleIncorrect.Render(line)
		case opt.Label == m.state.Selection:
			line = styleSelected.Render(line)
		}
		opts = append(opts, line)
	}
	b.WriteString(styleBox.Render(strings.Join(opts, "\n")))
	b.WriteString("\n")

	if verdict != nil {
		b.WriteString("\n")
		if verdict.Correct {
			b.WriteString(styleCorrect.Render("Correct!"))
		} else {
			b.WriteString(styleIncorrect.Render(fmt.Sprintf("Wrong, the answer is %s) %s",
				strings.ToLower(verdict.CorrectLabel), verdict.CorrectText)))
		}
		b.WriteString("\n")
		if rec.MemoryCue != "" {
			b.WriteString(styleCue.Render("Cue: "+rec.MemoryCue) + "\n")
		}
	}
	return b.String()
}

func imageLine(img *image.Image) string {
	switch {
	case img == nil:
		return ""
	case img.URL != "":
		return fmt.Sprintf("Image (%s): %s", img.Source, img.URL)
	case img.HasData():
		return fmt.Sprintf("Image (%s): %d bytes %s", img.Source, len(img.Data), img.MIMEType)
	}
	return ""
}

func (m Model) help() string {
	if m.mode != modeQuiz {
		return "enter: confirm · esc: back · ctrl+c: quit"
	}
	keys := []string{}
	switch m.state.Phase {
	case session.PhaseQuiz:
		keys = append(keys, "a-d: answer")
	case session.PhaseResult:
		keys = append(keys, "n: next")
	case session.PhaseIdle:
		keys = append(keys, "enter: start")
	}
	keys = append(keys, "r: new image", "p: pronounce", "e: export", "w: add words", "k: API key", "q: quit")
	return strings.Join(keys, " · ")
}
