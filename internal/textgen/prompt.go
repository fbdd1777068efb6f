package textgen

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"codeberg.org/snonux/vocabquiz/internal/quiz"
)

const systemPrompt = "You are the question writer of an English vocabulary flashcard app. " +
	"You answer with a single JSON object and nothing else: no Markdown, no code fences, no commentary."

// labelPicker hands out the label the correct answer should sit under, so the
// right answer is not always B.
type labelPicker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (p *labelPicker) pick() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return quiz.Labels[p.rng.IntN(len(quiz.Labels))]
}

// BuildPrompt returns the user prompt asking for a quiz record for word. The
// correct meaning must be placed under correctLabel.
func BuildPrompt(word, language, correctLabel string) string {
	if language == "" {
		language = "Simplified Chinese"
	}

	var opts strings.Builder
	for _, label := range quiz.Labels {
		kind := "a plausible but wrong meaning"
		if label == correctLabel {
			kind = "the correct meaning"
		}
		fmt.Fprintf(&opts, "    {\"label\": %q, \"text\": \"<%s in %s>\"},\n", label, kind, language)
	}

	return fmt.Sprintf(`Design one vocabulary quiz question for the English word %q.

Return exactly this JSON structure:
{
  "word": %q,
  "phonetic": "<IPA transcription without slashes>",
  "memory_cue": "<a vivid scene that helps remember the word, at most 100 characters, in %s>",
  "image_prompt": "<a short English prompt for a cartoon illustration of that scene>",
  "options": [
%s  ],
  "correct_label": %q
}

Rules:
- exactly four options labeled A, B, C and D
- the correct meaning must be option %s
- the three wrong meanings must be distinct from each other and from the correct one`,
		word, word, language, strings.TrimSuffix(opts.String(), ",\n")+"\n", correctLabel, correctLabel)
}
