package session

import "strings"

// pool holds the word pool and the words not yet quizzed this round
type pool struct {
	words     []string
	remaining []string
}

func (p *pool) add(words []string) {
	p.words = append(p.words, words...)
}

// candidates returns the words to draw from. When the round is exhausted it
// returns a fresh copy of the pool and reports a new round; nothing is
// stored until commit.
func (p *pool) candidates() ([]string, bool) {
	if len(p.remaining) > 0 {
		return p.remaining, false
	}
	return append([]string(nil), p.words...), true
}

// commit makes list (as returned by candidates) the remaining set minus
// the first occurrence of word.
func (p *pool) commit(list []string, word string) {
	out := make([]string, 0, len(list))
	removed := false
	for _, w := range list {
		if !removed && w == word {
			removed = true
			continue
		}
		out = append(out, w)
	}
	p.remaining = out
}

// SplitWords splits pasted text into words, one per line, dropping blank
// lines and surrounding whitespace.
func SplitWords(text string) []string {
	var words []string
	for _, line := range strings.Split(text, "\n") {
		if w := strings.TrimSpace(line); w != "" {
			words = append(words, w)
		}
	}
	return words
}
