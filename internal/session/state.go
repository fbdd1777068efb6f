package session

import (
	"fmt"

	"codeberg.org/snonux/vocabquiz/internal/image"
	"codeberg.org/snonux/vocabquiz/internal/quiz"
)

// Phase is the position in the quiz cycle
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseQuiz
	PhaseResult
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "IDLE"
	case PhaseQuiz:
		return "QUIZ"
	case PhaseResult:
		return "RESULT"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// MarshalText renders the phase name in JSON
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses a phase name
func (p *Phase) UnmarshalText(text []byte) error {
	for _, candidate := range []Phase{PhaseIdle, PhaseQuiz, PhaseResult} {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// Question is the word currently being quizzed. A published Question is
// never modified; a re-render publishes a copy.
type Question struct {
	Record *quiz.Record `json:"record"`
	Image  *image.Image `json:"image,omitempty"`
	Epoch  uint64       `json:"epoch"`
}

// Word returns the quizzed word
func (q *Question) Word() string {
	if q == nil || q.Record == nil {
		return ""
	}
	return q.Record.Word
}

// Score counts answers over the whole session
type Score struct {
	Answered int `json:"answered"`
	Correct  int `json:"correct"`
	Round    int `json:"round"`
}

// State is a point-in-time copy of the session
type State struct {
	Phase         Phase         `json:"phase"`
	Current       *Question     `json:"current,omitempty"`
	Selection     string        `json:"selection,omitempty"`
	Verdict       *quiz.Verdict `json:"verdict,omitempty"`
	Score         Score         `json:"score"`
	PoolSize      int           `json:"pool_size"`
	Remaining     int           `json:"remaining"`
	HasCredential bool          `json:"has_credential"`
	Busy          bool          `json:"busy"`
}

// Outcome describes a successful Advance
type Outcome struct {
	Question    *Question
	NewRound    bool  // the remaining set was refilled for this draw
	TextCached  bool  // the record came from the quiz cache
	ImageCached bool  // the image came from the image cache or the library
	ImageErr    error // why the question has no image, if the branch failed
}
