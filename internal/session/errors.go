package session

import (
	"errors"
	"fmt"

	"codeberg.org/snonux/vocabquiz/internal/textgen"
)

var (
	// ErrNoCredential blocks Advance until an API key is supplied
	ErrNoCredential = errors.New("no API key configured")
	// ErrEmptyPool blocks Advance until words are added
	ErrEmptyPool = errors.New("word pool is empty, add some words first")
	// ErrWrongPhase is returned for a transition the current phase does not allow
	ErrWrongPhase = errors.New("not allowed in the current phase")
	// ErrBusy is returned while another Advance is still resolving
	ErrBusy = errors.New("a question is already being prepared")
	// ErrNoImageProducer is returned by RerenderImage when images are disabled
	ErrNoImageProducer = errors.New("no image producer configured")
)

// ProducerError reports a failed text branch. The drawn word was left in
// the remaining set, so the caller can simply try again.
type ProducerError struct {
	Word string
	Err  error
}

func (e *ProducerError) Error() string {
	return fmt.Sprintf("could not generate a question for %q: %v", e.Word, e.Err)
}

func (e *ProducerError) Unwrap() error {
	return e.Err
}

// Retryable reports whether re-triggering Advance can succeed without the
// user changing anything first.
func (e *ProducerError) Retryable() bool {
	return !errors.Is(e.Err, textgen.ErrNoAPIKey)
}
