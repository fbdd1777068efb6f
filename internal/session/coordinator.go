package session

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"codeberg.org/snonux/vocabquiz/internal/image"
	"codeberg.org/snonux/vocabquiz/internal/quiz"
	"codeberg.org/snonux/vocabquiz/internal/textgen"
)

// Config tunes the coordinator
type Config struct {
	TextTimeout     time.Duration // bound on the mandatory text branch
	ImageTimeout    time.Duration // bound on the optional image branch
	RerenderTimeout time.Duration // bound on an explicit re-render
	Concurrent      bool          // run text and image branches at the same time
	Library         *image.Library
	Rand            *rand.Rand
	Logger          *slog.Logger
}

// DefaultConfig returns the default timeouts with concurrent fetching
func DefaultConfig() Config {
	return Config{
		TextTimeout:     10 * time.Second,
		ImageTimeout:    4 * time.Second,
		RerenderTimeout: 30 * time.Second,
		Concurrent:      true,
	}
}

// Session is one learner's quiz. All methods are safe for concurrent use;
// the lock is never held while a producer runs.
type Session struct {
	text    textgen.Producer
	images  image.Producer // nil disables generated images
	library *image.Library
	cfg     Config
	log     *slog.Logger

	quizzes *QuizCache
	imgs    *ImageCache

	mu        sync.Mutex
	rng       *rand.Rand
	apiKey    string
	pool      pool
	phase     Phase
	current   *Question
	selection string
	verdict   *quiz.Verdict
	score     Score
	busy      bool
	epoch     uint64
}

// New creates a session. images may be nil.
func New(text textgen.Producer, images image.Producer, cfg Config) *Session {
	def := DefaultConfig()
	if cfg.TextTimeout <= 0 {
		cfg.TextTimeout = def.TextTimeout
	}
	if cfg.ImageTimeout <= 0 {
		cfg.ImageTimeout = def.ImageTimeout
	}
	if cfg.RerenderTimeout <= 0 {
		cfg.RerenderTimeout = def.RerenderTimeout
	}
	rng := cfg.Rand
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Session{
		text:    text,
		images:  images,
		library: cfg.Library,
		cfg:     cfg,
		log:     log,
		quizzes: NewQuizCache(),
		imgs:    NewImageCache(),
		rng:     rng,
	}
}

// SetCredential sets the API key passed to the producers. An empty key
// clears it.
func (s *Session) SetCredential(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiKey = strings.TrimSpace(key)
}

// HasCredential reports whether an API key is set
func (s *Session) HasCredential() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apiKey != ""
}

// AddWords appends the words in text (one per line) to the pool and returns
// how many were added. Words added mid-round join from the next round on.
func (s *Session) AddWords(text string) int {
	return s.AddWordList(SplitWords(text))
}

// AddWordList appends words to the pool, skipping blank entries
func (s *Session) AddWordList(words []string) int {
	clean := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			clean = append(clean, w)
		}
	}
	if len(clean) == 0 {
		return 0
	}

	s.mu.Lock()
	s.pool.add(clean)
	size := len(s.pool.words)
	s.mu.Unlock()

	s.log.Info("words added to pool", "added", len(clean), "pool_size", size)
	return len(clean)
}

// Words returns a copy of the word pool
func (s *Session) Words() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.pool.words...)
}

// HasWord reports whether word was added to the pool
func (s *Session) HasWord(word string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.pool.words, word)
}

// Remaining returns a copy of the words not yet quizzed this round
func (s *Session) Remaining() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.pool.remaining...)
}

// Advance draws the next word and prepares its question. It only runs in
// IDLE. On a text failure it returns a *ProducerError and leaves the pool
// and phase as they were.
func (s *Session) Advance(ctx context.Context) (*Outcome, error) {
	s.mu.Lock()
	switch {
	case s.busy:
		s.mu.Unlock()
		return nil, ErrBusy
	case s.phase != PhaseIdle:
		s.mu.Unlock()
		return nil, ErrWrongPhase
	case s.apiKey == "":
		s.mu.Unlock()
		return nil, ErrNoCredential
	case len(s.pool.words) == 0:
		s.mu.Unlock()
		return nil, ErrEmptyPool
	}

	list, newRound := s.pool.candidates()
	word := list[s.rng.IntN(len(list))]
	apiKey := s.apiKey
	s.busy = true
	s.mu.Unlock()

	began := time.Now()
	res, err := s.fetch(ctx, word, apiKey)
	if err != nil {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()

		s.log.Warn("question generation failed",
			"word", word,
			"elapsed", time.Since(began),
			"error", err)
		return nil, &ProducerError{Word: word, Err: err}
	}

	s.mu.Lock()
	s.pool.commit(list, word)
	if newRound {
		s.score.Round++
	}
	s.epoch++
	q := &Question{Record: res.record, Image: res.image, Epoch: s.epoch}
	s.current = q
	s.phase = PhaseQuiz
	s.selection = ""
	s.verdict = nil
	s.busy = false
	remaining := len(s.pool.remaining)
	s.mu.Unlock()

	s.log.Info("question ready",
		"word", word,
		"new_round", newRound,
		"text_cached", res.textCached,
		"image_cached", res.imageCached,
		"has_image", q.Image != nil,
		"remaining", remaining,
		"elapsed", time.Since(began))

	return &Outcome{
		Question:    q,
		NewRound:    newRound,
		TextCached:  res.textCached,
		ImageCached: res.imageCached,
		ImageErr:    res.imageErr,
	}, nil
}

// Submit records the chosen label and moves QUIZ -> RESULT. Any label that
// is not the correct one, including labels outside A-D, is a wrong answer.
func (s *Session) Submit(label string) (quiz.Verdict, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseQuiz || s.current == nil {
		return quiz.Verdict{}, ErrWrongPhase
	}

	v := quiz.Evaluate(s.current.Record, label)
	s.selection = v.Selected
	s.verdict = &v
	s.phase = PhaseResult
	s.score.Answered++
	if v.Correct {
		s.score.Correct++
	}

	s.log.Debug("answer submitted",
		"word", s.current.Word(),
		"selected", v.Selected,
		"correct", v.Correct)
	return v, nil
}

// Next leaves RESULT, clears the question and immediately advances. When
// that advance fails the session stays in IDLE.
func (s *Session) Next(ctx context.Context) (*Outcome, error) {
	s.mu.Lock()
	if s.phase != PhaseResult {
		s.mu.Unlock()
		return nil, ErrWrongPhase
	}
	s.phase = PhaseIdle
	s.current = nil
	s.selection = ""
	s.verdict = nil
	s.mu.Unlock()

	return s.Advance(ctx)
}

// RerenderImage generates a new illustration for the current word with a
// fresh seed. The image cache is always updated; the current question only
// if it still shows the same word.
func (s *Session) RerenderImage(ctx context.Context) (*image.Image, error) {
	s.mu.Lock()
	if s.current == nil || s.phase == PhaseIdle {
		s.mu.Unlock()
		return nil, ErrWrongPhase
	}
	if s.images == nil {
		s.mu.Unlock()
		return nil, ErrNoImageProducer
	}
	word := s.current.Record.Word
	prompt := s.current.Record.ImagePrompt
	epoch := s.current.Epoch
	apiKey := s.apiKey
	seed := s.rng.Uint32() | 1
	s.mu.Unlock()

	rctx, cancel := context.WithTimeout(ctx, s.cfg.RerenderTimeout)
	defer cancel()

	img, err := start(rctx, func(ctx context.Context) (*image.Image, error) {
		return s.images.Generate(ctx, image.Request{Word: word, Prompt: prompt, APIKey: apiKey, Seed: seed})
	})()
	if err == nil && img == nil {
		err = image.ErrNoImage
	}
	if err != nil {
		s.log.Warn("image re-render failed", "word", word, "error", err)
		return nil, err
	}
	s.imgs.Put(word, img)

	s.mu.Lock()
	if s.current != nil && s.current.Epoch == epoch {
		q := *s.current
		q.Image = img
		s.current = &q
	} else {
		s.log.Debug("re-rendered image arrived after the question changed", "word", word)
	}
	s.mu.Unlock()

	return img, nil
}

// Snapshot returns a copy of the current state
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Phase:         s.phase,
		Current:       s.current,
		Selection:     s.selection,
		Score:         s.score,
		PoolSize:      len(s.pool.words),
		Remaining:     len(s.pool.remaining),
		HasCredential: s.apiKey != "",
		Busy:          s.busy,
	}
	if s.verdict != nil {
		v := *s.verdict
		st.Verdict = &v
	}
	return st
}

// Records returns every quiz record generated so far
func (s *Session) Records() []*quiz.Record {
	return s.quizzes.Records()
}

// Image returns the cached illustration for word
func (s *Session) Image(word string) (*image.Image, bool) {
	return s.imgs.Get(word)
}
