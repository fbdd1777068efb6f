package session

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/snonux/vocabquiz/internal/image"
	"codeberg.org/snonux/vocabquiz/internal/quiz"
	"codeberg.org/snonux/vocabquiz/internal/textgen"
)

type fetchResult struct {
	record      *quiz.Record
	image       *image.Image
	textCached  bool
	imageCached bool
	imageErr    error
}

// fetch resolves the record and image for word. Cache and library hits are
// used as they are; misses go to the producers. Only a text failure is
// returned as an error.
func (s *Session) fetch(ctx context.Context, word, apiKey string) (fetchResult, error) {
	var res fetchResult

	res.record, res.textCached = s.quizzes.Get(word)
	res.image, res.imageCached = s.imgs.Get(word)
	if !res.imageCached {
		if img, ok := s.library.Lookup(word); ok {
			s.imgs.Put(word, img)
			res.image, res.imageCached = img, true
		}
	}

	needText := !res.textCached
	needImage := !res.imageCached && s.images != nil

	if !s.cfg.Concurrent {
		return s.fetchSerial(ctx, word, apiKey, res, needText, needImage)
	}

	// each branch has its own deadline; returning cancels the image branch
	// when the text branch fails
	textCtx, cancelText := context.WithTimeout(ctx, s.cfg.TextTimeout)
	defer cancelText()
	imgCtx, cancelImage := context.WithTimeout(ctx, s.cfg.ImageTimeout)
	defer cancelImage()

	var waitText func() (*quiz.Record, error)
	if needText {
		waitText = start(textCtx, func(ctx context.Context) (*quiz.Record, error) {
			return s.generateText(ctx, word, apiKey)
		})
	}

	var waitImage func() (*image.Image, error)
	if needImage {
		prompt := ""
		if res.record != nil {
			prompt = res.record.ImagePrompt
		}
		waitImage = start(imgCtx, func(ctx context.Context) (*image.Image, error) {
			return s.generateImage(ctx, word, prompt, apiKey)
		})
	}

	if needText {
		rec, err := waitText()
		if err != nil {
			return fetchResult{}, err
		}
		res.record = rec
	}

	if needImage {
		res.image, res.imageErr = waitImage()
		if res.imageErr == nil {
			s.imgs.Put(word, res.image)
		}
	}
	return res, nil
}

// fetchSerial waits for the record first so the image can use the
// generated illustration prompt.
func (s *Session) fetchSerial(ctx context.Context, word, apiKey string, res fetchResult, needText, needImage bool) (fetchResult, error) {
	if needText {
		textCtx, cancel := context.WithTimeout(ctx, s.cfg.TextTimeout)
		defer cancel()
		rec, err := start(textCtx, func(ctx context.Context) (*quiz.Record, error) {
			return s.generateText(ctx, word, apiKey)
		})()
		if err != nil {
			return fetchResult{}, err
		}
		res.record = rec
	}
	if needImage {
		imgCtx, cancel := context.WithTimeout(ctx, s.cfg.ImageTimeout)
		defer cancel()
		prompt := res.record.ImagePrompt
		res.image, res.imageErr = start(imgCtx, func(ctx context.Context) (*image.Image, error) {
			return s.generateImage(ctx, word, prompt, apiKey)
		})()
		if res.imageErr == nil {
			s.imgs.Put(word, res.image)
		}
	}
	return res, nil
}

// start runs fn in its own goroutine and returns a function that waits for
// the result or for ctx to end, whichever comes first. A result arriving
// after ctx ended lands in the buffered channel and is dropped.
func start[T any](ctx context.Context, fn func(context.Context) (T, error)) func() (T, error) {
	type result struct {
		value T
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		ch <- result{value: v, err: err}
	}()

	return func() (T, error) {
		select {
		case r := <-ch:
			return r.value, r.err
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

// generateText runs the text producer and caches a valid record. The
// record carries the drawn word, whatever spelling the producer echoed,
// since every cache is keyed by it.
func (s *Session) generateText(ctx context.Context, word, apiKey string) (*quiz.Record, error) {
	began := time.Now()
	rec, err := s.text.Generate(ctx, textgen.Request{Word: word, APIKey: apiKey})
	if err != nil {
		return nil, err
	}
	if err := quiz.Validate(rec); err != nil {
		return nil, fmt.Errorf("%w: %v", textgen.ErrInvalidResponse, err)
	}
	if err := ctx.Err(); err != nil {
		// the caller gave up on this record already
		return nil, err
	}
	if rec.Word != word {
		pinned := *rec
		pinned.Word = word
		rec = &pinned
	}

	s.quizzes.Put(word, rec)
	s.log.Debug("quiz record generated", "word", word, "producer", s.text.Name(), "elapsed", time.Since(began))
	return rec, nil
}

// generateImage runs the image producer. Failures are logged and returned
// for the outcome; they never abort the question. The caller caches the
// image once it has decided to use it.
func (s *Session) generateImage(ctx context.Context, word, prompt, apiKey string) (*image.Image, error) {
	if prompt == "" {
		prompt = image.FallbackPrompt(word)
	}

	began := time.Now()
	img, err := s.images.Generate(ctx, image.Request{Word: word, Prompt: prompt, APIKey: apiKey})
	if err == nil && img == nil {
		err = image.ErrNoImage
	}
	if err != nil {
		s.log.Warn("image generation failed, continuing without image",
			"word", word,
			"producer", s.images.Name(),
			"elapsed", time.Since(began),
			"error", err)
		return nil, err
	}
	return img, nil
}
