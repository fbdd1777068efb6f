package session

import (
	"sync"

	"codeberg.org/snonux/vocabquiz/internal/image"
	"codeberg.org/snonux/vocabquiz/internal/quiz"
)

// QuizCache maps a word to its generated record for the life of the
// process. Entries are never replaced or evicted.
type QuizCache struct {
	mu    sync.RWMutex
	m     map[string]*quiz.Record
	order []string
}

// NewQuizCache creates an empty quiz cache
func NewQuizCache() *QuizCache {
	return &QuizCache{m: make(map[string]*quiz.Record)}
}

// Get returns the record for word
func (c *QuizCache) Get(word string) (*quiz.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.m[word]
	return rec, ok
}

// Put stores rec unless word already has a record. It reports whether rec
// was stored.
func (c *QuizCache) Put(word string, rec *quiz.Record) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.m[word]; ok {
		return false
	}
	c.m[word] = rec
	c.order = append(c.order, word)
	return true
}

// Len returns the number of cached records
func (c *QuizCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

// Records returns the cached records in the order they were generated
func (c *QuizCache) Records() []*quiz.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*quiz.Record, 0, len(c.order))
	for _, w := range c.order {
		out = append(out, c.m[w])
	}
	return out
}

// ImageCache maps a word to its illustration. An explicit re-render
// overwrites the entry.
type ImageCache struct {
	mu sync.RWMutex
	m  map[string]*image.Image
}

// NewImageCache creates an empty image cache
func NewImageCache() *ImageCache {
	return &ImageCache{m: make(map[string]*image.Image)}
}

// Get returns the image for word
func (c *ImageCache) Get(word string) (*image.Image, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	img, ok := c.m[word]
	return img, ok
}

// Put stores img for word, replacing any previous image
func (c *ImageCache) Put(word string, img *image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[word] = img
}

// Len returns the number of cached images
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
