package image

import (
	"context"
	"log/slog"

	"codeberg.org/snonux/vocabquiz/internal/guard"
)

type guarded struct {
	next    Producer
	breaker *guard.Breaker
}

// WithBreaker wraps p in a circuit breaker. Once the image service keeps
// failing, draws skip it immediately instead of spending the whole image
// timeout on every question.
func WithBreaker(p Producer, log *slog.Logger) Producer {
	if p == nil {
		return nil
	}
	return &guarded{
		next:    p,
		breaker: guard.NewBreaker(guard.DefaultSettings("image-"+p.Name()), log),
	}
}

func (g *guarded) Name() string {
	return g.next.Name()
}

func (g *guarded) Generate(ctx context.Context, req Request) (*Image, error) {
	return guard.Do(g.breaker, func() (*Image, error) {
		return g.next.Generate(ctx, req)
	})
}
