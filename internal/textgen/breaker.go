package textgen

import (
	"context"
	"log/slog"

	"codeberg.org/snonux/vocabquiz/internal/guard"
	"codeberg.org/snonux/vocabquiz/internal/quiz"
)

type guarded struct {
	next    Producer
	breaker *guard.Breaker
}

// WithBreaker wraps p so that repeated failures open a circuit breaker and
// further calls fail fast until the service recovers. Missing credentials
// and context cancellation by the caller do not count as failures.
func WithBreaker(p Producer, log *slog.Logger) Producer {
	return &guarded{
		next:    p,
		breaker: guard.NewBreaker(guard.DefaultSettings("text-"+p.Name()), log),
	}
}

func (g *guarded) Name() string {
	return g.next.Name()
}

func (g *guarded) Generate(ctx context.Context, req Request) (*quiz.Record, error) {
	if req.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	return guard.Do(g.breaker, func() (*quiz.Record, error) {
		return g.next.Generate(ctx, req)
	})
}
