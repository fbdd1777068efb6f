// Package guard wraps remote producer calls in a circuit breaker so a dead
// service fails fast instead of stalling every quiz draw.
package guard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// Settings configures a Breaker
type Settings struct {
	Name                string
	MaxFailures         uint32        // consecutive failures before opening
	OpenTimeout         time.Duration // how long the breaker stays open
	HalfOpenMaxRequests uint32
}

// DefaultSettings returns sensible defaults for a named producer
func DefaultSettings(name string) Settings {
	return Settings{
		Name:                name,
		MaxFailures:         3,
		OpenTimeout:         30 * time.Second,
		HalfOpenMaxRequests: 1,
	}
}

// Breaker is a thin wrapper around gobreaker that logs state changes
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

// NewBreaker creates a circuit breaker
func NewBreaker(st Settings, log *slog.Logger) *Breaker {
	if log == nil {
		log = slog.Default()
	}
	if st.MaxFailures == 0 {
		st.MaxFailures = 3
	}

	maxFailures := st.MaxFailures
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        st.Name,
		MaxRequests: st.HalfOpenMaxRequests,
		Timeout:     st.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// a caller giving up is not the remote service failing
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("producer circuit breaker changed state",
				"producer", name,
				"from", from.String(),
				"to", to.String())
		},
	})

	return &Breaker{cb: cb}
}

// Do runs fn through the breaker. When the breaker is open fn is not called
// and ErrOpen is returned.
func Do[T any](b *Breaker, fn func() (T, error)) (T, error) {
	var zero T
	if b == nil {
		return fn()
	}

	out, err := b.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, errors.Join(ErrOpen, err)
		}
		return zero, err
	}
	v, _ := out.(T)
	return v, nil
}

// State returns the breaker state name ("closed", "open", "half-open")
func (b *Breaker) State() string {
	return b.cb.State().String()
}

// ErrOpen marks calls rejected by an open breaker
var ErrOpen = errors.New("producer temporarily disabled after repeated failures")
