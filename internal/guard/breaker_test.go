package guard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/vocabquiz/internal/logger"
)

var errBoom = errors.New("boom")

func TestDoPassesThroughResults(t *testing.T) {
	b := NewBreaker(DefaultSettings("text"), logger.Discard())

	got, err := Do(b, func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", got)

	_, err = Do(b, func() (string, error) { return "", errBoom })
	assert.ErrorIs(t, err, errBoom)
	assert.NotErrorIs(t, err, ErrOpen)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	b := NewBreaker(Settings{Name: "image", MaxFailures: 2, OpenTimeout: time.Minute}, logger.Discard())

	for i := 0; i < 2; i++ {
		_, err := Do(b, func() (int, error) { return 0, errBoom })
		require.ErrorIs(t, err, errBoom)
	}
	assert.Equal(t, "open", b.State())

	called := false
	_, err := Do(b, func() (int, error) {
		called = true
		return 1, nil
	})
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called, "open breaker must not call through")
}

func TestBreakerRecoversAfterTimeout(t *testing.T) {
	b := NewBreaker(Settings{Name: "text", MaxFailures: 1, OpenTimeout: 20 * time.Millisecond, HalfOpenMaxRequests: 1}, logger.Discard())

	_, err := Do(b, func() (int, error) { return 0, errBoom })
	require.ErrorIs(t, err, errBoom)
	require.Equal(t, "open", b.State())

	time.Sleep(40 * time.Millisecond)

	got, err := Do(b, func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, got)
	assert.Equal(t, "closed", b.State())
}

func TestDoWithNilBreaker(t *testing.T) {
	got, err := Do(nil, func() (int, error) { return 3, nil })
	require.NoError(t, err)
	assert.Equal(t, 3, got)
}

func TestCancellationDoesNotTrip(t *testing.T) {
	b := NewBreaker(Settings{Name: "text", MaxFailures: 1, OpenTimeout: time.Minute}, logger.Discard())

	_, err := Do(b, func() (int, error) { return 0, context.Canceled })
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "closed", b.State())
}
