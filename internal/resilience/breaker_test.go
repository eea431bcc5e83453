package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("connection refused")

func newTestBreaker(threshold int, cooldown time.Duration) (*Breaker, *time.Time) {
	now := time.Now()
	b := NewBreaker("test", BreakerConfig{FailureThreshold: threshold, Cooldown: cooldown})
	b.now = func() time.Time { return now }
	return b, &now
}

func TestBreaker_ClosedPassesThrough(t *testing.T) {
	b, _ := newTestBreaker(3, time.Minute)

	require.NoError(t, b.Allow())
	b.Record(nil)
	assert.Equal(t, Closed, b.State())
	assert.Equal(t, 0, b.Failures())
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b, _ := newTestBreaker(3, time.Minute)

	for range 3 {
		require.NoError(t, b.Allow())
		b.Record(errUpstream)
	}

	assert.Equal(t, Open, b.State())
	assert.ErrorIs(t, b.Allow(), ErrCircuitOpen)
}

func TestBreaker_SuccessResetsCount(t *testing.T) {
	b, _ := newTestBreaker(3, time.Minute)

	for range 2 {
		require.NoError(t, b.Allow())
		b.Record(errUpstream)
	}
	assert.Equal(t, 2, b.Failures())

	require.NoError(t, b.Allow())
	b.Record(nil)
	assert.Equal(t, 0, b.Failures())
	assert.Equal(t, Closed, b.State())
}

func TestBreaker_NonTrippingErrorsIgnored(t *testing.T) {
	b, _ := newTestBreaker(1, time.Minute)

	require.NoError(t, b.Allow())
	b.Record(errors.New("unmarshal response"))
	assert.Equal(t, Closed, b.State())
}

func TestBreaker_HalfOpenProbe(t *testing.T) {
	b, now := newTestBreaker(1, 100*time.Millisecond)

	require.NoError(t, b.Allow())
	b.Record(errUpstream)
	require.Equal(t, Open, b.State())

	*now = now.Add(200 * time.Millisecond)
	assert.Equal(t, HalfOpen, b.State())

	// Only one probe at a time.
	require.NoError(t, b.Allow())
	assert.ErrorIs(t, b.Allow(), ErrCircuitOpen)

	b.Record(nil)
	assert.Equal(t, Closed, b.State())
	assert.NoError(t, b.Allow())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	b, now := newTestBreaker(1, 100*time.Millisecond)

	require.NoError(t, b.Allow())
	b.Record(errUpstream)

	*now = now.Add(200 * time.Millisecond)
	require.NoError(t, b.Allow())
	b.Record(errUpstream)

	assert.Equal(t, Open, b.State())
	assert.ErrorIs(t, b.Allow(), ErrCircuitOpen)
}

func TestBreaker_Defaults(t *testing.T) {
	b := NewBreaker("defaults", BreakerConfig{})
	assert.Equal(t, 5, b.cfg.FailureThreshold)
	assert.Equal(t, 30*time.Second, b.cfg.Cooldown)
	assert.NotNil(t, b.cfg.ShouldTrip)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", Closed.String())
	assert.Equal(t, "open", Open.String())
	assert.Equal(t, "half-open", HalfOpen.String())
	assert.Equal(t, "unknown", State(9).String())
}

func TestBreaker_CancellationIsNeutral(t *testing.T) {
	b, _ := newTestBreaker(2, time.Minute)

	require.NoError(t, b.Allow())
	b.Record(errUpstream)
	require.NoError(t, b.Allow())
	b.Record(context.Canceled)

	assert.Equal(t, 1, b.Failures())
	assert.Equal(t, Closed, b.State())
}
