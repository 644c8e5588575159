package circuit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestBreaker(cfg Config) (*Breaker, *fakeClock) {
	clk := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	b := NewBreaker("test", cfg, zap.NewNop())
	b.now = clk.now
	return b, clk
}

func TestNewBreaker(t *testing.T) {
	breaker := NewBreaker("test", Config{Threshold: 5, Timeout: time.Second}, nil)
	assert.Equal(t, StateClosed, breaker.State())
	assert.NotEqual(t, StateOpen, breaker.State())
}

func TestBreaker_OpensAtThreshold(t *testing.T) {
	breaker, _ := newTestBreaker(Config{Threshold: 3, Timeout: time.Second, SuccessThreshold: 2, MaxHalfOpen: 2})

	for i := 0; i < 3; i++ {
		breaker.Record(errors.New("boom"))
	}

	assert.Equal(t, StateOpen, breaker.State())
	assert.ErrorIs(t, breaker.Allow(), ErrCircuitOpen)
}

func TestBreaker_HalfOpenThenClosed(t *testing.T) {
	breaker, clk := newTestBreaker(Config{Threshold: 2, Timeout: 100 * time.Millisecond, SuccessThreshold: 2, MaxHalfOpen: 5})

	breaker.Record(errors.New("e1"))
	breaker.Record(errors.New("e2"))
	require.Equal(t, StateOpen, breaker.State())

	clk.advance(150 * time.Millisecond)
	require.NoError(t, breaker.Allow())
	assert.Equal(t, StateHalfOpen, breaker.State())

	breaker.Record(nil)
	breaker.Record(nil)
	assert.Equal(t, StateClosed, breaker.State())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	breaker, clk := newTestBreaker(Config{Threshold: 1, Timeout: time.Second, SuccessThreshold: 1, MaxHalfOpen: 1})

	breaker.Record(errors.New("e"))
	clk.advance(time.Second)
	require.NoError(t, breaker.Allow())
	assert.ErrorIs(t, breaker.Allow(), ErrTooManyRequests)

	breaker.Record(errors.New("still down"))
	assert.Equal(t, StateOpen, breaker.State())
}

func TestBreaker_IsFailureClassifier(t *testing.T) {
	clientErr := errors.New("400 bad request")
	breaker, _ := newTestBreaker(Config{
		Threshold: 1,
		Timeout:   time.Minute,
		IsFailure: func(err error) bool { return !errors.Is(err, clientErr) },
	})

	ctx := context.Background()
	err := breaker.Execute(ctx, func(context.Context) error { return clientErr })
	assert.ErrorIs(t, err, clientErr)
	assert.Equal(t, StateClosed, breaker.State())

	_ = breaker.Execute(ctx, func(context.Context) error { return errors.New("502") })
	assert.Equal(t, StateOpen, breaker.State())

	called := false
	err = breaker.Execute(ctx, func(context.Context) error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestBreaker_CancelledContextNotCounted(t *testing.T) {
	breaker, _ := newTestBreaker(Config{Threshold: 1, Timeout: time.Minute})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := breaker.Execute(ctx, func(ctx context.Context) error { return ctx.Err() })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, breaker.State())
}

func TestBreaker_OnStateChange(t *testing.T) {
	var transitions []string
	breaker, clk := newTestBreaker(Config{
		Threshold: 1,
		Timeout:   time.Minute,
		OnStateChange: func(name string, from, to State) {
			transitions = append(transitions, name+":"+from.String()+"->"+to.String())
		},
	})

	breaker.Record(errors.New("e"))
	clk.advance(time.Minute)
	require.NoError(t, breaker.Allow())
	breaker.Record(nil)

	assert.Equal(t, []string{"test:CLOSED->OPEN", "test:OPEN->HALF_OPEN", "test:HALF_OPEN->CLOSED"}, transitions)
}

func TestBreakerRegistry(t *testing.T) {
	registry := NewBreakerRegistry(Config{Threshold: 3, Timeout: time.Second}, nil)

	auth := registry.GetOrCreate("auth")
	admin := registry.GetOrCreate("admin")

	assert.Same(t, auth, registry.GetOrCreate("auth"))
	assert.NotSame(t, auth, admin)
	stats := registry.Stats()
	assert.Len(t, stats, 2)
	assert.Equal(t, "CLOSED", stats["admin"].(map[string]any)["state"])
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "CLOSED", StateClosed.String())
	assert.Equal(t, "OPEN", StateOpen.String())
	assert.Equal(t, "HALF_OPEN", StateHalfOpen.String())
	assert.Equal(t, "UNKNOWN", State(99).String())
}
