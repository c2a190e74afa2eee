package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStore = errors.New("store down")

func newTestBreaker(threshold uint32, cooldown time.Duration) (*CircuitBreaker, *time.Time) {
	cfg := DefaultConfig("test")
	cfg.FailureThreshold = threshold
	cfg.Timeout = cooldown
	cb := New(cfg, nil)

	clock := time.Now()
	cb.now = func() time.Time { return clock }
	return cb, &clock
}

func fail(context.Context) error    { return errStore }
func succeed(context.Context) error { return nil }

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cb, _ := newTestBreaker(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(ctx, fail), errStore)
	}
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(ctx, func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitBreakerOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_SuccessResetsConsecutiveFailures(t *testing.T) {
	cb, _ := newTestBreaker(3, time.Minute)
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	_ = cb.Execute(ctx, fail)
	require.NoError(t, cb.Execute(ctx, succeed))
	_ = cb.Execute(ctx, fail)

	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, uint32(1), cb.Counts().ConsecutiveFailures)
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	tests := []struct {
		name      string
		probe     func(context.Context) error
		wantState State
	}{
		{name: "Probe succeeds", probe: succeed, wantState: StateClosed},
		{name: "Probe fails", probe: fail, wantState: StateOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var transitions []State
			cb, clock := newTestBreaker(1, time.Second)
			cb.config.OnStateChange = func(_ string, _ State, to State) {
				transitions = append(transitions, to)
			}
			ctx := context.Background()

			_ = cb.Execute(ctx, fail)
			require.Equal(t, StateOpen, cb.State())

			*clock = clock.Add(2 * time.Second)
			_ = cb.Execute(ctx, tt.probe)

			assert.Equal(t, tt.wantState, cb.State())
			assert.Equal(t, []State{StateOpen, StateHalfOpen, tt.wantState}, transitions)
		})
	}
}

func TestCircuitBreaker_CancelledCallsDoNotCount(t *testing.T) {
	cb, _ := newTestBreaker(1, time.Minute)

	err := cb.Execute(context.Background(), func(context.Context) error { return context.Canceled })

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, cb.State())
}
