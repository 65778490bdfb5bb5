package retry

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastPolicy keeps test sleeps negligible.
func fastPolicy(attempts int) Policy {
	return Policy{
		MaxAttempts: attempts,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
	}
}

func TestDo_SucceedsFirstTry(t *testing.T) {
	var calls int
	err := Do(context.Background(), fastPolicy(3), "query", func(_ context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesTransient(t *testing.T) {
	var calls int
	err := Do(context.Background(), fastPolicy(3), "query", func(_ context.Context) error {
		calls++
		if calls < 3 {
			return eris.New("REQUEST_LIMIT_EXCEEDED: too many requests")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_PermanentErrorNoRetry(t *testing.T) {
	var calls int
	err := Do(context.Background(), fastPolicy(3), "query", func(_ context.Context) error {
		calls++
		return eris.New("MALFORMED_QUERY: unexpected token")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	var calls int
	err := Do(context.Background(), fastPolicy(3), "query", func(_ context.Context) error {
		calls++
		return eris.New("503 service unavailable")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "503")
}

func TestDo_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls int
	err := Do(ctx, fastPolicy(5), "query", func(_ context.Context) error {
		calls++
		cancel()
		return eris.New("connection reset by peer")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ZeroPolicyGetsDefaults(t *testing.T) {
	var calls int
	err := Do(context.Background(), Policy{}, "query", func(_ context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestTransient(t *testing.T) {
	assert.False(t, Transient(nil))
	assert.True(t, Transient(eris.New("REQUEST_LIMIT_EXCEEDED")))
	assert.True(t, Transient(eris.New("read tcp: connection reset")))
	assert.True(t, Transient(eris.New("gateway returned 502")))
	assert.True(t, Transient(eris.New("i/o timeout")))
	assert.False(t, Transient(eris.New("INVALID_FIELD: no such column")))
	assert.False(t, Transient(eris.New("MALFORMED_QUERY")))
}

func TestBackoff_Monotonic(t *testing.T) {
	p := Policy{MaxAttempts: 5, BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second}

	// Without jitter the sequence doubles until capped.
	assert.Equal(t, 100*time.Millisecond, backoff(0, p))
	assert.Equal(t, 200*time.Millisecond, backoff(1, p))
	assert.Equal(t, 400*time.Millisecond, backoff(2, p))
	assert.Equal(t, 800*time.Millisecond, backoff(3, p))
	assert.Equal(t, time.Second, backoff(4, p))
}

func TestBackoff_JitterStaysInBand(t *testing.T) {
	p := Policy{MaxAttempts: 3, BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second, Jitter: 0.5}

	for range 50 {
		d := backoff(1, p)
		assert.GreaterOrEqual(t, d, 100*time.Millisecond)
		assert.LessOrEqual(t, d, 300*time.Millisecond)
	}
}
