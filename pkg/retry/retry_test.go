package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() *Config {
	return &Config{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RecoversAfterFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsRetries(t *testing.T) {
	calls := 0
	wantErr := errors.New("connection reset")
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		return wantErr
	})

	require.Error(t, err)
	assert.Equal(t, wantErr, err)
	assert.Equal(t, 4, calls) // initial attempt plus three retries
}

func TestDo_NilConfigUsesDefaults(t *testing.T) {
	calls := 0
	err := Do(context.Background(), nil, func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	cfg := &Config{
		MaxRetries:   5,
		InitialDelay: time.Second,
		MaxDelay:     time.Second,
		Multiplier:   1.0,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- Do(ctx, cfg, func() error {
			return errors.New("timeout")
		})
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Do did not observe cancellation")
	}
}

func TestDoWithResult_ReturnsValue(t *testing.T) {
	calls := 0
	result, err := DoWithResult(context.Background(), fastConfig(), func() (int, error) {
		calls++
		if calls < 2 {
			return 0, errors.New("i/o timeout")
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 2, calls)
}

func TestDoWithResult_KeepsLastResultOnFailure(t *testing.T) {
	result, err := DoWithResult(context.Background(), fastConfig(), func() (string, error) {
		return "partial", errors.New("broken pipe")
	})

	require.Error(t, err)
	assert.Equal(t, "partial", result)
}

func TestDoIfRetryable_StopsOnPermanentError(t *testing.T) {
	calls := 0
	wantErr := errors.New("unsafe query argument")
	err := DoIfRetryable(context.Background(), fastConfig(), func() error {
		calls++
		return wantErr
	})

	require.Error(t, err)
	assert.Equal(t, wantErr, err)
	assert.Equal(t, 1, calls)
}

func TestDoIfRetryable_RetriesTransientError(t *testing.T) {
	calls := 0
	err := DoIfRetryable(context.Background(), fastConfig(), func() error {
		calls++
		if calls < 2 {
			return errors.New("backend unavailable: node down")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"backend unavailable", errors.New("backend unavailable: post failed"), true},
		{"http 503", errors.New("search service returned 503"), true},
		{"http 429", errors.New("429 too many requests"), true},
		{"deadlock", errors.New("deadlock detected"), true},
		{"too many connections", errors.New("too many connections"), true},
		{"rate limit", errors.New("rate limit exceeded"), true},
		{"bad request", errors.New("search service returned 400"), false},
		{"syntax error", errors.New("syntax error near 'FROM'"), false},
		{"unsafe argument", errors.New("unsafe query argument: name"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestApplyJitter(t *testing.T) {
	base := 100 * time.Millisecond

	t.Run("zero factor leaves delay untouched", func(t *testing.T) {
		assert.Equal(t, base, applyJitter(base, 0))
	})

	t.Run("stays within factor bounds", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			jittered := applyJitter(base, 0.1)
			assert.GreaterOrEqual(t, jittered, 90*time.Millisecond)
			assert.LessOrEqual(t, jittered, 110*time.Millisecond)
		}
	})
}
