package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type flaky struct{ retryable bool }

func (f *flaky) Error() string     { return fmt.Sprintf("flaky(retryable=%v)", f.retryable) }
func (f *flaky) IsRetryable() bool { return f.retryable }

var fastConfig = Config{
	MaxRetries:    3,
	InitialDelay:  5 * time.Millisecond,
	MaxDelay:      20 * time.Millisecond,
	BackoffFactor: 2.0,
}

func TestDo_SuccessFirstAttempt(t *testing.T) {
	attempts := 0
	result, err := Do(context.Background(), fastConfig, func(ctx context.Context) (string, error) {
		attempts++
		return "ok", nil
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result != "ok" {
		t.Fatalf("expected 'ok', got %q", result)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestDo_TransientThenSuccess(t *testing.T) {
	attempts := 0
	result, err := Do(context.Background(), fastConfig, func(ctx context.Context) (string, error) {
		attempts++
		if attempts < 3 {
			return "", &flaky{retryable: true}
		}
		return "recovered", nil
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result != "recovered" {
		t.Fatalf("expected 'recovered', got %q", result)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestDo_StopsOnNonRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"typed non-retryable", &flaky{retryable: false}},
		{"permanent marker", Permanent(errors.New("bad password"))},
		{"wrapped permanent", fmt.Errorf("login: %w", Permanent(errors.New("denied")))},
		{"context canceled", context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			_, err := Do(context.Background(), fastConfig, func(ctx context.Context) (int, error) {
				attempts++
				return 0, tt.err
			})
			if err == nil {
				t.Fatal("expected error")
			}
			if attempts != 1 {
				t.Fatalf("expected 1 attempt, got %d", attempts)
			}
		})
	}
}

func TestDo_ExhaustsAllAttempts(t *testing.T) {
	cfg := fastConfig
	cfg.MaxRetries = 2

	attempts := 0
	_, err := Do(context.Background(), cfg, func(ctx context.Context) (string, error) {
		attempts++
		return "", errors.New("plain errors are retried")
	})

	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	cfg := Config{MaxRetries: 5, InitialDelay: time.Second, MaxDelay: time.Second, BackoffFactor: 1}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := Do(ctx, cfg, func(ctx context.Context) (string, error) {
		return "", &flaky{retryable: true}
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Fatal("backoff did not observe context cancellation")
	}
}

func TestPermanent_Nil(t *testing.T) {
	if Permanent(nil) != nil {
		t.Fatal("Permanent(nil) must be nil")
	}
}
