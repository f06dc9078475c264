package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func retryConfig() Config {
	return Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: 1 * time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2,
		BreakerEnabled:      false,
	}
}

func TestDoRetriesRetryableFailure(t *testing.T) {
	exec := NewExecutor(retryConfig())

	attempts := 0
	errTemp := errors.New("temporary")
	err := exec.Do(context.Background(), "op", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errTemp
		}
		return nil
	}, func(err error) ErrorClassification {
		return ErrorClassification{Retryable: errors.Is(err, errTemp), RecordFailure: true}
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestDoDoesNotRetryPermanentFailure(t *testing.T) {
	exec := NewExecutor(retryConfig())

	attempts := 0
	errPermanent := errors.New("permanent")
	err := exec.Do(context.Background(), "op", func(context.Context) error {
		attempts++
		return errPermanent
	}, func(error) ErrorClassification {
		return ErrorClassification{Retryable: false, RecordFailure: false}
	})
	if !errors.Is(err, errPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestDoOpensCircuitAfterFailures(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts:        1,
		RetryInitialBackoff:     1 * time.Millisecond,
		RetryMaxBackoff:         1 * time.Millisecond,
		RetryMultiplier:         2,
		BreakerEnabled:          true,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      50 * time.Millisecond,
		BreakerHalfOpenMaxCalls: 1,
	})

	failing := errors.New("backend down")
	classify := func(error) ErrorClassification {
		return ErrorClassification{Retryable: false, RecordFailure: true}
	}

	for i := 0; i < 2; i++ {
		_ = exec.Do(context.Background(), "op", func(context.Context) error {
			return failing
		}, classify)
	}

	calls := 0
	err := exec.Do(context.Background(), "op", func(context.Context) error {
		calls++
		return nil
	}, classify)
	if !IsCircuitOpen(err) {
		t.Fatalf("expected open circuit error, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("callback must not run while circuit is open, ran %d times", calls)
	}
}

func TestDoKeepsBreakersPerOperation(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts:        1,
		RetryInitialBackoff:     1 * time.Millisecond,
		RetryMaxBackoff:         1 * time.Millisecond,
		RetryMultiplier:         2,
		BreakerEnabled:          true,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      time.Second,
		BreakerHalfOpenMaxCalls: 1,
	})

	failing := errors.New("down")
	classify := func(error) ErrorClassification {
		return ErrorClassification{Retryable: false, RecordFailure: true}
	}
	for i := 0; i < 3; i++ {
		_ = exec.Do(context.Background(), "embed", func(context.Context) error {
			return failing
		}, classify)
	}

	err := exec.Do(context.Background(), "generate", func(context.Context) error {
		return nil
	}, classify)
	if err != nil {
		t.Fatalf("breaker for another operation must stay closed, got %v", err)
	}
}

func TestDoStopsOnCanceledContext(t *testing.T) {
	exec := NewExecutor(retryConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := exec.Do(ctx, "op", func(context.Context) error {
		attempts++
		return nil
	}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if attempts != 0 {
		t.Fatalf("callback must not run after cancellation, ran %d times", attempts)
	}
}

func TestNormalizeFillsDefaults(t *testing.T) {
	cfg := Config{}.normalize()
	def := DefaultConfig()
	if cfg.RetryMaxAttempts != def.RetryMaxAttempts {
		t.Fatalf("RetryMaxAttempts = %d, want %d", cfg.RetryMaxAttempts, def.RetryMaxAttempts)
	}
	if cfg.BreakerFailureRatio != def.BreakerFailureRatio {
		t.Fatalf("BreakerFailureRatio = %v, want %v", cfg.BreakerFailureRatio, def.BreakerFailureRatio)
	}

	cfg = Config{RetryInitialBackoff: time.Second, RetryMaxBackoff: time.Millisecond}.normalize()
	if cfg.RetryMaxBackoff < cfg.RetryInitialBackoff {
		t.Fatalf("max backoff %v must not be below initial %v", cfg.RetryMaxBackoff, cfg.RetryInitialBackoff)
	}
}
