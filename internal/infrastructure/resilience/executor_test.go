package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errTransient = errors.New("transient upstream failure")

func fastConfig() Config {
	return Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		BreakerEnabled:      false,
	}
}

func retryAll(error) ErrorClassification {
	return ErrorClassification{Retryable: true, RecordFailure: true}
}

func TestExecuteRetriesRetryableErrors(t *testing.T) {
	e := NewExecutor(fastConfig())

	calls := 0
	err := e.Execute(context.Background(), "op", func(context.Context) error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	}, retryAll)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestExecuteStopsOnNonRetryableError(t *testing.T) {
	e := NewExecutor(fastConfig())

	calls := 0
	err := e.Execute(context.Background(), "op", func(context.Context) error {
		calls++
		return errTransient
	}, func(error) ErrorClassification {
		return ErrorClassification{Retryable: false, RecordFailure: true}
	})
	if !errors.Is(err, errTransient) {
		t.Fatalf("Execute() error = %v, want errTransient", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestExecuteExhaustsRetryBudget(t *testing.T) {
	e := NewExecutor(fastConfig())

	calls := 0
	err := e.Execute(context.Background(), "op", func(context.Context) error {
		calls++
		return errTransient
	}, retryAll)
	if !errors.Is(err, errTransient) {
		t.Fatalf("Execute() error = %v, want errTransient", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestExecuteRespectsCanceledContext(t *testing.T) {
	e := NewExecutor(fastConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := e.Execute(ctx, "op", func(context.Context) error {
		calls++
		return errTransient
	}, retryAll)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Execute() error = %v, want context.Canceled", err)
	}
	if calls != 0 {
		t.Fatalf("calls = %d, want 0", calls)
	}
}

func TestExecuteStopsWaitingWhenContextCancels(t *testing.T) {
	cfg := fastConfig()
	cfg.RetryInitialBackoff = time.Minute
	cfg.RetryMaxBackoff = time.Minute
	e := NewExecutor(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- e.Execute(ctx, "op", func(context.Context) error {
			calls++
			return errTransient
		}, retryAll)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, errTransient) {
			t.Fatalf("Execute() error = %v, want errTransient", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Execute() did not return after context cancellation")
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	cfg := fastConfig()
	cfg.RetryMaxAttempts = 1
	cfg.BreakerEnabled = true
	cfg.BreakerMinRequests = 3
	cfg.BreakerFailureRatio = 0.5
	cfg.BreakerOpenTimeout = time.Minute
	e := NewExecutor(cfg)

	for i := 0; i < 3; i++ {
		_ = e.Execute(context.Background(), "flaky", func(context.Context) error {
			return errTransient
		}, retryAll)
	}

	err := e.Execute(context.Background(), "flaky", func(context.Context) error {
		t.Fatal("callback must not run while the circuit is open")
		return nil
	}, retryAll)
	if !IsCircuitOpen(err) {
		t.Fatalf("expected open circuit, got %v", err)
	}
}

func TestBreakerIsolatesOperations(t *testing.T) {
	cfg := fastConfig()
	cfg.RetryMaxAttempts = 1
	cfg.BreakerEnabled = true
	cfg.BreakerMinRequests = 3
	cfg.BreakerOpenTimeout = time.Minute
	e := NewExecutor(cfg)

	for i := 0; i < 3; i++ {
		_ = e.Execute(context.Background(), "flaky", func(context.Context) error {
			return errTransient
		}, retryAll)
	}

	err := e.Execute(context.Background(), "healthy", func(context.Context) error {
		return nil
	}, retryAll)
	if err != nil {
		t.Fatalf("healthy operation tripped by unrelated breaker: %v", err)
	}
}

func TestNormalizeFillsDefaults(t *testing.T) {
	cfg := Config{}.normalize()
	def := DefaultConfig()

	if cfg.RetryMaxAttempts != def.RetryMaxAttempts {
		t.Fatalf("RetryMaxAttempts = %d, want %d", cfg.RetryMaxAttempts, def.RetryMaxAttempts)
	}
	if cfg.RetryInitialBackoff != def.RetryInitialBackoff {
		t.Fatalf("RetryInitialBackoff = %v", cfg.RetryInitialBackoff)
	}
	if cfg.BreakerMinRequests != def.BreakerMinRequests {
		t.Fatalf("BreakerMinRequests = %d", cfg.BreakerMinRequests)
	}
}
