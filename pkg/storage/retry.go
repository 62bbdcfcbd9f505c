package storage

import (
	"context"
	"math/rand/v2"
	"time"
)

// RetryPolicy configures Retry. The zero value makes a single attempt.
type RetryPolicy struct {
	// Attempts is the maximum number of tries, including the first.
	Attempts int
	// Delay is the wait before the second attempt.
	Delay time.Duration
	// Multiplier scales Delay after every failed attempt. Values <= 1 keep the
	// delay fixed.
	Multiplier float64
	// FailureProbability in [0,1] injects ErrInjectedFailure before an attempt.
	FailureProbability float64
	// Rand overrides the random source used for failure injection.
	Rand func() float64
}

// DefaultRetryPolicy makes 3 attempts one second apart with no injected
// failures.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:   3,
		Delay:      time.Second,
		Multiplier: 1,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.Attempts < 1 {
		p.Attempts = 1
	}
	if p.Delay < 0 {
		p.Delay = 0
	}
	if p.Multiplier < 1 {
		p.Multiplier = 1
	}
	if p.Rand == nil {
		p.Rand = rand.Float64
	}
	return p
}

// Retry runs fn until it succeeds or the policy's attempts are exhausted. The
// wait between attempts honours ctx; cancellation returns ctx.Err().
func Retry(ctx context.Context, policy RetryPolicy, fn func(context.Context) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	p := policy.normalized()
	delay := p.Delay

	var lastErr error
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = p.try(ctx, fn)
		if lastErr == nil {
			return nil
		}
		if attempt == p.Attempts {
			break
		}

		if err := sleep(ctx, delay); err != nil {
			return err
		}
		delay = time.Duration(float64(delay) * p.Multiplier)
	}

	return &RetryError{Attempts: p.Attempts, Err: lastErr}
}

func (p RetryPolicy) try(ctx context.Context, fn func(context.Context) error) error {
	if p.FailureProbability > 0 && p.Rand() < p.FailureProbability {
		return ErrInjectedFailure
	}
	return fn(ctx)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
