// Package retry provides the exponential backoff used to re-establish
// a dropped server connection.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// ── Permanent errors ─────────────────────────────────────────────────

// PermanentError wraps an error to signal that retrying will not help.
// Return [Permanent](err) from the operation function to stop retrying
// immediately.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent marks err as non-retryable.  The backoff loop will return
// the inner error immediately without further attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err has been marked as permanent.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// ── Backoff ──────────────────────────────────────────────────────────

const (
	defaultInitialDelay = time.Second
	defaultMaxDelay     = 60 * time.Second
	defaultMultiplier   = 2.0
)

// Backoff implements exponential backoff with optional jitter.
type Backoff struct {
	// InitialDelay is the delay before the first retry (default 1s).
	InitialDelay time.Duration
	// MaxDelay caps the backoff duration (default 60s).
	MaxDelay time.Duration
	// Multiplier increases the delay each attempt (default 2.0).
	Multiplier float64
	// MaxAttempts is the total number of tries including the first.
	// Set to 0 for unlimited retries (until context cancelled).
	MaxAttempts int
	// Jitter adds ±25% randomisation to each wait.
	Jitter bool
	// OnRetry, when set, is called after a failed attempt and before
	// the wait.  It is not called for the last attempt.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// NewBackoff returns a jittered backoff starting at initial and capped
// at ceiling, giving up after attempts tries (0 = never).
func NewBackoff(initial, ceiling time.Duration, attempts int) *Backoff {
	return &Backoff{
		InitialDelay: initial,
		MaxDelay:     ceiling,
		Multiplier:   defaultMultiplier,
		MaxAttempts:  attempts,
		Jitter:       true,
	}
}

// Delay returns the un-jittered wait after the given failed attempt
// (1-based).
func (b *Backoff) Delay(attempt int) time.Duration {
	delay := b.InitialDelay
	if delay <= 0 {
		delay = defaultInitialDelay
	}
	maxDelay := b.MaxDelay
	if maxDelay <= 0 {
		maxDelay = defaultMaxDelay
	}
	multiplier := b.Multiplier
	if multiplier <= 0 {
		multiplier = defaultMultiplier
	}

	d := float64(delay) * math.Pow(multiplier, float64(attempt-1))
	if d > float64(maxDelay) || math.IsInf(d, 0) {
		return maxDelay
	}
	return time.Duration(d)
}

// Do executes fn repeatedly until it succeeds, returns a permanent
// error, or the retry budget (attempts / context) is exhausted.
//
// The attempt parameter passed to fn is 1-based.  On success fn should
// return nil.  To abort retrying, wrap the error with [Permanent].
func (b *Backoff) Do(ctx context.Context, fn func(attempt int) error) error {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("retry cancelled: %w", err)
		}

		err := fn(attempt)
		if err == nil {
			return nil
		}
		if IsPermanent(err) {
			return errors.Unwrap(err)
		}
		if b.MaxAttempts > 0 && attempt >= b.MaxAttempts {
			return fmt.Errorf("max retries (%d) exceeded: %w", b.MaxAttempts, err)
		}

		wait := b.Delay(attempt)
		if b.Jitter {
			wait = addJitter(wait)
		}
		if b.OnRetry != nil {
			b.OnRetry(attempt, err, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-timer.C:
		}
	}
}

// addJitter adds ±25% randomisation to a duration.
func addJitter(d time.Duration) time.Duration {
	quarter := float64(d) * 0.25
	delta := (rand.Float64() * 2 * quarter) - quarter
	result := float64(d) + delta
	return time.Duration(math.Max(result, float64(time.Millisecond)))
}
