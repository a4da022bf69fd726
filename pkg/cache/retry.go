package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNetwork marks a remote backend that could not be reached.
	ErrNetwork = errors.New("cache backend unreachable")

	// ErrCacheMiss is returned by GetJSON when an entry is absent or stale.
	ErrCacheMiss = errors.New("cache miss")
)

// transientError marks a backend failure that may succeed on retry.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

func isTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

// backoff retries transient failures, doubling the wait after each one.
type backoff struct {
	attempts int
	initial  time.Duration
}

var defaultBackoff = backoff{attempts: 3, initial: 200 * time.Millisecond}

// do calls fn until it succeeds, fails permanently, runs out of attempts or
// ctx ends. The last error is returned with its transient mark removed.
func (b backoff) do(ctx context.Context, fn func() error) error {
	wait := b.initial
	var err error
	for i := 0; i < b.attempts; i++ {
		if err = fn(); err == nil || !isTransient(err) {
			return err
		}
		if i == b.attempts-1 {
			break
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		wait *= 2
	}
	return errors.Unwrap(err)
}
