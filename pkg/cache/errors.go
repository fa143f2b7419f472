package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnknownBackend is returned by [Open] for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown cache backend")

	// ErrNetwork marks connection-level failures of the Redis or MongoDB
	// backends, after retries.
	ErrNetwork = errors.New("cache backend unreachable")
)

// BackendError names the remote backend and the operation that failed.
type BackendError struct {
	Backend string // BackendRedis or BackendMongo
	Op      string // connect, ping, get, set, delete, index
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Backend, e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

const remoteAttempts = 3

// remote runs operations against a Redis or MongoDB server. Failures that
// transient accepts are retried, doubling delay between attempts, and end as
// ErrNetwork; any other error, including the driver's "not found" sentinels,
// is returned on the first attempt.
type remote struct {
	backend   string
	delay     time.Duration
	transient func(error) bool
}

func (r *remote) do(ctx context.Context, op string, fn func() error) error {
	delay := r.delay
	var err error
	for i := 0; i < remoteAttempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if !r.transient(err) {
			return &BackendError{Backend: r.backend, Op: op, Err: err}
		}
		err = fmt.Errorf("%w: %w", ErrNetwork, err)
		if i == remoteAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return &BackendError{Backend: r.backend, Op: op, Err: errors.Join(ctx.Err(), err)}
		case <-time.After(delay):
			delay *= 2
		}
	}
	return &BackendError{Backend: r.backend, Op: op, Err: err}
}
