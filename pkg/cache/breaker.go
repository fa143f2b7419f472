package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

// ErrBreakerOpen is returned while a [Breaker] refuses calls to its backend.
var ErrBreakerOpen = errors.New("cache backend unavailable")

// BreakerSettings configures a [Breaker].
type BreakerSettings struct {
	Name string
	// Failures is the number of consecutive failures that opens the breaker.
	Failures uint32
	// Cooldown is how long the breaker stays open before probing again.
	Cooldown time.Duration
	// OnStateChange, if set, is called on every transition.
	OnStateChange func(name string, from, to gobreaker.State)
}

// DefaultBreakerSettings returns the settings [Open] uses for remote backends.
func DefaultBreakerSettings(name string) BreakerSettings {
	return BreakerSettings{Name: name, Failures: 5, Cooldown: 30 * time.Second}
}

// Breaker stops calling a failing backend for a while, so a lost Redis or
// MongoDB connection costs one fast error per operation instead of a timeout.
// Misses are not failures.
type Breaker struct {
	next Cache
	cb   *gobreaker.CircuitBreaker
}

// NewBreaker wraps next with a circuit breaker.
func NewBreaker(next Cache, s BreakerSettings) *Breaker {
	failures := s.Failures
	if failures == 0 {
		failures = 1
	}
	return &Breaker{
		next: next,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        s.Name,
			MaxRequests: 1,
			Timeout:     s.Cooldown,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= failures
			},
			OnStateChange: s.OnStateChange,
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
		}),
	}
}

// State reports the breaker state.
func (b *Breaker) State() gobreaker.State { return b.cb.State() }

type getResult struct {
	data []byte
	hit  bool
}

func (b *Breaker) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := b.cb.Execute(func() (any, error) {
		data, hit, err := b.next.Get(ctx, key)
		return getResult{data, hit}, err
	})
	if err != nil {
		return nil, false, b.wrap(err)
	}
	r := v.(getResult)
	return r.data, r.hit, nil
}

func (b *Breaker) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.next.Set(ctx, key, data, ttl)
	})
	return b.wrap(err)
}

func (b *Breaker) Delete(ctx context.Context, key string) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.next.Delete(ctx, key)
	})
	return b.wrap(err)
}

// Close closes the backend regardless of the breaker state.
func (b *Breaker) Close() error { return b.next.Close() }

func (b *Breaker) wrap(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s: %w", ErrBreakerOpen, b.cb.Name(), err)
	}
	return err
}

var _ Cache = (*Breaker)(nil)
