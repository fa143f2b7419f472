package cache

import (
	"context"
	"errors"
	"time"
)

// Tiered reads through a fast front cache to a slower back cache. Hits in the
// back tier are copied to the front with FrontTTL.
type Tiered struct {
	Front    Cache
	Back     Cache
	FrontTTL time.Duration
}

// NewTiered layers front over back.
func NewTiered(front, back Cache, frontTTL time.Duration) *Tiered {
	return &Tiered{Front: front, Back: back, FrontTTL: frontTTL}
}

// Get tries the front tier first. A failing front tier counts as a miss.
func (t *Tiered) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if data, hit, err := t.Front.Get(ctx, key); err == nil && hit {
		return data, true, nil
	}
	data, hit, err := t.Back.Get(ctx, key)
	if err != nil || !hit {
		return nil, false, err
	}
	_ = t.Front.Set(ctx, key, data, t.FrontTTL)
	return data, true, nil
}

// Set writes both tiers.
func (t *Tiered) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	frontTTL := t.FrontTTL
	if ttl > 0 && (frontTTL <= 0 || ttl < frontTTL) {
		frontTTL = ttl
	}
	return errors.Join(t.Front.Set(ctx, key, data, frontTTL), t.Back.Set(ctx, key, data, ttl))
}

// Delete removes key from both tiers.
func (t *Tiered) Delete(ctx context.Context, key string) error {
	return errors.Join(t.Front.Delete(ctx, key), t.Back.Delete(ctx, key))
}

// Close closes both tiers.
func (t *Tiered) Close() error {
	return errors.Join(t.Front.Close(), t.Back.Close())
}

var _ Cache = (*Tiered)(nil)
