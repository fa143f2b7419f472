package cache

import (
	"context"
	"fmt"
	"time"
)

// Backend names accepted by [Open].
const (
	BackendNone   = "none"
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Options selects and configures a backend.
type Options struct {
	Backend string

	Dir string // file

	MemoryEntries int // memory, and the front tier of remote backends

	RedisURL string
	MongoURI string

	MongoDatabase   string
	MongoCollection string

	// FrontTTL, when positive, puts a MemoryCache in front of a remote
	// backend.
	FrontTTL time.Duration
}

// Open creates the cache described by opts.
func Open(ctx context.Context, opts Options) (Cache, error) {
	var (
		c   Cache
		err error
	)
	switch opts.Backend {
	case BackendNone, "":
		return NewNullCache(), nil
	case BackendFile:
		fc, err := NewFileCache(opts.Dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	case BackendMemory:
		mc, err := NewMemoryCache(opts.MemoryEntries)
		if err != nil {
			return nil, err
		}
		return mc, nil
	case BackendRedis:
		c, err = NewRedisCache(ctx, opts.RedisURL)
	case BackendMongo:
		c, err = NewMongoCache(ctx, opts.MongoURI, opts.MongoDatabase, opts.MongoCollection)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	c = NewBreaker(c, DefaultBreakerSettings(opts.Backend))
	if opts.FrontTTL <= 0 {
		return c, nil
	}
	front, err := NewMemoryCache(opts.MemoryEntries)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	return NewTiered(front, c, opts.FrontTTL), nil
}
