// Package observability carries events out of the library packages. slink,
// pipeline, cache and api never log or count anything themselves; they call
// the hooks registered here, and the binary decides what the events become.
// [Metrics] turns them into Prometheus series for "linkcomm serve". Until
// something is registered every hook is a no-op.
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// ClusterHooks receives the events of one SLINK run over a graph's edges.
type ClusterHooks interface {
	OnClusterStart(ctx context.Context, edges int)
	// OnClusterProgress reports done of total edges placed in the pointer
	// representation.
	OnClusterProgress(ctx context.Context, done, total int, elapsed time.Duration)
	// OnClusterComplete fires once per run, with the number of merges of the
	// dendrogram on success.
	OnClusterComplete(ctx context.Context, edges, merges int, duration time.Duration, err error)
}

// PipelineHooks receives edge list reads and artifact renders.
type PipelineHooks interface {
	OnReadComplete(ctx context.Context, source string, edges int, duration time.Duration, err error)
	OnRenderComplete(ctx context.Context, format string, duration time.Duration, err error)
}

// CacheHooks receives dendrogram and render cache lookups. keyType is
// cache.KeyTypeCluster or cache.KeyTypeRender.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives the requests of the API server. path is the chi route
// pattern, not the raw URL.
type HTTPHooks interface {
	OnRequest(ctx context.Context, requestID, method, path string)
	OnResponse(ctx context.Context, requestID, method, path string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, requestID, method, path string, err error)
}

type NoopClusterHooks struct{}

func (NoopClusterHooks) OnClusterStart(context.Context, int)                              {}
func (NoopClusterHooks) OnClusterProgress(context.Context, int, int, time.Duration)       {}
func (NoopClusterHooks) OnClusterComplete(context.Context, int, int, time.Duration, error) {}

type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnReadComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, time.Duration, error)   {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// Hooks is one full set of hooks. [Register] ignores nil fields.
type Hooks struct {
	Cluster  ClusterHooks
	Pipeline PipelineHooks
	Cache    CacheHooks
	HTTP     HTTPHooks
}

func noop() *Hooks {
	return &Hooks{NoopClusterHooks{}, NoopPipelineHooks{}, NoopCacheHooks{}, NoopHTTPHooks{}}
}

var current atomic.Pointer[Hooks]

func init() { current.Store(noop()) }

// Register replaces the hooks given in h and keeps the others.
func Register(h Hooks) {
	for {
		old := current.Load()
		next := *old
		if h.Cluster != nil {
			next.Cluster = h.Cluster
		}
		if h.Pipeline != nil {
			next.Pipeline = h.Pipeline
		}
		if h.Cache != nil {
			next.Cache = h.Cache
		}
		if h.HTTP != nil {
			next.HTTP = h.HTTP
		}
		if current.CompareAndSwap(old, &next) {
			return
		}
	}
}

func SetClusterHooks(h ClusterHooks)   { Register(Hooks{Cluster: h}) }
func SetPipelineHooks(h PipelineHooks) { Register(Hooks{Pipeline: h}) }
func SetCacheHooks(h CacheHooks)       { Register(Hooks{Cache: h}) }
func SetHTTPHooks(h HTTPHooks)         { Register(Hooks{HTTP: h}) }

func Clustering() ClusterHooks { return current.Load().Cluster }
func Pipeline() PipelineHooks  { return current.Load().Pipeline }
func Cache() CacheHooks        { return current.Load().Cache }
func HTTP() HTTPHooks          { return current.Load().HTTP }

// Reset restores the no-op hooks. The server calls it on shutdown and tests
// call it in cleanup.
func Reset() { current.Store(noop()) }
