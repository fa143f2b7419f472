package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/ruliana/link-community/pkg/cache"
	"github.com/ruliana/link-community/pkg/graph"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the build → cluster → cut → render pipeline over edges.
func (r *Runner) Execute(ctx context.Context, edges []graph.Edge[string], opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{RunID: uuid.NewString()}
	logger := r.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	}
	logger = logger.With("run", result.RunID[:8])

	// Stage 1: Build
	buildStart := time.Now()
	g, err := graph.Build(opts.Kind(), edges)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Graph = g
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()
	if result.GraphHash, err = GraphHash(g); err != nil {
		return nil, err
	}
	result.Stats.BuildTime = time.Since(buildStart)

	logger.Info("built graph",
		"kind", g.Kind(),
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duration", result.Stats.BuildTime)

	// Stage 2: Cluster
	clusterStart := time.Now()
	c, hit, err := r.ClusterWithCacheInfo(ctx, g, result.GraphHash, opts)
	if err != nil {
		return nil, fmt.Errorf("cluster: %w", err)
	}
	result.Dendrogram = c.Tree
	result.Levels = c.Levels
	for _, n := range c.Levels {
		result.Stats.Merges += n
	}
	result.Stats.ClusterTime = time.Since(clusterStart)
	result.CacheInfo.ClusterHit = hit
	if result.TreeHash, err = TreeHash(c.Tree); err != nil {
		return nil, err
	}

	logger.Info("clustered edges",
		"merges", result.Stats.Merges,
		"levels", len(c.Levels),
		"cached", hit,
		"duration", result.Stats.ClusterTime)

	// Stage 3: Cut
	result.Cuts = Cuts(c.Tree, opts.Levels)
	for _, cut := range result.Cuts {
		logger.Debug("cut dendrogram", "level", cut.Level, "groups", len(cut.Groups))
	}

	// Stage 4: Render
	if len(opts.Formats) > 0 {
		renderStart := time.Now()
		artifacts, hit, err := r.RenderWithCacheInfo(ctx, c.Tree, result.TreeHash, opts)
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		result.Artifacts = artifacts
		result.Stats.RenderTime = time.Since(renderStart)
		result.CacheInfo.RenderHit = hit

		logger.Info("rendered outputs",
			"formats", opts.Formats,
			"cached", hit,
			"duration", result.Stats.RenderTime)
	}

	return result, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
