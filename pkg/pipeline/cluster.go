package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/ruliana/link-community/pkg/cache"
	"github.com/ruliana/link-community/pkg/dendro"
	"github.com/ruliana/link-community/pkg/graph"
	lcio "github.com/ruliana/link-community/pkg/io"
	"github.com/ruliana/link-community/pkg/observability"
)

// clusterRecord is the cached form of a clustering.
type clusterRecord struct {
	Tree   *dendro.Dendro[graph.Edge[string]] `json:"tree"`
	Levels []lcio.LevelCount                  `json:"levels"`
}

// Clustering is the dendrogram of a graph together with its merge
// histogram.
type Clustering struct {
	Tree   *dendro.Dendro[graph.Edge[string]]
	Levels map[float64]int
}

// GraphHash returns the content hash of g: its kind and its deduplicated
// edge list in first-seen order.
func GraphHash(g *graph.Graph[string]) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(g.Kind().String() + "\n")
	if err := lcio.WriteCSV(&buf, g.NodeEdges()); err != nil {
		return "", fmt.Errorf("hash graph: %w", err)
	}
	return cache.Hash(buf.Bytes()), nil
}

// TreeHash returns the content hash of a dendrogram.
func TreeHash(tree *dendro.Dendro[graph.Edge[string]]) (string, error) {
	data, err := json.Marshal(tree)
	if err != nil {
		return "", fmt.Errorf("hash dendrogram: %w", err)
	}
	return cache.Hash(data), nil
}

// ClusterWithCacheInfo clusters the edges of g, reusing a cached dendrogram
// unless opts.Refresh is set, and reports whether the cache was hit.
func (r *Runner) ClusterWithCacheInfo(ctx context.Context, g *graph.Graph[string], graphHash string, opts Options) (*Clustering, bool, error) {
	key := r.Keyer.ClusterKey(graphHash, cache.ClusterKeyOpts{Kind: g.Kind().String()})
	hooks := observability.Cache()

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if c, err := decodeClustering(data); err == nil {
				hooks.OnCacheHit(ctx, cache.KeyTypeCluster)
				return c, true, nil
			}
			// If deserialization fails, fall through to recompute
		} else if err != nil {
			r.Logger.Warn("cache lookup failed", "key", cache.KeyTypeCluster, "err", err)
		}
		hooks.OnCacheMiss(ctx, cache.KeyTypeCluster)
	}

	comms, err := g.LinkCommunity(ctx, opts.ClusterOptions()...)
	if err != nil {
		return nil, false, err
	}
	c := &Clustering{Tree: comms.Dendrogram(), Levels: comms.Levels()}

	if data, err := encodeClustering(c); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLCluster); err != nil {
			r.Logger.Warn("cache store failed", "key", cache.KeyTypeCluster, "err", err)
		} else {
			hooks.OnCacheSet(ctx, cache.KeyTypeCluster, len(data))
		}
	}
	return c, false, nil
}

// Cluster is a convenience wrapper that calls ClusterWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Cluster(ctx context.Context, g *graph.Graph[string], opts Options) (*Clustering, error) {
	hash, err := GraphHash(g)
	if err != nil {
		return nil, err
	}
	c, _, err := r.ClusterWithCacheInfo(ctx, g, hash, opts)
	return c, err
}

func encodeClustering(c *Clustering) ([]byte, error) {
	return json.Marshal(clusterRecord{Tree: c.Tree, Levels: lcio.SortLevels(c.Levels)})
}

func decodeClustering(data []byte) (*Clustering, error) {
	var rec clusterRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	if rec.Tree == nil {
		return nil, fmt.Errorf("cached clustering has no tree")
	}
	if err := rec.Tree.Validate(); err != nil {
		return nil, err
	}
	levels := make(map[float64]int, len(rec.Levels))
	for _, l := range rec.Levels {
		levels[l.Level] = l.Merges
	}
	return &Clustering{Tree: rec.Tree, Levels: levels}, nil
}

// Cuts splits tree at each level, in order.
func Cuts(tree *dendro.Dendro[graph.Edge[string]], levels []float64) []Cut {
	cuts := make([]Cut, len(levels))
	for i, l := range levels {
		cuts[i] = Cut{Level: l, Groups: tree.CutByLevel(l)}
	}
	return cuts
}
