// Package slink implements single-linkage hierarchical clustering with
// Sibson's SLINK algorithm.
//
// SLINK builds the pointer representation of the single-linkage dendrogram
// in O(n²) time and O(n) memory: for every item i, parent[i] is the item it
// is merged into and height[i] the distance at which that happens. [Run]
// returns that representation together with the flat list of merges
// ("packs") sorted from the highest level down, which is the input the
// dendro package assembles into a tree.
//
// The distance function is called exactly once per unordered pair. Items
// are compared in input order; two runs over the same items and distance
// return identical results.
//
// # Usage
//
//	res, err := slink.Run(ctx, []int{1, 8, 9}, func(a, b int) float64 {
//	    return math.Abs(float64(a - b))
//	})
//	for _, p := range res.Packs() {
//	    fmt.Println(p.Level, p.Item, p.Into) // 7 1 9, then 1 8 9
//	}
package slink

import (
	"cmp"
	"context"
	"math"
	"slices"
	"time"

	"github.com/ruliana/link-community/pkg/observability"
)

// Pack is one merge of the single-linkage dendrogram: Item joins the
// cluster of Into at distance Level. The indices refer to the input slice.
type Pack[T any] struct {
	Level     float64
	Item      T
	Into      T
	ItemIndex int
	IntoIndex int
}

// Result is the outcome of a SLINK run.
type Result[T any] struct {
	items  []T
	parent []int
	height []float64
	packs  []Pack[T]
}

// Len returns the number of clustered items.
func (r *Result[T]) Len() int { return len(r.items) }

// Items returns the clustered items in input order.
func (r *Result[T]) Items() []T { return r.items }

// Packs returns the merges sorted by level, highest first. Equal levels
// keep ascending item order. The sentinel entry of the last item (merged
// into itself at +Inf) is not included, so n items yield n-1 packs.
func (r *Result[T]) Packs() []Pack[T] { return slices.Clone(r.packs) }

// Merges returns the number of packs.
func (r *Result[T]) Merges() int { return len(r.packs) }

// Pointer returns copies of the pointer representation.
func (r *Result[T]) Pointer() (parent []int, height []float64) {
	return slices.Clone(r.parent), slices.Clone(r.height)
}

// Levels counts the merges at each level.
func (r *Result[T]) Levels() map[float64]int {
	out := make(map[float64]int)
	for _, p := range r.packs {
		out[p.Level]++
	}
	return out
}

// Run clusters items with the given distance function.
//
// The distance must be symmetric and non-negative; it may be called from
// several goroutines when [WithWorkers] is set. Zero items produce an empty
// result and a single item produces a result with no packs.
//
// The context is checked once per inserted item. When it is canceled Run
// returns ctx.Err() and no result.
func Run[T any](ctx context.Context, items []T, dist func(a, b T) float64, opts ...Option) (*Result[T], error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	hooks := observability.Clustering()
	start := time.Now()
	hooks.OnClusterStart(ctx, len(items))

	res, err := run(ctx, items, dist, cfg, start)

	merges := 0
	if res != nil {
		merges = len(res.packs)
	}
	hooks.OnClusterComplete(ctx, len(items), merges, time.Since(start), err)
	return res, err
}

func run[T any](ctx context.Context, items []T, dist func(a, b T) float64, cfg config, start time.Time) (*Result[T], error) {
	n := len(items)
	parent := make([]int, n)
	height := make([]float64, n)
	m := make([]float64, n)
	hooks := observability.Clustering()

	for k := 0; k < n; k++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		parent[k] = k
		height[k] = math.Inf(1)

		if err := fillRow(items, k, m, dist, cfg); err != nil {
			return nil, err
		}

		for i := 0; i < k; i++ {
			p := parent[i]
			if height[i] >= m[i] {
				m[p] = min(m[p], height[i])
				height[i] = m[i]
				parent[i] = k
			} else {
				m[p] = min(m[p], m[i])
			}
		}

		for i := 0; i < k; i++ {
			if height[i] >= height[parent[i]] {
				parent[i] = k
			}
		}

		if done := k + 1; done%cfg.progressEvery == 0 || done == n {
			elapsed := time.Since(start)
			hooks.OnClusterProgress(ctx, done, n, elapsed)
			if cfg.progress != nil {
				cfg.progress(Progress{Done: done, Total: n, Elapsed: elapsed})
			}
		}
	}

	return &Result[T]{
		items:  items,
		parent: parent,
		height: height,
		packs:  buildPacks(items, parent, height),
	}, nil
}

func buildPacks[T any](items []T, parent []int, height []float64) []Pack[T] {
	if len(items) < 2 {
		return nil
	}
	packs := make([]Pack[T], 0, len(items)-1)
	for i, p := range parent {
		if p == i {
			continue
		}
		packs = append(packs, Pack[T]{
			Level:     height[i],
			Item:      items[i],
			Into:      items[p],
			ItemIndex: i,
			IntoIndex: p,
		})
	}
	slices.SortStableFunc(packs, func(a, b Pack[T]) int {
		return cmp.Compare(b.Level, a.Level)
	})
	return packs
}
