package graph

import (
	"cmp"
	"context"

	"github.com/ruliana/link-community/pkg/dendro"
	"github.com/ruliana/link-community/pkg/slink"
)

// Communities is the result of [Graph.LinkCommunity]: the single-linkage
// dendrogram of the graph's edges under [Graph.Distance].
type Communities[N cmp.Ordered] struct {
	tree   *dendro.Dendro[Edge[N]]
	packs  []slink.Pack[Edge[N]]
	levels map[float64]int
}

// LinkCommunity clusters the edges of g. Edges are compared in first-seen
// order with distance 1 - similarity, and the resulting dendrogram holds
// edges expressed with nodes. A graph with fewer than two edges yields an
// empty dendrogram.
//
// Options are passed to [slink.Run]; the context is checked once per edge.
func (g *Graph[N]) LinkCommunity(ctx context.Context, opts ...slink.Option) (*Communities[N], error) {
	g.prepare()
	res, err := slink.Run(ctx, g.edges, g.Distance, opts...)
	if err != nil {
		return nil, err
	}
	tree, err := dendro.Assemble(res)
	if err != nil {
		return nil, err
	}

	raw := res.Packs()
	packs := make([]slink.Pack[Edge[N]], len(raw))
	for i, p := range raw {
		packs[i] = slink.Pack[Edge[N]]{
			Level:     p.Level,
			Item:      g.nodify(p.Item),
			Into:      g.nodify(p.Into),
			ItemIndex: p.ItemIndex,
			IntoIndex: p.IntoIndex,
		}
	}

	return &Communities[N]{
		tree:   dendro.Map(tree, g.nodify),
		packs:  packs,
		levels: res.Levels(),
	}, nil
}

// Dendrogram returns the edge dendrogram.
func (c *Communities[N]) Dendrogram() *dendro.Dendro[Edge[N]] { return c.tree }

// Packs returns the merges, highest level first.
func (c *Communities[N]) Packs() []slink.Pack[Edge[N]] { return c.packs }

// Levels counts the merges at each distance level.
func (c *Communities[N]) Levels() map[float64]int { return c.levels }

// CutByLevel groups the edges separated by at least the given distance.
func (c *Communities[N]) CutByLevel(level float64) [][]Edge[N] {
	return c.tree.CutByLevel(level)
}
