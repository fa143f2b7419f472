package graph

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	lcerr "github.com/ruliana/link-community/pkg/errors"
)

// Partial is one adjacency entry: the neighbor index and the weight of the
// edge reaching it. Unweighted graphs carry weight 1.
type Partial struct {
	Node   int     `json:"node"`
	Weight float64 `json:"weight"`
}

func byNode(a, b Partial) int { return cmp.Compare(a.Node, b.Node) }

// Graph is an immutable, indexed edge list.
//
// Nodes are stored sorted and deduplicated; a node's index is its position
// in that list. Edges are deduplicated by [Edge.Key] and kept in first-seen
// order, rewritten to indices. Adjacency (and everything derived from it) is
// computed once, on first use, and is safe for concurrent readers.
type Graph[N cmp.Ordered] struct {
	kind  Kind
	nodes []N
	edges []Edge[int]

	once    sync.Once
	adj     [][]Partial
	closed  [][]int
	vectors [][]Partial
}

// Build creates a graph of the given kind from edges.
//
// Every edge must be of kind; weighted edges must have a finite,
// non-negative weight. Duplicate edges are dropped. An empty edge list
// yields an empty graph.
func Build[N cmp.Ordered](kind Kind, edges []Edge[N]) (*Graph[N], error) {
	seen := make(map[EdgeKey[N]]struct{}, len(edges))
	unique := make([]Edge[N], 0, len(edges))
	for i, e := range edges {
		if e.kind != kind {
			return nil, lcerr.New(lcerr.ErrCodeInvalidInput,
				"edge %d %v is %s, graph is %s", i, e, e.kind, kind)
		}
		if kind.IsWeighted() {
			if err := lcerr.ValidateWeight(e.weight); err != nil {
				return nil, fmt.Errorf("edge %d %v: %w", i, e, err)
			}
		}
		k := e.Key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		unique = append(unique, e)
	}

	nodes := make([]N, 0, 2*len(unique))
	for _, e := range unique {
		nodes = append(nodes, e.from, e.to)
	}
	slices.Sort(nodes)
	nodes = slices.Compact(nodes)

	g := &Graph[N]{kind: kind, nodes: nodes, edges: make([]Edge[int], len(unique))}
	for i, e := range unique {
		g.edges[i] = Edge[int]{from: g.index(e.from), to: g.index(e.to), weight: e.weight, kind: e.kind}
	}
	return g, nil
}

// MustBuild is like [Build] but panics on error. It is meant for tests and
// literal graphs.
func MustBuild[N cmp.Ordered](kind Kind, edges ...Edge[N]) *Graph[N] {
	g, err := Build(kind, edges)
	if err != nil {
		panic(err)
	}
	return g
}

// Path returns undirected links between consecutive nodes:
// Path(a, b, c) is [a-b, b-c].
func Path[N cmp.Ordered](nodes ...N) []Edge[N] {
	if len(nodes) < 2 {
		return nil
	}
	out := make([]Edge[N], 0, len(nodes)-1)
	for i := 1; i < len(nodes); i++ {
		out = append(out, Link(nodes[i-1], nodes[i]))
	}
	return out
}

// =============================================================================
// Index
// =============================================================================

// FindIndex returns the index of node n.
func (g *Graph[N]) FindIndex(n N) (int, error) {
	i, ok := slices.BinarySearch(g.nodes, n)
	if !ok {
		return 0, lcerr.New(lcerr.ErrCodeLookupFailure, "node %v not in graph", n)
	}
	return i, nil
}

// FindNode returns the node at index i.
func (g *Graph[N]) FindNode(i int) (N, error) {
	if i < 0 || i >= len(g.nodes) {
		var zero N
		return zero, lcerr.New(lcerr.ErrCodeLookupFailure, "index %d out of range [0, %d)", i, len(g.nodes))
	}
	return g.nodes[i], nil
}

// index resolves a node known to be present.
func (g *Graph[N]) index(n N) int {
	i, _ := slices.BinarySearch(g.nodes, n)
	return i
}

// Indexify rewrites the endpoints of e to node indices.
// The edge itself does not need to be part of the graph; only its endpoints do.
func (g *Graph[N]) Indexify(e Edge[N]) (Edge[int], error) {
	return MapEdge(e, g.FindIndex)
}

// Nodify rewrites the endpoints of an indexed edge back to nodes.
func (g *Graph[N]) Nodify(e Edge[int]) (Edge[N], error) {
	return MapEdge(e, g.FindNode)
}

// nodify projects an edge produced by this graph.
func (g *Graph[N]) nodify(e Edge[int]) Edge[N] {
	return Edge[N]{from: g.nodes[e.from], to: g.nodes[e.to], weight: e.weight, kind: e.kind}
}

// =============================================================================
// Accessors
// =============================================================================

// Kind returns the edge kind shared by all edges of g.
func (g *Graph[N]) Kind() Kind { return g.kind }

// Nodes returns the sorted node list.
func (g *Graph[N]) Nodes() []N { return slices.Clone(g.nodes) }

// NodeCount returns the number of distinct nodes.
func (g *Graph[N]) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of distinct edges.
func (g *Graph[N]) EdgeCount() int { return len(g.edges) }

// Edges returns the indexed edges in first-seen order.
func (g *Graph[N]) Edges() []Edge[int] { return slices.Clone(g.edges) }

// NodeEdges returns the edges projected back to nodes, in first-seen order.
func (g *Graph[N]) NodeEdges() []Edge[N] {
	out := make([]Edge[N], len(g.edges))
	for i, e := range g.edges {
		out[i] = g.nodify(e)
	}
	return out
}

// =============================================================================
// Adjacency
// =============================================================================

func (g *Graph[N]) prepare() {
	g.once.Do(func() {
		n := len(g.nodes)
		adj := make([][]Partial, n)
		for _, e := range g.edges {
			adj[e.from] = append(adj[e.from], Partial{Node: e.to, Weight: e.weight})
			if !g.kind.IsDirected() && e.from != e.to {
				adj[e.to] = append(adj[e.to], Partial{Node: e.from, Weight: e.weight})
			}
		}

		closed := make([][]int, n)
		for i, ps := range adj {
			slices.SortStableFunc(ps, byNode)
			c := make([]int, 0, len(ps)+1)
			c = append(c, i)
			for _, p := range ps {
				c = append(c, p.Node)
			}
			slices.Sort(c)
			closed[i] = slices.Compact(c)
		}
		g.adj, g.closed = adj, closed

		if g.kind.IsWeighted() {
			g.vectors = make([][]Partial, n)
			for i, ps := range adj {
				g.vectors[i] = weightVector(i, ps)
			}
		}
	})
}

// Neighbors returns the adjacency of node index i sorted by neighbor index.
// Directed graphs report out-neighbors only. A self-loop appears once.
// The returned slice is shared and must not be modified. Out of range
// indices yield nil.
func (g *Graph[N]) Neighbors(i int) []Partial {
	if i < 0 || i >= len(g.nodes) {
		return nil
	}
	g.prepare()
	return g.adj[i]
}

// NeighborsIncludingSelf returns the sorted, unique closed neighborhood of
// node index i. The returned slice is shared and must not be modified.
func (g *Graph[N]) NeighborsIncludingSelf(i int) []int {
	if i < 0 || i >= len(g.nodes) {
		return nil
	}
	g.prepare()
	return g.closed[i]
}

// NeighborNodes returns the distinct neighbors of node n, sorted.
func (g *Graph[N]) NeighborNodes(n N) ([]N, error) {
	i, err := g.FindIndex(n)
	if err != nil {
		return nil, err
	}
	ps := g.Neighbors(i)
	out := make([]N, 0, len(ps))
	for _, p := range ps {
		if k := len(out); k > 0 && out[k-1] == g.nodes[p.Node] {
			continue
		}
		out = append(out, g.nodes[p.Node])
	}
	return out, nil
}
