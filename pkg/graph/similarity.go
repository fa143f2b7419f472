package graph

import "slices"

// Similarity returns the structural similarity of two indexed edges in [0, 1].
//
// Edges that share no endpoint score 0; identical, reversed and directed
// mutual edges score 1. Otherwise the two non-shared endpoints are compared:
// unweighted graphs use the Jaccard index of their closed neighborhoods,
// weighted graphs use the Tanimoto coefficient of their weight vectors
// (see [Graph.WeightVector]). Directed graphs compare out-neighborhoods.
//
// Both edges must use indices of g, as returned by [Graph.Edges] or
// [Graph.Indexify].
func (g *Graph[N]) Similarity(e1, e2 Edge[int]) float64 {
	s, x, y := Share(e1, e2)
	switch s {
	case SharedNone:
		return 0
	case SharedAll:
		return 1
	}

	g.prepare()
	if g.kind.IsWeighted() {
		return tanimoto(g.vectors[x], g.vectors[y])
	}
	return jaccard(g.closed[x], g.closed[y])
}

// Distance is 1 - [Graph.Similarity], the dissimilarity fed to SLINK.
func (g *Graph[N]) Distance(e1, e2 Edge[int]) float64 {
	return 1 - g.Similarity(e1, e2)
}

// SimilarityNodes is [Graph.Similarity] for edges expressed with nodes.
// Only the endpoints are looked up, so the edges need not belong to g.
func (g *Graph[N]) SimilarityNodes(e1, e2 Edge[N]) (float64, error) {
	i1, err := g.Indexify(e1)
	if err != nil {
		return 0, err
	}
	i2, err := g.Indexify(e2)
	if err != nil {
		return 0, err
	}
	return g.Similarity(i1, i2), nil
}

// WeightVector returns the sparse weight vector of node index i, sorted by
// coordinate: the node itself at the mean weight of its adjacency, plus each
// neighbor at the weight of the edge reaching it. When parallel edges reach
// the same neighbor the one added last sets its weight, and a self-loop
// replaces the mean entry the same way; every parallel edge still counts
// toward the mean. A node without adjacency (a directed sink) has an empty
// vector. Unweighted graphs return nil.
func (g *Graph[N]) WeightVector(i int) []Partial {
	if i < 0 || i >= len(g.nodes) || !g.kind.IsWeighted() {
		return nil
	}
	g.prepare()
	return slices.Clone(g.vectors[i])
}

func weightVector(self int, ps []Partial) []Partial {
	if len(ps) == 0 {
		return nil
	}
	var sum float64
	for _, p := range ps {
		sum += p.Weight
	}

	v := make([]Partial, 0, len(ps)+1)
	v = append(v, Partial{Node: self, Weight: sum / float64(len(ps))})
	// ps is stably sorted by node, so repeats of a neighbor are adjacent and
	// in insertion order.
	for _, p := range ps {
		if p.Node == self {
			v[0].Weight = p.Weight
			continue
		}
		if k := len(v) - 1; k > 0 && v[k].Node == p.Node {
			v[k].Weight = p.Weight
			continue
		}
		v = append(v, p)
	}
	slices.SortFunc(v, byNode)
	return v
}

// jaccard computes |x ∩ y| / |x ∪ y| for sorted unique slices.
func jaccard(x, y []int) float64 {
	shared := 0
	for i, j := 0, 0; i < len(x) && j < len(y); {
		switch {
		case x[i] < y[j]:
			i++
		case x[i] > y[j]:
			j++
		default:
			shared++
			i++
			j++
		}
	}
	union := len(x) + len(y) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}

// tanimoto computes x·y / (|x|² + |y|² - x·y) for sparse vectors sorted by
// coordinate.
func tanimoto(x, y []Partial) float64 {
	var dot, xx, yy float64
	for _, p := range x {
		xx += p.Weight * p.Weight
	}
	for _, p := range y {
		yy += p.Weight * p.Weight
	}
	for i, j := 0, 0; i < len(x) && j < len(y); {
		switch {
		case x[i].Node < y[j].Node:
			i++
		case x[i].Node > y[j].Node:
			j++
		default:
			dot += x[i].Weight * y[j].Weight
			i++
			j++
		}
	}
	den := xx + yy - dot
	if den == 0 {
		return 0
	}
	return dot / den
}
