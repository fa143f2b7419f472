package graph

import (
	"cmp"
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind describes the variant of an [Edge] as a bit set of [Directed] and
// [Weighted]. A [Graph] holds edges of a single kind.
type Kind uint8

const (
	// Directed edges are order sensitive and contribute out-adjacency only.
	Directed Kind = 1 << iota
	// Weighted edges carry a non-negative weight used by the Tanimoto similarity.
	Weighted
)

// The four edge variants.
const (
	Undirected         Kind = 0
	UndirectedWeighted      = Weighted
	DirectedUnweighted      = Directed
	DirectedWeighted        = Directed | Weighted
)

// IsDirected reports whether k has the [Directed] bit.
func (k Kind) IsDirected() bool { return k&Directed != 0 }

// IsWeighted reports whether k has the [Weighted] bit.
func (k Kind) IsWeighted() bool { return k&Weighted != 0 }

func (k Kind) String() string {
	switch k {
	case Undirected:
		return "undirected"
	case UndirectedWeighted:
		return "undirected-weighted"
	case DirectedUnweighted:
		return "directed"
	case DirectedWeighted:
		return "directed-weighted"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// KindOf returns the kind selected by the directed and weighted switches.
func KindOf(directed, weighted bool) Kind {
	var k Kind
	if directed {
		k |= Directed
	}
	if weighted {
		k |= Weighted
	}
	return k
}

// Edge is a link between two nodes. It is a closed variant over the four
// [Kind] values; build one with [Link], [WeightedLink], [DLink] or
// [WeightedDLink].
//
// Undirected edges compare equal regardless of endpoint order. Weighted
// edges additionally require the same weight. Directed edges are order
// sensitive.
type Edge[N cmp.Ordered] struct {
	from, to N
	weight   float64
	kind     Kind
}

// Link returns an undirected, unweighted edge.
func Link[N cmp.Ordered](a, b N) Edge[N] {
	return Edge[N]{from: a, to: b, weight: 1, kind: Undirected}
}

// WeightedLink returns an undirected edge with weight w.
func WeightedLink[N cmp.Ordered](a, b N, w float64) Edge[N] {
	return Edge[N]{from: a, to: b, weight: w, kind: UndirectedWeighted}
}

// DLink returns a directed, unweighted edge from a to b.
func DLink[N cmp.Ordered](from, to N) Edge[N] {
	return Edge[N]{from: from, to: to, weight: 1, kind: DirectedUnweighted}
}

// WeightedDLink returns a directed edge from a to b with weight w.
func WeightedDLink[N cmp.Ordered](from, to N, w float64) Edge[N] {
	return Edge[N]{from: from, to: to, weight: w, kind: DirectedWeighted}
}

// NewEdge returns an edge of the given kind. The weight is ignored for
// unweighted kinds.
func NewEdge[N cmp.Ordered](kind Kind, from, to N, w float64) Edge[N] {
	if !kind.IsWeighted() {
		w = 1
	}
	return Edge[N]{from: from, to: to, weight: w, kind: kind}
}

// From returns the first endpoint (the source for directed edges).
func (e Edge[N]) From() N { return e.from }

// To returns the second endpoint (the target for directed edges).
func (e Edge[N]) To() N { return e.to }

// Endpoints returns both endpoints in construction order.
func (e Edge[N]) Endpoints() (N, N) { return e.from, e.to }

// Weight returns the edge weight and whether the edge is weighted.
// Unweighted edges report a weight of 1.
func (e Edge[N]) Weight() (float64, bool) { return e.weight, e.kind.IsWeighted() }

// Kind returns the edge variant.
func (e Edge[N]) Kind() Kind { return e.kind }

// IsLoop reports whether both endpoints are the same node.
func (e Edge[N]) IsLoop() bool { return e.from == e.to }

// EdgeKey is the canonical comparable form of an [Edge]. Two edges are
// equal exactly when their keys are equal.
type EdgeKey[N cmp.Ordered] struct {
	A, B   N
	Weight float64
	Kind   Kind
}

// Key returns the canonical key of e. Undirected endpoints are ordered and
// the weight is only kept for weighted kinds.
func (e Edge[N]) Key() EdgeKey[N] {
	a, b := e.from, e.to
	if !e.kind.IsDirected() && b < a {
		a, b = b, a
	}
	k := EdgeKey[N]{A: a, B: b, Kind: e.kind}
	if e.kind.IsWeighted() {
		k.Weight = e.weight
	}
	return k
}

// Equal reports whether e and o denote the same edge.
func (e Edge[N]) Equal(o Edge[N]) bool { return e.Key() == o.Key() }

// String renders the edge as (a)-(b), (a)->(b), (a)-[2.0]-(b) or
// (a)-[2.0]->(b). Undirected endpoints are printed in canonical order so the
// rendering is stable under endpoint swaps.
func (e Edge[N]) String() string {
	k := e.Key()
	arrow := "-"
	if e.kind.IsDirected() {
		arrow = "->"
	}
	if e.kind.IsWeighted() {
		return fmt.Sprintf("(%v)-[%s]%s(%v)", k.A, formatWeight(e.weight), arrow, k.B)
	}
	return fmt.Sprintf("(%v)%s(%v)", k.A, arrow, k.B)
}

func formatWeight(w float64) string {
	if w == float64(int64(w)) {
		return strconv.FormatFloat(w, 'f', 1, 64)
	}
	return strconv.FormatFloat(w, 'g', -1, 64)
}

// MapEdge projects the endpoints of e through f, keeping kind and weight.
// It stops at the first error returned by f.
func MapEdge[N, M cmp.Ordered](e Edge[N], f func(N) (M, error)) (Edge[M], error) {
	from, err := f(e.from)
	if err != nil {
		return Edge[M]{}, err
	}
	to, err := f(e.to)
	if err != nil {
		return Edge[M]{}, err
	}
	return Edge[M]{from: from, to: to, weight: e.weight, kind: e.kind}, nil
}

// =============================================================================
// JSON
// =============================================================================

type edgeJSON[N cmp.Ordered] struct {
	From     N        `json:"from"`
	To       N        `json:"to"`
	Weight   *float64 `json:"weight,omitempty"`
	Directed bool     `json:"directed,omitempty"`
}

// MarshalJSON encodes the edge as {"from", "to", "weight", "directed"}.
// The weight is omitted for unweighted edges.
func (e Edge[N]) MarshalJSON() ([]byte, error) {
	out := edgeJSON[N]{From: e.from, To: e.to, Directed: e.kind.IsDirected()}
	if e.kind.IsWeighted() {
		w := e.weight
		out.Weight = &w
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the form written by MarshalJSON. The presence of a
// weight makes the edge weighted.
func (e *Edge[N]) UnmarshalJSON(data []byte) error {
	var in edgeJSON[N]
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	w := 1.0
	if in.Weight != nil {
		w = *in.Weight
	}
	*e = NewEdge(KindOf(in.Directed, in.Weight != nil), in.From, in.To, w)
	return nil
}
