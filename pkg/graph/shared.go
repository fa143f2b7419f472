package graph

import "cmp"

// Shared classifies how two edges overlap.
type Shared uint8

const (
	// SharedNone means the edges have no endpoint in common.
	SharedNone Shared = iota
	// SharedOne means the edges meet at exactly one node; the two remaining
	// endpoints are compared by the similarity measures.
	SharedOne
	// SharedAll covers identical edges, reversed edges and directed mutual
	// pairs (a->b, b->a).
	SharedAll
)

func (s Shared) String() string {
	switch s {
	case SharedNone:
		return "none"
	case SharedOne:
		return "one"
	default:
		return "all"
	}
}

// Share classifies the overlap of (a,b) and (c,d). For [SharedOne] it also
// returns the two endpoints that are not shared, the first taken from e2 and
// the second from e1. The cases are tested in a fixed order:
//
//	a==c && d!=b  ->  (d, b)
//	a==d && c!=b  ->  (c, b)
//	b==c && d!=a  ->  (d, a)
//	b==d && c!=a  ->  (c, a)
//
// Share only compares values.
func Share[N cmp.Ordered](e1, e2 Edge[N]) (s Shared, x, y N) {
	a, b := e1.from, e1.to
	c, d := e2.from, e2.to

	switch {
	case a != c && a != d && b != c && b != d:
		return SharedNone, x, y
	case a == c && d != b:
		return SharedOne, d, b
	case a == d && c != b:
		return SharedOne, c, b
	case b == c && d != a:
		return SharedOne, d, a
	case b == d && c != a:
		return SharedOne, c, a
	default:
		return SharedAll, x, y
	}
}
