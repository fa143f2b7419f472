// Package dendro provides the nested dendrogram produced by single-linkage
// clustering and the operations built on it.
//
// A [Dendro] node has a level (the merge distance), the leaves merged
// directly at that level, and child nodes merged at strictly lower levels.
// Every leaf is a direct member of exactly one node. Trees are assembled
// from the flat merge list of package slink with [Assemble] or, for custom
// pack sequences, with a [Builder].
//
// # Cutting
//
// [Dendro.CutByLevel] splits the tree into groups: a node whose level is
// below the desired level keeps all its leaves together; any other node
// releases its direct members as singletons and recurses into its children.
//
//	groups := d.CutByLevel(0.5)
//
// # Equality
//
// Member and child order carry no meaning. [Equal], [EqualApprox],
// [Dendro.Key] and [Dendro.Hash] all ignore it. Leaves are compared through
// their fmt rendering, so leaf types should print canonically.
package dendro

import (
	"fmt"
	"hash/fnv"
	"math"
	"slices"
	"strconv"
	"strings"

	lcerr "github.com/ruliana/link-community/pkg/errors"
)

// Dendro is one node of a dendrogram.
type Dendro[T any] struct {
	Level    float64
	Members  []T
	Children []*Dendro[T]
}

// Empty returns the dendrogram of zero or one item: level +Inf, no members
// and no children.
func Empty[T any]() *Dendro[T] {
	return &Dendro[T]{Level: math.Inf(1)}
}

// New builds a node from literal parts. Children at the same level as the
// new node are flattened into it.
func New[T any](level float64, members []T, children ...*Dendro[T]) *Dendro[T] {
	d := &Dendro[T]{Level: level, Members: slices.Clone(members)}
	for _, c := range children {
		if c.Level == level {
			d.Members = append(d.Members, c.Members...)
			d.Children = append(d.Children, c.Children...)
			continue
		}
		d.Children = append(d.Children, c)
	}
	return d
}

// IsEmpty reports whether d holds no leaves.
func (d *Dendro[T]) IsEmpty() bool {
	return len(d.Members) == 0 && len(d.Children) == 0
}

// Map returns a copy of d with every leaf replaced by f(leaf).
func Map[T, U any](d *Dendro[T], f func(T) U) *Dendro[U] {
	out := &Dendro[U]{Level: d.Level}
	if len(d.Members) > 0 {
		out.Members = make([]U, len(d.Members))
		for i, m := range d.Members {
			out.Members[i] = f(m)
		}
	}
	if len(d.Children) > 0 {
		out.Children = make([]*Dendro[U], len(d.Children))
		for i, c := range d.Children {
			out.Children[i] = Map(c, f)
		}
	}
	return out
}

// CutByLevel returns the groups separated by at least the desired level.
// Cutting above the root yields a single group with every leaf; cutting at
// or below every level yields singletons.
func (d *Dendro[T]) CutByLevel(desired float64) [][]T {
	if desired > d.Level {
		return [][]T{d.AllMembers()}
	}
	groups := make([][]T, 0, len(d.Members)+len(d.Children))
	for _, m := range d.Members {
		groups = append(groups, []T{m})
	}
	for _, c := range d.Children {
		groups = append(groups, c.CutByLevel(desired)...)
	}
	return groups
}

// AllMembers returns every leaf of d, direct members first.
func (d *Dendro[T]) AllMembers() []T {
	out := slices.Clone(d.Members)
	for _, c := range d.Children {
		out = append(out, c.AllMembers()...)
	}
	return out
}

// Levels counts the merges at each level, the same histogram slink.Result
// reports. A node joining k parts, members and children together, stands for
// k-1 merges at its level.
func (d *Dendro[T]) Levels() map[float64]int {
	out := make(map[float64]int)
	if d.IsEmpty() {
		return out
	}
	d.Walk(func(n *Dendro[T], _ int) bool {
		if merges := len(n.Members) + len(n.Children) - 1; merges > 0 {
			out[n.Level] += merges
		}
		return true
	})
	return out
}

// Depth returns the number of nodes on the longest root-to-leaf path.
// An empty dendrogram has depth 0.
func (d *Dendro[T]) Depth() int {
	if d.IsEmpty() {
		return 0
	}
	depth := 0
	for _, c := range d.Children {
		depth = max(depth, c.Depth())
	}
	return depth + 1
}

// Walk visits d and its descendants in pre-order. Returning false from fn
// skips the children of that node.
func (d *Dendro[T]) Walk(fn func(n *Dendro[T], depth int) bool) {
	d.walk(fn, 0)
}

func (d *Dendro[T]) walk(fn func(*Dendro[T], int) bool, depth int) {
	if !fn(d, depth) {
		return
	}
	for _, c := range d.Children {
		c.walk(fn, depth+1)
	}
}

// Validate checks the structural invariants: every child level is strictly
// below its parent's and no leaf is a direct member twice.
func (d *Dendro[T]) Validate() error {
	seen := make(map[string]struct{})
	var err error
	d.Walk(func(n *Dendro[T], _ int) bool {
		if err != nil {
			return false
		}
		for _, m := range n.Members {
			k := fmt.Sprint(m)
			if _, dup := seen[k]; dup {
				err = lcerr.New(lcerr.ErrCodeInvariantViolation, "leaf %s appears twice", k)
				return false
			}
			seen[k] = struct{}{}
		}
		for _, c := range n.Children {
			if !(c.Level < n.Level) {
				err = lcerr.New(lcerr.ErrCodeInvariantViolation,
					"child level %v is not below parent level %v", c.Level, n.Level)
				return false
			}
		}
		return true
	})
	return err
}

// =============================================================================
// Equality
// =============================================================================

// Key returns a canonical rendering of d: members and children sorted,
// levels printed exactly. Two trees are [Equal] exactly when their keys are.
func (d *Dendro[T]) Key() string {
	return d.key(func(l float64) string { return strconv.FormatFloat(l, 'g', -1, 64) })
}

// KeyApprox is [Dendro.Key] with levels rounded to the given decimals.
func (d *Dendro[T]) KeyApprox(decimals int) string {
	return d.key(func(l float64) string { return strconv.FormatFloat(l, 'f', decimals, 64) })
}

func (d *Dendro[T]) key(level func(float64) string) string {
	parts := make([]string, 0, len(d.Members)+len(d.Children))
	for _, m := range d.Members {
		parts = append(parts, fmt.Sprint(m))
	}
	slices.Sort(parts)
	kids := make([]string, 0, len(d.Children))
	for _, c := range d.Children {
		kids = append(kids, c.key(level))
	}
	slices.Sort(kids)
	parts = append(parts, kids...)
	return level(d.Level) + "{" + strings.Join(parts, ",") + "}"
}

// Hash returns a 64-bit hash of d with levels rounded to two decimals, so
// that trees equal under [EqualApprox] with two decimals hash alike.
func (d *Dendro[T]) Hash() uint64 {
	h := fnv.New64a()
	h.Write([]byte(d.KeyApprox(2)))
	return h.Sum64()
}

// Equal reports whether a and b have the same shape, levels and leaves,
// ignoring member and child order.
func Equal[T any](a, b *Dendro[T]) bool {
	return a.Key() == b.Key()
}

// EqualApprox is [Equal] with levels compared after rounding to the given
// number of decimals.
func EqualApprox[T any](a, b *Dendro[T], decimals int) bool {
	return a.KeyApprox(decimals) == b.KeyApprox(decimals)
}

// String renders d as Dendro(0.83, [a, b, Dendro(...)]).
func (d *Dendro[T]) String() string {
	parts := make([]string, 0, len(d.Members)+len(d.Children))
	for _, m := range d.Members {
		parts = append(parts, fmt.Sprint(m))
	}
	for _, c := range d.Children {
		parts = append(parts, c.String())
	}
	return fmt.Sprintf("Dendro(%0.2f, [%s])", d.Level, strings.Join(parts, ", "))
}
