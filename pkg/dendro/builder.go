package dendro

import (
	"fmt"
	"math"
	"slices"

	lcerr "github.com/ruliana/link-community/pkg/errors"
	"github.com/ruliana/link-community/pkg/slink"
)

// MergeError describes a pack that cannot be placed in the tree built so
// far. It is always wrapped in an INVARIANT_VIOLATION error.
type MergeError struct {
	Level      float64 // level of the rejected pack
	OwnerLevel float64 // level of the node owning the indexed endpoint, NaN if none
	A, B       any     // pack endpoints
	Reason     string
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("cannot merge (%v, %v) at level %v into node at level %v: %s",
		e.A, e.B, e.Level, e.OwnerLevel, e.Reason)
}

type node[T comparable] struct {
	level    float64
	members  []T
	children []int
}

// Builder assembles a dendrogram from packs pushed in decreasing level
// order. Nodes live in an arena; owner maps each leaf to the node that holds
// it directly.
type Builder[T comparable] struct {
	nodes []node[T]
	owner map[T]int
}

// NewBuilder seeds a builder with the root merge of a and b.
func NewBuilder[T comparable](level float64, a, b T) *Builder[T] {
	bl := &Builder[T]{owner: make(map[T]int)}
	bl.nodes = append(bl.nodes, node[T]{level: level})
	bl.addMember(0, a)
	bl.addMember(0, b)
	return bl
}

// SeedBuilder starts a builder from an existing tree.
func SeedBuilder[T comparable](seed *Dendro[T]) *Builder[T] {
	bl := &Builder[T]{owner: make(map[T]int)}
	bl.seed(seed)
	return bl
}

func (bl *Builder[T]) seed(d *Dendro[T]) int {
	id := len(bl.nodes)
	bl.nodes = append(bl.nodes, node[T]{level: d.Level})
	for _, m := range d.Members {
		bl.addMember(id, m)
	}
	for _, c := range d.Children {
		cid := bl.seed(c)
		bl.nodes[id].children = append(bl.nodes[id].children, cid)
	}
	return id
}

func (bl *Builder[T]) addMember(id int, m T) {
	if _, ok := bl.owner[m]; ok {
		return
	}
	bl.nodes[id].members = append(bl.nodes[id].members, m)
	bl.owner[m] = id
}

// Push places the merge of a and b at level. The owner of whichever endpoint
// is already in the tree (a is checked first) decides the outcome:
//
//   - same level: both become direct members of the owner;
//   - higher level: the indexed endpoint is detached and a new child {a, b}
//     is created at level;
//   - lower level: the pack is out of order and Push fails.
//
// Push also fails when neither endpoint is in the tree, or when both are but
// under different nodes.
func (bl *Builder[T]) Push(level float64, a, b T) error {
	key, other := a, b
	id, ok := bl.owner[a]
	if !ok {
		if id, ok = bl.owner[b]; !ok {
			return bl.violation(level, math.NaN(), a, b, "neither endpoint is in the tree")
		}
		key, other = b, a
	}
	if oid, owned := bl.owner[other]; owned && oid != id {
		return bl.violation(level, bl.nodes[id].level, a, b, "endpoints belong to different nodes")
	}

	ownerLevel := bl.nodes[id].level
	switch {
	case ownerLevel == level:
		bl.addMember(id, other)
	case ownerLevel > level:
		bl.nodes[id].members = slices.DeleteFunc(bl.nodes[id].members, func(m T) bool {
			return m == key || m == other
		})
		cid := len(bl.nodes)
		bl.nodes = append(bl.nodes, node[T]{level: level, members: []T{a, b}})
		bl.nodes[id].children = append(bl.nodes[id].children, cid)
		bl.owner[a], bl.owner[b] = cid, cid
	default:
		return bl.violation(level, ownerLevel, a, b, "pack is above its owner")
	}
	return nil
}

func (bl *Builder[T]) violation(level, ownerLevel float64, a, b T, reason string) error {
	return lcerr.Wrap(lcerr.ErrCodeInvariantViolation,
		&MergeError{Level: level, OwnerLevel: ownerLevel, A: a, B: b, Reason: reason},
		"assemble dendrogram")
}

// Build returns the tree assembled so far.
func (bl *Builder[T]) Build() *Dendro[T] {
	return bl.build(0)
}

func (bl *Builder[T]) build(id int) *Dendro[T] {
	n := bl.nodes[id]
	d := &Dendro[T]{Level: n.level, Members: slices.Clone(n.members)}
	for _, c := range n.children {
		d.Children = append(d.Children, bl.build(c))
	}
	return d
}

// FromPacks assembles a tree from packs sorted by decreasing level. The
// first pack seeds the root. No packs yield [Empty].
func FromPacks[T comparable](packs []slink.Pack[T]) (*Dendro[T], error) {
	if len(packs) == 0 {
		return Empty[T](), nil
	}
	bl := NewBuilder(packs[0].Level, packs[0].Item, packs[0].Into)
	for _, p := range packs[1:] {
		if err := bl.Push(p.Level, p.Item, p.Into); err != nil {
			return nil, err
		}
	}
	return bl.Build(), nil
}

// Assemble turns a SLINK result into a dendrogram. Assembly runs on item
// indices, so items need not be comparable. Zero or one item yields [Empty].
func Assemble[T any](res *slink.Result[T]) (*Dendro[T], error) {
	packs := res.Packs()
	idx := make([]slink.Pack[int], len(packs))
	for i, p := range packs {
		idx[i] = slink.Pack[int]{
			Level:     p.Level,
			Item:      p.ItemIndex,
			Into:      p.IntoIndex,
			ItemIndex: p.ItemIndex,
			IntoIndex: p.IntoIndex,
		}
	}
	d, err := FromPacks(idx)
	if err != nil {
		return nil, err
	}
	items := res.Items()
	return Map(d, func(i int) T { return items[i] }), nil
}
