package pnode

import (
	"fmt"
	"slices"
)

// Node is a resolved node descriptor.
// The set of implementations is closed:
// [PrimitiveSet], [Composite] and [Length].
type Node interface {
	// NodeIndex is the generalized index of the node
	// in the space of the shape that resolved it.
	NodeIndex() uint64

	// WithIndex returns a copy of the node
	// with every generalized index replaced by idx.
	WithIndex(idx uint64) Node

	isNode()
}

// Primitive is one scalar packed into a chunk.
type Primitive struct {
	// Ident is the element ordinal or field name the scalar was resolved from.
	Ident string

	// Index is the generalized index of the chunk holding the scalar.
	Index uint64

	// Size and Offset are the scalar's byte size
	// and its byte offset within the chunk.
	Size, Offset uint8
}

// PrimitiveSet describes every scalar sharing a single chunk.
// All members carry the same Index, and their ordinals form a contiguous run.
type PrimitiveSet []Primitive

func (s PrimitiveSet) NodeIndex() uint64 {
	if len(s) == 0 {
		return 0
	}
	return s[0].Index
}

func (s PrimitiveSet) WithIndex(idx uint64) Node {
	out := slices.Clone(s)
	for i := range out {
		out[i].Index = idx
	}
	return out
}

// Member returns the element of s with the given ident.
func (s PrimitiveSet) Member(ident string) (Primitive, bool) {
	for _, p := range s {
		if p.Ident == ident {
			return p, true
		}
	}
	return Primitive{}, false
}

// Composite is the root of a nested shape's subtree.
type Composite struct {
	Ident string
	Index uint64

	// Height of the nested shape's own tree,
	// so callers can keep resolving beneath it.
	Height uint8
}

func (c Composite) NodeIndex() uint64 { return c.Index }

func (c Composite) WithIndex(idx uint64) Node {
	c.Index = idx
	return c
}

// Length is the leaf holding a variable-length list's element count.
// It always occupies a whole chunk.
type Length struct {
	Ident string
	Index uint64
}

// LengthLocalIndex is the generalized index of a list's length leaf
// relative to the list's own root.
const LengthLocalIndex = 2

func (l Length) NodeIndex() uint64 { return l.Index }

func (l Length) WithIndex(idx uint64) Node {
	l.Index = idx
	return l
}

func (PrimitiveSet) isNode() {}
func (Composite) isNode()    {}
func (Length) isNode()       {}

// Equal reports whether a and b are structurally identical descriptors.
func Equal(a, b Node) bool {
	switch a := a.(type) {
	case PrimitiveSet:
		b, ok := b.(PrimitiveSet)
		return ok && slices.Equal(a, b)
	case Composite:
		b, ok := b.(Composite)
		return ok && a == b
	case Length:
		b, ok := b.(Length)
		return ok && a == b
	case nil:
		return b == nil
	default:
		panic(fmt.Errorf("BUG: unknown node type %T", a))
	}
}
