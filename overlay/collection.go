package overlay

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gordian-engine/partials/pnode"
	"github.com/gordian-engine/partials/ptree"
)

// Vector is a fixed-length sequence of elements of a single shape.
type Vector struct {
	elem   Shape
	length uint64
	height uint8
}

// NewVector returns a vector of n elements of elem.
// It panics if n is zero or elem is nil.
func NewVector(elem Shape, n uint64) *Vector {
	mustCollection("vector", elem, n)
	return &Vector{
		elem:   elem,
		length: n,
		height: dataHeight(elem, n),
	}
}

func (v *Vector) Elem() Shape    { return v.elem }
func (v *Vector) Length() uint64 { return v.length }

func (v *Vector) Height() uint8 { return v.height }

func (v *Vector) GetNode(path pnode.Path) (pnode.Node, error) {
	return collection{
		elem:     v.elem,
		capacity: v.length,
		height:   v.height,
	}.getNode(path)
}

func (*Vector) packedSize() int { return pnode.ChunkSize }

func (v *Vector) String() string {
	return fmt.Sprintf("vector<%v, %d>", v.elem, v.length)
}

// List is a variable-length sequence of elements of a single shape,
// bounded by a static capacity.
//
// Its root has two children: the data subtree (local index 1),
// laid out exactly like a [Vector] of the full capacity,
// and the length leaf (local index 2).
type List struct {
	elem   Shape
	limit  uint64
	height uint8
}

// NewList returns a list of up to limit elements of elem.
// It panics if limit is zero or elem is nil.
func NewList(elem Shape, limit uint64) *List {
	mustCollection("list", elem, limit)
	return &List{
		elem:  elem,
		limit: limit,

		// One extra level mixes in the length.
		height: dataHeight(elem, limit) + 1,
	}
}

func (l *List) Elem() Shape   { return l.elem }
func (l *List) Limit() uint64 { return l.limit }

func (l *List) Height() uint8 { return l.height }

func (l *List) GetNode(path pnode.Path) (pnode.Node, error) {
	return collection{
		elem:     l.elem,
		capacity: l.limit,
		height:   l.height,
		variable: true,
	}.getNode(path)
}

func (*List) packedSize() int { return pnode.ChunkSize }

func (l *List) String() string {
	return fmt.Sprintf("list<%v, %d>", l.elem, l.limit)
}

// ErrTooManyChunks is returned from [CheckCollection]
// when a collection would need more chunks than a tree can address.
var ErrTooManyChunks = errors.New("collection has too many chunks")

// CheckCollection reports whether [NewVector] and [NewList]
// accept n elements of elem without panicking.
func CheckCollection(elem Shape, n uint64) error {
	if elem == nil {
		return errors.New("nil element shape")
	}
	if n == 0 {
		return errors.New("length must be positive")
	}
	if c := usedChunks(elem, n); c > maxChunks {
		return fmt.Errorf("%w: %d elements of %v need %d chunks", ErrTooManyChunks, n, elem, c)
	}
	return nil
}

func mustCollection(kind string, elem Shape, n uint64) {
	if elem == nil {
		panic(fmt.Errorf("BUG: %s element shape must not be nil", kind))
	}
	if n == 0 {
		panic(fmt.Errorf("BUG: %s length must be positive", kind))
	}
}

// collection is the resolution logic shared by vectors and lists.
type collection struct {
	elem     Shape
	capacity uint64
	height   uint8
	variable bool
}

func (c collection) getNode(path pnode.Path) (pnode.Node, error) {
	if len(path) == 0 {
		return nil, pnode.ErrEmptyPath
	}

	if name, ok := path[0].Name(); ok {
		// The only name a collection knows is the length of a list.
		if !c.variable || name != pnode.LengthName {
			return nil, &pnode.InvalidPathError{Selector: path[0]}
		}
		if len(path) > 1 {
			// The length is a single leaf; nothing lies beneath it.
			return nil, &pnode.InvalidPathError{Selector: path[1]}
		}
		return pnode.Length{
			Ident: pnode.LengthName,
			Index: pnode.LengthLocalIndex,
		}, nil
	}

	pos, _ := path[0].Ordinal()
	if pos >= c.capacity {
		return nil, &pnode.IndexOutOfBoundsError{Ordinal: pos}
	}

	first := ptree.LeftmostLeaf(0, c.height)
	leaf := first + pos/itemsPerChunk(c.elem)

	if len(path) == 1 {
		return generateLeaf(first, leaf, c.elem), nil
	}

	n, err := c.elem.GetNode(path[1:])
	if err != nil {
		return nil, err
	}
	return remap(leaf, n)
}

// generateLeaf describes the leaf at index leaf,
// in a tree whose leftmost leaf is first, holding elements of elem.
//
// A leaf of packed scalars yields every scalar sharing the chunk;
// a leaf holding any other shape is the root of that shape's subtree.
func generateLeaf(first, leaf uint64, elem Shape) pnode.Node {
	if !isPrimitive(elem) {
		return pnode.Composite{
			Ident:  strconv.FormatUint(leaf-first, 10),
			Index:  leaf,
			Height: elem.Height(),
		}
	}

	size := elem.packedSize()
	ipc := itemsPerChunk(elem)
	base := (leaf - first) * ipc

	set := make(pnode.PrimitiveSet, ipc)
	for i := range set {
		set[i] = pnode.Primitive{
			Ident:  strconv.FormatUint(base+uint64(i), 10),
			Index:  leaf,
			Size:   uint8(size),
			Offset: uint8(i * size),
		}
	}
	return set
}
