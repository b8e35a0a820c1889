package overlay

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/gordian-engine/partials/pnode"
	"github.com/gordian-engine/partials/ptree"
)

// WalkLeaves calls fn with the generalized index of every leaf chunk
// in the full conceptual tree of s, in ascending order within each subtree.
//
// Nested shapes are expanded: the leaf anchoring a nested vector, list
// or container is not reported itself; its own leaves are, remapped into
// the space of s. Padding leaves past the last element are reported
// as plain leaves.
//
// Walking stops early if fn returns false.
// WalkLeaves returns [pnode.ErrIndexOverflow] if an index does not fit in 64 bits.
func WalkLeaves(s Shape, fn func(idx uint64) bool) error {
	_, err := walk(s, 0, fn)
	return err
}

func walk(s Shape, anchor uint64, fn func(uint64) bool) (bool, error) {
	switch s := s.(type) {
	case Scalar:
		return fn(anchor), nil
	case *Vector:
		return walkCollection(s.elem, s.length, s.height, anchor, fn)
	case *List:
		cont, err := walkCollection(s.elem, s.limit, s.height, anchor, fn)
		if err != nil || !cont {
			return cont, err
		}
		idx, ok := ptree.RemapChecked(anchor, pnode.LengthLocalIndex)
		if !ok {
			return false, pnode.ErrIndexOverflow
		}
		return fn(idx), nil
	case *Container:
		first := ptree.LeftmostLeaf(0, s.height)
		for i := range uint64(1) << s.height {
			idx, ok := ptree.RemapChecked(anchor, first+i)
			if !ok {
				return false, pnode.ErrIndexOverflow
			}
			var cont bool
			if i < uint64(len(s.fields)) {
				var err error
				if cont, err = walk(s.fields[i].Shape, idx, fn); err != nil {
					return false, err
				}
			} else {
				cont = fn(idx)
			}
			if !cont {
				return false, nil
			}
		}
		return true, nil
	default:
		panic(fmt.Errorf("BUG: unknown shape type %T", s))
	}
}

func walkCollection(
	elem Shape, n uint64, height uint8, anchor uint64, fn func(uint64) bool,
) (bool, error) {
	first := ptree.LeftmostLeaf(0, height)
	dh := dataHeight(elem, n)
	used := usedChunks(elem, n)
	nested := !isPrimitive(elem)

	for k := range uint64(1) << dh {
		idx, ok := ptree.RemapChecked(anchor, first+k)
		if !ok {
			return false, pnode.ErrIndexOverflow
		}
		var cont bool
		if nested && k < used {
			var err error
			if cont, err = walk(elem, idx, fn); err != nil {
				return false, err
			}
		} else {
			cont = fn(idx)
		}
		if !cont {
			return false, nil
		}
	}
	return true, nil
}

// usedChunks is the number of chunks n elements of elem occupy.
func usedChunks(elem Shape, n uint64) uint64 {
	ipc := itemsPerChunk(elem)
	chunks := n / ipc
	if n%ipc != 0 {
		chunks++
	}
	return chunks
}

// LeafCount returns the number of leaves [WalkLeaves] would report for s,
// saturating at math.MaxUint64.
func LeafCount(s Shape) uint64 {
	switch s := s.(type) {
	case Scalar:
		return 1
	case *Vector:
		return collectionLeafCount(s.elem, s.length)
	case *List:
		return satAdd(collectionLeafCount(s.elem, s.limit), 1)
	case *Container:
		total := (uint64(1) << s.height) - uint64(len(s.fields))
		for _, f := range s.fields {
			total = satAdd(total, LeafCount(f.Shape))
		}
		return total
	default:
		panic(fmt.Errorf("BUG: unknown shape type %T", s))
	}
}

func collectionLeafCount(elem Shape, n uint64) uint64 {
	slots := uint64(1) << dataHeight(elem, n)
	if isPrimitive(elem) {
		return slots
	}
	used := usedChunks(elem, n)
	return satAdd(slots-used, satMul(used, LeafCount(elem)))
}

func satAdd(a, b uint64) uint64 {
	s, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return s
}

func satMul(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return math.MaxUint64
	}
	return lo
}

// ShapeAt returns the shape selected by path within s.
// The empty path selects s itself.
// A list's length selects [Uint256], the shape of the count leaf.
func ShapeAt(s Shape, path pnode.Path) (Shape, error) {
	for i, sel := range path {
		switch cur := s.(type) {
		case Scalar:
			return nil, &pnode.InvalidPathError{Selector: sel}
		case *Vector:
			pos, ok := sel.Ordinal()
			if !ok {
				return nil, &pnode.InvalidPathError{Selector: sel}
			}
			if pos >= cur.length {
				return nil, &pnode.IndexOutOfBoundsError{Ordinal: pos}
			}
			s = cur.elem
		case *List:
			if name, ok := sel.Name(); ok {
				if name != pnode.LengthName {
					return nil, &pnode.InvalidPathError{Selector: sel}
				}
				if i+1 < len(path) {
					return nil, &pnode.InvalidPathError{Selector: path[i+1]}
				}
				return Uint256, nil
			}
			pos, _ := sel.Ordinal()
			if pos >= cur.limit {
				return nil, &pnode.IndexOutOfBoundsError{Ordinal: pos}
			}
			s = cur.elem
		case *Container:
			name, ok := sel.Name()
			if !ok {
				return nil, &pnode.InvalidPathError{Selector: sel}
			}
			fi, ok := cur.byName[name]
			if !ok {
				return nil, &pnode.InvalidPathError{Selector: sel}
			}
			s = cur.fields[fi].Shape
		default:
			panic(fmt.Errorf("BUG: unknown shape type %T", s))
		}
	}
	return s, nil
}
