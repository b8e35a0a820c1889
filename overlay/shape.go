package overlay

import (
	"fmt"

	"github.com/gordian-engine/partials/pnode"
	"github.com/gordian-engine/partials/ptree"
)

// Shape is the overlay capability of a serializable layout.
//
// The set of shapes is closed; the unexported method
// keeps other packages from adding implementations.
type Shape interface {
	// Height is the height of the shape's own tree.
	// It depends only on static parameters, never on runtime data.
	Height() uint8

	// GetNode resolves path against the shape.
	// The returned node is expressed in the shape's local index space.
	GetNode(path pnode.Path) (pnode.Node, error)

	// packedSize is the number of bytes an element of this shape
	// occupies when stored inside a vector or list chunk.
	packedSize() int
}

// maxChunks bounds the number of data chunks in one collection,
// so that the collection's tree height fits comfortably in a generalized index.
const maxChunks = 1 << 62

// itemsPerChunk reports how many elements of s share one chunk.
func itemsPerChunk(s Shape) uint64 {
	return uint64(max(1, pnode.ChunkSize/s.packedSize()))
}

// dataHeight is the height of a tree holding n elements of elem.
func dataHeight(elem Shape, n uint64) uint8 {
	chunks := usedChunks(elem, n)
	if chunks > maxChunks {
		panic(fmt.Errorf("BUG: %d chunks exceed the addressable maximum %d", chunks, maxChunks))
	}
	return ptree.Log2(ptree.NextPowerOfTwo(chunks))
}

// remap moves a node resolved by a child shape
// into the space of a parent, whose leaf anchor holds the child's root.
func remap(anchor uint64, n pnode.Node) (pnode.Node, error) {
	idx, ok := ptree.RemapChecked(anchor, n.NodeIndex())
	if !ok {
		return nil, pnode.ErrIndexOverflow
	}
	return n.WithIndex(idx), nil
}

// isPrimitive reports whether s resolves at the empty path,
// which only packed scalars do.
func isPrimitive(s Shape) bool {
	n, err := s.GetNode(nil)
	if err != nil {
		return false
	}
	_, ok := n.(pnode.PrimitiveSet)
	return ok
}
