package overlay

import (
	"fmt"

	"github.com/gordian-engine/partials/pnode"
)

// Scalar is a fixed-size primitive value of at most one chunk.
// Scalars smaller than a chunk are packed together
// when they are elements of a vector or list.
type Scalar struct {
	name string
	size uint8
}

// Predefined scalars.
var (
	Bool    = Scalar{name: "bool", size: 1}
	Uint8   = Scalar{name: "uint8", size: 1}
	Uint16  = Scalar{name: "uint16", size: 2}
	Uint32  = Scalar{name: "uint32", size: 4}
	Uint64  = Scalar{name: "uint64", size: 8}
	Uint128 = Scalar{name: "uint128", size: 16}
	Uint256 = Scalar{name: "uint256", size: 32}
)

// NewScalar returns a scalar of the given byte size.
// It panics if size is zero or larger than [pnode.ChunkSize].
func NewScalar(name string, size uint8) Scalar {
	if size == 0 || int(size) > pnode.ChunkSize {
		panic(fmt.Errorf(
			"BUG: scalar size must be in [1, %d] (got %d)", pnode.ChunkSize, size,
		))
	}
	return Scalar{name: name, size: size}
}

func (s Scalar) Name() string { return s.name }

// Size is the scalar's size in bytes.
func (s Scalar) Size() uint8 { return s.size }

func (Scalar) Height() uint8 { return 0 }

func (s Scalar) GetNode(path pnode.Path) (pnode.Node, error) {
	if len(path) > 0 {
		return nil, &pnode.InvalidPathError{Selector: path[0]}
	}

	return pnode.PrimitiveSet{{
		Index: 0,
		Size:  s.size,
	}}, nil
}

func (s Scalar) packedSize() int { return max(1, int(s.size)) }

func (s Scalar) String() string { return s.name }
