package chunktree

import (
	"fmt"

	"github.com/gordian-engine/partials/overlay"
	"github.com/gordian-engine/partials/pnode"
)

// Tree is a fully hashed Merkle tree of a single value.
// It is immutable and safe for concurrent reads.
type Tree struct {
	shape overlay.Shape
	nodes map[uint64]pnode.Chunk
}

// ChunkNotFoundError is returned from [*Tree.ReadChunk]
// for an index that is not a node of the tree.
type ChunkNotFoundError struct {
	Index uint64
}

func (e ChunkNotFoundError) Error() string {
	return fmt.Sprintf("no chunk at generalized index %d", e.Index)
}

// ReadChunk returns the chunk at the generalized index idx.
func (t *Tree) ReadChunk(idx uint64) (pnode.Chunk, error) {
	c, ok := t.nodes[idx]
	if !ok {
		return pnode.Chunk{}, ChunkNotFoundError{Index: idx}
	}
	return c, nil
}

// Root returns the chunk at generalized index 0.
func (t *Tree) Root() pnode.Chunk {
	return t.nodes[0]
}

// Len is the number of nodes in the tree, leaves included.
func (t *Tree) Len() int {
	return len(t.nodes)
}

func (t *Tree) Shape() overlay.Shape {
	return t.shape
}
