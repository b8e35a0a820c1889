// Package pmerkle defines the hashing collaborator
// that folds two sibling chunks into their parent chunk.
//
// Implementations live in subpackages, such as pmsha256.
// The pmerkletest package holds a compliance suite
// every implementation should pass.
package pmerkle

import "github.com/gordian-engine/partials/pnode"

// Hasher combines the chunks of two sibling nodes
// into the chunk of their parent.
//
// A proof only verifies against a root computed
// with the same Hasher used to verify it.
//
// Hasher methods must be safe to call concurrently.
type Hasher interface {
	Combine(left, right pnode.Chunk) pnode.Chunk
}

// HasherFunc adapts an ordinary function to a [Hasher].
type HasherFunc func(left, right pnode.Chunk) pnode.Chunk

func (f HasherFunc) Combine(left, right pnode.Chunk) pnode.Chunk {
	return f(left, right)
}
