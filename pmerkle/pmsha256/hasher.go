package pmsha256

import (
	"crypto/sha256"

	"github.com/gordian-engine/partials/pnode"
)

// Hasher is a [pmerkle.Hasher] backed by SHA256,
// hashing the concatenation of the left and right chunks.
// This is the node hash of SSZ merkleization.
type Hasher struct{}

func (Hasher) Combine(left, right pnode.Chunk) pnode.Chunk {
	var buf [2 * pnode.ChunkSize]byte
	copy(buf[:pnode.ChunkSize], left[:])
	copy(buf[pnode.ChunkSize:], right[:])
	return sha256.Sum256(buf[:])
}
