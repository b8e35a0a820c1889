package pmblake3

import (
	"github.com/gordian-engine/partials/pnode"
	"github.com/zeebo/blake3"
)

// Hasher is a [pmerkle.Hasher] backed by 256-bit BLAKE3,
// hashing the concatenation of the left and right chunks.
type Hasher struct{}

func (Hasher) Combine(left, right pnode.Chunk) pnode.Chunk {
	var buf [2 * pnode.ChunkSize]byte
	copy(buf[:pnode.ChunkSize], left[:])
	copy(buf[pnode.ChunkSize:], right[:])
	return blake3.Sum256(buf[:])
}
