// Package ptest contains helpers shared by tests across the module.
package ptest

import (
	"crypto/sha256"
	"log/slog"
	"math/rand/v2"
	"testing"

	"github.com/gordian-engine/partials/pnode"
	"github.com/neilotoole/slogt"
)

// NewLogger returns a logger that writes through t.Log,
// so output is attributed to the test that produced it.
func NewLogger(t testing.TB) *slog.Logger {
	return slogt.New(t)
}

// RandomDataForTest returns a byte slice of size sz
// containing pseudorandom data, derived from a seed based on the test name.
func RandomDataForTest(t testing.TB, sz int) []byte {
	// Sha256 happens to be the right size for the chacha8 seed,
	// and this fits well anyway since that means
	// we are not limited by the length of any particular test name.
	seed := sha256.Sum256([]byte(t.Name()))
	chacha := rand.NewChaCha8(seed)

	out := make([]byte, sz)

	if _, err := chacha.Read(out); err != nil {
		panic(err)
	}

	return out
}

// RandomChunksForTest returns n pseudorandom chunks
// seeded the same way as [RandomDataForTest].
func RandomChunksForTest(t testing.TB, n int) []pnode.Chunk {
	data := RandomDataForTest(t, n*pnode.ChunkSize)
	out := make([]pnode.Chunk, n)
	for i := range out {
		copy(out[i][:], data[i*pnode.ChunkSize:])
	}
	return out
}
