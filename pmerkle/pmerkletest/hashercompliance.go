package pmerkletest

import (
	"sync"
	"testing"

	"github.com/gordian-engine/partials/pmerkle"
	"github.com/gordian-engine/partials/pnode"
	"github.com/stretchr/testify/require"
)

type HasherFactory func() pmerkle.Hasher

func TestHasherCompliance(t *testing.T, f HasherFactory) {
	left := pnode.Chunk{1, 2, 3}
	right := pnode.Chunk{4, 5, 6}

	t.Run("combine is deterministic", func(t *testing.T) {
		t.Parallel()

		h := f()
		require.Equal(t, h.Combine(left, right), h.Combine(left, right))

		// A second instance agrees with the first.
		require.Equal(t, h.Combine(left, right), f().Combine(left, right))
	})

	t.Run("combine respects order", func(t *testing.T) {
		t.Parallel()

		h := f()
		require.NotEqual(t, h.Combine(left, right), h.Combine(right, left))
	})

	t.Run("combine respects content", func(t *testing.T) {
		t.Parallel()

		h := f()
		other := right
		other[pnode.ChunkSize-1] ^= 1
		require.NotEqual(t, h.Combine(left, right), h.Combine(left, other))
	})

	t.Run("zero chunks do not hash to zero", func(t *testing.T) {
		t.Parallel()

		require.NotEqual(t, pnode.Chunk{}, f().Combine(pnode.Chunk{}, pnode.Chunk{}))
	})

	t.Run("combine is safe for concurrent use", func(t *testing.T) {
		t.Parallel()

		h := f()
		want := h.Combine(left, right)

		var wg sync.WaitGroup
		got := make([]pnode.Chunk, 16)
		for i := range got {
			wg.Add(1)
			go func() {
				defer wg.Done()
				got[i] = h.Combine(left, right)
			}()
		}
		wg.Wait()

		for _, g := range got {
			require.Equal(t, want, g)
		}
	})
}
