package proof_test

import (
	"errors"
	"testing"

	"github.com/gordian-engine/partials/chunktree"
	"github.com/gordian-engine/partials/internal/ptest"
	"github.com/gordian-engine/partials/overlay"
	"github.com/gordian-engine/partials/pmerkle/pmblake3"
	"github.com/gordian-engine/partials/pmerkle/pmsha256"
	"github.com/gordian-engine/partials/pnode"
	"github.com/gordian-engine/partials/proof"
	"github.com/stretchr/testify/require"
)

func path(t *testing.T, s string) pnode.Path {
	t.Helper()
	p, err := pnode.ParsePath(s)
	require.NoError(t, err)
	return p
}

// randomTree fills every leaf of s with pseudorandom data.
func randomTree(t *testing.T, s overlay.Shape) *chunktree.Tree {
	t.Helper()

	b, err := chunktree.NewBuilder(s)
	require.NoError(t, err)

	chunks := ptest.RandomChunksForTest(t, int(overlay.LeafCount(s)))
	var i int
	require.NoError(t, overlay.WalkLeaves(s, func(idx uint64) bool {
		require.NoError(t, b.SetLeaf(idx, chunks[i]))
		i++
		return true
	}))

	return b.Build(pmsha256.Hasher{})
}

func newState(t *testing.T) *overlay.Container {
	t.Helper()

	cp, err := overlay.NewContainerBuilder("Checkpoint").
		Field("epoch", overlay.Uint64).
		Field("root", overlay.NewVector(overlay.Uint8, 32)).
		Build()
	require.NoError(t, err)

	s, err := overlay.NewContainerBuilder("State").
		Field("slot", overlay.Uint64).
		Field("balances", overlay.NewList(overlay.Uint64, 40)).
		Field("checkpoints", overlay.NewList(cp, 4)).
		Field("history", overlay.NewVector(overlay.NewList(overlay.Uint256, 3), 3)).
		Field("flags", overlay.NewVector(overlay.Bool, 5)).
		Build()
	require.NoError(t, err)
	return s
}

func TestCoveringIndices(t *testing.T) {
	t.Parallel()

	// list<uint256, 8>, element 0 at 15:
	// siblings 16, then 8, 4, and the length at 2.
	require.Equal(t, []uint64{2, 4, 8, 16}, proof.CoveringIndices([]uint64{15}))

	// Adjacent leaves share every ancestor.
	require.Equal(t, []uint64{2, 4, 8}, proof.CoveringIndices([]uint64{15, 16}))

	// Leaves on both sides of the root.
	require.Equal(t, []uint64{4, 6, 8, 11}, proof.CoveringIndices([]uint64{7, 12}))

	// A leaf and its own ancestor: the ancestor is derivable, not a helper.
	require.Equal(t, []uint64{2, 4, 8}, proof.CoveringIndices([]uint64{3, 7}))

	// The root alone needs nothing else.
	require.Empty(t, proof.CoveringIndices([]uint64{0}))
	require.Empty(t, proof.CoveringIndices(nil))
}

func TestRequiredLeaves(t *testing.T) {
	t.Parallel()

	l := overlay.NewList(overlay.NewList(overlay.NewList(overlay.Uint256, 2), 2), 4)

	leaves, err := proof.RequiredLeaves(l, path(t, "0/1/0"), path(t, "3/len"), path(t, "0/1/0"))
	require.NoError(t, err)
	require.Equal(t, []uint64{22, 131}, leaves)

	// A nested list expands to all of its own leaves, length included.
	leaves, err = proof.RequiredLeaves(l, path(t, "1"))
	require.NoError(t, err)
	var want []uint64
	for _, sub := range []string{"1/0/0", "1/0/1", "1/0/len", "1/1/0", "1/1/1", "1/1/len", "1/len"} {
		n, err := l.GetNode(path(t, sub))
		require.NoError(t, err)
		want = append(want, n.NodeIndex())
	}
	require.ElementsMatch(t, want, leaves)

	_, err = proof.RequiredLeaves(l, path(t, "4"))
	var oob *pnode.IndexOutOfBoundsError
	require.ErrorAs(t, err, &oob)

	_, err = proof.RequiredLeaves(overlay.NewVector(overlay.NewVector(overlay.Uint256, 2*proof.MaxLeaves), 1), path(t, "0"))
	require.ErrorIs(t, err, proof.ErrTooManyLeaves)
}

func TestProve_minimal(t *testing.T) {
	t.Parallel()

	l := overlay.NewList(overlay.Uint256, 8)
	tree := randomTree(t, l)

	p := proof.NewProver(ptest.NewLogger(t), proof.ProverConfig{Shape: l, Store: tree})

	pr, err := p.Prove(path(t, "0"))
	require.NoError(t, err)
	require.Equal(t, []uint64{2, 4, 8, 15, 16}, pr.Indices())

	for _, idx := range pr.Indices() {
		c, err := tree.ReadChunk(idx)
		require.NoError(t, err)
		require.Equal(t, c, pr.Chunks[idx])
	}

	pr, err = p.Prove(path(t, "0"), path(t, "1"), path(t, "len"))
	require.NoError(t, err)
	require.Equal(t, []uint64{2, 4, 8, 15, 16}, pr.Indices())
}

func TestProveVerify_roundTrip(t *testing.T) {
	t.Parallel()

	s := newState(t)
	tree := randomTree(t, s)
	p := proof.NewProver(ptest.NewLogger(t), proof.ProverConfig{Shape: s, Store: tree})

	for _, ps := range []string{
		"slot",
		"balances",
		"balances/0",
		"balances/39",
		"balances/len",
		"checkpoints/2/epoch",
		"checkpoints/3/root/31",
		"checkpoints/1",
		"history/2/1",
		"history/0/len",
		"history",
		"flags/4",
	} {
		pp := path(t, ps)
		pr, err := p.Prove(pp)
		require.NoError(t, err, ps)
		require.NoError(t, proof.VerifyPaths(pmsha256.Hasher{}, s, pr, tree.Root(), pp), ps)

		// Any single flipped bit breaks verification.
		for _, idx := range pr.Indices() {
			bad := pr.Clone()
			c := bad.Chunks[idx]
			c[7] ^= 0x10
			bad.Chunks[idx] = c

			err := proof.VerifyPaths(pmsha256.Hasher{}, s, bad, tree.Root(), pp)
			require.ErrorIs(t, err, proof.ErrVerificationFailed, "%s: index %d", ps, idx)
			require.ErrorIs(t, err, proof.ErrRootMismatch, "%s: index %d", ps, idx)
		}
	}
}

func TestProveVerify_multiPath(t *testing.T) {
	t.Parallel()

	s := newState(t)
	tree := randomTree(t, s)
	p := proof.NewProver(ptest.NewLogger(t), proof.ProverConfig{Shape: s, Store: tree})

	paths := []pnode.Path{
		path(t, "slot"),
		path(t, "balances/3"),
		path(t, "balances/4"),
		path(t, "checkpoints/0/epoch"),
		path(t, "history/1"),
	}
	pr, err := p.Prove(paths...)
	require.NoError(t, err)
	require.NoError(t, proof.VerifyPaths(pmsha256.Hasher{}, s, pr, tree.Root(), paths...))

	// The combined proof is never larger than the separate proofs together.
	var separate int
	for _, pp := range paths {
		one, err := p.Prove(pp)
		require.NoError(t, err)
		separate += one.Len()
	}
	require.Less(t, pr.Len(), separate)

	// No chunk in the proof is derivable from others in it.
	for _, idx := range pr.Indices() {
		if idx == 0 {
			continue
		}
		l, r := 2*idx+1, 2*idx+2
		_, hasL := pr.Chunks[l]
		_, hasR := pr.Chunks[r]
		require.False(t, hasL && hasR, "index %d is derivable", idx)
	}
}

func TestVerify_failures(t *testing.T) {
	t.Parallel()

	l := overlay.NewList(overlay.Uint256, 8)
	tree := randomTree(t, l)
	p := proof.NewProver(ptest.NewLogger(t), proof.ProverConfig{Shape: l, Store: tree})
	var h pmsha256.Hasher

	pr, err := p.Prove(path(t, "3"))
	require.NoError(t, err)
	leaves := []uint64{18}
	require.NoError(t, proof.Verify(h, pr, tree.Root(), leaves))

	t.Run("missing leaf", func(t *testing.T) {
		t.Parallel()
		bad := pr.Clone()
		delete(bad.Chunks, 18)
		err := proof.Verify(h, bad, tree.Root(), leaves)
		require.ErrorIs(t, err, proof.ErrMissingLeaf)

		var ve *proof.VerificationError
		require.ErrorAs(t, err, &ve)
		require.Equal(t, uint64(18), ve.Index)
	})

	t.Run("missing sibling", func(t *testing.T) {
		t.Parallel()
		bad := pr.Clone()
		delete(bad.Chunks, 7)
		err := proof.Verify(h, bad, tree.Root(), leaves)
		require.ErrorIs(t, err, proof.ErrVerificationFailed)
		require.ErrorIs(t, err, proof.ErrIncompleteProof)
		require.False(t, errors.Is(err, proof.ErrRootMismatch))

		// The requested leaf is reported, not the stranded parent at 8.
		var ve *proof.VerificationError
		require.ErrorAs(t, err, &ve)
		require.Equal(t, uint64(18), ve.Index)
	})

	t.Run("second leaf cut off", func(t *testing.T) {
		t.Parallel()

		// Leaves 17 and 18 both reach the root through 8, so cutting 7
		// strands both; the first one requested is reported.
		bad := pr.Clone()
		delete(bad.Chunks, 7)
		err := proof.Verify(h, bad, tree.Root(), []uint64{17, 18})
		require.ErrorIs(t, err, proof.ErrIncompleteProof)

		var ve *proof.VerificationError
		require.ErrorAs(t, err, &ve)
		require.Equal(t, uint64(17), ve.Index)

		require.NoError(t, proof.Verify(h, pr, tree.Root(), []uint64{18, 17, 18}))
	})

	t.Run("wrong root", func(t *testing.T) {
		t.Parallel()
		root := tree.Root()
		root[0] ^= 1
		err := proof.Verify(h, pr, root, leaves)
		require.ErrorIs(t, err, proof.ErrRootMismatch)
		require.False(t, errors.Is(err, proof.ErrIncompleteProof))
	})

	t.Run("wrong hasher", func(t *testing.T) {
		t.Parallel()
		err := proof.Verify(pmblake3.Hasher{}, pr, tree.Root(), leaves)
		require.ErrorIs(t, err, proof.ErrRootMismatch)
	})

	t.Run("stray chunk", func(t *testing.T) {
		t.Parallel()
		bad := pr.Clone()
		bad.Chunks[30] = pnode.Chunk{9}
		err := proof.Verify(h, bad, tree.Root(), leaves)
		require.ErrorIs(t, err, proof.ErrIncompleteProof)

		var ve *proof.VerificationError
		require.ErrorAs(t, err, &ve)
		require.Equal(t, uint64(30), ve.Index)
	})

	t.Run("inconsistent supplied parent", func(t *testing.T) {
		t.Parallel()
		bad := pr.Clone()
		bad.Chunks[8] = pnode.Chunk{1}
		err := proof.Verify(h, bad, tree.Root(), leaves)
		require.ErrorIs(t, err, proof.ErrNodeMismatch)
	})

	t.Run("consistent supplied parent", func(t *testing.T) {
		t.Parallel()
		extra := pr.Clone()
		c, err := tree.ReadChunk(8)
		require.NoError(t, err)
		extra.Chunks[8] = c
		require.NoError(t, proof.Verify(h, extra, tree.Root(), leaves))
	})

	t.Run("empty proof", func(t *testing.T) {
		t.Parallel()
		err := proof.Verify(h, proof.Proof{}, tree.Root(), nil)
		require.ErrorIs(t, err, proof.ErrIncompleteProof)
	})

	// The input proof is never modified.
	require.Equal(t, []uint64{2, 4, 7, 17, 18}, pr.Indices())
}

func TestVerify_rootOnly(t *testing.T) {
	t.Parallel()

	v := overlay.NewVector(overlay.Uint8, 32)
	b, err := chunktree.NewBuilder(v)
	require.NoError(t, err)
	require.NoError(t, b.Set(path(t, "5"), []byte{0xff}))
	tree := b.Build(pmsha256.Hasher{})

	p := proof.NewProver(ptest.NewLogger(t), proof.ProverConfig{Shape: v, Store: tree})
	pr, err := p.Prove(path(t, "5"))
	require.NoError(t, err)
	require.Equal(t, []uint64{0}, pr.Indices())
	require.Equal(t, byte(0xff), pr.Chunks[0][5])

	require.NoError(t, proof.VerifyPaths(pmsha256.Hasher{}, v, pr, tree.Root(), path(t, "5")))
}

type failingStore struct{}

var errStore = errors.New("store unavailable")

func (failingStore) ReadChunk(uint64) (pnode.Chunk, error) {
	return pnode.Chunk{}, errStore
}

func TestProve_storeError(t *testing.T) {
	t.Parallel()

	p := proof.NewProver(ptest.NewLogger(t), proof.ProverConfig{
		Shape: overlay.NewList(overlay.Uint256, 8),
		Store: failingStore{},
	})
	_, err := p.Prove(path(t, "0"))
	require.ErrorIs(t, err, errStore)

	var ip *pnode.InvalidPathError
	_, err = p.Prove(path(t, "nope"))
	require.ErrorAs(t, err, &ip)
}
