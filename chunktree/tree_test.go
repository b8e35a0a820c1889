package chunktree_test

import (
	"encoding/binary"
	"testing"

	"github.com/gordian-engine/partials/chunktree"
	"github.com/gordian-engine/partials/internal/ptest"
	"github.com/gordian-engine/partials/overlay"
	"github.com/gordian-engine/partials/pmerkle/pmsha256"
	"github.com/gordian-engine/partials/pnode"
	"github.com/stretchr/testify/require"
)

func le64(n uint64) []byte {
	return binary.LittleEndian.AppendUint64(nil, n)
}

func TestBuild_list(t *testing.T) {
	t.Parallel()

	// list<uint64, 8>: two data chunks (3, 4) and the length (2).
	l := overlay.NewList(overlay.Uint64, 8)
	b, err := chunktree.NewBuilder(l)
	require.NoError(t, err)

	require.NoError(t, b.Set(pnode.Path{pnode.Ordinal(0)}, le64(10)))
	require.NoError(t, b.Set(pnode.Path{pnode.Ordinal(5)}, le64(55)))
	require.NoError(t, b.SetLength(pnode.Path{pnode.Name("len")}, 6))

	var h pmsha256.Hasher
	tree := b.Build(h)
	require.Equal(t, 5, tree.Len())

	var c3, c4, c2 pnode.Chunk
	binary.LittleEndian.PutUint64(c3[0:], 10)
	binary.LittleEndian.PutUint64(c4[8:], 55)
	binary.LittleEndian.PutUint64(c2[0:], 6)

	want := h.Combine(h.Combine(c3, c4), c2)
	require.Equal(t, want, tree.Root())

	got, err := tree.ReadChunk(4)
	require.NoError(t, err)
	require.Equal(t, c4, got)

	_, err = tree.ReadChunk(5)
	var nf chunktree.ChunkNotFoundError
	require.ErrorAs(t, err, &nf)
	require.Equal(t, uint64(5), nf.Index)
}

func TestBuild_scalar(t *testing.T) {
	t.Parallel()

	b, err := chunktree.NewBuilder(overlay.Uint32)
	require.NoError(t, err)
	require.NoError(t, b.Set(nil, []byte{1, 2, 3, 4}))

	tree := b.Build(pmsha256.Hasher{})
	require.Equal(t, 1, tree.Len())
	require.Equal(t, pnode.Chunk{1, 2, 3, 4}, tree.Root())
}

func TestBuild_nested(t *testing.T) {
	t.Parallel()

	s := overlay.NewList(overlay.NewList(overlay.NewList(overlay.Uint256, 2), 2), 4)
	b, err := chunktree.NewBuilder(s)
	require.NoError(t, err)

	chunks := ptest.RandomChunksForTest(t, 3)
	require.NoError(t, b.SetLeaf(131, chunks[0]))
	require.NoError(t, b.Set(pnode.Path{pnode.Ordinal(3), pnode.Ordinal(0), pnode.Ordinal(1)}, chunks[1][:]))
	require.NoError(t, b.SetLength(pnode.Path{pnode.Ordinal(3), pnode.Name("len")}, 2))

	tree := b.Build(pmsha256.Hasher{})

	got, err := tree.ReadChunk(176)
	require.NoError(t, err)
	require.Equal(t, chunks[1], got)

	got, err = tree.ReadChunk(22)
	require.NoError(t, err)
	require.Equal(t, byte(2), got[0])

	// Building again from the same builder is deterministic.
	require.Equal(t, tree.Root(), b.Build(pmsha256.Hasher{}).Root())

	// A different leaf changes the root.
	require.NoError(t, b.SetLeaf(131, chunks[2]))
	require.NotEqual(t, tree.Root(), b.Build(pmsha256.Hasher{}).Root())
}

func TestBuilder_errors(t *testing.T) {
	t.Parallel()

	_, err := chunktree.NewBuilder(overlay.NewVector(overlay.Uint256, 2*chunktree.MaxLeaves))
	require.ErrorIs(t, err, chunktree.ErrTooManyLeaves)

	c, err := overlay.NewContainerBuilder("C").
		Field("a", overlay.Uint16).
		Field("b", overlay.NewList(overlay.Uint8, 4)).
		Build()
	require.NoError(t, err)

	b, err := chunktree.NewBuilder(c)
	require.NoError(t, err)

	// The container root and its list's data root are internal nodes.
	require.ErrorIs(t, b.SetLeaf(0, pnode.Chunk{}), chunktree.ErrNotALeaf)
	require.ErrorIs(t, b.Set(pnode.Path{pnode.Name("b")}, []byte{1}), chunktree.ErrNotALeaf)

	require.ErrorIs(t, b.Set(pnode.Path{pnode.Name("a")}, []byte{1}), chunktree.ErrValueSize)
	require.NoError(t, b.Set(pnode.Path{pnode.Name("a")}, []byte{1, 2}))

	require.Error(t, b.SetLength(pnode.Path{pnode.Name("a")}, 1))
	require.NoError(t, b.SetLength(pnode.Path{pnode.Name("b"), pnode.Name("len")}, 1))

	var ip *pnode.InvalidPathError
	require.ErrorAs(t, b.Set(pnode.Path{pnode.Name("c")}, nil), &ip)
}
