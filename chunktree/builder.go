package chunktree

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"

	"github.com/gordian-engine/partials/overlay"
	"github.com/gordian-engine/partials/pmerkle"
	"github.com/gordian-engine/partials/pnode"
	"github.com/gordian-engine/partials/ptree"
)

// MaxLeaves bounds the number of leaves a [Builder] materializes.
const MaxLeaves = 1 << 20

var (
	ErrTooManyLeaves = errors.New("shape has too many leaves to materialize")
	ErrNotALeaf      = errors.New("index is not a leaf of the shape")
	ErrValueSize     = errors.New("value does not match field size")
)

// Builder collects the leaf chunks of a value.
// Leaves that are never set stay zero.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	shape  overlay.Shape
	leaves map[uint64]pnode.Chunk
}

// NewBuilder returns a builder for a value of shape s,
// with every leaf zeroed.
func NewBuilder(s overlay.Shape) (*Builder, error) {
	n := overlay.LeafCount(s)
	if n > MaxLeaves {
		return nil, fmt.Errorf("%w: %d leaves (max %d)", ErrTooManyLeaves, n, MaxLeaves)
	}

	leaves := make(map[uint64]pnode.Chunk, n)
	if err := overlay.WalkLeaves(s, func(idx uint64) bool {
		leaves[idx] = pnode.Chunk{}
		return true
	}); err != nil {
		return nil, err
	}

	return &Builder{shape: s, leaves: leaves}, nil
}

// SetLeaf replaces the entire chunk at the leaf idx.
func (b *Builder) SetLeaf(idx uint64, c pnode.Chunk) error {
	if _, ok := b.leaves[idx]; !ok {
		return fmt.Errorf("%w: %d", ErrNotALeaf, idx)
	}
	b.leaves[idx] = c
	return nil
}

// SetPrimitive writes value into the byte span p describes.
// The other bytes of the chunk are left unchanged.
func (b *Builder) SetPrimitive(p pnode.Primitive, value []byte) error {
	if len(value) != int(p.Size) {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrValueSize, len(value), p.Size)
	}
	if int(p.Offset)+int(p.Size) > pnode.ChunkSize {
		return fmt.Errorf("%w: span [%d, %d) exceeds chunk", ErrValueSize, p.Offset, int(p.Offset)+int(p.Size))
	}

	c, ok := b.leaves[p.Index]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotALeaf, p.Index)
	}
	copy(c[p.Offset:], value)
	b.leaves[p.Index] = c
	return nil
}

// Set resolves path against the builder's shape
// and writes value into the scalar it selects.
// Values are written as given; callers choose the byte order
// (SSZ uses little-endian).
func (b *Builder) Set(path pnode.Path, value []byte) error {
	n, err := b.shape.GetNode(path)
	if err != nil {
		return err
	}

	set, ok := n.(pnode.PrimitiveSet)
	if !ok {
		return fmt.Errorf("%w: path %s resolves to %T", ErrNotALeaf, path, n)
	}

	var ident string
	if len(path) > 0 {
		last := path[len(path)-1]
		if name, ok := last.Name(); ok {
			ident = name
		} else {
			ord, _ := last.Ordinal()
			ident = strconv.FormatUint(ord, 10)
		}
	}

	p, ok := set.Member(ident)
	if !ok {
		panic(fmt.Errorf("BUG: resolved set for %s has no member %q", path, ident))
	}
	return b.SetPrimitive(p, value)
}

// SetLength resolves path, which must select a list's length,
// and stores n as a little-endian count.
func (b *Builder) SetLength(path pnode.Path, n uint64) error {
	node, err := b.shape.GetNode(path)
	if err != nil {
		return err
	}
	l, ok := node.(pnode.Length)
	if !ok {
		return fmt.Errorf("path %s does not select a length (got %T)", path, node)
	}

	var c pnode.Chunk
	binary.LittleEndian.PutUint64(c[:], n)
	return b.SetLeaf(l.Index, c)
}

// Build hashes every internal node with h and returns the finished tree.
// The builder may keep being modified and built again afterwards.
func (b *Builder) Build(h pmerkle.Hasher) *Tree {
	nodes := make(map[uint64]pnode.Chunk, 2*len(b.leaves))

	// Every internal node of the tree has two children,
	// so folding each level pairwise reaches the root.
	levels := make(map[uint8][]uint64)
	var maxDepth uint8
	for idx, c := range b.leaves {
		nodes[idx] = c
		d := ptree.Depth(idx)
		levels[d] = append(levels[d], idx)
		maxDepth = max(maxDepth, d)
	}

	for d := maxDepth; d > 0; d-- {
		for _, idx := range levels[d] {
			if !ptree.IsLeft(idx) {
				continue
			}
			right, ok := nodes[idx+1]
			if !ok {
				panic(fmt.Errorf("BUG: node %d has no right sibling", idx))
			}
			parent := ptree.Parent(idx)
			nodes[parent] = h.Combine(nodes[idx], right)
			levels[d-1] = append(levels[d-1], parent)
		}
	}

	return &Tree{shape: b.shape, nodes: nodes}
}
