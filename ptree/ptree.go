package ptree

import (
	"fmt"
	"math/bits"
)

// NextPowerOfTwo returns the smallest power of two that is at least n.
// Both 0 and 1 map to 1.
func NextPowerOfTwo(n uint64) uint64 {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len64(n-1)
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}

// Log2 returns the exponent of n, which must be a power of two.
// Callers are expected to normalize with [NextPowerOfTwo] first;
// any other input is a programming error and causes a panic.
func Log2(n uint64) uint8 {
	if !IsPowerOfTwo(n) {
		panic(fmt.Errorf("BUG: Log2 called with non-power of two %d", n))
	}
	return uint8(bits.TrailingZeros64(n))
}

// LeftmostLeaf returns the generalized index of the leftmost leaf
// of the subtree rooted at root with the given height.
func LeftmostLeaf(root uint64, height uint8) uint64 {
	return (root+1)<<height - 1
}

// Depth returns the depth of idx below the root; the root has depth 0.
func Depth(idx uint64) uint8 {
	return uint8(bits.Len64(idx+1) - 1)
}

// RemapIntoAmbient translates local, a generalized index in the space of
// a subtree, into the space of the enclosing tree
// where that subtree's root sits at anchor.
//
// The subtree's root (local 0) maps to anchor itself.
// A local node at depth d, at offset o within its level,
// maps to offset o within the level d steps below anchor.
//
// RemapIntoAmbient does not detect overflow; see [RemapChecked].
func RemapIntoAmbient(anchor, local uint64) uint64 {
	d := Depth(local)
	offset := local + 1 - 1<<d
	return (anchor+1)<<d - 1 + offset
}

// RemapChecked is like [RemapIntoAmbient],
// but it reports false if the result does not fit in a uint64.
func RemapChecked(anchor, local uint64) (uint64, bool) {
	if anchor == ^uint64(0) || local == ^uint64(0) {
		return 0, false
	}
	d := Depth(local)
	if bits.Len64(anchor+1)+int(d) > 64 {
		return 0, false
	}
	return RemapIntoAmbient(anchor, local), true
}

// Parent returns the parent of idx, which must not be the root.
func Parent(idx uint64) uint64 {
	if idx == 0 {
		panic(fmt.Errorf("BUG: the root has no parent"))
	}
	return (idx - 1) / 2
}

// IsLeft reports whether idx is the left child of its parent.
// The root is neither; IsLeft reports false for it.
func IsLeft(idx uint64) bool {
	return idx&1 == 1
}

// Sibling returns the other child of idx's parent.
// idx must not be the root.
func Sibling(idx uint64) uint64 {
	if idx == 0 {
		panic(fmt.Errorf("BUG: the root has no sibling"))
	}
	if IsLeft(idx) {
		return idx + 1
	}
	return idx - 1
}

// Children returns the left and right children of idx.
func Children(idx uint64) (left, right uint64) {
	return 2*idx + 1, 2*idx + 2
}
