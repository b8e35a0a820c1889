package proof

import (
	"errors"
	"fmt"
	"maps"

	"github.com/bits-and-blooms/bitset"
	"github.com/gordian-engine/partials/overlay"
	"github.com/gordian-engine/partials/pmerkle"
	"github.com/gordian-engine/partials/pnode"
	"github.com/gordian-engine/partials/ptree"
)

// ErrVerificationFailed matches every error returned from [Verify].
var ErrVerificationFailed = errors.New("proof verification failed")

var (
	// ErrMissingLeaf means a requested leaf was not in the proof.
	ErrMissingLeaf = errors.New("requested leaf absent from proof")

	// ErrIncompleteProof means a chunk could not be hashed up to the root
	// because its sibling was neither supplied nor derivable.
	ErrIncompleteProof = errors.New("incomplete proof")

	// ErrNodeMismatch means a supplied chunk disagreed
	// with the hash of its supplied children.
	ErrNodeMismatch = errors.New("supplied node does not match its children")

	// ErrRootMismatch means the recomputed root differed from the expected root.
	ErrRootMismatch = errors.New("root mismatch")
)

// VerificationError describes where verification stopped.
// It matches both [ErrVerificationFailed] and its cause with [errors.Is].
type VerificationError struct {
	Index uint64
	Err   error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("%v at index %d: %v", ErrVerificationFailed, e.Index, e.Err)
}

func (e *VerificationError) Unwrap() []error {
	return []error{ErrVerificationFailed, e.Err}
}

// Verify checks that p proves every index in leaves
// against the trusted root, using h to combine siblings.
//
// Chunks may have been supplied in any order.
// Verification folds every pair of sibling chunks into their parent
// until only the root remains; any chunk left over,
// because its sibling is missing, fails with [ErrIncompleteProof].
// That failure is distinct from [ErrRootMismatch] and [ErrNodeMismatch].
// When a requested leaf is cut off from the root,
// the error reports that leaf rather than the stranded ancestor.
//
// p is not modified.
func Verify(h pmerkle.Hasher, p Proof, root pnode.Chunk, leaves []uint64) error {
	// Positions in leaves of the requested leaves beneath each node.
	// Folding a pair moves its positions to the parent.
	pending := make(map[uint64][]uint, len(leaves))
	for i, idx := range leaves {
		if _, ok := p.Chunks[idx]; !ok {
			return &VerificationError{Index: idx, Err: ErrMissingLeaf}
		}
		pending[idx] = append(pending[idx], uint(i))
	}

	nodes := maps.Clone(p.Chunks)
	if nodes == nil {
		nodes = map[uint64]pnode.Chunk{}
	}

	// Parents always sit one level above their children,
	// so one pass from the deepest level upward folds everything foldable.
	levels := make(map[uint8][]uint64)
	var maxDepth uint8
	for idx := range nodes {
		d := ptree.Depth(idx)
		levels[d] = append(levels[d], idx)
		maxDepth = max(maxDepth, d)
	}

	for d := maxDepth; d > 0; d-- {
		for _, idx := range levels[d] {
			if !ptree.IsLeft(idx) {
				continue
			}
			left, ok := nodes[idx]
			if !ok {
				continue
			}
			right, ok := nodes[idx+1]
			if !ok {
				continue
			}

			parent := ptree.Parent(idx)
			sum := h.Combine(left, right)
			if supplied, ok := nodes[parent]; ok {
				if supplied != sum {
					return &VerificationError{Index: parent, Err: ErrNodeMismatch}
				}
			} else {
				nodes[parent] = sum
				levels[d-1] = append(levels[d-1], parent)
			}

			delete(nodes, idx)
			delete(nodes, idx+1)
			if len(pending[idx]) > 0 || len(pending[idx+1]) > 0 {
				pending[parent] = append(pending[parent], pending[idx]...)
				pending[parent] = append(pending[parent], pending[idx+1]...)
				delete(pending, idx)
				delete(pending, idx+1)
			}
		}
	}

	reached := bitset.MustNew(uint(len(leaves)))
	for _, i := range pending[0] {
		reached.Set(i)
	}
	if i, ok := reached.NextClear(0); ok && i < uint(len(leaves)) {
		return &VerificationError{Index: leaves[i], Err: ErrIncompleteProof}
	}

	got, ok := nodes[0]
	if !ok || len(nodes) > 1 {
		// Report the deepest stranded chunk.
		var stranded uint64
		for idx := range nodes {
			stranded = max(stranded, idx)
		}
		return &VerificationError{Index: stranded, Err: ErrIncompleteProof}
	}
	if got != root {
		return &VerificationError{Index: 0, Err: ErrRootMismatch}
	}
	return nil
}

// VerifyPaths resolves paths against s to find the required leaves,
// then verifies p against root with [Verify].
func VerifyPaths(
	h pmerkle.Hasher, s overlay.Shape, p Proof, root pnode.Chunk, paths ...pnode.Path,
) error {
	leaves, err := RequiredLeaves(s, paths...)
	if err != nil {
		return err
	}
	return Verify(h, p, root, leaves)
}
