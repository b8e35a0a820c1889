package proof

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/gordian-engine/partials/overlay"
	"github.com/gordian-engine/partials/pnode"
	"github.com/gordian-engine/partials/ptree"
)

// Proof is a set of chunks keyed by generalized index.
type Proof struct {
	Chunks map[uint64]pnode.Chunk
}

// Len is the number of chunks in the proof.
func (p Proof) Len() int { return len(p.Chunks) }

// Indices returns the proof's generalized indices in ascending order.
func (p Proof) Indices() []uint64 {
	return slices.Sorted(maps.Keys(p.Chunks))
}

// Clone returns a deep copy of p.
func (p Proof) Clone() Proof {
	return Proof{Chunks: maps.Clone(p.Chunks)}
}

// MaxLeaves bounds how many leaves a single set of paths may expand to.
const MaxLeaves = 1 << 20

var ErrTooManyLeaves = errors.New("requested paths expand to too many leaves")

// RequiredLeaves resolves every path against s
// and returns the generalized indices whose chunks a proof must reveal,
// sorted and without duplicates.
//
// A path ending on a scalar or a list length contributes its own chunk.
// A path ending on a nested shape contributes every leaf
// of that shape's tree, as reported by [overlay.WalkLeaves].
func RequiredLeaves(s overlay.Shape, paths ...pnode.Path) ([]uint64, error) {
	seen := make(map[uint64]struct{}, len(paths))
	for _, p := range paths {
		n, err := s.GetNode(p)
		if err != nil {
			return nil, fmt.Errorf("resolving path %s: %w", p, err)
		}

		c, ok := n.(pnode.Composite)
		if !ok {
			seen[n.NodeIndex()] = struct{}{}
			continue
		}

		sub, err := overlay.ShapeAt(s, p)
		if err != nil {
			return nil, fmt.Errorf("resolving shape at %s: %w", p, err)
		}
		if n := uint64(len(seen)); n > MaxLeaves || overlay.LeafCount(sub) > MaxLeaves-n {
			return nil, fmt.Errorf("%w: path %s", ErrTooManyLeaves, p)
		}

		var remapErr error
		if err := overlay.WalkLeaves(sub, func(local uint64) bool {
			idx, ok := ptree.RemapChecked(c.Index, local)
			if !ok {
				remapErr = pnode.ErrIndexOverflow
				return false
			}
			seen[idx] = struct{}{}
			return true
		}); err != nil {
			return nil, fmt.Errorf("expanding path %s: %w", p, err)
		}
		if remapErr != nil {
			return nil, fmt.Errorf("expanding path %s: %w", p, remapErr)
		}
	}

	return slices.Sorted(maps.Keys(seen)), nil
}

// CoveringIndices returns the helper indices a proof needs
// alongside leaves to hash up to the root, in ascending order.
//
// A helper is the sibling of a leaf or of a leaf's ancestor,
// that is itself neither a leaf nor an ancestor of one.
// Nodes derivable from other chunks are never included,
// so the result is the minimal covering set.
func CoveringIndices(leaves []uint64) []uint64 {
	onPath := make(map[uint64]struct{}, len(leaves)*2)
	for _, leaf := range leaves {
		for n := leaf; ; n = ptree.Parent(n) {
			if _, ok := onPath[n]; ok {
				// Everything above was added with n.
				break
			}
			onPath[n] = struct{}{}
			if n == 0 {
				break
			}
		}
	}

	var helpers []uint64
	for n := range onPath {
		if n == 0 {
			continue
		}
		if _, ok := onPath[ptree.Sibling(n)]; !ok {
			helpers = append(helpers, ptree.Sibling(n))
		}
	}
	slices.Sort(helpers)
	return helpers
}
