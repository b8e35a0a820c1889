package proof

import (
	"fmt"
	"log/slog"

	"github.com/gordian-engine/partials/overlay"
	"github.com/gordian-engine/partials/pnode"
)

// ChunkReader reads chunks of a concrete value by generalized index.
// The proof engine never writes through it.
type ChunkReader interface {
	ReadChunk(idx uint64) (pnode.Chunk, error)
}

// ProverConfig is the configuration for [NewProver].
type ProverConfig struct {
	// Shape of the value the store holds.
	Shape overlay.Shape

	// Store serves every node of the value's tree.
	// It must not be modified while the Prover uses it.
	Store ChunkReader
}

// Prover builds proofs over one value.
// It is safe for concurrent use if its store is.
type Prover struct {
	log *slog.Logger

	shape overlay.Shape
	store ChunkReader
}

func NewProver(log *slog.Logger, cfg ProverConfig) *Prover {
	if cfg.Shape == nil {
		panic(fmt.Errorf("BUG: ProverConfig.Shape must not be nil"))
	}
	if cfg.Store == nil {
		panic(fmt.Errorf("BUG: ProverConfig.Store must not be nil"))
	}

	return &Prover{
		log:   log,
		shape: cfg.Shape,
		store: cfg.Store,
	}
}

// Prove returns a proof revealing the chunks selected by paths,
// together with the helper chunks needed to recompute the root.
func (p *Prover) Prove(paths ...pnode.Path) (Proof, error) {
	leaves, err := RequiredLeaves(p.shape, paths...)
	if err != nil {
		return Proof{}, err
	}
	helpers := CoveringIndices(leaves)

	chunks := make(map[uint64]pnode.Chunk, len(leaves)+len(helpers))
	for _, set := range [][]uint64{leaves, helpers} {
		for _, idx := range set {
			c, err := p.store.ReadChunk(idx)
			if err != nil {
				return Proof{}, fmt.Errorf("reading chunk %d: %w", idx, err)
			}
			chunks[idx] = c
		}
	}

	p.log.Debug(
		"Built proof",
		"n_paths", len(paths),
		"n_leaves", len(leaves),
		"n_helpers", len(helpers),
	)

	return Proof{Chunks: chunks}, nil
}
