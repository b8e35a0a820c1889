package pwire

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/klauspost/reedsolomon"
)

// maxShards is the most shards a single Reed-Solomon code over GF(2^8) supports.
const maxShards = 256

// ShardConfig is the configuration for [Shard].
type ShardConfig struct {
	// MaxShardSize is the largest size in bytes of a single shard.
	MaxShardSize int

	// ParityRatio is the desired ratio of parity shards to data shards.
	// The parity count is rounded down, but there is always at least one.
	ParityRatio float32
}

// Shards is an encoded proof split into erasure-coded pieces.
type Shards struct {
	// The number of data and parity shards.
	NumData, NumParity int

	// Size is the length of the encoded proof,
	// so that padding in the final data shard can be dropped.
	Size int

	// Data shards followed by parity shards.
	// Any NumParity of them may be set to nil before [Reassemble].
	Shards [][]byte
}

var ErrTooManyShards = errors.New("encoded proof needs too many shards")

// Shard splits an encoded proof, such as the output of [Marshal],
// into data and parity shards.
// Any NumData of the resulting shards are enough to restore it.
func Shard(encoded []byte, cfg ShardConfig) (Shards, error) {
	if cfg.MaxShardSize <= 0 {
		panic(fmt.Errorf(
			"BUG: MaxShardSize must be positive (got %d)", cfg.MaxShardSize,
		))
	}
	if cfg.ParityRatio < 0 {
		panic(fmt.Errorf(
			"BUG: ParityRatio must be non-negative (got %g)", cfg.ParityRatio,
		))
	}
	if len(encoded) == 0 {
		return Shards{}, fmt.Errorf("%w: nothing to shard", ErrMalformedProof)
	}

	nData := len(encoded) / cfg.MaxShardSize
	if len(encoded)%cfg.MaxShardSize > 0 {
		nData++
	}
	nParity := max(1, int(cfg.ParityRatio*float32(nData)))

	if nData+nParity > maxShards {
		return Shards{}, fmt.Errorf(
			"%w: %d data and %d parity shards, limit is %d",
			ErrTooManyShards, nData, nParity, maxShards,
		)
	}

	enc, err := reedsolomon.New(nData, nParity)
	if err != nil {
		return Shards{}, fmt.Errorf("failed to build Reed-Solomon encoder: %w", err)
	}

	// Split may reuse encoded as backing storage, so work on a copy.
	shards, err := enc.Split(bytes.Clone(encoded))
	if err != nil {
		return Shards{}, fmt.Errorf("failed to split encoded proof: %w", err)
	}
	if err := enc.Encode(shards); err != nil {
		return Shards{}, fmt.Errorf("failed to erasure-code proof: %w", err)
	}

	return Shards{
		NumData:   nData,
		NumParity: nParity,
		Size:      len(encoded),
		Shards:    shards,
	}, nil
}

// Reassemble restores the encoded proof from s,
// reconstructing any missing data shards from the parity shards.
// Missing shards are nil entries in s.Shards.
// s.Shards may be modified.
func Reassemble(s Shards) ([]byte, error) {
	if len(s.Shards) != s.NumData+s.NumParity {
		return nil, fmt.Errorf(
			"%w: got %d shards, want %d",
			ErrMalformedProof, len(s.Shards), s.NumData+s.NumParity,
		)
	}

	if s.NumData <= 0 || s.NumParity <= 0 || s.NumData+s.NumParity > maxShards {
		return nil, fmt.Errorf(
			"%w: invalid shard counts (%d data, %d parity)",
			ErrMalformedProof, s.NumData, s.NumParity,
		)
	}
	if s.Size < 0 {
		return nil, fmt.Errorf("%w: negative size %d", ErrMalformedProof, s.Size)
	}

	enc, err := reedsolomon.New(s.NumData, s.NumParity)
	if err != nil {
		return nil, fmt.Errorf("%w: building Reed-Solomon decoder: %w", ErrMalformedProof, err)
	}

	if err := enc.ReconstructData(s.Shards); err != nil {
		return nil, fmt.Errorf("%w: reconstructing shards: %w", ErrMalformedProof, err)
	}

	var avail int
	for _, sh := range s.Shards[:s.NumData] {
		avail += len(sh)
	}
	if s.Size > avail {
		return nil, fmt.Errorf(
			"%w: size %d exceeds %d bytes of data shards", ErrMalformedProof, s.Size, avail,
		)
	}

	var buf bytes.Buffer
	buf.Grow(s.Size)
	if err := enc.Join(&buf, s.Shards, s.Size); err != nil {
		return nil, fmt.Errorf("%w: joining shards: %w", ErrMalformedProof, err)
	}
	return buf.Bytes(), nil
}
