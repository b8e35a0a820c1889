// Package partials is the root of a library for partial Merkle proofs
// over chunked binary values with a statically known layout,
// in the style of SSZ merkleization.
//
// The subpackages split the work:
//
//   - ptree: generalized index arithmetic.
//   - pnode: chunks, paths and resolved node descriptors.
//   - overlay: shapes (scalars, vectors, lists, containers)
//     that resolve a path to the generalized index of its chunk.
//   - pmerkle: the node hash, with SHA256 and BLAKE3 implementations.
//   - chunktree: an in-memory store of every chunk of a value.
//   - proof: building and verifying proofs of selected paths.
//   - pwire: the binary encoding of proofs, and erasure-coded shards of it.
//   - pschema: shapes declared in YAML.
//   - pquic: requesting and serving proofs over QUIC.
//
// The partials command exposes resolution and verification on the command line.
package partials
