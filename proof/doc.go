// Package proof builds and verifies partial Merkle proofs.
//
// A [Proof] maps generalized indices to chunks.
// It holds the chunks of every requested leaf,
// plus the minimal set of helper chunks (siblings along the way to the root)
// needed to recompute the root hash.
//
// Use a [*Prover] over a chunk store to build proofs,
// and [Verify] or [VerifyPaths] to check them against a trusted root.
package proof
