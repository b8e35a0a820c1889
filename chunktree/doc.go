// Package chunktree is an in-memory chunk store
// holding every node of a value's conceptual Merkle tree.
//
// Populate a [Builder] with the value's leaf chunks,
// then call [*Builder.Build] to hash every internal node.
// The resulting [*Tree] serves chunks by generalized index
// to the proof engine.
//
// The whole tree is materialized, so it is only suitable
// for shapes whose leaf count is bounded by [MaxLeaves].
package chunktree
