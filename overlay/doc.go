// Package overlay resolves field paths against the static layout of
// chunked binary values.
//
// Every serializable shape ([Scalar], [*Vector], [*List], [*Container])
// reports the height of its conceptual Merkle tree
// and translates a [pnode.Path] into a [pnode.Node]:
// the node's generalized index, its byte span inside a chunk,
// and whether it is a packed scalar, a list length, or a nested subtree.
//
// Below is the tree of a variable-length list with capacity 4
// of 32-byte elements:
//
//	            root(0)
//	          /        \
//	    data(1)         len(2)
//	    /     \
//	   3       4
//	  / \     / \
//	 7   8   9   10          <= element leaves
//
// A fixed-length vector has the same layout without the length branch,
// so its data root is the root itself.
//
// Shapes are immutable once constructed
// and are safe to resolve from multiple goroutines.
package overlay
