// Package ptree contains the integer arithmetic for addressing nodes
// of a conceptual complete binary tree by generalized index.
//
// Generalized indices are 0-indexed in level order:
// the root is 0, and the children of node i are 2i+1 and 2i+2.
//
//	       0
//	    /     \
//	   1       2
//	  / \     / \
//	 3   4   5   6
//
// A shape nested inside a parent is addressed in its own local space
// (its root is 0) and then moved into the parent's space with
// [RemapIntoAmbient], using the parent's leaf that anchors the subtree.
package ptree
