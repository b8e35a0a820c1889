// Package pnode defines the values exchanged between the overlay,
// the proof engine and the wire format:
// 32-byte chunks, path selectors, and resolved node descriptors.
//
// Nothing in this package performs resolution;
// see the overlay package for that.
package pnode
