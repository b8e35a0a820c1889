package pnode

import (
	"errors"
	"fmt"
)

// ErrEmptyPath is returned when a path runs out
// before resolution reaches a node that the path can end on.
var ErrEmptyPath = errors.New("empty path")

// ErrIndexOverflow is returned when a path is nested so deeply
// that its generalized index does not fit in 64 bits.
var ErrIndexOverflow = errors.New("generalized index overflows uint64")

// InvalidPathError is returned when a selector does not apply
// to the shape it is resolved against:
// the wrong selector kind, or an unknown name.
type InvalidPathError struct {
	Selector Selector
}

func (e *InvalidPathError) Error() string {
	return "invalid path selector " + e.Selector.String()
}

// IndexOutOfBoundsError is returned when an ordinal selector
// is not below the static capacity of a vector or list.
type IndexOutOfBoundsError struct {
	Ordinal uint64
}

func (e *IndexOutOfBoundsError) Error() string {
	return fmt.Sprintf("index %d out of bounds", e.Ordinal)
}

// ParseError is returned from [ParsePath] for malformed input.
type ParseError struct {
	Input   string
	Segment int
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed path %q at segment %d: %v", e.Input, e.Segment, e.Err)
	}
	return fmt.Sprintf("malformed path %q: empty segment %d", e.Input, e.Segment)
}

func (e *ParseError) Unwrap() error { return e.Err }
