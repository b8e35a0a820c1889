package pnode

import (
	"cmp"
	"strconv"
	"strings"
)

// ChunkSize is the size in bytes of every tree node.
const ChunkSize = 32

// Chunk is a single 32-byte node of a Merkle tree.
type Chunk [ChunkSize]byte

// LengthName is the reserved selector name
// that addresses the element count of a variable-length list.
const LengthName = "len"

// Selector is one element of a [Path].
// It is either an ordinal, selecting an element of a vector or list,
// or a name, selecting a container field or a list's length.
//
// The zero value is the ordinal 0.
type Selector struct {
	name    string
	ordinal uint64
	isName  bool
}

// Ordinal returns a selector for the element at position i.
func Ordinal(i uint64) Selector {
	return Selector{ordinal: i}
}

// Name returns a selector for the field with the given name.
func Name(name string) Selector {
	return Selector{name: name, isName: true}
}

// IsName reports whether s selects by name.
func (s Selector) IsName() bool { return s.isName }

// Ordinal returns the position held by s,
// and false if s is a name selector.
func (s Selector) Ordinal() (uint64, bool) {
	return s.ordinal, !s.isName
}

// Name returns the name held by s,
// and false if s is an ordinal selector.
func (s Selector) Name() (string, bool) {
	return s.name, s.isName
}

func (s Selector) String() string {
	if s.isName {
		return strconv.Quote(s.name)
	}
	return strconv.FormatUint(s.ordinal, 10)
}

// Compare orders selectors: ordinals before names,
// ordinals numerically, names lexically.
func (s Selector) Compare(o Selector) int {
	if s.isName != o.isName {
		if s.isName {
			return 1
		}
		return -1
	}
	if s.isName {
		return strings.Compare(s.name, o.name)
	}
	return cmp.Compare(s.ordinal, o.ordinal)
}

// Path is a sequence of selectors, outermost first.
type Path []Selector

// ParsePath parses a slash-separated path such as "0/1/len" or "body/slot".
// Segments made only of decimal digits are ordinals;
// every other segment is a name.
// The empty string parses to the empty path.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return Path{}, nil
	}

	parts := strings.Split(s, "/")
	p := make(Path, len(parts))
	for i, part := range parts {
		if part == "" {
			return nil, &ParseError{Input: s, Segment: i}
		}
		if isDigits(part) {
			n, err := strconv.ParseUint(part, 10, 64)
			if err != nil {
				return nil, &ParseError{Input: s, Segment: i, Err: err}
			}
			p[i] = Ordinal(n)
			continue
		}
		p[i] = Name(part)
	}
	return p, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// String formats p in the form accepted by [ParsePath].
func (p Path) String() string {
	var b strings.Builder
	for i, s := range p {
		if i > 0 {
			b.WriteByte('/')
		}
		if s.isName {
			b.WriteString(s.name)
		} else {
			b.WriteString(strconv.FormatUint(s.ordinal, 10))
		}
	}
	return b.String()
}

// Equal reports whether p and o hold the same selectors.
func (p Path) Equal(o Path) bool {
	return ComparePaths(p, o) == 0
}

// ComparePaths orders paths selector by selector;
// a path sorts before any longer path it is a prefix of.
func ComparePaths(a, b Path) int {
	for i := range min(len(a), len(b)) {
		if c := a[i].Compare(b[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}
