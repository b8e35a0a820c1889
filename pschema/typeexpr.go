package pschema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gordian-engine/partials/overlay"
)

var scalars = map[string]overlay.Scalar{
	"bool":    overlay.Bool,
	"uint8":   overlay.Uint8,
	"uint16":  overlay.Uint16,
	"uint32":  overlay.Uint32,
	"uint64":  overlay.Uint64,
	"uint128": overlay.Uint128,
	"uint256": overlay.Uint256,
}

// SyntaxError reports a malformed type expression.
type SyntaxError struct {
	Expr string
	Pos  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error in type %q at offset %d: %s", e.Expr, e.Pos, e.Msg)
}

// typeParser reads one type expression.
// Named types are handed to resolve, which returns the shape for a
// container name or an error.
type typeParser struct {
	expr    string
	pos     int
	resolve func(name string) (overlay.Shape, error)
}

func parseType(expr string, resolve func(string) (overlay.Shape, error)) (overlay.Shape, error) {
	p := typeParser{expr: expr, resolve: resolve}
	s, err := p.parse()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.expr) {
		return nil, p.errorf("unexpected %q", p.expr[p.pos:])
	}
	return s, nil
}

func (p *typeParser) parse() (overlay.Shape, error) {
	p.skipSpace()
	start := p.pos
	name := p.ident()
	if name == "" {
		return nil, p.errorf("expected type name")
	}

	switch name {
	case "vector", "list":
		p.skipSpace()
		if !p.consume('<') {
			return nil, p.errorf("expected '<' after %s", name)
		}
		elem, err := p.parse()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if !p.consume(',') {
			return nil, p.errorf("expected ','")
		}
		p.skipSpace()
		n, err := p.number()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if !p.consume('>') {
			return nil, p.errorf("expected '>'")
		}
		if err := overlay.CheckCollection(elem, n); err != nil {
			return nil, &SyntaxError{Expr: p.expr, Pos: start, Msg: err.Error()}
		}
		if name == "vector" {
			return overlay.NewVector(elem, n), nil
		}
		return overlay.NewList(elem, n), nil
	}

	if s, ok := scalars[name]; ok {
		return s, nil
	}
	return p.resolve(name)
}

func (p *typeParser) ident() string {
	start := p.pos
	for p.pos < len(p.expr) {
		c := p.expr[p.pos]
		if c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') ||
			(p.pos > start && '0' <= c && c <= '9') {
			p.pos++
			continue
		}
		break
	}
	return p.expr[start:p.pos]
}

func (p *typeParser) number() (uint64, error) {
	start := p.pos
	for p.pos < len(p.expr) && '0' <= p.expr[p.pos] && p.expr[p.pos] <= '9' {
		p.pos++
	}
	if start == p.pos {
		return 0, p.errorf("expected length")
	}
	n, err := strconv.ParseUint(p.expr[start:p.pos], 10, 64)
	if err != nil {
		return 0, &SyntaxError{Expr: p.expr, Pos: start, Msg: err.Error()}
	}
	return n, nil
}

func (p *typeParser) consume(c byte) bool {
	if p.pos < len(p.expr) && p.expr[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.expr) && strings.IndexByte(" \t", p.expr[p.pos]) >= 0 {
		p.pos++
	}
}

func (p *typeParser) errorf(format string, args ...any) *SyntaxError {
	return &SyntaxError{Expr: p.expr, Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

// ParseType parses a type expression that uses no containers.
func ParseType(expr string) (overlay.Shape, error) {
	return parseType(expr, func(name string) (overlay.Shape, error) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
	})
}
