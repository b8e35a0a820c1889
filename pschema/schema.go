package pschema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gordian-engine/partials/overlay"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownType     = errors.New("unknown type")
	ErrDuplicateType   = errors.New("duplicate type name")
	ErrCyclicContainer = errors.New("container refers to itself")
	ErrMissingRoot     = errors.New("schema has no root type")
)

// Schema is a resolved schema document.
type Schema struct {
	// Root is the shape of the schema's root type.
	Root overlay.Shape

	// Containers holds every declared container by name,
	// including those the root does not use.
	Containers map[string]*overlay.Container
}

type document struct {
	Root       string         `yaml:"root"`
	Containers []containerDoc `yaml:"containers"`
}

type containerDoc struct {
	Name   string     `yaml:"name"`
	Fields []fieldDoc `yaml:"fields"`
}

type fieldDoc struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Load reads and parses the schema file at path.
func Load(path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open schema: %w", err)
	}
	defer f.Close()

	s, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("loading schema %s: %w", path, err)
	}
	return s, nil
}

// Parse parses a schema document held in memory.
func Parse(b []byte) (*Schema, error) {
	return Decode(bytes.NewReader(b))
}

// Decode reads a single schema document from r.
// Unknown keys in the document are rejected.
func Decode(r io.Reader) (*Schema, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrMissingRoot
		}
		return nil, fmt.Errorf("failed to decode schema: %w", err)
	}

	return doc.resolve()
}

// resolver turns container declarations into shapes on demand,
// so declarations may appear in any order.
type resolver struct {
	decls    map[string]containerDoc
	done     map[string]*overlay.Container
	visiting map[string]bool
}

func (d document) resolve() (*Schema, error) {
	if d.Root == "" {
		return nil, ErrMissingRoot
	}

	r := resolver{
		decls:    make(map[string]containerDoc, len(d.Containers)),
		done:     make(map[string]*overlay.Container, len(d.Containers)),
		visiting: make(map[string]bool),
	}
	for _, c := range d.Containers {
		if p := (typeParser{expr: c.Name}); p.ident() != c.Name || c.Name == "" {
			return nil, &SyntaxError{Expr: c.Name, Pos: p.pos, Msg: "invalid container name"}
		}
		if _, ok := scalars[c.Name]; ok || c.Name == "vector" || c.Name == "list" {
			return nil, fmt.Errorf("%w: %q is reserved", ErrDuplicateType, c.Name)
		}
		if _, ok := r.decls[c.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateType, c.Name)
		}
		r.decls[c.Name] = c
	}

	// Resolve every declaration, not only those reachable from the root,
	// so that mistakes in unused containers are still reported.
	for _, c := range d.Containers {
		if _, err := r.container(c.Name); err != nil {
			return nil, err
		}
	}

	root, err := parseType(d.Root, r.shape)
	if err != nil {
		return nil, fmt.Errorf("root type: %w", err)
	}

	return &Schema{Root: root, Containers: r.done}, nil
}

func (r *resolver) shape(name string) (overlay.Shape, error) {
	return r.container(name)
}

func (r *resolver) container(name string) (*overlay.Container, error) {
	if c, ok := r.done[name]; ok {
		return c, nil
	}
	decl, ok := r.decls[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
	if r.visiting[name] {
		return nil, fmt.Errorf("%w: %q", ErrCyclicContainer, name)
	}
	r.visiting[name] = true
	defer delete(r.visiting, name)

	b := overlay.NewContainerBuilder(name)
	for _, f := range decl.Fields {
		s, err := parseType(f.Type, r.shape)
		if err != nil {
			return nil, fmt.Errorf("container %s field %s: %w", name, f.Name, err)
		}
		b.Field(f.Name, s)
	}
	c, err := b.Build()
	if err != nil {
		return nil, err
	}

	r.done[name] = c
	return c, nil
}
