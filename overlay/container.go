package overlay

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gordian-engine/partials/pnode"
	"github.com/gordian-engine/partials/ptree"
)

// Field is a named member of a [Container].
type Field struct {
	Name  string
	Shape Shape
}

// Container is an ordered record of named fields of heterogeneous shapes.
//
// Every field occupies its own leaf, in declaration order,
// so field i sits at the i-th leaf of a tree
// with NextPowerOfTwo(len(fields)) leaves.
// Scalar fields are never packed together.
//
// Build containers with [NewContainerBuilder].
type Container struct {
	name   string
	fields []Field
	byName map[string]int
	height uint8
}

func (c *Container) Name() string { return c.name }

// Fields returns a copy of the container's fields.
func (c *Container) Fields() []Field {
	out := make([]Field, len(c.fields))
	copy(out, c.fields)
	return out
}

// FieldIndex returns the declaration position of the named field.
func (c *Container) FieldIndex(name string) (int, bool) {
	i, ok := c.byName[name]
	return i, ok
}

func (c *Container) Height() uint8 { return c.height }

func (c *Container) GetNode(path pnode.Path) (pnode.Node, error) {
	if len(path) == 0 {
		return nil, pnode.ErrEmptyPath
	}

	name, ok := path[0].Name()
	if !ok {
		return nil, &pnode.InvalidPathError{Selector: path[0]}
	}
	i, ok := c.byName[name]
	if !ok {
		return nil, &pnode.InvalidPathError{Selector: path[0]}
	}

	leaf := c.fieldLeaf(i)
	f := c.fields[i]

	if len(path) == 1 {
		if !isPrimitive(f.Shape) {
			return pnode.Composite{
				Ident:  f.Name,
				Index:  leaf,
				Height: f.Shape.Height(),
			}, nil
		}
		return pnode.PrimitiveSet{{
			Ident: f.Name,
			Index: leaf,
			Size:  uint8(f.Shape.packedSize()),
		}}, nil
	}

	n, err := f.Shape.GetNode(path[1:])
	if err != nil {
		return nil, err
	}
	return remap(leaf, n)
}

// fieldLeaf is the local generalized index of the i-th field.
func (c *Container) fieldLeaf(i int) uint64 {
	return ptree.LeftmostLeaf(0, c.height) + uint64(i)
}

func (*Container) packedSize() int { return pnode.ChunkSize }

func (c *Container) String() string { return c.name }

// ContainerBuilder collects the fields of a [Container].
type ContainerBuilder struct {
	name   string
	fields []Field
}

// NewContainerBuilder starts a container with the given name.
func NewContainerBuilder(name string) *ContainerBuilder {
	return &ContainerBuilder{name: name}
}

// Field appends a field and returns b, for chaining.
func (b *ContainerBuilder) Field(name string, s Shape) *ContainerBuilder {
	b.fields = append(b.fields, Field{Name: name, Shape: s})
	return b
}

var ErrNoFields = errors.New("container has no fields")

// InvalidFieldError is returned from [*ContainerBuilder.Build]
// for a field that cannot be part of a container.
type InvalidFieldError struct {
	Container string
	Field     string
	Reason    string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("container %s: field %q: %s", e.Container, e.Field, e.Reason)
}

// Build validates the collected fields and returns the container.
// Field names must be non-empty, unique, free of '/', and not purely numeric
// (numeric path segments always parse as ordinals).
func (b *ContainerBuilder) Build() (*Container, error) {
	if len(b.fields) == 0 {
		return nil, fmt.Errorf("container %s: %w", b.name, ErrNoFields)
	}

	byName := make(map[string]int, len(b.fields))
	for i, f := range b.fields {
		switch {
		case f.Name == "":
			return nil, &InvalidFieldError{Container: b.name, Field: f.Name, Reason: "empty name"}
		case strings.Trim(f.Name, "0123456789") == "":
			return nil, &InvalidFieldError{Container: b.name, Field: f.Name, Reason: "numeric name"}
		case strings.Contains(f.Name, "/"):
			return nil, &InvalidFieldError{Container: b.name, Field: f.Name, Reason: "name contains '/'"}
		case f.Shape == nil:
			return nil, &InvalidFieldError{Container: b.name, Field: f.Name, Reason: "nil shape"}
		}
		if _, dup := byName[f.Name]; dup {
			return nil, &InvalidFieldError{Container: b.name, Field: f.Name, Reason: "duplicate name"}
		}
		byName[f.Name] = i
	}

	fields := make([]Field, len(b.fields))
	copy(fields, b.fields)

	return &Container{
		name:   b.name,
		fields: fields,
		byName: byName,
		height: ptree.Log2(ptree.NextPowerOfTwo(uint64(len(fields)))),
	}, nil
}
