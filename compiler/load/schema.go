package load

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Kind is the multiplicity of a schema property.
type Kind uint8

// Property multiplicities. Exactly one applies to a property.
const (
	Single Kind = iota
	Optional
	Repeated
	Predicate
)

// String implements the fmt.Stringer interface.
func (k Kind) String() string {
	switch k {
	case Single:
		return "single"
	case Optional:
		return "optional"
	case Repeated:
		return "repeated"
	case Predicate:
		return "predicate"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Class represents a schema class that was loaded from a schema file.
type Class struct {
	Name       string          `json:"name,omitempty"`
	Bases      []string        `json:"bases,omitempty"`
	Properties []*Property     `json:"properties,omitempty"`
	Pragmas    []string        `json:"pragmas,omitempty"`
	Dir        string          `json:"dir,omitempty"`
	Derived    map[string]bool `json:"-"`
}

// Property represents a property of a schema class.
type Property struct {
	Name    string   `json:"name,omitempty"`
	Type    string   `json:"type,omitempty"`
	Kind    Kind     `json:"kind,omitempty"`
	Pragmas []string `json:"pragmas,omitempty"`
	// Child marks the property as an edge to a child node, used to
	// resolve the immediate parent of an element.
	Child bool `json:"child,omitempty"`
}

// HasPragma reports if the class carries the given pragma.
func (c *Class) HasPragma(name string) bool {
	return slices.Contains(c.Pragmas, name)
}

// HasPragma reports if the property carries the given pragma.
func (p *Property) HasPragma(name string) bool {
	return slices.Contains(p.Pragmas, name)
}

// ErrInvalidSchema is matched by all errors returned by the loader.
var ErrInvalidSchema = errors.New("qlgen: invalid schema")

// Error describes a schema file that cannot be loaded.
type Error struct {
	Class    string
	Property string
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("qlgen: schema")
	if e.Class != "" {
		b.WriteString(" class ")
		b.WriteString(e.Class)
	}
	if e.Property != "" {
		b.WriteString(" property ")
		b.WriteString(e.Property)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches ErrInvalidSchema.
func (e *Error) Is(target error) bool {
	return target == ErrInvalidSchema
}

// Link fills the Derived set of every class and checks that the
// inheritance graph only references known classes and is acyclic.
func Link(classes []*Class) error {
	lookup := make(map[string]*Class, len(classes))
	for _, c := range classes {
		if _, ok := lookup[c.Name]; ok {
			return &Error{Class: c.Name, Message: "duplicate class"}
		}
		lookup[c.Name] = c
		c.Derived = make(map[string]bool)
	}
	for _, c := range classes {
		for _, b := range c.Bases {
			base, ok := lookup[b]
			if !ok {
				return &Error{Class: c.Name, Message: fmt.Sprintf("unknown base class %q", b)}
			}
			base.Derived[c.Name] = true
		}
	}
	const (
		visiting = iota + 1
		done
	)
	state := make(map[string]int, len(classes))
	var visit func(c *Class, path []string) error
	visit = func(c *Class, path []string) error {
		switch state[c.Name] {
		case done:
			return nil
		case visiting:
			return &Error{Class: c.Name, Message: "inheritance cycle " + strings.Join(append(path, c.Name), " -> ")}
		}
		state[c.Name] = visiting
		for _, b := range c.Bases {
			if err := visit(lookup[b], append(path, c.Name)); err != nil {
				return err
			}
		}
		state[c.Name] = done
		return nil
	}
	for _, c := range classes {
		if err := visit(c, nil); err != nil {
			return err
		}
	}
	return nil
}
