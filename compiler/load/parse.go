package load

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Reserved class keys. Any other key of a class mapping declares a property.
const (
	keyExtends  = "_extends"
	keyDir      = "_dir"
	keyPragma   = "_pragma"
	keyChildren = "_children"
)

// Load reads and parses the schema file at the given path.
func Load(path string) ([]*Class, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	classes, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return classes, nil
}

// Parse decodes a YAML schema. Classes and properties keep the order
// in which they are declared in the document.
func Parse(data []byte) ([]*Class, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &Error{Message: "parse YAML", Cause: err}
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &Error{Message: fmt.Sprintf("line %d: expected a mapping of classes", root.Line)}
	}
	classes := make([]*Class, 0, len(root.Content)/2)
	for i := 0; i < len(root.Content); i += 2 {
		name, body := root.Content[i].Value, root.Content[i+1]
		if strings.HasPrefix(name, "_") {
			continue
		}
		c, err := parseClass(name, body)
		if err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	if err := Link(classes); err != nil {
		return nil, err
	}
	return classes, nil
}

func parseClass(name string, body *yaml.Node) (*Class, error) {
	c := &Class{Name: name}
	switch {
	case body.Kind == yaml.ScalarNode && body.Tag == "!!null":
		return c, nil
	case body.Kind != yaml.MappingNode:
		return nil, &Error{Class: name, Message: fmt.Sprintf("line %d: expected a mapping", body.Line)}
	}
	seen := make(map[string]bool)
	add := func(p *Property) error {
		if seen[p.Name] {
			return &Error{Class: name, Property: p.Name, Message: "duplicate property"}
		}
		seen[p.Name] = true
		c.Properties = append(c.Properties, p)
		return nil
	}
	for i := 0; i < len(body.Content); i += 2 {
		key, value := body.Content[i].Value, body.Content[i+1]
		switch key {
		case keyExtends:
			bases, err := stringList(value)
			if err != nil {
				return nil, &Error{Class: name, Message: keyExtends, Cause: err}
			}
			c.Bases = bases
		case keyDir:
			c.Dir = strings.Trim(value.Value, "/")
		case keyPragma:
			pragmas, err := stringList(value)
			if err != nil {
				return nil, &Error{Class: name, Message: keyPragma, Cause: err}
			}
			c.Pragmas = pragmas
		case keyChildren:
			if value.Kind != yaml.MappingNode {
				return nil, &Error{Class: name, Message: fmt.Sprintf("line %d: %s expects a mapping", value.Line, keyChildren)}
			}
			for j := 0; j < len(value.Content); j += 2 {
				p, err := parseProperty(name, value.Content[j].Value, value.Content[j+1])
				if err != nil {
					return nil, err
				}
				p.Child = true
				if err := add(p); err != nil {
					return nil, err
				}
			}
		default:
			if strings.HasPrefix(key, "_") {
				return nil, &Error{Class: name, Message: fmt.Sprintf("unknown key %q", key)}
			}
			p, err := parseProperty(name, key, value)
			if err != nil {
				return nil, err
			}
			if err := add(p); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

// parseProperty accepts either a type string ("string", "Expr?",
// "Stmt*", "predicate") or a mapping with type, pragma and child keys.
func parseProperty(class, name string, value *yaml.Node) (*Property, error) {
	p := &Property{Name: name}
	decl := value.Value
	if value.Kind == yaml.MappingNode {
		var long struct {
			Type   string    `yaml:"type"`
			Pragma yaml.Node `yaml:"pragma"`
			Child  bool      `yaml:"child"`
		}
		if err := value.Decode(&long); err != nil {
			return nil, &Error{Class: class, Property: name, Cause: err}
		}
		pragmas, err := stringList(&long.Pragma)
		if err != nil {
			return nil, &Error{Class: class, Property: name, Message: "pragma", Cause: err}
		}
		decl, p.Pragmas, p.Child = long.Type, pragmas, long.Child
	} else if value.Kind != yaml.ScalarNode {
		return nil, &Error{Class: class, Property: name, Message: fmt.Sprintf("line %d: expected a type", value.Line)}
	}
	decl = strings.TrimSpace(decl)
	switch {
	case decl == "":
		return nil, &Error{Class: class, Property: name, Message: "missing type"}
	case decl == "predicate":
		p.Kind = Predicate
	case strings.HasSuffix(decl, "?"):
		p.Kind, p.Type = Optional, strings.TrimSuffix(decl, "?")
	case strings.HasSuffix(decl, "*"):
		p.Kind, p.Type = Repeated, strings.TrimSuffix(decl, "*")
	default:
		p.Kind, p.Type = Single, decl
	}
	if p.Kind != Predicate && strings.ContainsAny(p.Type, "?* ") {
		return nil, &Error{Class: class, Property: name, Message: fmt.Sprintf("malformed type %q", decl)}
	}
	return p, nil
}

// stringList decodes a scalar or a sequence of scalars.
func stringList(n *yaml.Node) ([]string, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return nil, nil
		}
		return []string{n.Value}, nil
	case yaml.SequenceNode:
		var s []string
		if err := n.Decode(&s); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("line %d: expected a string or a list of strings", n.Line)
	}
}
