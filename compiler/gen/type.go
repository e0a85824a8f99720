package gen

import (
	"cmp"
	"path"
	"slices"
	"strings"

	"github.com/syssam/qlgen/compiler/load"
)

// Pragma names understood by the generator. Class pragmas starting with
// PragmaPrefix are carried through to the generated classes.
const (
	PragmaPrefix                  = "ql"
	PragmaTestSkip                = "qltest_skip"
	PragmaTestCollapseHierarchy   = "qltest_collapse_hierarchy"
	PragmaTestUncollapseHierarchy = "qltest_uncollapse_hierarchy"
)

// Column bindings of the relational tables.
const (
	thisParam     = "this"
	resultParam   = "result"
	indexParam    = "index"
	ignoreParam   = "_"
	predicateType = "predicate"
)

// The following types and their exported methods are used by the
// templates to generate the assets.
type (
	// Class is the relational view of a schema class.
	Class struct {
		// Name holds the class name.
		Name string
		// Bases holds the names of the direct base classes.
		Bases []string
		// Final indicates that no other class derives from this class.
		Final bool
		// Properties holds the mapped properties in declaration order.
		Properties []*Property
		// Dir is the slash separated output subdirectory of the class.
		Dir string
		// Imports holds the import paths of the classes used by this class.
		// It is filled by Graph.ResolveImports once all paths are known.
		Imports []string
		// Pragmas holds the class pragmas starting with PragmaPrefix.
		Pragmas map[string]bool
	}

	// Property is the relational view of a schema property.
	Property struct {
		// Name is the property name in the schema.
		Name string
		// Type is the declared type, or "predicate" for predicates.
		Type string
		// Kind is the multiplicity of the property.
		Kind load.Kind
		// Singular is the accessor name of one value.
		Singular string
		// Plural is the accessor name of all values. Repeated properties only.
		Plural string
		// TableName is the relational table holding the property.
		TableName string
		// TableParams are the column bindings of the table, in column order.
		TableParams []string
		// Child marks an edge to a child element.
		Child bool
		// QLTestSkip excludes the property from generated tests.
		QLTestSkip bool
	}
)

// NewClass maps a schema class to its relational form.
func NewClass(c *load.Class) *Class {
	cls := &Class{
		Name:       c.Name,
		Bases:      slices.Clone(c.Bases),
		Final:      len(c.Derived) == 0,
		Properties: make([]*Property, 0, len(c.Properties)),
		Dir:        c.Dir,
		Pragmas:    make(map[string]bool),
	}
	for _, p := range c.Properties {
		cls.Properties = append(cls.Properties, NewProperty(c, p))
	}
	for _, p := range c.Pragmas {
		if strings.HasPrefix(p, PragmaPrefix) {
			cls.Pragmas[p] = true
		}
	}
	return cls
}

// NewProperty maps the property of the given class to its table and
// column bindings. The layout depends only on the multiplicity.
func NewProperty(c *load.Class, p *load.Property) *Property {
	prop := &Property{
		Name:       p.Name,
		Type:       p.Type,
		Kind:       p.Kind,
		Child:      p.Child,
		QLTestSkip: p.HasPragma(PragmaTestSkip),
	}
	owned := c.Name + "_" + p.Name
	switch p.Kind {
	case load.Single:
		prop.Singular = camel(p.Name)
		prop.TableName = tableize(c.Name)
		prop.TableParams = []string{thisParam}
		for _, q := range c.Properties {
			if q.Kind != load.Single {
				continue
			}
			if q == p {
				prop.TableParams = append(prop.TableParams, resultParam)
			} else {
				prop.TableParams = append(prop.TableParams, ignoreParam)
			}
		}
	case load.Repeated:
		prop.Singular = camel(rules.Singularize(p.Name))
		prop.Plural = camel(rules.Pluralize(p.Name))
		prop.TableName = tableize(owned)
		prop.TableParams = []string{thisParam, indexParam, resultParam}
	case load.Optional:
		prop.Singular = camel(p.Name)
		prop.TableName = tableize(owned)
		prop.TableParams = []string{thisParam, resultParam}
	case load.Predicate:
		prop.Type = predicateType
		prop.Singular = lowerCamel(p.Name)
		prop.TableName = underscore(owned)
		prop.TableParams = []string{thisParam}
	}
	return prop
}

// Path returns the slash separated location of the class files, without
// extension, relative to an output directory.
func (c *Class) Path() string {
	return path.Join(c.Dir, c.Name)
}

// QLTestSkip reports if no test is generated for the class and its
// properties are excluded from the tests of derived classes.
func (c *Class) QLTestSkip() bool { return c.Pragmas[PragmaTestSkip] }

// QLTestCollapseHierarchy reports if the class is tested in place of the
// classes deriving from it.
func (c *Class) QLTestCollapseHierarchy() bool { return c.Pragmas[PragmaTestCollapseHierarchy] }

// QLTestUncollapseHierarchy reports if the class opts out of the collapsed
// hierarchy of its ancestors.
func (c *Class) QLTestUncollapseHierarchy() bool { return c.Pragmas[PragmaTestUncollapseHierarchy] }

// Root reports if the class has no base class.
func (c *Class) Root() bool { return len(c.Bases) == 0 }

// HasChildren reports if any property of the class is a child edge.
func (c *Class) HasChildren() bool {
	return slices.ContainsFunc(c.Properties, func(p *Property) bool { return p.Child })
}

// IsSingle reports if the property has exactly one value.
func (p *Property) IsSingle() bool { return p.Kind == load.Single }

// IsOptional reports if the property has zero or one value.
func (p *Property) IsOptional() bool { return p.Kind == load.Optional }

// IsRepeated reports if the property has any number of indexed values.
func (p *Property) IsRepeated() bool { return p.Kind == load.Repeated }

// IsPredicate reports if the property is a boolean predicate.
func (p *Property) IsPredicate() bool { return p.Kind == load.Predicate }

// TypeIsClass reports if the property type is a generated class.
func (p *Property) TypeIsClass() bool { return isClassName(p.Type) }

// Getter returns the name of the accessor predicate.
func (p *Property) Getter() string {
	if p.IsPredicate() {
		return p.Singular
	}
	return "get" + p.Singular
}

// IndefiniteGetter returns the accessor of any value of a repeated
// property, for example getAnArgument.
func (p *Property) IndefiniteGetter() string {
	if !p.IsRepeated() {
		return ""
	}
	article := "A"
	if p.Singular != "" && strings.ContainsAny(p.Singular[:1], "AEIO") {
		article = "An"
	}
	return "get" + article + p.Singular
}

// Graph holds the mapped classes of one generation run.
type Graph struct {
	// Classes are sorted by directory and name.
	Classes []*Class
	lookup  map[string]*Class
}

// NewGraph maps all schema classes and checks that no two properties
// share a table.
func NewGraph(classes []*load.Class) (*Graph, error) {
	g := &Graph{
		Classes: make([]*Class, 0, len(classes)),
		lookup:  make(map[string]*Class, len(classes)),
	}
	for _, c := range classes {
		if _, ok := g.lookup[c.Name]; ok {
			return nil, NewSchemaError(c.Name, "", "duplicate class", nil)
		}
		cls := NewClass(c)
		g.Classes = append(g.Classes, cls)
		g.lookup[c.Name] = cls
	}
	derived := make(map[string]bool)
	for _, c := range classes {
		for _, b := range c.Bases {
			derived[b] = true
		}
	}
	for _, c := range g.Classes {
		c.Final = !derived[c.Name]
	}
	if err := checkTables(classes, g.lookup); err != nil {
		return nil, err
	}
	slices.SortFunc(g.Classes, func(a, b *Class) int {
		return cmp.Or(cmp.Compare(a.Dir, b.Dir), cmp.Compare(a.Name, b.Name))
	})
	return g, nil
}

// Lookup returns the class with the given name.
func (g *Graph) Lookup(name string) (*Class, bool) {
	c, ok := g.lookup[name]
	return c, ok
}

// checkTables ensures table names are injective: the table of single
// properties is owned by their class, every other table by one property.
func checkTables(classes []*load.Class, lookup map[string]*Class) error {
	owners := make(map[string]string)
	for _, c := range classes {
		for _, p := range lookup[c.Name].Properties {
			owner := c.Name + "." + p.Name
			if p.IsSingle() {
				owner = c.Name
			}
			prev, ok := owners[p.TableName]
			switch {
			case !ok:
				owners[p.TableName] = owner
			case prev != owner:
				return NewSchemaError(c.Name, p.Name, "table "+p.TableName+" is already used by "+prev, nil)
			}
		}
	}
	return nil
}
