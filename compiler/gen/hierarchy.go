package gen

// PropertyForTest describes a property checked by the generated tests.
type PropertyForTest struct {
	Getter      string
	Type        string
	IsSingle    bool
	IsPredicate bool
	IsRepeated  bool
}

// Total reports if the property has exactly one answer per element.
func (p PropertyForTest) Total() bool { return p.IsSingle || p.IsPredicate }

// Hierarchy answers inheritance questions over the classes of a graph.
// Results of the collapse predicates are memoized.
type Hierarchy struct {
	lookup    map[string]*Class
	collapsed map[string]bool
	under     map[string]bool
}

// NewHierarchy returns the hierarchy of the graph classes. Every base
// class must be part of the graph.
func NewHierarchy(g *Graph) (*Hierarchy, error) {
	h := &Hierarchy{
		lookup:    make(map[string]*Class, len(g.Classes)),
		collapsed: make(map[string]bool),
		under:     make(map[string]bool),
	}
	for _, c := range g.Classes {
		h.lookup[c.Name] = c
	}
	for _, c := range g.Classes {
		for _, b := range c.Bases {
			if _, ok := h.lookup[b]; !ok {
				return nil, &ReferenceError{From: c.Name, To: b}
			}
		}
	}
	return h, nil
}

// Collapsed reports if the class starts a collapsed test hierarchy or
// belongs to one.
func (h *Hierarchy) Collapsed(c *Class) bool {
	if v, ok := h.collapsed[c.Name]; ok {
		return v
	}
	v := c.QLTestCollapseHierarchy() || h.UnderCollapsed(c)
	h.collapsed[c.Name] = v
	return v
}

// UnderCollapsed reports if any ancestor of the class collapses its
// hierarchy and the class does not opt out.
func (h *Hierarchy) UnderCollapsed(c *Class) bool {
	if v, ok := h.under[c.Name]; ok {
		return v
	}
	v := false
	if !c.QLTestUncollapseHierarchy() {
		for _, b := range c.Bases {
			if h.Collapsed(h.lookup[b]) {
				v = true
				break
			}
		}
	}
	h.under[c.Name] = v
	return v
}

// SkipTest reports if no test is generated for the class. Only final
// classes and roots of collapsed hierarchies are tested.
func (h *Hierarchy) SkipTest(c *Class) bool {
	return c.QLTestSkip() || !(c.Final || c.QLTestCollapseHierarchy()) || h.UnderCollapsed(c)
}

// TestProperties returns the properties of the class and of all its
// ancestors, ancestors first. Properties reached through several paths
// of the hierarchy are returned once.
func (h *Hierarchy) TestProperties(c *Class) []PropertyForTest {
	type key struct{ class, property string }
	var (
		props []PropertyForTest
		seen  = make(map[key]bool)
		walk  func(*Class)
	)
	walk = func(c *Class) {
		for _, b := range c.Bases {
			walk(h.lookup[b])
		}
		for _, p := range c.Properties {
			k := key{c.Name, p.Name}
			if c.QLTestSkip() || p.QLTestSkip || seen[k] {
				continue
			}
			seen[k] = true
			props = append(props, PropertyForTest{
				Getter:      p.Getter(),
				Type:        p.Type,
				IsSingle:    p.IsSingle(),
				IsPredicate: p.IsPredicate(),
				IsRepeated:  p.IsRepeated(),
			})
		}
	}
	walk(c)
	return props
}

// Partition splits test properties into total ones, checked together by
// one query, and partial ones, each checked by its own query.
func Partition(props []PropertyForTest) (total, partial []PropertyForTest) {
	for _, p := range props {
		if p.Total() {
			total = append(total, p)
		} else {
			partial = append(partial, p)
		}
	}
	return total, partial
}
