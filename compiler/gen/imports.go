package gen

import (
	"path/filepath"
	"slices"
	"strings"
)

// ImportPath returns the import path of a library file: its location
// relative to the library root, without extension, with path separators
// replaced by dots. For example <root>/codeql/elements/expr/Call.qll
// is imported as codeql.elements.expr.Call.
func ImportPath(file, root string) (string, error) {
	rel, err := filepath.Rel(root, file)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", NewConfigError("LibraryRoot", root, "file "+file+" is outside of the library root")
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	return strings.ReplaceAll(rel, string(filepath.Separator), "."), nil
}

// TypesUsedBy returns the bases and property types of a class, in
// declaration order and with duplicates.
func TypesUsedBy(c *Class) []string {
	types := make([]string, 0, len(c.Bases)+len(c.Properties))
	types = append(types, c.Bases...)
	for _, p := range c.Properties {
		types = append(types, p.Type)
	}
	return types
}

// ClassesUsedBy returns the sorted set of class names referenced by a class.
func ClassesUsedBy(c *Class) []string {
	var used []string
	for _, t := range TypesUsedBy(c) {
		if isClassName(t) {
			used = append(used, t)
		}
	}
	slices.Sort(used)
	return slices.Compact(used)
}

// ImportPaths assigns every class the import path of its stub file
// under stubDir. It only depends on the class locations.
func (g *Graph) ImportPaths(stubDir, root string) (map[string]string, error) {
	paths := make(map[string]string, len(g.Classes))
	for _, c := range g.Classes {
		p, err := ImportPath(filepath.Join(stubDir, filepath.FromSlash(c.Path())), root)
		if err != nil {
			return nil, err
		}
		paths[c.Name] = p
	}
	return paths, nil
}

// ResolveImports fills the imports of every class from the paths
// returned by ImportPaths. A class referencing a class that has no path
// is reported as a ReferenceError and no class is modified.
func (g *Graph) ResolveImports(paths map[string]string) error {
	resolved := make([][]string, len(g.Classes))
	for i, c := range g.Classes {
		used := ClassesUsedBy(c)
		imports := make([]string, 0, len(used))
		for _, name := range used {
			p, ok := paths[name]
			if !ok {
				return &ReferenceError{From: c.Name, To: name}
			}
			imports = append(imports, p)
		}
		resolved[i] = imports
	}
	for i, c := range g.Classes {
		c.Imports = resolved[i]
	}
	return nil
}
