package gen

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"slices"

	"golang.org/x/sync/errgroup"
)

// Well-known output files.
const (
	// MissingSourceFile replaces the tests of a class without test source.
	MissingSourceFile = "MISSING_SOURCE.txt"
	// ParentFile holds the parent relation under the definitions directory.
	ParentFile = "GetImmediateParent.qll"
)

// defaultRoot is the parent relation type of a schema without root class.
const defaultRoot = "Element"

// Generate runs one generation pass: it loads the schema, renders the class
// definitions, the stubs that are missing or untouched, the import list,
// the parent relation and the tests, removes the outputs of the previous
// run that were not generated again and optionally formats the result.
//
// Stubs that no longer carry the generated marker are never written. A stub
// that carries the marker but was edited aborts the run before any file is
// written.
func Generate(ctx context.Context, cfg *Config) error {
	if cfg == nil {
		return NewConfigError("Config", nil, "missing config")
	}
	if err := cfg.check(); err != nil {
		return err
	}
	gen := &generator{Config: cfg, renderer: cfg.Renderer}
	if gen.renderer == nil {
		gen.renderer = NewTemplateWriter(cfg.Logger)
	}
	return gen.run(ctx)
}

// generator holds the state of one run.
type generator struct {
	*Config
	renderer Renderer
}

func (gen *generator) run(ctx context.Context) error {
	existing, err := survey(ctx, gen.Config)
	if err != nil {
		return err
	}
	classes, err := gen.Loader.Load(gen.Schema)
	if err != nil {
		return NewSchemaError("", "", "load "+gen.Schema, err)
	}
	g, err := NewGraph(classes)
	if err != nil {
		return err
	}
	paths, err := g.ImportPaths(gen.StubOutput, gen.LibraryRoot)
	if err != nil {
		return err
	}
	if err := g.ResolveImports(paths); err != nil {
		return err
	}
	for _, c := range g.Classes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := gen.renderClass(c); err != nil {
			return err
		}
	}
	listFile := filepath.Clean(gen.StubOutput) + ".qll"
	listImport, err := ImportPath(listFile, gen.LibraryRoot)
	if err != nil {
		return err
	}
	imports := make([]string, 0, len(g.Classes))
	for _, c := range g.Classes {
		imports = append(imports, paths[c.Name])
	}
	if err := gen.renderer.Render(ImportList{Imports: imports}, listFile); err != nil {
		return err
	}
	parent := ParentImplementation{
		Import:  listImport,
		Root:    rootClass(g),
		Classes: g.Classes,
	}
	if err := gen.renderer.Render(parent, filepath.Join(gen.Output, ParentFile)); err != nil {
		return err
	}
	if err := gen.renderTests(g, listImport); err != nil {
		return err
	}
	if err := gen.renderer.Cleanup(existing); err != nil {
		return err
	}
	written := gen.renderer.Written()
	if gen.Format {
		if err := gen.Formatter.Format(ctx, written); err != nil {
			return err
		}
	}
	gen.Logger.Info("generated library", "classes", len(g.Classes), "files", len(written))
	return nil
}

// renderClass renders the definition of the class and its stub, unless the
// stub belongs to the user.
func (gen *generator) renderClass(c *Class) error {
	file := filepath.FromSlash(c.Path()) + ".qll"
	defs := filepath.Join(gen.Output, file)
	if err := gen.renderer.Render(c, defs); err != nil {
		return err
	}
	stub := filepath.Join(gen.StubOutput, file)
	write, err := stubState(stub)
	if err != nil {
		return err
	}
	if !write {
		gen.Logger.Debug("keeping user stub", "class", c.Name, "file", stub)
		return nil
	}
	base, err := ImportPath(defs, gen.LibraryRoot)
	if err != nil {
		return err
	}
	return gen.renderer.Render(Stub{Name: c.Name, BaseImport: base}, stub)
}

// renderTests renders the tests of every tested class. Classes without a
// test source get the missing source instructions instead.
func (gen *generator) renderTests(g *Graph, listImport string) error {
	h, err := NewHierarchy(g)
	if err != nil {
		return err
	}
	for _, c := range g.Classes {
		if h.SkipTest(c) {
			continue
		}
		dir := filepath.Join(gen.TestOutput, filepath.FromSlash(c.Path()))
		sources, err := filepath.Glob(filepath.Join(dir, gen.TestSourcePattern))
		if err != nil {
			return NewConfigError("TestSourcePattern", gen.TestSourcePattern, err.Error())
		}
		if len(sources) == 0 {
			gen.Logger.Warn("no test source", "class", c.Name, "dir", dir)
			if err := gen.renderer.Render(MissingTestInstructions{}, filepath.Join(dir, MissingSourceFile)); err != nil {
				return err
			}
			continue
		}
		total, partial := Partition(h.TestProperties(c))
		tester := ClassTester{Import: listImport, ClassName: c.Name, Properties: total}
		if err := gen.renderer.Render(tester, filepath.Join(dir, c.Name+".ql")); err != nil {
			return err
		}
		for _, p := range partial {
			tester := PropertyTester{Import: listImport, ClassName: c.Name, Property: p}
			if err := gen.renderer.Render(tester, filepath.Join(dir, c.Name+"_"+p.Getter+".ql")); err != nil {
				return err
			}
		}
	}
	return nil
}

// rootClass returns the first root class of the graph.
func rootClass(g *Graph) string {
	for _, c := range g.Classes {
		if c.Root() {
			return c.Name
		}
	}
	return defaultRoot
}

// survey collects the outputs of previous runs: definitions, untouched
// stubs and tests. The three trees are scanned concurrently. A modified
// stub still marked as generated fails the survey.
func survey(ctx context.Context, cfg *Config) ([]string, error) {
	var defs, stubs, tests []string
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		defs, err = collect(ctx, cfg.Output, func(path string) (bool, error) {
			return filepath.Ext(path) == ".qll", nil
		})
		return err
	})
	eg.Go(func() (err error) {
		stubs, err = collect(ctx, cfg.StubOutput, func(path string) (bool, error) {
			if filepath.Ext(path) != ".qll" {
				return false, nil
			}
			ok, err := IsGeneratedStub(path)
			if err != nil && !IsStubError(err) {
				return false, NewGenerationError("survey", path, "read stub", err)
			}
			return ok, err
		})
		return err
	})
	eg.Go(func() (err error) {
		tests, err = collect(ctx, cfg.TestOutput, func(path string) (bool, error) {
			return filepath.Ext(path) == ".ql" || filepath.Base(path) == MissingSourceFile, nil
		})
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return slices.Concat(defs, stubs, tests), nil
}

// collect returns the files under root accepted by keep. A missing root
// holds no files.
func collect(ctx context.Context, root string, keep func(string) (bool, error)) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		switch {
		case err != nil && path == root && errors.Is(err, fs.ErrNotExist):
			return filepath.SkipDir
		case err != nil:
			return NewGenerationError("survey", path, "scan existing outputs", err)
		case d.IsDir():
			return ctx.Err()
		}
		ok, err := keep(path)
		if ok {
			files = append(files, path)
		}
		return err
	})
	return files, err
}
