package gen

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/qlgen/compiler/load"
)

const leafSchema = `
Base:
Item:
Leaf:
  _extends: Base
  name: string
  items: Item*
`

// fakeFormatter records the files it was asked to format.
type fakeFormatter struct {
	calls [][]string
	err   error
}

func (f *fakeFormatter) Format(_ context.Context, files []string) error {
	f.calls = append(f.calls, files)
	return f.err
}

// library is the file layout of a generated library.
type library struct {
	root, schema, defs, stubs, tests string
}

func newLibrary(t *testing.T, schema string) library {
	t.Helper()
	root := t.TempDir()
	l := library{
		root:   root,
		schema: filepath.Join(root, "schema.yml"),
		defs:   filepath.Join(root, "codeql", "generated"),
		stubs:  filepath.Join(root, "codeql", "elements"),
		tests:  filepath.Join(root, "test", "generated"),
	}
	l.writeSchema(t, schema)
	return l
}

func (l library) writeSchema(t *testing.T, schema string) {
	t.Helper()
	require.NoError(t, os.WriteFile(l.schema, []byte(schema), 0o644))
}

func (l library) config(t *testing.T, opts ...Option) *Config {
	t.Helper()
	cfg, err := NewConfig(append([]Option{
		WithSchema(l.schema),
		WithLibraryRoot(l.root),
		WithOutput(l.defs),
		WithStubOutput(l.stubs),
		WithTestOutput(l.tests),
		WithLogger(slog.New(slog.DiscardHandler)),
	}, opts...)...)
	require.NoError(t, err)
	return cfg
}

func (l library) generate(t *testing.T, opts ...Option) error {
	t.Helper()
	return Generate(context.Background(), l.config(t, opts...))
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestGenerate(t *testing.T) {
	l := newLibrary(t, leafSchema)
	require.NoError(t, l.generate(t))

	for _, name := range []string{"Base", "Item", "Leaf"} {
		assert.FileExists(t, filepath.Join(l.defs, name+".qll"))
		assert.FileExists(t, filepath.Join(l.stubs, name+".qll"))
	}
	assert.FileExists(t, filepath.Join(l.defs, ParentFile))

	leaf := read(t, filepath.Join(l.defs, "Leaf.qll"))
	assert.Contains(t, leaf, "import codeql.elements.Base\n")
	assert.Contains(t, leaf, "import codeql.elements.Item\n")
	assert.Contains(t, leaf, "class LeafBase extends Base {")
	assert.Contains(t, leaf, "string getName() { leafs(this, result) }")
	assert.Contains(t, leaf, "Item getItem(int index) { leaf_items(this, index, result) }")

	stub := read(t, filepath.Join(l.stubs, "Leaf.qll"))
	assert.Contains(t, stub, "private import codeql.generated.Leaf\n")
	assert.Contains(t, stub, "class Leaf extends LeafBase { }")

	list := read(t, filepath.Join(l.root, "codeql", "elements.qll"))
	assert.Equal(t, "// generated by qlgen, do not edit\nimport codeql.elements.Base\nimport codeql.elements.Item\nimport codeql.elements.Leaf\n", list)

	t.Run("tests without source", func(t *testing.T) {
		assert.NoDirExists(t, filepath.Join(l.tests, "Base"))
		assert.FileExists(t, filepath.Join(l.tests, "Leaf", MissingSourceFile))
		assert.FileExists(t, filepath.Join(l.tests, "Item", MissingSourceFile))
	})

	t.Run("tests with source", func(t *testing.T) {
		writeFile(t, filepath.Join(l.tests, "Leaf"), "leaf.swift", "struct Leaf {}\n")
		require.NoError(t, l.generate(t))

		assert.NoFileExists(t, filepath.Join(l.tests, "Leaf", MissingSourceFile))
		tester := read(t, filepath.Join(l.tests, "Leaf", "Leaf.ql"))
		assert.Contains(t, tester, "import codeql.elements\n")
		assert.Contains(t, tester, "from Leaf x, string getName\n")
		assert.FileExists(t, filepath.Join(l.tests, "Leaf", "Leaf_getItem.ql"))
		assert.FileExists(t, filepath.Join(l.tests, "Leaf", "leaf.swift"))
		assert.FileExists(t, filepath.Join(l.tests, "Item", MissingSourceFile))
	})
}

// snapshot returns the content of every generated file keyed by its path
// relative to the library root.
func (l library) snapshot(t *testing.T) map[string]string {
	t.Helper()
	files := make(map[string]string)
	err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || path == l.schema {
			return err
		}
		rel, err := filepath.Rel(l.root, path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = read(t, path)
		return nil
	})
	require.NoError(t, err)
	return files
}

func TestGenerate_Deterministic(t *testing.T) {
	const schema = `
Element:
Expr:
  _extends: Element
  _dir: expr
  type: Type?
Type:
  _extends: Element
  name: string
Group:
  _extends: Element
  children: Element*
  people: Expr*
  aliases: string*
  status: string?
  is_implicit: predicate
  label: string
  name: string
`
	first := newLibrary(t, schema)
	require.NoError(t, first.generate(t))
	second := newLibrary(t, schema)
	require.NoError(t, second.generate(t))

	want := first.snapshot(t)
	require.Contains(t, want, "codeql/generated/Group.qll")
	assert.Equal(t, want, second.snapshot(t))

	group := want["codeql/generated/Group.qll"]
	assert.Contains(t, group, "string getLabel() { groups(this, result, _) }")
	assert.Contains(t, group, "Element getChild(int index) { group_children(this, index, result) }")
	assert.Contains(t, group, "int getNumberOfChildren() { result = count(getAChild()) }")
	assert.Contains(t, group, "Expr getAPerson() { result = getPerson(_) }")
	assert.Contains(t, group, "string getStatus() { group_statuses(this, result) }")

	t.Run("rerun rewrites identical definitions", func(t *testing.T) {
		require.NoError(t, os.RemoveAll(first.defs))
		require.NoError(t, first.generate(t))
		assert.Equal(t, want, first.snapshot(t))
	})
}

func TestGenerate_ImportListFollowsClassOrder(t *testing.T) {
	l := newLibrary(t, `
Zed:
Decl:
  _dir: Abc
Alpha:
  _dir: Abc
`)
	require.NoError(t, l.generate(t))

	list := read(t, filepath.Join(l.root, "codeql", "elements.qll"))
	assert.Equal(t, "// generated by qlgen, do not edit\n"+
		"import codeql.elements.Zed\n"+
		"import codeql.elements.Abc.Alpha\n"+
		"import codeql.elements.Abc.Decl\n", list)
}

func TestGenerate_Stubs(t *testing.T) {
	l := newLibrary(t, leafSchema)
	require.NoError(t, l.generate(t))
	path := filepath.Join(l.stubs, "Leaf.qll")

	t.Run("untouched stub stays byte-identical", func(t *testing.T) {
		before := read(t, path)
		old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, os.Chtimes(path, old, old))

		require.NoError(t, l.generate(t))
		assert.Equal(t, before, read(t, path))
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.True(t, info.ModTime().Equal(old))
	})

	t.Run("user stub is kept", func(t *testing.T) {
		user := "private import codeql.generated.Item\n\nclass Item extends ItemBase {\n  string foo() { result = \"foo\" }\n}\n"
		itemStub := writeFile(t, l.stubs, "Item.qll", user)

		require.NoError(t, l.generate(t))
		assert.Equal(t, user, read(t, itemStub))
	})

	t.Run("edited stub still marked as generated", func(t *testing.T) {
		edited := read(t, path) + "\nclass Other extends Leaf { }\n"
		writeFile(t, l.stubs, "Leaf.qll", edited)
		defs := filepath.Join(l.defs, "Leaf.qll")
		require.NoError(t, os.Remove(defs))

		err := l.generate(t)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrModifiedStub)
		assert.Contains(t, err.Error(), "Leaf.qll")
		assert.Equal(t, edited, read(t, path))
		assert.NoFileExists(t, defs, "nothing is written on corrupted stubs")
	})
}

func TestGenerate_Cleanup(t *testing.T) {
	l := newLibrary(t, leafSchema)
	require.NoError(t, l.generate(t))
	user := "class Item extends ItemBase { }\n"
	writeFile(t, l.stubs, "Item.qll", user)
	custom := writeFile(t, l.tests, "README.md", "notes\n")

	l.writeSchema(t, "Base:\nLeaf:\n  _extends: Base\n  name: string\n")
	require.NoError(t, l.generate(t))

	assert.NoFileExists(t, filepath.Join(l.defs, "Item.qll"))
	assert.NoFileExists(t, filepath.Join(l.tests, "Item", MissingSourceFile))
	assert.Equal(t, user, read(t, filepath.Join(l.stubs, "Item.qll")), "user stubs are never removed")
	assert.FileExists(t, filepath.Join(l.stubs, "Leaf.qll"))
	assert.FileExists(t, filepath.Join(l.defs, ParentFile))
	assert.FileExists(t, custom)
	assert.NotContains(t, read(t, filepath.Join(l.root, "codeql", "elements.qll")), "Item")
}

func TestGenerate_Format(t *testing.T) {
	t.Run("formats written files", func(t *testing.T) {
		l := newLibrary(t, leafSchema)
		f := &fakeFormatter{}
		require.NoError(t, l.generate(t, WithFormat(true), WithFormatter(f)))

		require.Len(t, f.calls, 1)
		assert.Contains(t, f.calls[0], filepath.Join(l.defs, "Leaf.qll"))
		assert.Contains(t, f.calls[0], filepath.Join(l.stubs, "Leaf.qll"))
		assert.Contains(t, f.calls[0], filepath.Join(l.tests, "Leaf", MissingSourceFile))
	})

	t.Run("disabled", func(t *testing.T) {
		l := newLibrary(t, leafSchema)
		f := &fakeFormatter{}
		require.NoError(t, l.generate(t, WithFormatter(f)))
		assert.Empty(t, f.calls)
	})

	t.Run("failure is fatal", func(t *testing.T) {
		l := newLibrary(t, leafSchema)
		f := &fakeFormatter{err: &FormatError{Binary: "codeql", Cause: errors.New("exit status 1")}}
		err := l.generate(t, WithFormat(true), WithFormatter(f))
		assert.ErrorIs(t, err, ErrFormatFailed)
	})
}

func TestGenerate_Errors(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		assert.True(t, IsConfigError(Generate(context.Background(), nil)))
	})

	t.Run("missing settings", func(t *testing.T) {
		err := Generate(context.Background(), &Config{Schema: "schema.yml"})
		assert.ErrorIs(t, err, ErrMissingConfig)
	})

	t.Run("broken reference", func(t *testing.T) {
		l := newLibrary(t, "Leaf:\n  item: Item\n")
		loader := LoaderFunc(func(string) ([]*load.Class, error) {
			return []*load.Class{schemaClass("Leaf", nil, single("item", "Item"))}, nil
		})
		err := l.generate(t, WithLoader(loader))
		assert.ErrorIs(t, err, ErrBrokenReference)
		assert.NoDirExists(t, l.defs)
	})

	t.Run("invalid schema", func(t *testing.T) {
		l := newLibrary(t, "Leaf:\n  _extends: Missing\n")
		err := l.generate(t)
		assert.ErrorIs(t, err, ErrInvalidSchema)
		assert.ErrorIs(t, err, load.ErrInvalidSchema)
	})

	t.Run("table collision", func(t *testing.T) {
		l := newLibrary(t, "Call:\n  type_args: string*\nCallType:\n  args: string*\n")
		err := l.generate(t)
		assert.True(t, IsSchemaError(err))
	})
}

func TestGenerate_Logging(t *testing.T) {
	l := newLibrary(t, leafSchema)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	require.NoError(t, l.generate(t, WithLogger(logger)))

	assert.Contains(t, buf.String(), "level=WARN msg=\"no test source\" class=Leaf")
	assert.Contains(t, buf.String(), "msg=\"generated library\" classes=3")
}
