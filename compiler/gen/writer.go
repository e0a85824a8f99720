package gen

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed template/*.tmpl
var templateFS embed.FS

// templates holds the parsed generator templates, named after their file.
var templates = template.Must(template.New("qlgen").
	Funcs(template.FuncMap{
		"join":       strings.Join,
		"underscore": underscore,
	}).
	ParseFS(templateFS, "template/*.tmpl"))

// Record is the data of one generated file.
type Record interface {
	// Template returns the name of the template rendering the record.
	Template() string
}

// Renderer writes generated files and keeps track of them.
type Renderer interface {
	// Render executes the template of the record and writes the result
	// to path.
	Render(rec Record, path string) error
	// Written returns the paths rendered so far, in order.
	Written() []string
	// Cleanup removes every existing path that was not rendered.
	Cleanup(existing []string) error
}

// The following records are rendered alongside the Class definitions.
type (
	// Stub is the user-extendable class wrapping a generated definition.
	Stub struct {
		Name       string
		BaseImport string
	}

	// ImportList imports every stub of the library.
	ImportList struct {
		Imports []string
	}

	// ParentImplementation derives the parent relation from the child
	// properties of all classes.
	ParentImplementation struct {
		// Import is the import path of the import list.
		Import string
		// Root is the class every child and parent belongs to.
		Root    string
		Classes []*Class
	}

	// ClassTester checks every total property of a class at once.
	ClassTester struct {
		Import     string
		ClassName  string
		Properties []PropertyForTest
	}

	// PropertyTester checks one partial property of a class.
	PropertyTester struct {
		Import    string
		ClassName string
		Property  PropertyForTest
	}

	// MissingTestInstructions is written in place of the tests of a class
	// lacking a test source.
	MissingTestInstructions struct{}
)

func (*Class) Template() string { return "class.tmpl" }
func (Stub) Template() string { return "stub.tmpl" }
func (ImportList) Template() string { return "import_list.tmpl" }
func (ParentImplementation) Template() string { return "parent.tmpl" }
func (ClassTester) Template() string { return "class_tester.tmpl" }
func (PropertyTester) Template() string { return "property_tester.tmpl" }
func (MissingTestInstructions) Template() string { return "missing_source.tmpl" }

// TemplateWriter renders records with the embedded templates. Files whose
// content did not change are left untouched.
type TemplateWriter struct {
	logger  *slog.Logger
	written []string
	seen    map[string]bool
}

// NewTemplateWriter creates a new template-based renderer.
func NewTemplateWriter(logger *slog.Logger) *TemplateWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &TemplateWriter{
		logger: logger,
		seen:   make(map[string]bool),
	}
}

// Render implements Renderer.
func (w *TemplateWriter) Render(rec Record, path string) error {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, rec.Template(), rec); err != nil {
		return NewGenerationError("render", path, fmt.Sprintf("execute template %q", rec.Template()), err)
	}
	path = filepath.Clean(path)
	if !w.seen[path] {
		w.seen[path] = true
		w.written = append(w.written, path)
	}
	switch current, err := os.ReadFile(path); {
	case err == nil && bytes.Equal(current, buf.Bytes()):
		w.logger.Debug("unchanged", "file", path)
		return nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return NewGenerationError("render", path, "read existing file", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return NewGenerationError("render", path, "create directory", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return NewGenerationError("render", path, "write file", err)
	}
	w.logger.Debug("generated", "file", path)
	return nil
}

// Written implements Renderer.
func (w *TemplateWriter) Written() []string {
	return append([]string(nil), w.written...)
}

// Cleanup implements Renderer.
func (w *TemplateWriter) Cleanup(existing []string) error {
	for _, path := range existing {
		path = filepath.Clean(path)
		if w.seen[path] {
			continue
		}
		w.logger.Info("removing stale file", "file", path)
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return NewGenerationError("cleanup", path, "remove stale file", err)
		}
	}
	return nil
}
