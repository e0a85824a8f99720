package gen

import (
	"errors"
	"log/slog"

	"github.com/syssam/qlgen/compiler/load"
)

// Default configuration values.
const (
	DefaultCodeQLBinary      = "codeql"
	DefaultTestSourcePattern = "*.swift"
)

// Config holds the global configuration of a generation run.
type Config struct {
	// Schema is the path of the schema file.
	Schema string
	// LibraryRoot is the root directory of the QL library. Import paths
	// are computed relative to it.
	LibraryRoot string
	// Output is the directory of the generated class definitions.
	Output string
	// StubOutput is the directory of the user-extendable stubs.
	StubOutput string
	// TestOutput is the directory of the generated tests.
	TestOutput string
	// Format runs the formatter over all written files.
	Format bool
	// CodeQLBinary is the executable used by the default formatter.
	CodeQLBinary string
	// TestSourcePattern is the glob matching hand-written test sources
	// in a class test directory.
	TestSourcePattern string
	// Logger receives the progress and diagnostics of the run.
	Logger *slog.Logger
	// Loader loads the schema. Defaults to the YAML loader.
	Loader Loader
	// Renderer writes the generated files. Defaults to a new TemplateWriter
	// for every run.
	Renderer Renderer
	// Formatter formats the written files. Defaults to CodeQLFormatter.
	Formatter Formatter
}

// Loader is the schema loader collaborator.
type Loader interface {
	Load(path string) ([]*load.Class, error)
}

// The LoaderFunc type is an adapter to allow the use of ordinary
// functions as schema loaders.
type LoaderFunc func(string) ([]*load.Class, error)

// Load calls f(path).
func (f LoaderFunc) Load(path string) ([]*load.Class, error) { return f(path) }

// Option configures code generation.
type Option func(*Config) error

// WithSchema sets the schema file.
func WithSchema(path string) Option {
	return func(c *Config) error {
		if path == "" {
			return NewConfigError("Schema", nil, "schema cannot be empty")
		}
		c.Schema = path
		return nil
	}
}

// WithLibraryRoot sets the root directory of the QL library.
func WithLibraryRoot(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("LibraryRoot", nil, "library root cannot be empty")
		}
		c.LibraryRoot = dir
		return nil
	}
}

// WithOutput sets the directory of the generated class definitions.
func WithOutput(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("Output", nil, "output directory cannot be empty")
		}
		c.Output = dir
		return nil
	}
}

// WithStubOutput sets the directory of the stubs.
func WithStubOutput(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("StubOutput", nil, "stub output directory cannot be empty")
		}
		c.StubOutput = dir
		return nil
	}
}

// WithTestOutput sets the directory of the generated tests.
func WithTestOutput(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("TestOutput", nil, "test output directory cannot be empty")
		}
		c.TestOutput = dir
		return nil
	}
}

// WithFormat enables or disables the formatter run.
func WithFormat(enabled bool) Option {
	return func(c *Config) error {
		c.Format = enabled
		return nil
	}
}

// WithCodeQLBinary sets the executable used by the default formatter.
func WithCodeQLBinary(path string) Option {
	return func(c *Config) error {
		if path == "" {
			return NewConfigError("CodeQLBinary", nil, "binary cannot be empty")
		}
		c.CodeQLBinary = path
		return nil
	}
}

// WithTestSourcePattern sets the glob matching hand-written test sources.
func WithTestSourcePattern(pattern string) Option {
	return func(c *Config) error {
		if pattern == "" {
			return NewConfigError("TestSourcePattern", nil, "pattern cannot be empty")
		}
		c.TestSourcePattern = pattern
		return nil
	}
}

// WithLogger sets the logger of the run.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = l
		return nil
	}
}

// WithLoader sets a custom schema loader.
func WithLoader(l Loader) Option {
	return func(c *Config) error {
		if l == nil {
			return NewConfigError("Loader", nil, "loader cannot be nil")
		}
		c.Loader = l
		return nil
	}
}

// WithRenderer sets a custom renderer.
func WithRenderer(r Renderer) Option {
	return func(c *Config) error {
		if r == nil {
			return NewConfigError("Renderer", nil, "renderer cannot be nil")
		}
		c.Renderer = r
		return nil
	}
}

// WithFormatter sets a custom formatter.
func WithFormatter(f Formatter) Option {
	return func(c *Config) error {
		if f == nil {
			return NewConfigError("Formatter", nil, "formatter cannot be nil")
		}
		c.Formatter = f
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config with the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		CodeQLBinary:      DefaultCodeQLBinary,
		TestSourcePattern: DefaultTestSourcePattern,
	}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// check reports the first missing required setting and fills the
// defaults of the unset collaborators.
func (c *Config) check() error {
	switch {
	case c.Schema == "":
		return NewConfigError("Schema", nil, "missing schema file")
	case c.LibraryRoot == "":
		return NewConfigError("LibraryRoot", nil, "missing library root")
	case c.Output == "":
		return NewConfigError("Output", nil, "missing output directory")
	case c.StubOutput == "":
		return NewConfigError("StubOutput", nil, "missing stub output directory")
	case c.TestOutput == "":
		return NewConfigError("TestOutput", nil, "missing test output directory")
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.CodeQLBinary == "" {
		c.CodeQLBinary = DefaultCodeQLBinary
	}
	if c.TestSourcePattern == "" {
		c.TestSourcePattern = DefaultTestSourcePattern
	}
	if c.Loader == nil {
		c.Loader = LoaderFunc(load.Load)
	}
	if c.Formatter == nil {
		c.Formatter = &CodeQLFormatter{Binary: c.CodeQLBinary, Logger: c.Logger}
	}
	return nil
}
