package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/syssam/qlgen/compiler/gen"
)

const (
	maxWalkDepth = 25
)

// Config represents the qlgen configuration from qlgen.yaml.
type Config struct {
	// Schema is the path of the schema file.
	Schema string `mapstructure:"schema" json:"schema"`
	// LibraryRoot is the root of the QL library. Import paths are relative to it.
	LibraryRoot string `mapstructure:"library_root" json:"library_root"`

	// Per-command configuration
	Generate GenerateConfig `mapstructure:"generate" json:"generate"`
	Format   FormatConfig   `mapstructure:"format" json:"format"`
}

// GenerateConfig holds the output locations of the generated library.
type GenerateConfig struct {
	Output            string `mapstructure:"output" json:"output"`
	StubOutput        string `mapstructure:"stub_output" json:"stub_output"`
	TestOutput        string `mapstructure:"test_output" json:"test_output"`
	TestSourcePattern string `mapstructure:"test_source_pattern" json:"test_source_pattern"`
}

// FormatConfig holds the formatter settings.
type FormatConfig struct {
	Enabled      bool   `mapstructure:"enabled" json:"enabled"`
	CodeQLBinary string `mapstructure:"codeql_binary" json:"codeql_binary"`
}

// LoadConfig discovers and loads configuration with proper precedence:
// flags > env > config file > defaults.
//
// Returns the loaded config, the path to the config file (empty if none found),
// and any error encountered.
func LoadConfig(explicitConfigPath string) (*Config, string, error) {
	v := viper.New()

	// 1. Set defaults first (lowest precedence)
	setDefaults(v)

	// 2. Set up environment variable binding
	v.SetEnvPrefix("QLGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 3. Find and load config file
	configPath, err := findConfigFile(explicitConfigPath)
	if err != nil {
		return nil, "", err
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, configPath, fmt.Errorf("reading config file: %w", err)
		}
	}

	// 4. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, configPath, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, configPath, nil
}

func setDefaults(v *viper.Viper) {
	// Top-level defaults
	v.SetDefault("schema", "schema.yml")
	v.SetDefault("library_root", "ql/lib")

	// Generate defaults
	v.SetDefault("generate.output", "ql/lib/codeql/swift/generated")
	v.SetDefault("generate.stub_output", "ql/lib/codeql/swift/elements")
	v.SetDefault("generate.test_output", "ql/test/extractor-tests/generated")
	v.SetDefault("generate.test_source_pattern", gen.DefaultTestSourcePattern)

	// Format defaults
	v.SetDefault("format.enabled", true)
	v.SetDefault("format.codeql_binary", gen.DefaultCodeQLBinary)
}

// findConfigFile finds the config file to use.
// If explicitPath is provided, it validates the file exists.
// Otherwise, it walks up from cwd looking for qlgen.yaml or qlgen.yml,
// stopping at a .git directory or after maxWalkDepth levels.
func findConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting cwd: %w", err)
	}

	dir := cwd
	for range maxWalkDepth {
		for _, name := range []string{"qlgen.yaml", "qlgen.yml"} {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		// Stop at the repository root
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", nil // No config found, use defaults
}

// Options returns the generator options of the configuration. Relative
// paths are resolved against base, usually the directory of the config
// file.
func (c *Config) Options(base string, logger *slog.Logger) []gen.Option {
	abs := func(path string) string {
		if path == "" || filepath.IsAbs(path) || base == "" {
			return path
		}
		return filepath.Join(base, path)
	}
	return []gen.Option{
		gen.WithSchema(abs(c.Schema)),
		gen.WithLibraryRoot(abs(c.LibraryRoot)),
		gen.WithOutput(abs(c.Generate.Output)),
		gen.WithStubOutput(abs(c.Generate.StubOutput)),
		gen.WithTestOutput(abs(c.Generate.TestOutput)),
		gen.WithTestSourcePattern(c.Generate.TestSourcePattern),
		gen.WithFormat(c.Format.Enabled),
		gen.WithCodeQLBinary(c.Format.CodeQLBinary),
		gen.WithLogger(logger),
	}
}
