package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/syssam/qlgen/compiler/gen"
	"github.com/syssam/qlgen/internal/cli"
)

var (
	generateSchema   string
	generateNoFormat bool
	generateCodeQL   string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the QL library from the schema",
	Long: `Generate the class definitions, stubs, import list, parent relation and tests
of the QL library. Stubs that no longer start with the generated marker are
left untouched. Outputs of previous runs that are no longer generated are removed.`,
	Example: `  # Generate using qlgen.yaml
  qlgen generate

  # Use another schema and skip formatting
  qlgen generate --schema other.yml --no-format`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := *cfg
		c.Format.CodeQLBinary = resolveString(generateCodeQL, c.Format.CodeQLBinary)
		if generateNoFormat {
			c.Format.Enabled = false
		}

		// Paths of the config file are relative to its directory
		base := ""
		if configPath != "" {
			base = filepath.Dir(configPath)
		}
		logger := cli.NewLogger(cmd.ErrOrStderr(), verbose, quiet)
		opts := c.Options(base, logger)
		if generateSchema != "" {
			// Flags are relative to the working directory
			opts = append(opts, gen.WithSchema(generateSchema))
		}
		config, err := gen.NewConfig(opts...)
		if err != nil {
			return cli.ConfigError("invalid configuration", err)
		}
		if err := gen.Generate(cmd.Context(), config); err != nil {
			return cli.GenerateError(err)
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateSchema, "schema", "", "schema file (overrides config)")
	generateCmd.Flags().BoolVar(&generateNoFormat, "no-format", false, "skip the formatter")
	generateCmd.Flags().StringVar(&generateCodeQL, "codeql", "", "CodeQL executable used by the formatter")
}
