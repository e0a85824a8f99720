package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/qlgen/compiler/gen"
)

func TestExitError(t *testing.T) {
	cause := errors.New("boom")
	err := ConfigError("loading configuration", cause)

	assert.Equal(t, "loading configuration: boom", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "no cause", (&ExitError{Message: "no cause"}).Error())
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, ExitCode(nil))
	assert.Equal(t, ExitGeneral, ExitCode(errors.New("other")))
	assert.Equal(t, ExitConfig, ExitCode(ConfigError("config", nil)))
	assert.Equal(t, ExitSchema, ExitCode(fmt.Errorf("wrapped: %w", SchemaError("schema", nil))))
}

func TestGenerateError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"config", gen.NewConfigError("Output", nil, "missing"), ExitConfig},
		{"schema", gen.NewSchemaError("Call", "", "duplicate class", nil), ExitSchema},
		{"reference", &gen.ReferenceError{From: "Call", To: "Missing"}, ExitSchema},
		{"stub", &gen.StubError{File: "Call.qll"}, ExitGeneral},
		{"format", &gen.FormatError{Binary: "codeql"}, ExitGeneral},
		{"other", errors.New("disk full"), ExitGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := GenerateError(tt.err)
			assert.Equal(t, tt.code, err.Code)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, LogLevel(0, false))
	assert.Equal(t, slog.LevelDebug, LogLevel(2, false))
	assert.Equal(t, slog.LevelError, LogLevel(1, true))
}
