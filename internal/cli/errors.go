// Package cli provides shared configuration and utilities for the qlgen CLI.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/syssam/qlgen/compiler/gen"
)

// Exit codes of the qlgen command.
const (
	ExitSuccess = 0
	ExitGeneral = 1
	ExitConfig  = 2
	ExitSchema  = 3
)

// ExitError wraps an error with an exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode returns the exit code of err: the code of an ExitError, or
// ExitGeneral for any other error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitGeneral
}

// ExitWithError prints the error and exits with the appropriate code.
func ExitWithError(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(ExitCode(err))
}

// ConfigError creates an ExitError with ExitConfig code.
func ConfigError(msg string, err error) *ExitError {
	return &ExitError{Code: ExitConfig, Message: msg, Err: err}
}

// SchemaError creates an ExitError with ExitSchema code.
func SchemaError(msg string, err error) *ExitError {
	return &ExitError{Code: ExitSchema, Message: msg, Err: err}
}

// GeneralError creates an ExitError with ExitGeneral code.
func GeneralError(msg string, err error) *ExitError {
	return &ExitError{Code: ExitGeneral, Message: msg, Err: err}
}

// GenerateError classifies a generator error: configuration errors exit
// with ExitConfig, schema defects with ExitSchema and everything else
// with ExitGeneral.
func GenerateError(err error) *ExitError {
	switch {
	case errors.Is(err, gen.ErrMissingConfig):
		return ConfigError("invalid configuration", err)
	case errors.Is(err, gen.ErrInvalidSchema), errors.Is(err, gen.ErrBrokenReference):
		return SchemaError("invalid schema", err)
	case errors.Is(err, gen.ErrModifiedStub):
		return GeneralError("stub check failed", err)
	case errors.Is(err, gen.ErrFormatFailed):
		return GeneralError("formatting failed", err)
	default:
		return GeneralError("generation failed", err)
	}
}
