package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	// ErrInvalidSchema indicates a schema that cannot be mapped to tables.
	ErrInvalidSchema = errors.New("qlgen: invalid schema")
	// ErrMissingConfig indicates a configuration error.
	ErrMissingConfig = errors.New("qlgen: missing configuration")
	// ErrBrokenReference indicates a reference to a class that does not exist.
	ErrBrokenReference = errors.New("qlgen: broken class reference")
	// ErrModifiedStub indicates a stub that was edited but still carries the generated marker.
	ErrModifiedStub = errors.New("qlgen: modified stub marked as generated")
	// ErrFormatFailed indicates a non-zero exit of the external formatter.
	ErrFormatFailed = errors.New("qlgen: format failed")
	// ErrGenerationFailed indicates a code generation failure.
	ErrGenerationFailed = errors.New("qlgen: code generation failed")
)

// SchemaError represents a schema definition error.
type SchemaError struct {
	Class    string
	Property string
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("qlgen: schema error")
	if e.Class != "" {
		b.WriteString(" on class ")
		b.WriteString(e.Class)
	}
	if e.Property != "" {
		b.WriteString(" property ")
		b.WriteString(e.Property)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for SchemaError.
func (e *SchemaError) Is(target error) bool {
	return target == ErrInvalidSchema
}

// NewSchemaError creates a new SchemaError.
func NewSchemaError(class, property, message string, cause error) *SchemaError {
	return &SchemaError{
		Class:    class,
		Property: property,
		Message:  message,
		Cause:    cause,
	}
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("qlgen: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("qlgen: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// ReferenceError reports a class that references an unknown class,
// either as a base or as a property type.
type ReferenceError struct {
	From string
	To   string
}

// Error implements the error interface.
func (e *ReferenceError) Error() string {
	return fmt.Sprintf("qlgen: class %s references unknown class %s", e.From, e.To)
}

// Is reports whether the target matches the sentinel error for ReferenceError.
func (e *ReferenceError) Is(target error) bool {
	return target == ErrBrokenReference
}

// StubError reports a stub file that carries the generated marker but
// whose content was modified.
type StubError struct {
	File string
}

// Error implements the error interface.
func (e *StubError) Error() string {
	return fmt.Sprintf("qlgen: %s stub was modified but is still marked as generated", e.File)
}

// Is reports whether the target matches the sentinel error for StubError.
func (e *StubError) Is(target error) bool {
	return target == ErrModifiedStub
}

// FormatError reports a failed run of the external formatter.
type FormatError struct {
	Binary string
	Cause  error
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("qlgen: %s format failed: %v", e.Binary, e.Cause)
	}
	return fmt.Sprintf("qlgen: %s format failed", e.Binary)
}

// Unwrap returns the underlying error.
func (e *FormatError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for FormatError.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormatFailed
}

// GenerationError represents a code generation error.
type GenerationError struct {
	Phase   string // "survey", "render", "cleanup", etc.
	File    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("qlgen: generation error")
	if e.Phase != "" {
		b.WriteString(" in phase ")
		b.WriteString(e.Phase)
	}
	if e.File != "" {
		b.WriteString(" (file: ")
		b.WriteString(e.File)
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for GenerationError.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// NewGenerationError creates a new GenerationError.
func NewGenerationError(phase, file, message string, cause error) *GenerationError {
	return &GenerationError{
		Phase:   phase,
		File:    file,
		Message: message,
		Cause:   cause,
	}
}

// IsSchemaError reports whether the error is a SchemaError.
func IsSchemaError(err error) bool {
	var schemaErr *SchemaError
	return errors.As(err, &schemaErr)
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsReferenceError reports whether the error is a ReferenceError.
func IsReferenceError(err error) bool {
	var refErr *ReferenceError
	return errors.As(err, &refErr)
}

// IsStubError reports whether the error is a StubError.
func IsStubError(err error) bool {
	var stubErr *StubError
	return errors.As(err, &stubErr)
}

// IsFormatError reports whether the error is a FormatError.
func IsFormatError(err error) bool {
	var fmtErr *FormatError
	return errors.As(err, &fmtErr)
}

// IsGenerationError reports whether the error is a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}
