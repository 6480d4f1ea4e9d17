package gen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/syssam/protobuilder"
)

// Sentinel errors for common failure cases.
var (
	// ErrInvalidSchema indicates messages that cannot be generated together.
	ErrInvalidSchema = protobuilder.ErrInvalidSchema
	// ErrInvalidOption indicates an invalid generator option.
	ErrInvalidOption = errors.New("protobuilder: invalid generator option")
	// ErrGenerationFailed indicates a code generation failure.
	ErrGenerationFailed = protobuilder.ErrGenerationFailed
)

// SchemaError represents a schema that cannot be turned into builders.
type SchemaError struct {
	Message string // Full name of the message (if applicable)
	Field   string // Field name (if applicable)
	Reason  string
	Cause   error
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("protobuilder: schema error")
	if e.Message != "" {
		b.WriteString(" on message ")
		b.WriteString(e.Message)
	}
	if e.Field != "" {
		b.WriteString(" field ")
		b.WriteString(e.Field)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
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
func NewSchemaError(message, field, reason string, cause error) *SchemaError {
	return &SchemaError{
		Message: message,
		Field:   field,
		Reason:  reason,
		Cause:   cause,
	}
}

// OptionError represents an invalid generator option.
type OptionError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *OptionError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("protobuilder: option error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("protobuilder: option error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for OptionError.
func (e *OptionError) Is(target error) bool {
	return target == ErrInvalidOption
}

// NewOptionError creates a new OptionError.
func NewOptionError(option string, value any, message string) *OptionError {
	return &OptionError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// GenerationError represents a code generation error.
type GenerationError struct {
	Phase   string // "config", "message", "template", "write"
	File    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("protobuilder: generation error")
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

// IsOptionError reports whether the error is an OptionError.
func IsOptionError(err error) bool {
	var optErr *OptionError
	return errors.As(err, &optErr)
}

// IsGenerationError reports whether the error is a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}
