package protobuilder

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors shared by the generator packages.
var (
	// ErrNotFound is returned when a requested message, file or dependency does not exist.
	ErrNotFound = errors.New("protobuilder: not found")

	// ErrInvalidConfig is returned when a type map entry or a configuration
	// document violates the configuration rules.
	ErrInvalidConfig = errors.New("protobuilder: invalid configuration")

	// ErrDuplicateKey is returned when a configuration document defines the
	// same type map key more than once.
	ErrDuplicateKey = errors.New("protobuilder: duplicate configuration key")

	// ErrInvalidSchema is returned when the resolved schema cannot be used
	// for generation (e.g. messages from different packages in one file).
	ErrInvalidSchema = errors.New("protobuilder: invalid schema")

	// ErrGenerationFailed is returned when a generated artifact could not be produced.
	ErrGenerationFailed = errors.New("protobuilder: generation failed")
)

// NotFoundError represents an error when a named artifact is not found.
type NotFoundError struct {
	label string // kind of the artifact: "message", "file", "dependency"
	name  string
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.name != "" {
		return fmt.Sprintf("protobuilder: %s %q not found", e.label, e.name)
	}
	return fmt.Sprintf("protobuilder: %s not found", e.label)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Label returns the kind of artifact that was looked up.
func (e *NotFoundError) Label() string {
	return e.label
}

// Name returns the name that was searched for.
func (e *NotFoundError) Name() string {
	return e.name
}

// NewNotFoundError returns a new NotFoundError for the given artifact kind and name.
func NewNotFoundError(label, name string) *NotFoundError {
	return &NotFoundError{label: label, name: name}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// DuplicateKeyError reports type map keys that occur more than once in a
// configuration document.
type DuplicateKeyError struct {
	Keys []string // sorted, each reported once
}

// Error returns the error string.
func (e *DuplicateKeyError) Error() string {
	if len(e.Keys) == 0 {
		return "protobuilder: Configuration contains duplicate key(s)"
	}
	return fmt.Sprintf("protobuilder: Configuration contains duplicate key(s): %q", e.Keys[0]) +
		joinQuoted(e.Keys[1:])
}

// Is reports whether the target matches ErrDuplicateKey or ErrInvalidConfig.
func (e *DuplicateKeyError) Is(err error) bool {
	return err == ErrDuplicateKey || err == ErrInvalidConfig
}

// NewDuplicateKeyError returns a new DuplicateKeyError for the given keys.
func NewDuplicateKeyError(keys ...string) *DuplicateKeyError {
	return &DuplicateKeyError{Keys: keys}
}

// IsDuplicateKey returns true if the error is a DuplicateKeyError.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	var e *DuplicateKeyError
	return errors.As(err, &e)
}

func joinQuoted(keys []string) string {
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, ", %q", k)
	}
	return b.String()
}
