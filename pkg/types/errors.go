package types

import (
	"errors"
	"fmt"
)

// Inventory lifecycle errors.
var (
	ErrDetached        = errors.New("inventory is detached")
	ErrAlreadyAttached = errors.New("inventory is already attached")
)

// Error kinds. Every typed error below unwraps to exactly one of these, so
// callers can branch with errors.Is and read details with errors.As.
var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("entity not found")
	ErrDuplicateName = errors.New("duplicate name")
	ErrIntegrity     = errors.New("referential integrity violation")
	ErrImportRecord  = errors.New("import record failed")
)

// ValidationError reports a missing required field or an invalid value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a ValidationError for field.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError reports an operation keyed by an identity that does not
// exist. Key is set instead of (or next to) ID for lookups by name or
// metadata key.
type NotFoundError struct {
	Entity string
	ID     int64
	Key    string
}

func (e *NotFoundError) Error() string {
	switch {
	case e.Key != "" && e.ID != 0:
		return fmt.Sprintf("%s %q not found for %d", e.Entity, e.Key, e.ID)
	case e.Key != "":
		return fmt.Sprintf("%s %q not found", e.Entity, e.Key)
	default:
		return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
	}
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NotFound builds a NotFoundError.
func NotFound(entity string, id int64) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// NotFoundKey builds a NotFoundError for a lookup by name or key.
func NotFoundKey(entity string, id int64, key string) error {
	return &NotFoundError{Entity: entity, ID: id, Key: key}
}

// DuplicateNameError reports a unique-constraint violation.
type DuplicateNameError struct {
	Entity string
	Name   string
}

func (e *DuplicateNameError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s already exists", e.Entity)
	}
	return fmt.Sprintf("%s %q already exists", e.Entity, e.Name)
}

func (e *DuplicateNameError) Unwrap() error { return ErrDuplicateName }

// IntegrityError reports a delete or write that would leave a dangling
// reference.
type IntegrityError struct {
	Entity string
	ID     int64
	Reason string
}

func (e *IntegrityError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("%s: %s", e.Entity, e.Reason)
	}
	return fmt.Sprintf("%s %d: %s", e.Entity, e.ID, e.Reason)
}

func (e *IntegrityError) Unwrap() error { return ErrIntegrity }

// ImportRecordError describes one record that could not be imported. It
// never aborts the batch it belongs to.
type ImportRecordError struct {
	Entity string
	Index  int    // 1-based record position; CSV line number for CSV input.
	Key    string // natural key of the record when one could be read.
	Err    error
}

func (e *ImportRecordError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s record %d: %v", e.Entity, e.Index, e.Err)
	}
	return fmt.Sprintf("%s record %d (%s): %v", e.Entity, e.Index, e.Key, e.Err)
}

// Unwrap exposes both the import kind and the underlying cause.
func (e *ImportRecordError) Unwrap() []error { return []error{ErrImportRecord, e.Err} }

// IsUserError reports whether err is one of the user-facing error kinds
// (as opposed to an I/O or storage failure).
func IsUserError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrDuplicateName) ||
		errors.Is(err, ErrIntegrity)
}
