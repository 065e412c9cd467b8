package application

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrDuplicateKey is returned when a registration number already belongs to another intern.
	ErrDuplicateKey = errors.New("application: registration number already in use")
	// ErrMissingIdentity is returned when update or delete is called on an entity without identifier.
	ErrMissingIdentity = errors.New("application: entity has no identifier")
	// ErrIdentityAlreadySet is returned when add is called on an entity that already has an identifier.
	ErrIdentityAlreadySet = errors.New("application: entity already has an identifier")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
	causes      []error
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, v.FieldErrors[field]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap exposes the underlying validation errors to errors.Is and errors.As.
func (v *ValidationError) Unwrap() []error {
	if v == nil {
		return nil
	}
	return v.causes
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// addCause records a field error together with the error that produced it.
func (v *ValidationError) addCause(field string, err error) {
	v.add(field, err.Error())
	v.causes = append(v.causes, err)
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
	v.causes = append(v.causes, other.causes...)
}

// orNil returns nil for an empty error so callers can return it directly.
func (v *ValidationError) orNil() error {
	if !v.HasErrors() {
		return nil
	}
	return v
}
