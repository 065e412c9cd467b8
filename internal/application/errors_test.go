package application

import (
	"errors"
	"fmt"
	"testing"

	"github.com/example/internship-tracker/internal/persistence"
	"github.com/example/internship-tracker/internal/validation"
)

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	var err *ValidationError
	if err.Error() != "" {
		t.Fatalf("expected empty string for nil error, got %q", err.Error())
	}

	empty := &ValidationError{}
	if got := empty.Error(); got != "validation failed" {
		t.Fatalf("expected generic message for empty error, got %q", got)
	}

	withFields := &ValidationError{FieldErrors: map[string]string{"email": "bad", "end_date": "too early"}}
	if got := withFields.Error(); got != "validation failed: email: bad; end_date: too early" {
		t.Fatalf("expected sorted field messages, got %q", got)
	}
}

func TestValidationError_AddMergeAndUnwrap(t *testing.T) {
	t.Parallel()

	base := &ValidationError{}
	base.addCause("end_date", fmt.Errorf("dates: %w", validation.ErrInvalidRange))
	if !errors.Is(base, validation.ErrInvalidRange) {
		t.Fatalf("expected cause to be reachable through errors.Is")
	}

	other := &ValidationError{}
	other.add("name", "required")
	base.merge(other)
	base.merge(nil)
	if len(base.FieldErrors) != 2 {
		t.Fatalf("expected two fields after merge, got %v", base.FieldErrors)
	}

	if (&ValidationError{}).orNil() != nil {
		t.Fatalf("expected empty validation error to collapse to nil")
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	cases := map[string]error{
		"":                   nil,
		"not_found":          persistence.ErrNotFound,
		"duplicate_key":      fmt.Errorf("wrap: %w", ErrDuplicateKey),
		"identity":           ErrMissingIdentity,
		"storage_constraint": persistence.ErrForeignKey,
		"validation":         &ValidationError{FieldErrors: map[string]string{"a": "b"}},
		"unexpected":         errors.New("disk on fire"),
	}
	for want, err := range cases {
		if got := ErrorKind(err); got != want {
			t.Fatalf("ErrorKind(%v) = %q, want %q", err, got, want)
		}
	}
}
