package validation

import (
	"fmt"
	"strings"
)

// Field pairs an accessor with the label shown to users when the value is missing.
// The accessor returns nil for an absent value.
type Field[T any] struct {
	Label string
	Value func(T) any
}

// MissingFieldsError lists every missing field label in declaration order.
type MissingFieldsError struct {
	Labels []string
}

func (e *MissingFieldsError) Error() string {
	if e == nil || len(e.Labels) == 0 {
		return ""
	}
	return fmt.Sprintf("required fields missing: %s", strings.Join(e.Labels, ", "))
}

// ValidateRequiredFields evaluates each field against entity and reports all
// that are nil or blank strings. Zero numbers and false are present values.
func ValidateRequiredFields[T any](entity T, fields []Field[T]) error {
	var missing []string
	for _, field := range fields {
		if field.Value == nil || isMissing(field.Value(entity)) {
			missing = append(missing, field.Label)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &MissingFieldsError{Labels: missing}
}

func isMissing(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case *string:
		return v == nil || strings.TrimSpace(*v) == ""
	case *int64:
		return v == nil
	default:
		return false
	}
}
