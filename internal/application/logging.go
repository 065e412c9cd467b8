package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/internship-tracker/internal/logging"
	"github.com/example/internship-tracker/internal/persistence"
	"github.com/example/internship-tracker/internal/validation"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

// serviceLogger prefers the logger carried by ctx, so service lines written
// during an import keep the run attributes.
func serviceLogger(ctx context.Context, base *slog.Logger, service, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = defaultLogger(base)
	}

	logger = logger.With("service", service)
	if operation != "" {
		logger = logger.With("operation", operation)
	}
	if len(attrs) > 0 {
		logger = logger.With(attrs...)
	}
	return logger
}

var errorKinds = []struct {
	kind    string
	targets []error
}{
	{"not_found", []error{ErrNotFound, persistence.ErrNotFound}},
	{"duplicate_key", []error{ErrDuplicateKey}},
	{"identity", []error{ErrMissingIdentity, ErrIdentityAlreadySet}},
	{"storage_constraint", []error{persistence.ErrDuplicate, persistence.ErrForeignKey, persistence.ErrConstraintViolation}},
	{"validation", []error{validation.ErrInvalidFormat, validation.ErrInvalidRange}},
}

// ErrorKind labels err for the error_kind log attribute.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	for _, entry := range errorKinds {
		for _, target := range entry.targets {
			if errors.Is(err, target) {
				return entry.kind
			}
		}
	}

	var vErr *ValidationError
	var missing *validation.MissingFieldsError
	if errors.As(err, &vErr) || errors.As(err, &missing) {
		return "validation"
	}
	return "unexpected"
}
