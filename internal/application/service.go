package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/example/internship-tracker/internal/persistence"
	"github.com/example/internship-tracker/internal/validation"
)

// writeResult applies the write-path policy shared by Update and Delete:
// storage failures are logged and reported as false instead of returned.
func writeResult(ctx context.Context, logger *slog.Logger, action string, ok bool, err error) bool {
	if err != nil {
		logger.ErrorContext(ctx, "failed to "+action, "error", err, "error_kind", ErrorKind(err))
		return false
	}
	if !ok {
		logger.WarnContext(ctx, action+" matched no row")
		return false
	}
	logger.InfoContext(ctx, action+" succeeded")
	return true
}

// lookup converts a repository not-found error into an absent result.
func lookup[T any](value T, err error) (*T, error) {
	if errors.Is(err, persistence.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// requireFields turns a missing-fields result into a ValidationError.
func requireFields[T any](entity T, fields []validation.Field[T]) *ValidationError {
	vErr := &ValidationError{}
	err := validation.ValidateRequiredFields(entity, fields)
	var missing *validation.MissingFieldsError
	if errors.As(err, &missing) {
		vErr.add("required", missing.Error())
		vErr.causes = append(vErr.causes, missing)
	}
	return vErr
}

func trimAll(values ...*string) {
	for _, v := range values {
		*v = strings.TrimSpace(*v)
	}
}
