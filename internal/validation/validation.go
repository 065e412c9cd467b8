// Package validation holds the pure field checks shared by the entity
// services and the import pipeline.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Date layouts accepted on input. ISODateLayout is also the storage format.
const (
	BrazilianDateLayout = "02/01/2006"
	ISODateLayout       = "2006-01-02"
)

var (
	// ErrInvalidFormat is returned when a value does not match any accepted format.
	ErrInvalidFormat = errors.New("validation: invalid format")
	// ErrInvalidRange is returned when an end date is not strictly after its start date.
	ErrInvalidRange = errors.New("validation: end date must be after start date")
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)

// ParseFlexibleDate accepts DD/MM/YYYY or YYYY-MM-DD and returns the ISO form.
func ParseFlexibleDate(text string) (string, error) {
	parsed, err := parseDate(text)
	if err != nil {
		return "", err
	}
	return parsed.Format(ISODateLayout), nil
}

func parseDate(text string) (time.Time, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("%w: empty date", ErrInvalidFormat)
	}
	for _, layout := range []string{"2/1/2006", ISODateLayout} {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: date %q, expected DD/MM/YYYY or YYYY-MM-DD", ErrInvalidFormat, trimmed)
}

// ValidateDateRange parses both dates and requires end to be strictly after
// start. The normalized ISO values are returned for storage.
func ValidateDateRange(start, end string) (string, string, error) {
	startDate, err := parseDate(start)
	if err != nil {
		return "", "", fmt.Errorf("start date: %w", err)
	}
	endDate, err := parseDate(end)
	if err != nil {
		return "", "", fmt.Errorf("end date: %w", err)
	}
	if !endDate.After(startDate) {
		return "", "", fmt.Errorf("%w: %s is not after %s", ErrInvalidRange,
			endDate.Format(ISODateLayout), startDate.Format(ISODateLayout))
	}
	return startDate.Format(ISODateLayout), endDate.Format(ISODateLayout), nil
}

// ValidateEmailFormat performs a syntactic check only.
func ValidateEmailFormat(text string) error {
	if !emailPattern.MatchString(strings.TrimSpace(text)) {
		return fmt.Errorf("%w: email %q", ErrInvalidFormat, text)
	}
	return nil
}
