package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// timestampLayout is the text form used for last_update columns.
const timestampLayout = "2006-01-02 15:04:05"

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(value sql.NullString) (time.Time, error) {
	if !value.Valid || value.String == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(timestampLayout, value.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", value.String, err)
	}
	return parsed, nil
}

// nullString stores blank optional text as NULL.
func nullString(value string) sql.NullString {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func nullInt64(value *int64) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *value, Valid: true}
}

func int64Ptr(value sql.NullInt64) *int64 {
	if !value.Valid {
		return nil
	}
	v := value.Int64
	return &v
}

// likePattern escapes LIKE wildcards in fragment and wraps it for substring matching.
func likePattern(fragment string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(fragment) + "%"
}

func rowsAffected(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}
