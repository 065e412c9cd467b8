package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/example/internship-tracker/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// database for integration-style tests.
type SQLiteHarness struct {
	Gateway *sqlite.Gateway
	sqlite.Repositories

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness opens a gateway on a temporary file with the schema
// already created. Close is registered with tb.Cleanup.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "internships.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	gateway, err := sqlite.Open(context.Background(), sqlite.Config{Path: path}, logger)
	if err != nil {
		tb.Fatalf("failed to open gateway: %v", err)
	}

	harness := &SQLiteHarness{
		Gateway:      gateway,
		Repositories: sqlite.NewRepositories(gateway),
		cleanup: func() {
			_ = gateway.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
