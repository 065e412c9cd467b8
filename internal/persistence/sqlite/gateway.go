package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/example/internship-tracker/internal/persistence"
)

// Config holds the connection settings for the gateway.
type Config struct {
	// Path is the database file. ":memory:" keeps everything in process.
	Path string
	// BusyTimeout sets how long to wait for database locks.
	BusyTimeout time.Duration
	// JournalMode sets the SQLite journal mode (WAL, DELETE, MEMORY, ...).
	JournalMode string
}

// Gateway owns the single database connection used by every repository for
// the lifetime of the process.
type Gateway struct {
	db     *sql.DB
	config Config
	logger *slog.Logger
}

// Open connects to the database, enables foreign keys and creates the schema
// when it is missing. Callers must Close the gateway.
func Open(ctx context.Context, config Config, logger *slog.Logger) (*Gateway, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(config.Path) == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if config.BusyTimeout < 0 {
		return nil, fmt.Errorf("busy timeout cannot be negative")
	}
	if err := createDatabaseDir(config.Path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// One connection: pragmas stick and every statement is serialized.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	g := &Gateway{db: db, config: config, logger: logger.With("component", "sqlite")}
	if err := g.configure(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := g.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	g.logger.InfoContext(ctx, "database opened", "path", config.Path)
	return g, nil
}

func (g *Gateway) configure(ctx context.Context) error {
	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", g.config.BusyTimeout.Milliseconds()),
		"PRAGMA foreign_keys = ON",
	}
	if g.config.JournalMode != "" {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA journal_mode = %s", g.config.JournalMode))
	}
	for _, pragma := range pragmas {
		if _, err := g.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}
	if err := g.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping SQLite database: %w", err)
	}
	return nil
}

func createDatabaseDir(path string) error {
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}
	return nil
}

// Close releases the connection.
func (g *Gateway) Close() error {
	if g == nil || g.db == nil {
		return nil
	}
	return g.db.Close()
}

// Ping tests the database connection.
func (g *Gateway) Ping(ctx context.Context) error {
	return g.db.PingContext(ctx)
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ querier = (*sql.DB)(nil)
	_ querier = (*sql.Tx)(nil)
)

type txKey struct{}

type savepointKey struct{}

// querier returns the transaction bound to ctx, or the connection itself so
// the statement autocommits.
func (g *Gateway) querier(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok && tx != nil {
		return tx
	}
	return g.db
}

// WithTransaction runs fn inside a transaction carried by the context passed
// to fn. A nested call joins the outer transaction through a savepoint. The
// transaction is rolled back when fn returns an error or panics.
func (g *Gateway) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return withSavepoint(ctx, tx, fn)
	}

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// withSavepoint runs fn inside a savepoint of the enclosing transaction so a
// failing nested call undoes only its own writes.
func withSavepoint(ctx context.Context, tx *sql.Tx, fn func(ctx context.Context) error) error {
	depth, _ := ctx.Value(savepointKey{}).(int)
	depth++
	name := fmt.Sprintf("sp_%d", depth)

	if _, err := tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to open savepoint: %w", err)
	}
	if err := fn(context.WithValue(ctx, savepointKey{}, depth)); err != nil {
		if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO "+name); rbErr != nil {
			return fmt.Errorf("savepoint failed (rollback error: %v): %w", rbErr, err)
		}
		_, _ = tx.ExecContext(ctx, "RELEASE "+name)
		return err
	}
	if _, err := tx.ExecContext(ctx, "RELEASE "+name); err != nil {
		return fmt.Errorf("failed to release savepoint: %w", err)
	}
	return nil
}

var _ persistence.Transactor = (*Gateway)(nil)

// mapError translates driver errors into persistence sentinels, keeping the
// driver error in the chain.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.ErrNotFound
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %v", persistence.ErrDuplicate, err)
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return fmt.Errorf("%w: %v", persistence.ErrForeignKey, err)
		case sqlite3.SQLITE_CONSTRAINT_NOTNULL, sqlite3.SQLITE_CONSTRAINT_CHECK:
			return fmt.Errorf("%w: %v", persistence.ErrConstraintViolation, err)
		}
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %v", persistence.ErrDuplicate, err)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %v", persistence.ErrForeignKey, err)
	case strings.Contains(msg, "CHECK constraint failed"), strings.Contains(msg, "NOT NULL constraint failed"):
		return fmt.Errorf("%w: %v", persistence.ErrConstraintViolation, err)
	}
	return err
}
