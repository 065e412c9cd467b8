package sqlite

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
)

//go:embed schema.sql
var schemaScript string

// EnsureSchema creates every table from the static schema script when the
// database does not contain the interns table yet.
func (g *Gateway) EnsureSchema(ctx context.Context) error {
	var count int
	err := g.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'interns'",
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}
	if count > 0 {
		return nil
	}

	g.logger.InfoContext(ctx, "creating database schema")
	return g.WithTransaction(ctx, func(ctx context.Context) error {
		tx := g.querier(ctx)
		for i, stmt := range splitStatements(schemaScript) {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("schema statement %d: %w", i+1, err)
			}
		}
		return nil
	})
}

// splitStatements separates the script on semicolons and drops comment-only lines.
func splitStatements(script string) []string {
	var statements []string
	for _, raw := range strings.Split(script, ";") {
		var lines []string
		for _, line := range strings.Split(raw, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "--") {
				continue
			}
			lines = append(lines, line)
		}
		if len(lines) > 0 {
			statements = append(statements, strings.Join(lines, "\n"))
		}
	}
	return statements
}
