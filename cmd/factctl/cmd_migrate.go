package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the SQL files in the migrations directory in name order",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := openDeps(cmd)
			if err != nil {
				return err
			}
			defer d.Close()

			dir, _ := cmd.Flags().GetString("dir")
			files, err := migrationFiles(dir)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no .sql files in %s", dir)
			}
			for _, f := range files {
				raw, err := os.ReadFile(f)
				if err != nil {
					return fmt.Errorf("failed to read migration file: %w", err)
				}
				n, err := applyMigration(cmd.Context(), d.db, string(raw))
				if err != nil {
					return fmt.Errorf("%s: %w", filepath.Base(f), err)
				}
				fmt.Printf("%s: %d statements applied\n", filepath.Base(f), n)
			}
			return nil
		},
	}
	cmd.Flags().String("dir", "migrations", "Directory holding the .sql migrations")
	return cmd
}

func migrationFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// splitStatements splits a script on ';' and drops empty and comment-only pieces.
// Migrations must not use dollar-quoted bodies.
func splitStatements(script string) []string {
	var out []string
	for _, stmt := range strings.Split(script, ";") {
		var kept []string
		for _, line := range strings.Split(stmt, "\n") {
			if t := strings.TrimSpace(line); t != "" && !strings.HasPrefix(t, "--") {
				kept = append(kept, line)
			}
		}
		if s := strings.TrimSpace(strings.Join(kept, "\n")); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// applyMigration runs every statement of script in one transaction.
func applyMigration(ctx context.Context, db *sql.DB, script string) (int, error) {
	stmts := splitStatements(script)
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return 0, fmt.Errorf("statement %d failed: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit migration: %w", err)
	}
	return len(stmts), nil
}
