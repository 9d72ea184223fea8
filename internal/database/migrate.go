package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"lesson-byte/internal/logger"

	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const createVersionTable = `CREATE TABLE schema_migrations (
    version    VARCHAR2(255) PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
)`

// Migration is one embedded .up.sql file.
type Migration struct {
	Version    string
	Statements []string
}

// LoadMigrations returns the embedded up migrations in version order.
func LoadMigrations() ([]Migration, error) {
	return loadMigrations(migrationFiles, "migrations")
}

func loadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("could not read migrations directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	migrations := make([]Migration, 0, len(names))
	for _, name := range names {
		content, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("could not read migration file %s: %w", name, err)
		}
		migrations = append(migrations, Migration{
			Version:    strings.TrimSuffix(name, ".up.sql"),
			Statements: SplitStatements(string(content)),
		})
	}
	return migrations, nil
}

// SplitStatements splits a script on ';' at line ends. Oracle executes one
// statement per call and rejects the trailing semicolon.
func SplitStatements(script string) []string {
	var statements []string
	var current strings.Builder
	for _, line := range strings.Split(script, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		if strings.HasSuffix(trimmed, ";") {
			current.WriteString(strings.TrimSuffix(strings.TrimRight(line, " \t\r"), ";"))
			if stmt := strings.TrimSpace(current.String()); stmt != "" {
				statements = append(statements, stmt)
			}
			current.Reset()
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	if stmt := strings.TrimSpace(current.String()); stmt != "" {
		statements = append(statements, stmt)
	}
	return statements
}

// RunMigrations applies every embedded migration not yet recorded in
// schema_migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	migrations, err := LoadMigrations()
	if err != nil {
		return err
	}
	return applyMigrations(ctx, db, migrations)
}

func applyMigrations(ctx context.Context, db *sql.DB, migrations []Migration) error {
	l := logger.Get()

	if _, err := db.ExecContext(ctx, createVersionTable); err != nil && !isAlreadyExists(err) {
		return fmt.Errorf("could not create schema_migrations: %w", err)
	}

	for _, m := range migrations {
		var applied int
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE version = :1", m.Version).Scan(&applied); err != nil {
			return fmt.Errorf("could not check migration %s: %w", m.Version, err)
		}
		if applied > 0 {
			l.Debug("Migration already applied", zap.String("version", m.Version))
			continue
		}

		for _, stmt := range m.Statements {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("could not execute migration %s: %w", m.Version, err)
			}
		}
		if _, err := db.ExecContext(ctx,
			"INSERT INTO schema_migrations (version, applied_at) VALUES (:1, :2)",
			m.Version, time.Now().UTC(),
		); err != nil {
			return fmt.Errorf("could not record migration %s: %w", m.Version, err)
		}
		l.Info("Executed migration", zap.String("version", m.Version))
	}

	l.Info("Migrations completed successfully")
	return nil
}

// isAlreadyExists matches ORA-00955 "name is already used by an existing object".
func isAlreadyExists(err error) bool {
	return strings.Contains(err.Error(), "ORA-00955")
}
