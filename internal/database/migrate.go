package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/mysql/*.sql migrations/postgres/*.sql
var migrations embed.FS

// Migration directions understood by Migrate.
const (
	MigrateUp     = "up"
	MigrateDown   = "down"
	MigrateStatus = "status"
)

// gooseRun is a seam for tests.
var gooseRun = func(ctx context.Context, command string, db *sql.DB, dir string) error {
	switch command {
	case MigrateUp:
		return goose.UpContext(ctx, db, dir)
	case MigrateDown:
		return goose.DownContext(ctx, db, dir)
	case MigrateStatus:
		return goose.StatusContext(ctx, db, dir)
	}
	return fmt.Errorf("unknown migration command %q", command)
}

// Migrate runs the embedded goose migrations for driver against db.
func Migrate(ctx context.Context, db *sql.DB, driver, command string) error {
	dir, dialect, err := migrationDir(driver)
	if err != nil {
		return err
	}
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseRun(ctx, command, db, dir); err != nil {
		return fmt.Errorf("migrate %s: %w", command, err)
	}
	return nil
}

func migrationDir(driver string) (dir, dialect string, err error) {
	switch driver {
	case DriverMySQL:
		return "migrations/mysql", "mysql", nil
	case DriverPostgres:
		return "migrations/postgres", "postgres", nil
	}
	return "", "", fmt.Errorf("no migrations for driver %q", driver)
}
