package testhelpers

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	root "github.com/land-registry-map"
)

// ApplyMigrations applies embedded goose migrations to the test database
func ApplyMigrations(db *sql.DB) error {
	goose.SetBaseFS(root.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
