// Package migrate applies the embedded SQL schema migrations with golang-migrate.
package migrate

import (
	"errors"
	"fmt"

	"membership-backoffice/internal/db"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// ErrNoChange reports that the schema is already at the requested version.
var ErrNoChange = migrate.ErrNoChange

// Run applies the embedded migrations against dsn in the given direction,
// "up" or "down". A schema already at the target version returns nil.
func Run(dsn string, direction string) error {
	if dsn == "" {
		return errors.New("DATABASE_URL is not set")
	}
	apply, err := step(direction)
	if err != nil {
		return err
	}

	src, err := iofs.New(db.MigrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("open migrate target: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if err := apply(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func step(direction string) (func(*migrate.Migrate) error, error) {
	switch direction {
	case "up":
		return (*migrate.Migrate).Up, nil
	case "down":
		return (*migrate.Migrate).Down, nil
	default:
		return nil, fmt.Errorf("direction must be up or down, got %q", direction)
	}
}
