package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrations embed.FS

// schemaLatest is the version of the last migration in migrations/.
const schemaLatest = 2

// migrateUp runs all pending migrations. It is a no-op when the schema is
// already current.
func migrateUp(db *sql.DB) error {
	m, err := newMigrate(db)
	if err != nil {
		return err
	}
	// m is not closed: that would close db as well.

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}

	return nil
}

// schemaVersion returns the applied migration version, 0 if none.
func schemaVersion(db *sql.DB) (uint, bool, error) {
	m, err := newMigrate(db)
	if err != nil {
		return 0, false, err
	}

	version, dirty, err := m.Version()
	if err != nil && errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}

	return version, dirty, err
}

// checkSchema refuses databases that were not created by Create, and ones
// written by a newer schema. Older datasets are migrated up.
func checkSchema(ctx context.Context, db *sql.DB) (uint, error) {
	var tables int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sqlite_master
		WHERE type = 'table' AND name = 'schema_migrations'`).Scan(&tables)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema: %w", err)
	}

	if tables == 0 {
		return 0, fmt.Errorf("%w: no schema version", ErrNotDataset)
	}

	version, dirty, err := schemaVersion(db)
	switch {
	case err != nil:
		return 0, err

	case version == 0:
		return 0, fmt.Errorf("%w: no schema version", ErrNotDataset)

	case dirty:
		return version, fmt.Errorf("%w: schema %d is dirty", ErrNotDataset, version)

	case version > schemaLatest:
		return version, fmt.Errorf("%w: schema %d is newer than %d", ErrNotDataset, version, schemaLatest)

	case version < schemaLatest:
		if err := migrateUp(db); err != nil {
			return version, err
		}
	}

	return schemaLatest, nil
}

func newMigrate(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded migrations: %w", err)
	}

	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return m, nil
}
