package storage

import (
	"database/sql"
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type migrator interface {
	Up() error
	Down() error
}

// Seams for tests.
var (
	sqlOpen                = sql.Open
	postgresWithInstanceFn = func(db *sql.DB, cfg *postgres.Config) (database.Driver, error) {
		return postgres.WithInstance(db, cfg)
	}
	iofsNewFn              = iofs.New
	migrateNewWithInstance = func(sourceName string, src source.Driver, dbName string, db database.Driver) (migrator, error) {
		m, err := migrate.NewWithInstance(sourceName, src, dbName, db)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
)

// RunMigrations applies every embedded migration that has not run yet.
func RunMigrations(dsn string) error {
	return withMigrator(dsn, func(m migrator) error { return m.Up() })
}

// RollbackAll reverts every migration down to an empty schema.
func RollbackAll(dsn string) error {
	return withMigrator(dsn, func(m migrator) error { return m.Down() })
}

func withMigrator(dsn string, step func(migrator) error) error {
	db, err := sqlOpen("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	driver, err := postgresWithInstanceFn(db, &postgres.Config{})
	if err != nil {
		return err
	}
	src, err := iofsNewFn(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	m, err := migrateNewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return err
	}
	if err := step(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
