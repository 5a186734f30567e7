package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"bat-ads/db/migrations"
)

// Driver names accepted by Migrate and the storage factory.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Migrate applies all up migrations for the driver to the database at addr.
// For postgres addr is a connection URL, for sqlite a file path.
func Migrate(driverName, addr string) error {
	switch driverName {
	case DriverPostgres:
		conn, err := sql.Open("postgres", addr)
		if err != nil {
			return err
		}
		defer conn.Close()
		drv, err := postgres.WithInstance(conn, &postgres.Config{})
		if err != nil {
			return err
		}
		return migrateWith(DriverPostgres, drv)
	case DriverSQLite:
		conn, err := OpenSQLite(addr)
		if err != nil {
			return err
		}
		defer conn.Close()
		return MigrateSQLite(conn)
	default:
		return fmt.Errorf("unknown storage driver %q", driverName)
	}
}

// MigrateSQLite applies the sqlite migrations to an open handle.
func MigrateSQLite(conn *sql.DB) error {
	drv, err := sqlite.WithInstance(conn, &sqlite.Config{})
	if err != nil {
		return err
	}
	return migrateWith(DriverSQLite, drv)
}

func migrateWith(name string, drv database.Driver) error {
	src, err := iofs.New(migrations.FS, name)
	if err != nil {
		return err
	}
	defer src.Close()

	mg, err := migrate.NewWithInstance("iofs", src, name, drv)
	if err != nil {
		return err
	}

	_, dirty, err := mg.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return err
	}

	if dirty {
		return errors.New("database is in dirty state")
	}

	if err = mg.Migrate(migrations.Version); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}
