package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

// Connect opens and pings the assessment store. driver is "postgres" or
// "sqlite".
func Connect(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	tunePool(driver, db)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if driver == DriverSQLite {
		for _, pragma := range []string{
			"PRAGMA foreign_keys = ON",
			"PRAGMA journal_mode = WAL",
			"PRAGMA busy_timeout = 5000",
		} {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
			}
		}
	}

	return db, nil
}

func tunePool(driver string, db *sql.DB) {
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		return
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(45 * time.Minute)
}

// Migrate applies the embedded migrations for driver on a dedicated
// connection, closed before returning.
func Migrate(driver, dsn string) error {
	src, err := iofs.New(migrations, "migrations/"+driver)
	if err != nil {
		return fmt.Errorf("failed to load %s migrations: %w", driver, err)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}

	var m *migrate.Migrate
	switch driver {
	case DriverPostgres:
		drv, derr := migratepg.WithInstance(db, &migratepg.Config{})
		if derr != nil {
			_ = db.Close()
			return fmt.Errorf("failed to init postgres migrator: %w", derr)
		}
		m, err = migrate.NewWithInstance("iofs", src, driver, drv)
	case DriverSQLite:
		drv, derr := migratesqlite.WithInstance(db, &migratesqlite.Config{})
		if derr != nil {
			_ = db.Close()
			return fmt.Errorf("failed to init sqlite migrator: %w", derr)
		}
		m, err = migrate.NewWithInstance("iofs", src, driver, drv)
	default:
		_ = db.Close()
		return fmt.Errorf("unsupported driver %q", driver)
	}
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
