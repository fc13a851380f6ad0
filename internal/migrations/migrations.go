package migrations

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed *.sql
var files embed.FS

// RunMigrations brings the transactional and summary schema up to date from
// the embedded SQL files. With autoMigrate disabled it reports the current
// version and applies nothing.
func RunMigrations(db *sql.DB, autoMigrate bool) error {
	source, err := iofs.New(files, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("read migration version: %w", err)
	}

	if dirty {
		// An interrupted migration leaves the version flagged dirty. The
		// schema lives in one baseline migration, so forcing back to the
		// recorded version is safe and the retry below reapplies it.
		slog.Warn("[Migrations] Dirty schema version, forcing recovery", "version", version)
		if err := m.Force(int(version)); err != nil {
			return fmt.Errorf("recover dirty schema at version %d: %w", version, err)
		}
	}

	if !autoMigrate {
		slog.Info("[Migrations] auto_migrate disabled, leaving schema as is",
			"version", version, "dirty", dirty)
		return nil
	}

	if err := m.Up(); err != nil {
		if err == migrate.ErrNoChange {
			slog.Info("[Migrations] Schema already up to date", "version", version)
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}

	applied, _, err := m.Version()
	if err != nil {
		return fmt.Errorf("read applied migration version: %w", err)
	}
	slog.Info("[Migrations] Schema migrated", "from", version, "to", applied)
	return nil
}
