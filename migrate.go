package main

import (
	"embed"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

//go:embed resources/migrations/*.sql
var migrations embed.FS

// runMigrations brings the database schema up to date.
func runMigrations(dbPath string) error {
	source, err := iofs.New(migrations, "resources/migrations")
	if err != nil {
		return err
	}

	migrator, err := migrate.NewWithSourceInstance("iofs", source, "sqlite3://"+dbPath)
	if err != nil {
		return errors.Wrap(err, "unable to create migrator")
	}
	defer migrator.Close()

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Debug("database schema is up to date")
			return nil
		}
		return errors.Wrap(err, "unable to migrate")
	}

	version, _, err := migrator.Version()
	if err != nil {
		return err
	}
	log.Infof("database migrated to version %d", version)

	return nil
}
