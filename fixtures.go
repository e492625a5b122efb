package main

import (
	"context"

	"scrim/internal/back"
	"scrim/internal/config"
)

func loadFixtures(conf *config.Config) error {
	if err := runMigrations(conf.DatabasePath); err != nil {
		return err
	}

	b, err := back.New("sqlite3", sqliteDSN(conf.DatabasePath), conf)
	if err != nil {
		return err
	}
	defer b.Close()

	return b.LoadFixtures(context.Background())
}
