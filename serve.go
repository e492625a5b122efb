package main

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"scrim/internal/back"
	"scrim/internal/bot"
	"scrim/internal/config"
	"scrim/internal/web"

	log "github.com/sirupsen/logrus"
)

func serve(conf *config.Config) error {
	if err := runMigrations(conf.DatabasePath); err != nil {
		return err
	}

	b, err := back.New("sqlite3", sqliteDSN(conf.DatabasePath), conf)
	if err != nil {
		return err
	}
	defer b.Close()

	bot, err := bot.New(b, conf)
	if err != nil {
		return err
	}

	server := web.NewServer(b, conf)

	signaled := make(chan os.Signal, 1)
	signal.Notify(signaled, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	var wg sync.WaitGroup
	go b.Run(&wg, done)
	go bot.Serve(&wg, done)
	go server.Serve(&wg, done)

	sig := <-signaled
	log.Infof("received signal %s", sig)
	close(done)
	wg.Wait()

	log.Info("shutdown complete")

	return nil
}

func sqliteDSN(path string) string {
	return path + "?_foreign_keys=on&_busy_timeout=5000"
}
