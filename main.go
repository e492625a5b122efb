package main

import (
	"fmt"
	"os"

	"scrim/internal/config"

	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
)

// Version holds the build-time version string.
var Version = "unknown" // nolint:gochecknoglobals

func main() {
	configPath := flag.String("config", "", "path to the JSON config file (default: user config dir)")
	flag.Usage = func() { fmt.Fprint(os.Stderr, help()) }
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using environment variables")
	}

	switch flag.Arg(0) {
	case "version":
		fmt.Fprintf(os.Stdout, "scrim %s\n", Version)
		return
	case "help":
		fmt.Fprint(os.Stdout, help())
		return
	case "serve", "migrate", "fixtures":
	default:
		fmt.Fprint(os.Stderr, help())
		os.Exit(1)
	}

	conf, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("unable to load config: %s", err)
	}

	if conf.Debug {
		log.SetLevel(log.DebugLevel)
	}

	switch flag.Arg(0) {
	case "serve":
		err = serve(conf)
	case "migrate":
		err = runMigrations(conf.DatabasePath)
	case "fixtures":
		err = loadFixtures(conf)
	}

	if err != nil {
		log.Fatal(err)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.NewFromUserConfigDir()
	}

	return config.Load(path)
}

func help() string {
	return fmt.Sprintf(`
scrim runs a team matchmaking ladder for Discord: players queue for a mode,
get matched first come first served, and approved results update their Elo
rating.

Usage: %[1]s [--config PATH] COMMAND

COMMANDS
    fixtures  create the default modes
    help      display this help
    migrate   create or upgrade the database schema
    serve     start the Discord bot, the web API, and the matchmaker
    version   display the current version
`,
		os.Args[0],
	)
}
