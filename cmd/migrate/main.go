package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/talentflow/talentflow-backend/internal/config"
	"github.com/talentflow/talentflow-backend/internal/logger"
)

// migrateLogger routes golang-migrate output through zerolog.
type migrateLogger struct {
	log     zerolog.Logger
	verbose bool
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.log.Info().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l migrateLogger) Verbose() bool { return l.verbose }

func main() {
	migrationDir := flag.String("path", "migrations", "path to migration files")
	verbose := flag.Bool("v", false, "log every applied migration")
	flag.Usage = printUsage
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat).With().Str("component", "migrate").Logger()

	if cfg.StoreDriver == config.StoreDriverSQLite {
		log.Info().Msg("SQLite schema is created when the store opens; nothing to migrate")
		return
	}
	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is not set")
	}

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(2)
	}

	m, err := migrate.New("file://"+*migrationDir, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Migration failed to initialize")
	}
	defer m.Close()
	m.Log = migrateLogger{log: log, verbose: *verbose}

	switch args[0] {
	case "up":
		err = run(m.Up, m.Steps, args, 1)
	case "down":
		err = run(m.Down, m.Steps, args, -1)
	case "version":
		version, dirty, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			log.Info().Msg("No migration applied yet")
			return
		}
		if verr != nil {
			log.Fatal().Err(verr).Msg("Reading version failed")
		}
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Current schema version")
		return
	case "force":
		if len(args) < 2 {
			log.Fatal().Msg("force requires a version argument")
		}
		v, perr := strconv.Atoi(args[1])
		if perr != nil {
			log.Fatal().Err(perr).Str("version", args[1]).Msg("Invalid version")
		}
		err = m.Force(v)
	default:
		printUsage()
		os.Exit(2)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal().Err(err).Str("command", args[0]).Msg("Migration failed")
	}
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info().Str("command", args[0]).Msg("Schema already up to date")
		return
	}
	log.Info().Str("command", args[0]).Msg("Migration finished")
}

// run applies all migrations in one direction, or n steps when a count is
// given after the command.
func run(all func() error, steps func(int) error, args []string, sign int) error {
	if len(args) < 2 {
		return all()
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || n <= 0 {
		return fmt.Errorf("invalid step count %q", args[1])
	}
	return steps(sign * n)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: migrate [flags] <command>")
	fmt.Fprintln(os.Stderr, "Commands: up [n], down [n], version, force <version>")
	fmt.Fprintln(os.Stderr, "Flags:")
	flag.PrintDefaults()
}
