// Command migrate applies the schema migrations of the returns service.
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/erp/returns/internal/infrastructure/config"
	"github.com/erp/returns/internal/infrastructure/logger"
	"github.com/erp/returns/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

const usage = `Usage: migrate [-path dir] [-log-level level] <command> [arg]

Commands:
  up              apply every pending migration
  down            roll back every migration
  step <n>        apply n migrations, negative n rolls back
  version         print the current version and dirty flag
  force <v>       mark version v as applied without running it

The database is read from the same configuration as the server
(config.toml or ERP_DATABASE_HOST, ERP_DATABASE_PORT, ERP_DATABASE_USER,
ERP_DATABASE_PASSWORD, ERP_DATABASE_DBNAME, ERP_DATABASE_SSLMODE).`

var errUsage = errors.New("invalid usage")

// command runs one migration action against m.
type command struct {
	needsArg bool
	run      func(m *migration.Migrator, arg int, log *zap.Logger) error
}

var commands = map[string]command{
	"up":   {run: func(m *migration.Migrator, _ int, _ *zap.Logger) error { return m.Up() }},
	"down": {run: func(m *migration.Migrator, _ int, _ *zap.Logger) error { return m.Down() }},
	"step": {needsArg: true, run: func(m *migration.Migrator, n int, _ *zap.Logger) error { return m.Steps(n) }},
	"force": {needsArg: true, run: func(m *migration.Migrator, v int, _ *zap.Logger) error {
		return m.Force(v)
	}},
	"version": {run: func(m *migration.Migrator, _ int, log *zap.Logger) error {
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		if version == 0 {
			log.Info("No migrations applied")
			return nil
		}
		log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil
	}},
}

func main() {
	path := flag.String("path", "", "migrations directory (default ./migrations)")
	level := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:      *level,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(flag.Args(), *path, log); err != nil {
		if errors.Is(err, errUsage) {
			flag.Usage()
			os.Exit(2)
		}
		log.Fatal("Migration failed", zap.Error(err))
	}
}

func run(args []string, path string, log *zap.Logger) error {
	if len(args) == 0 {
		return errUsage
	}
	name := args[0]
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, name)
	}
	var arg int
	if cmd.needsArg {
		if len(args) < 2 {
			return fmt.Errorf("%w: %s needs an argument", errUsage, name)
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("%w: %s expects an integer, got %q", errUsage, name, args[1])
		}
		arg = n
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	dir, err := resolveMigrationsPath(path)
	if err != nil {
		return err
	}
	log.Info("Running migration command", zap.String("command", name), zap.String("migrations_path", dir))

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping database: %w", err)
	}

	// Closing the migrator also closes db.
	m, err := migration.New(db, dir, log)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer m.Close()

	return cmd.run(m, arg, log)
}

// resolveMigrationsPath prefers an explicit path, then ./migrations, then the
// migrations directory two levels above the executable.
func resolveMigrationsPath(path string) (string, error) {
	if path != "" {
		return filepath.Abs(path)
	}
	candidates := []string{defaultMigrationsPath}
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), "..", "..", defaultMigrationsPath))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return filepath.Abs(c)
		}
	}
	return filepath.Abs(defaultMigrationsPath)
}
