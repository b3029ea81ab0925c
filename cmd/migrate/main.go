package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/3dmm/site/internal/config"
	"github.com/3dmm/site/internal/logging"
	"github.com/3dmm/site/internal/repository"
)

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate [command]

Commands:
  (default)   apply pending migrations (Postgres) or ensure indexes (Mongo)
  reset       Postgres only: drop every table, then apply all migrations`)
	os.Exit(1)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("failed to load config", "error", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	if cmd != "" && cmd != "reset" {
		usage()
	}

	ctx := context.Background()
	switch repository.BackendFor(cfg.DatabaseURL) {
	case repository.BackendPostgres:
		pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logging.Fatal("connect failed", "error", err)
		}
		defer pool.Close()

		migrations := repository.PostgresMigrations()
		if cmd == "reset" {
			runDropAll(ctx, pool, migrations)
		}
		runIncremental(ctx, pool, migrations)

	case repository.BackendMongo:
		if cmd == "reset" {
			logging.Fatal("reset is only supported for Postgres")
		}
		store, err := repository.OpenMongo(ctx, cfg.DatabaseURL, cfg.DatabaseName)
		if err != nil {
			logging.Fatal("connect failed", "error", err)
		}
		defer func() { _ = store.Close(ctx) }()
		if err := store.EnsureIndexes(ctx); err != nil {
			logging.Fatal("ensure indexes failed", "error", err)
		}
		slog.Info("mongo indexes ensured", "database", cfg.DatabaseName)

	case repository.BackendSQLite:
		if cmd == "reset" {
			logging.Fatal("reset is only supported for Postgres")
		}
		// The SQLite schema is applied when the store opens.
		store, err := repository.Open(ctx, cfg.DatabaseURL, cfg.DatabaseName)
		if err != nil {
			logging.Fatal("open failed", "error", err)
		}
		_ = store.Close(ctx)
		slog.Info("sqlite schema applied")

	default:
		logging.Fatal("unsupported DATABASE_URL scheme")
	}
}

// collectUpFiles returns the .up.sql file names in sorted order.
func collectUpFiles(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func ensureSchemaMigrations(ctx context.Context, pool *pgxpool.Pool) {
	_, _ = pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)
}

// ---------------------------------------------------------------------------
// (default) incremental migrations
// ---------------------------------------------------------------------------
func runIncremental(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS) {
	ensureSchemaMigrations(ctx, pool)

	upFiles, err := collectUpFiles(fsys)
	if err != nil {
		logging.Fatal("read migrations failed", "error", err)
	}
	applied := 0
	for i, filename := range upFiles {
		name := strings.TrimSuffix(filename, ".up.sql")

		var exists bool
		_ = pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE name=$1)", name).Scan(&exists)
		if exists {
			continue
		}

		sql, err := fs.ReadFile(fsys, filename)
		if err != nil {
			logging.Fatal("read migration failed", "migration", name, "error", err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			logging.Fatal("migration failed", "migration", name, "error", err)
		}
		if _, err := pool.Exec(ctx, "INSERT INTO schema_migrations (name) VALUES ($1)", name); err != nil {
			logging.Fatal("record migration failed", "migration", name, "error", err)
		}
		applied++
		slog.Info("migration completed", "number", i+1, "migration", name)
	}

	if applied == 0 {
		slog.Info("all migrations already applied")
	} else {
		slog.Info("migrations completed", "count", applied)
	}
}

// ---------------------------------------------------------------------------
// drop all tables
// ---------------------------------------------------------------------------
func runDropAll(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS) {
	slog.Info("dropping all tables")
	sql, err := fs.ReadFile(fsys, "000_drop_all.sql")
	if err != nil {
		logging.Fatal("read 000_drop_all.sql failed", "error", err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		logging.Fatal("drop all failed", "error", err)
	}
	slog.Info("all tables dropped")
}
