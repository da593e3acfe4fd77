package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/udisondev/gamekit/internal/db/migrations"
)

// MigrationTable tracks the applied save-data migrations.
const MigrationTable = "gamekit_schema_version"

// RunMigrations applies pending save-data migrations on the given DSN and
// returns how many were applied.
func RunMigrations(ctx context.Context, dsn string) (int, error) {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return 0, fmt.Errorf("opening sql connection for migrations: %w", err)
	}
	defer sqlDB.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, migrations.FS,
		goose.WithTableName(MigrationTable))
	if err != nil {
		return 0, fmt.Errorf("creating migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("applying save-data migrations: %w", err)
	}
	for _, r := range results {
		slog.Debug("migration applied",
			"version", r.Source.Version,
			"path", r.Source.Path,
			"duration", r.Duration)
	}
	return len(results), nil
}
