package database

import (
	"context"
	"fmt"
	"log/slog"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/Alijeyrad/formsbot/config"
	"github.com/Alijeyrad/formsbot/internal/repo"
)

// NewEntClient creates a new repository client from central config
func NewEntClient(cfg config.DatabaseConfig) (*repo.Client, error) {
	return NewEntClientFromConfig(FromCentralConfig(cfg))
}

// NewEntClientFromConfig creates a new repository client from package Config
func NewEntClientFromConfig(cfg Config) (*repo.Client, error) {
	db, err := openSQLDB(cfg)
	if err != nil {
		return nil, err
	}

	name := dialect.Postgres
	if cfg.NormalizedDriver() == DriverSQLite {
		name = dialect.SQLite
	}

	var drv dialect.Driver = entsql.OpenDB(name, db)
	if cfg.EnableLogging {
		drv = dialect.DebugWithContext(drv, func(ctx context.Context, args ...any) {
			slog.DebugContext(ctx, "sql", "query", fmt.Sprint(args...))
		})
	}

	return repo.NewClient(repo.Driver(drv), repo.Dialect(name)), nil
}

func MigrateEnt(ctx context.Context, client *repo.Client, cfg Config) error {
	return client.Migrate(ctx, repo.MigrateOptions{SafeMode: cfg.SafeMode})
}
