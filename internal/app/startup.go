package app

import (
	"context"
	"fmt"
	"log/slog"

	"go.uber.org/fx"

	"github.com/Alijeyrad/formsbot/config"
	"github.com/Alijeyrad/formsbot/internal/repo"
	"github.com/Alijeyrad/formsbot/internal/service/starter"
	"github.com/Alijeyrad/formsbot/pkg/database"
)

// StartupModule provides the starter registry and fills it from the store on
// start. Anything that depends on the registry, the gateway included, starts
// after it.
var StartupModule = fx.Module("startup",
	fx.Provide(ProvideStarterRegistry),
)

func ProvideStarterRegistry(lc fx.Lifecycle, cfg *config.Config, db *repo.Client) *starter.Registry {
	reg := starter.NewRegistry()
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			dbCfg := database.FromCentralConfig(cfg.Database)
			if dbCfg.AutoMigrate {
				slog.Info("running database migrations")
				if err := database.MigrateEnt(ctx, db, dbCfg); err != nil {
					return fmt.Errorf("auto migrate: %w", err)
				}
			}
			_, err := starter.Rehydrate(ctx, db, reg)
			return err
		},
	})
	return reg
}
