package app

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/formsbot/config"
	"github.com/Alijeyrad/formsbot/internal/repo"
	"github.com/Alijeyrad/formsbot/internal/service/selection"
	"github.com/Alijeyrad/formsbot/pkg/database"
	"github.com/Alijeyrad/formsbot/pkg/observability"
	redispkg "github.com/Alijeyrad/formsbot/pkg/redis"
	"github.com/Alijeyrad/formsbot/pkg/wynncraft"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideEntClient),
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideSelectionStore),
	fx.Provide(ProvideOTel),
	fx.Provide(ProvideInteractions),
	fx.Provide(ProvideWynncraftClient),
	fx.Provide(ProvideDiscordSession),
)

func ProvideEntClient(lc fx.Lifecycle, cfg *config.Config) (*repo.Client, error) {
	client, err := database.NewEntClient(cfg.Database)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing main database connection")
			return client.Close()
		},
	})
	return client, nil
}

// ProvideRedis returns nil when Redis is disabled.
func ProvideRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	rdb, err := redispkg.NewRedisFromCentral(cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing Redis connection")
			return rdb.Close()
		},
	})
	return rdb, nil
}

func ProvideSelectionStore(cfg *config.Config, rdb *redis.Client) selection.Store {
	if rdb == nil {
		slog.Info("redis disabled, selections are kept in memory")
		return selection.NewMemoryStore()
	}
	return selection.NewRedisStore(rdb, cfg.Redis.KeyPrefix)
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.InitTelemetry(context.Background(), observability.FromCentralConfig(cfg))
	if err != nil {
		return nil, err
	}
	slog.Info("observability initialized",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}

// ProvideInteractions depends on the provider so instruments bind to it
// rather than the no-op globals.
func ProvideInteractions(_ *observability.Provider) *observability.Interactions {
	return observability.NewInteractions()
}

// ProvideWynncraftClient returns nil when enrichment is disabled.
func ProvideWynncraftClient(cfg *config.Config) *wynncraft.Client {
	if !cfg.Enrichment.Enabled {
		return nil
	}
	return wynncraft.New(cfg.Enrichment)
}

// ProvideDiscordSession creates the gateway session. It is opened by the
// discord module once startup work is done.
func ProvideDiscordSession(cfg *config.Config) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return nil, err
	}
	s.Identify.Intents = discordgo.IntentsGuilds
	s.StateEnabled = false
	return s, nil
}
