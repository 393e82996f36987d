package bot

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/Alijeyrad/formsbot/config"
	"github.com/Alijeyrad/formsbot/internal/api/discord"
	"github.com/Alijeyrad/formsbot/internal/api/http"
	"github.com/Alijeyrad/formsbot/internal/app"
	"github.com/Alijeyrad/formsbot/pkg/logs"
)

func NewStartCommand() *cobra.Command {
	var shutdownTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Connect to Discord and serve interactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return err
			}

			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return err
			}

			// Set up structured logger before fx starts so all logs use it.
			slog.SetDefault(logs.New(cfg))

			options := []fx.Option{
				fx.Supply(cfg),
				app.InfraModule,
				app.StartupModule,
				app.ServiceModule,
				discord.Module,
				fx.Invoke(func(*discord.Bot) {}),
			}
			if cfg.Server.Enabled {
				options = append(options,
					http.Module,
					fx.Invoke(func(*fiber.App) {}),
				)
			}
			options = append(options,
				fx.StopTimeout(shutdownTimeout),
				fx.WithLogger(func() fxevent.Logger { return fxevent.NopLogger }),
			)

			fx.New(options...).Run()
			return nil
		},
	}

	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 30*time.Second, "Maximum time to wait for graceful shutdown")

	return cmd
}
