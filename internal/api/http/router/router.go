package router

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/Alijeyrad/formsbot/config"
	"github.com/Alijeyrad/formsbot/internal/api/discord"
	"github.com/Alijeyrad/formsbot/internal/repo"
)

const probeTimeout = 2 * time.Second

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

// Gateway reports whether the chat connection is up.
type Gateway interface {
	Connected() bool
}

type Params struct {
	fx.In

	Cfg *config.Config
	DB  *repo.Client
	Bot *discord.Bot `optional:"true"`
}

type Router struct {
	cfg     *config.Config
	db      *repo.Client
	gateway Gateway
}

func NewRouter(p Params) *Router {
	r := &Router{cfg: p.Cfg, db: p.DB}
	if p.Bot != nil {
		r.gateway = p.Bot
	}
	return r
}

func (r *Router) Register(app *fiber.App) {
	r.registerSystemRoutes(app)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool { return r.ready() },
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.cfg.Observability.Enabled && r.cfg.Observability.Metrics.Enabled {
		path := r.cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}

// ready holds when the database answers and the gateway, if any, is
// connected.
func (r *Router) ready() bool {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	if err := r.db.Ping(ctx); err != nil {
		slog.Warn("readiness: database unavailable", "error", err)
		return false
	}
	if r.gateway != nil && !r.gateway.Connected() {
		return false
	}
	return true
}
