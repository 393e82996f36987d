// Package discord adapts the form services to Discord: slash commands,
// components, dialogs and channel messages.
package discord

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/fx"

	"github.com/Alijeyrad/formsbot/config"
	"github.com/Alijeyrad/formsbot/internal/service/publish"
	"github.com/Alijeyrad/formsbot/internal/service/submission"
	"github.com/Alijeyrad/formsbot/pkg/logs"
)

// interactionTimeout bounds the work done for a single interaction,
// including deferred follow-ups.
const interactionTimeout = 30 * time.Second

// Module provides the gateway bot and the Discord implementations of the
// service ports.
var Module = fx.Module("discord",
	fx.Provide(
		NewMessenger,
		func(m *Messenger) submission.Dispatcher { return m },
		func(m *Messenger) publish.Sender { return m },
		NewHandler,
		NewBot,
	),
)

// Bot owns the gateway connection.
type Bot struct {
	session   *discordgo.Session
	cfg       config.DiscordConfig
	handler   *Handler
	messenger *Messenger

	connected atomic.Bool
	synced    atomic.Bool
}

type BotParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Session   *discordgo.Session
	Handler   *Handler
	Messenger *Messenger
}

// NewBot wires the gateway handlers and opens the connection on start. The
// handler depends on the starter registry, so starters are rehydrated before
// the first interaction can arrive.
func NewBot(p BotParams) *Bot {
	b := &Bot{
		session:   p.Session,
		cfg:       p.Config.Discord,
		handler:   p.Handler,
		messenger: p.Messenger,
	}

	var removers []func()
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			removers = append(removers,
				b.session.AddHandler(b.onReady),
				b.session.AddHandler(b.onResumed),
				b.session.AddHandler(b.onDisconnect),
				b.session.AddHandler(b.onInteraction),
			)
			if err := b.session.Open(); err != nil {
				return fmt.Errorf("open gateway: %w", err)
			}
			slog.Info("discord gateway opened")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			for _, remove := range removers {
				remove()
			}
			b.connected.Store(false)
			slog.Info("closing discord gateway")
			return b.session.Close()
		},
	})
	return b
}

// Connected reports whether the gateway session is ready.
func (b *Bot) Connected() bool {
	return b.connected.Load()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.connected.Store(true)
	slog.Info("booted up", "user", r.User.Username, "guilds", len(r.Guilds))

	if b.cfg.LogChannelID != "" {
		logs.AttachDiscord(b.messenger.LogSender(b.cfg.LogChannelID))
	}

	if b.cfg.SyncCommands && b.synced.CompareAndSwap(false, true) {
		if err := b.syncCommands(r.User.ID); err != nil {
			b.synced.Store(false)
			slog.Error("command sync failed", "error", err)
		}
	}
}

func (b *Bot) onResumed(*discordgo.Session, *discordgo.Resumed) {
	b.connected.Store(true)
	slog.Debug("gateway session resumed")
}

func (b *Bot) onDisconnect(*discordgo.Session, *discordgo.Disconnect) {
	b.connected.Store(false)
	slog.Warn("gateway disconnected")
}

func (b *Bot) onInteraction(_ *discordgo.Session, ic *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()
	b.handler.Handle(ctx, ic.Interaction)
}

// syncCommands overwrites the global commands and, when a test guild is
// configured, that guild's commands so changes show up immediately.
func (b *Bot) syncCommands(appID string) error {
	cmds := commands()
	if _, err := b.session.ApplicationCommandBulkOverwrite(appID, "", cmds); err != nil {
		return fmt.Errorf("sync global commands: %w", err)
	}
	if b.cfg.TestGuildID != "" {
		if _, err := b.session.ApplicationCommandBulkOverwrite(appID, b.cfg.TestGuildID, cmds); err != nil {
			return fmt.Errorf("sync test guild commands: %w", err)
		}
	}
	slog.Info("application commands synced", "count", len(cmds), "test_guild_id", b.cfg.TestGuildID)
	return nil
}
