package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/fx"

	"github.com/Alijeyrad/formsbot/internal/service/form"
	"github.com/Alijeyrad/formsbot/internal/service/publish"
	"github.com/Alijeyrad/formsbot/internal/service/starter"
	"github.com/Alijeyrad/formsbot/internal/service/submission"
	"github.com/Alijeyrad/formsbot/pkg/observability"
)

// Interaction kinds used as span and metric labels.
const (
	kindCommand      = "command"
	kindAutocomplete = "autocomplete"
	kindComponent    = "component"
	kindDialog       = "dialog"
)

type commandFunc func(ctx context.Context, i *discordgo.Interaction, opts options) error

// Handler routes interactions to the services and renders their results.
type Handler struct {
	client      interactionClient
	forms       form.Service
	submissions submission.Service
	publisher   publish.Service
	starters    *starter.Registry
	tracker     *observability.Interactions

	commands map[string]commandFunc
}

type HandlerParams struct {
	fx.In

	Session     *discordgo.Session
	Forms       form.Service
	Submissions submission.Service
	Publisher   publish.Service
	Starters    *starter.Registry
	Tracker     *observability.Interactions
}

func NewHandler(p HandlerParams) *Handler {
	return newHandler(p.Session, p.Forms, p.Submissions, p.Publisher, p.Starters, p.Tracker)
}

func newHandler(
	client interactionClient,
	forms form.Service,
	submissions submission.Service,
	publisher publish.Service,
	starters *starter.Registry,
	tracker *observability.Interactions,
) *Handler {
	h := &Handler{
		client:      client,
		forms:       forms,
		submissions: submissions,
		publisher:   publisher,
		starters:    starters,
		tracker:     tracker,
	}
	h.commands = map[string]commandFunc{
		"forms create":     h.createForm,
		"forms edit":       h.editForm,
		"forms select":     h.selectForm,
		"forms remove":     h.removeForm,
		"forms send":       h.sendForms,
		"modals add":       h.addModal,
		"modals edit":      h.editModal,
		"modals select":    h.selectModal,
		"modals remove":    h.removeModal,
		"questions add":    h.addQuestion,
		"questions edit":   h.editQuestion,
		"questions remove": h.removeQuestion,
	}
	return h
}

// Handle answers one interaction. Every path ends in exactly one reply; errors
// the user cannot act on are logged and answered generically.
func (h *Handler) Handle(ctx context.Context, i *discordgo.Interaction) {
	kind, name := describe(i)
	err := h.tracker.Track(ctx, kind, name, func(ctx context.Context) error {
		return h.dispatch(ctx, i)
	})
	if err == nil {
		return
	}

	if i.Type == discordgo.InteractionApplicationCommandAutocomplete {
		slog.DebugContext(ctx, "autocomplete failed", "name", name, "error", err)
		if rerr := h.respondChoices(ctx, i, nil); rerr != nil {
			slog.DebugContext(ctx, "could not answer autocomplete", "error", rerr)
		}
		return
	}

	msg, known := userMessage(err)
	if known {
		slog.DebugContext(ctx, "interaction rejected", "kind", kind, "name", name, "user_id", actorID(i), "reason", msg)
	} else {
		slog.ErrorContext(ctx, "interaction failed", "kind", kind, "name", name, "user_id", actorID(i), "error", err)
	}
	if rerr := h.respondError(ctx, i, msg); rerr != nil {
		slog.WarnContext(ctx, "could not send error reply", "kind", kind, "name", name, "error", rerr)
	}
}

func (h *Handler) dispatch(ctx context.Context, i *discordgo.Interaction) error {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		sub, opts := subcommandOf(data)
		fn, ok := h.commands[data.Name+" "+sub]
		if !ok {
			return fmt.Errorf("%w: command %s %s", errUnknownInteraction, data.Name, sub)
		}
		return fn(ctx, i, opts)

	case discordgo.InteractionApplicationCommandAutocomplete:
		return h.autocomplete(ctx, i)

	case discordgo.InteractionMessageComponent:
		data := i.MessageComponentData()
		if _, _, ok := starter.ParseCustomID(data.CustomID); ok {
			return h.startSession(ctx, i, data.CustomID)
		}
		id, ok := parseComponentID(data.CustomID)
		if !ok {
			return fmt.Errorf("%w: component %q", errUnknownInteraction, data.CustomID)
		}
		switch id.Prefix {
		case prefixSession:
			return h.sessionComponent(ctx, i, id)
		case prefixBuilder:
			return h.builderComponent(ctx, i, id, data.Values)
		}

	case discordgo.InteractionModalSubmit:
		data := i.ModalSubmitData()
		id, ok := parseComponentID(data.CustomID)
		if !ok {
			return fmt.Errorf("%w: dialog %q", errUnknownInteraction, data.CustomID)
		}
		values := dialogValues(data)
		switch id.Prefix {
		case prefixSession:
			return h.submitPage(ctx, i, id, values.ordered)
		case prefixBuilder:
			return h.submitButtonDialog(ctx, i, id, values)
		case prefixEdit:
			return h.submitEditDialog(ctx, i, id, values)
		}
	}
	return fmt.Errorf("%w: type %d", errUnknownInteraction, i.Type)
}

// describe names an interaction for tracing without embedding ids.
func describe(i *discordgo.Interaction) (kind, name string) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand, discordgo.InteractionApplicationCommandAutocomplete:
		data := i.ApplicationCommandData()
		sub, _ := subcommandOf(data)
		kind = kindCommand
		if i.Type == discordgo.InteractionApplicationCommandAutocomplete {
			kind = kindAutocomplete
		}
		return kind, data.Name + " " + sub
	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		if _, _, ok := starter.ParseCustomID(customID); ok {
			return kindComponent, "starter"
		}
		return kindComponent, componentName(customID)
	case discordgo.InteractionModalSubmit:
		return kindDialog, componentName(i.ModalSubmitData().CustomID)
	}
	return "unknown", fmt.Sprint(i.Type)
}

func componentName(customID string) string {
	id, ok := parseComponentID(customID)
	if !ok {
		return "unknown"
	}
	switch id.Prefix {
	case prefixSession:
		return "session." + id.Action
	case prefixBuilder:
		return "builder." + id.Action
	default:
		return "edit." + id.Key
	}
}

// ---------------------------------------------------------------------------
// Interaction data helpers
// ---------------------------------------------------------------------------

type options map[string]*discordgo.ApplicationCommandInteractionDataOption

// subcommandOf returns the invoked subcommand and its options.
func subcommandOf(data discordgo.ApplicationCommandInteractionData) (string, options) {
	opts := options{}
	if len(data.Options) == 0 {
		return "", opts
	}
	sub := data.Options[0]
	if sub.Type != discordgo.ApplicationCommandOptionSubCommand {
		for _, o := range data.Options {
			opts[o.Name] = o
		}
		return "", opts
	}
	for _, o := range sub.Options {
		opts[o.Name] = o
	}
	return sub.Name, opts
}

func (o options) str(name string) string {
	opt, ok := o[name]
	if !ok || opt.Type != discordgo.ApplicationCommandOptionString {
		return ""
	}
	return opt.StringValue()
}

// optionalStr returns nil when the option was not given.
func (o options) optionalStr(name string) *string {
	if _, ok := o[name]; !ok {
		return nil
	}
	s := o.str(name)
	return &s
}

func (o options) flag(name string, def bool) bool {
	opt, ok := o[name]
	if !ok || opt.Type != discordgo.ApplicationCommandOptionBoolean {
		return def
	}
	return opt.BoolValue()
}

func (o options) integer(name string) *int {
	opt, ok := o[name]
	if !ok || opt.Type != discordgo.ApplicationCommandOptionInteger {
		return nil
	}
	n := int(opt.IntValue())
	return &n
}

func (o options) channelID(name string) string {
	opt, ok := o[name]
	if !ok || opt.Type != discordgo.ApplicationCommandOptionChannel {
		return ""
	}
	return opt.ChannelValue(nil).ID
}

// focused returns the option being autocompleted.
func (o options) focused() (*discordgo.ApplicationCommandInteractionDataOption, bool) {
	for _, opt := range o {
		if opt.Focused {
			return opt, true
		}
	}
	return nil, false
}

// submittedValues holds the text inputs of a submitted dialog in order and
// by custom id.
type submittedValues struct {
	ordered []string
	byID    map[string]string
}

func (v submittedValues) get(id string) string {
	return v.byID[id]
}

func dialogValues(data discordgo.ModalSubmitInteractionData) submittedValues {
	v := submittedValues{byID: map[string]string{}}
	add := func(c discordgo.MessageComponent) {
		var in *discordgo.TextInput
		switch t := c.(type) {
		case *discordgo.TextInput:
			in = t
		case discordgo.TextInput:
			in = &t
		default:
			return
		}
		v.ordered = append(v.ordered, in.Value)
		v.byID[in.CustomID] = in.Value
	}
	for _, c := range data.Components {
		switch row := c.(type) {
		case *discordgo.ActionsRow:
			for _, inner := range row.Components {
				add(inner)
			}
		case discordgo.ActionsRow:
			for _, inner := range row.Components {
				add(inner)
			}
		default:
			add(c)
		}
	}
	return v
}

func interactionUser(i *discordgo.Interaction) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	if i.User != nil {
		return i.User
	}
	return &discordgo.User{}
}

func actorID(i *discordgo.Interaction) string {
	return interactionUser(i).ID
}

// submitterOf describes the user behind i. The display name prefers the
// server nickname, then the global name.
func submitterOf(i *discordgo.Interaction) submission.Submitter {
	u := interactionUser(i)
	display := u.Username
	if u.GlobalName != "" {
		display = u.GlobalName
	}
	if i.Member != nil && i.Member.Nick != "" {
		display = i.Member.Nick
	}
	return submission.Submitter{UserID: u.ID, Username: u.Username, DisplayName: display}
}
