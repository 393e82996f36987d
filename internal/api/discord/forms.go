package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/Alijeyrad/formsbot/internal/service/form"
	"github.com/Alijeyrad/formsbot/pkg/constants"
)

func (h *Handler) createForm(ctx context.Context, i *discordgo.Interaction, opts options) error {
	req := form.CreateFormRequest{
		Name:         opts.str("name"),
		Message:      opts.optionalStr("message"),
		Confirmation: opts.optionalStr("confirmation"),
		Ping:         opts.flag("ping", false),
	}
	if ch := opts.channelID("channel"); ch != "" {
		req.ChannelID = &ch
	}

	f, err := h.forms.CreateForm(ctx, req)
	if err != nil {
		return err
	}
	return h.respondSuccess(ctx, i, fmt.Sprintf(
		"Form `%s` created.\nSelect it with `/forms select` to add modals (pop-up windows that contain the form questions).",
		f.Name))
}

func (h *Handler) editForm(ctx context.Context, i *discordgo.Interaction, opts options) error {
	name := opts.str("form")
	f, err := h.forms.GetForm(ctx, name)
	if errors.Is(err, form.ErrFormNotFound) {
		return h.respondError(ctx, i, fmt.Sprintf("Form `%s` not found.", name))
	}
	if err != nil {
		return err
	}
	return h.respondDialog(ctx, i, formDialog(f))
}

func (h *Handler) selectForm(ctx context.Context, i *discordgo.Interaction, opts options) error {
	name := opts.str("form")
	f, err := h.forms.SelectForm(ctx, actorID(i), name)
	if errors.Is(err, form.ErrFormNotFound) {
		return h.respondError(ctx, i, fmt.Sprintf("Form `%s` not found.", name))
	}
	if err != nil {
		return err
	}
	return h.respondSuccess(ctx, i, fmt.Sprintf(
		"Form `%s` selected.\nYou can now use modal commands to edit its modals (pop-up windows that contain the form questions).",
		f.Name))
}

func (h *Handler) removeForm(ctx context.Context, i *discordgo.Interaction, opts options) error {
	name := opts.str("form")
	err := h.forms.RemoveForm(ctx, name)
	if errors.Is(err, form.ErrFormNotFound) {
		return h.respondError(ctx, i, fmt.Sprintf("Form `%s` not found.", name))
	}
	if err != nil {
		return err
	}
	return h.respondSuccess(ctx, i, fmt.Sprintf("Form `%s` removed.", name))
}

// sendForms opens the message builder for a set of starter buttons.
func (h *Handler) sendForms(ctx context.Context, i *discordgo.Interaction, opts options) error {
	v, err := h.publisher.Start(ctx, opts.channelID("channel"), opts.str("content"))
	if err != nil {
		return err
	}
	data := builderMessage(v)
	data.Flags = discordgo.MessageFlagsEphemeral
	return h.respond(ctx, i, discordgo.InteractionResponseChannelMessageWithSource, data)
}

func (h *Handler) autocomplete(ctx context.Context, i *discordgo.Interaction) error {
	data := i.ApplicationCommandData()
	_, opts := subcommandOf(data)
	opt, ok := opts.focused()
	if !ok {
		return h.respondChoices(ctx, i, nil)
	}
	prefix := opt.StringValue()

	var (
		names []string
		err   error
	)
	switch data.Name {
	case cmdForms:
		names, err = h.forms.FormNames(ctx, prefix)
	case cmdModals:
		names, err = h.forms.ModalLabels(ctx, actorID(i), prefix)
	case cmdQuestions:
		names, err = h.forms.QuestionLabels(ctx, actorID(i), prefix)
	}
	if err != nil {
		return err
	}
	if len(names) > constants.MaxAutocompleteChoices {
		names = names[:constants.MaxAutocompleteChoices]
	}
	return h.respondChoices(ctx, i, names)
}

// submitEditDialog saves one of the form, modal or question edit dialogs.
func (h *Handler) submitEditDialog(ctx context.Context, i *discordgo.Interaction, id componentID, values submittedValues) error {
	switch id.Key {
	case editForm:
		f, err := h.forms.EditForm(ctx, id.Index, form.EditFormRequest{
			Name:         values.get("name"),
			Message:      values.get("message"),
			Confirmation: values.get("confirmation"),
			Channel:      values.get("channel"),
		})
		if err != nil {
			return err
		}
		return h.respondSuccess(ctx, i, fmt.Sprintf("Form `%s` updated.", f.Name))

	case editModal:
		m, err := h.forms.EditModal(ctx, id.Index, form.EditModalRequest{
			Label: values.get("label"),
			Title: values.get("title"),
		})
		if err != nil {
			return err
		}
		return h.respondSuccess(ctx, i, fmt.Sprintf("Modal `%s` updated.", m.Label))

	case editQuestion:
		return h.submitQuestionDialog(ctx, i, id.Index, values)
	}
	return fmt.Errorf("%w: edit dialog %q", errUnknownInteraction, id.Key)
}
