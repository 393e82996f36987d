package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/Alijeyrad/formsbot/internal/service/form"
)

func modalNotFound(label string) string {
	return fmt.Sprintf("Modal `%s` not found in the currently selected form.", label)
}

func (h *Handler) addModal(ctx context.Context, i *discordgo.Interaction, opts options) error {
	m, err := h.forms.AddModal(ctx, actorID(i), form.AddModalRequest{
		Label: opts.str("label"),
		Title: opts.optionalStr("title"),
	})
	if err != nil {
		return err
	}
	return h.respondSuccess(ctx, i, fmt.Sprintf(
		"Modal `%s` added.\nSelect it with `/modals select` to add questions.", m.Label))
}

func (h *Handler) editModal(ctx context.Context, i *discordgo.Interaction, opts options) error {
	label := opts.str("modal")
	m, err := h.forms.GetModal(ctx, actorID(i), label)
	if errors.Is(err, form.ErrModalNotFound) {
		return h.respondError(ctx, i, modalNotFound(label))
	}
	if err != nil {
		return err
	}
	return h.respondDialog(ctx, i, modalEditDialog(m))
}

func (h *Handler) selectModal(ctx context.Context, i *discordgo.Interaction, opts options) error {
	label := opts.str("modal")
	m, err := h.forms.SelectModal(ctx, actorID(i), label)
	if errors.Is(err, form.ErrModalNotFound) {
		return h.respondError(ctx, i, modalNotFound(label))
	}
	if err != nil {
		return err
	}
	return h.respondSuccess(ctx, i, fmt.Sprintf(
		"Modal `%s` selected.\nYou can now use question commands to edit its questions.", m.Label))
}

func (h *Handler) removeModal(ctx context.Context, i *discordgo.Interaction, opts options) error {
	label := opts.str("modal")
	err := h.forms.RemoveModal(ctx, actorID(i), label)
	if errors.Is(err, form.ErrModalNotFound) {
		return h.respondError(ctx, i, modalNotFound(label))
	}
	if err != nil {
		return err
	}
	return h.respondSuccess(ctx, i, fmt.Sprintf("Modal `%s` removed.", label))
}
