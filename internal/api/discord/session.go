package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/Alijeyrad/formsbot/internal/service/submission"
)

// startSession answers a starter button click with a private session message.
func (h *Handler) startSession(ctx context.Context, i *discordgo.Interaction, customID string) error {
	b, ok := h.starters.Resolve(customID)
	if !ok {
		return submission.ErrFormNotFound
	}
	v, err := h.submissions.Start(ctx, b.FormID, submitterOf(i))
	if err != nil {
		return err
	}
	return h.respond(ctx, i, discordgo.InteractionResponseChannelMessageWithSource, sessionMessage(v))
}

func (h *Handler) sessionComponent(ctx context.Context, i *discordgo.Interaction, id componentID) error {
	switch id.Action {
	case actionPage:
		page, err := h.submissions.OpenModal(ctx, id.Key, id.Index)
		if err != nil {
			return err
		}
		return h.respondDialog(ctx, i, pageDialog(id.Key, page))
	case actionSend:
		return h.finalize(ctx, i, id.Key)
	}
	return fmt.Errorf("%w: session action %q", errUnknownInteraction, id.Action)
}

// submitPage stores one page's answers and refreshes the session message.
func (h *Handler) submitPage(ctx context.Context, i *discordgo.Interaction, id componentID, values []string) error {
	if id.Action != actionModal {
		return fmt.Errorf("%w: session dialog %q", errUnknownInteraction, id.Action)
	}
	v, err := h.submissions.SubmitModalPage(ctx, id.Key, id.Index, values)
	if err != nil {
		return err
	}
	return h.respondUpdate(ctx, i, &discordgo.InteractionResponseData{
		Content:    v.Message,
		Components: sessionComponents(v),
	})
}

// finalize acknowledges the send click first, since committing and posting
// the notification can outlast the initial response window.
func (h *Handler) finalize(ctx context.Context, i *discordgo.Interaction, sessionID string) error {
	if err := h.respond(ctx, i, discordgo.InteractionResponseDeferredMessageUpdate, nil); err != nil {
		return err
	}

	res, err := h.submissions.Finalize(ctx, sessionID)
	switch {
	case err == nil:
		err = h.replaceWithEmbed(ctx, i, successEmbed(res.Confirmation))
	case errors.Is(err, submission.ErrDeliveryFailed):
		err = h.replaceWithEmbed(ctx, i, errorEmbed(msgDeliveryFailed))
	default:
		msg, known := userMessage(err)
		if !known {
			slog.ErrorContext(ctx, "finalize failed", "session_id", sessionID, "user_id", actorID(i), "error", err)
		}
		err = h.followupError(ctx, i, msg)
	}
	if err != nil {
		slog.WarnContext(ctx, "could not update session message", "session_id", sessionID, "error", err)
	}
	return nil
}
