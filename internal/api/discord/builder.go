package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"github.com/Alijeyrad/formsbot/internal/service/publish"
)

type builderStep func(ctx context.Context, builderID string) (publish.View, error)

func (h *Handler) builderComponent(ctx context.Context, i *discordgo.Interaction, id componentID, values []string) error {
	var step builderStep
	switch id.Action {
	case actionEdit:
		v, err := h.publisher.View(ctx, id.Key)
		if err != nil {
			return err
		}
		return h.respondDialog(ctx, i, buttonDialog(v))
	case actionSend:
		return h.publish(ctx, i, id.Key)
	case actionForm:
		if len(values) == 0 {
			return fmt.Errorf("%w: empty form selection", errUnknownInteraction)
		}
		formID, err := strconv.Atoi(values[0])
		if err != nil {
			return fmt.Errorf("%w: form selection %q", errUnknownInteraction, values[0])
		}
		step = func(ctx context.Context, builderID string) (publish.View, error) {
			return h.publisher.SelectForm(ctx, builderID, formID)
		}
	case actionStyle:
		step = h.publisher.CycleStyle
	case actionDelete:
		step = h.publisher.DeleteCurrent
	case actionBack:
		step = h.publisher.Prev
	case actionAdd:
		step = h.publisher.AddNew
	case actionNext:
		step = h.publisher.Next
	default:
		return fmt.Errorf("%w: builder action %q", errUnknownInteraction, id.Action)
	}

	v, err := step(ctx, id.Key)
	if err != nil {
		return err
	}
	return h.respondUpdate(ctx, i, builderMessage(v))
}

func (h *Handler) submitButtonDialog(ctx context.Context, i *discordgo.Interaction, id componentID, values submittedValues) error {
	if id.Action != actionDialog {
		return fmt.Errorf("%w: builder dialog %q", errUnknownInteraction, id.Action)
	}
	v, err := h.publisher.EditCurrent(ctx, id.Key, values.get("label"), values.get("emoji"))
	if err != nil {
		return err
	}
	return h.respondUpdate(ctx, i, builderMessage(v))
}

// publish sends the composed message. The builder message is acknowledged
// first and then replaced with the outcome.
func (h *Handler) publish(ctx context.Context, i *discordgo.Interaction, builderID string) error {
	v, err := h.publisher.View(ctx, builderID)
	if err != nil {
		return err
	}
	if err := h.respond(ctx, i, discordgo.InteractionResponseDeferredMessageUpdate, nil); err != nil {
		return err
	}

	_, err = h.publisher.Publish(ctx, builderID)
	switch {
	case err == nil:
		err = h.replaceWithEmbed(ctx, i, successEmbed(fmt.Sprintf("Message sent to %s.", channelMention(v.ChannelID))))
	case errors.Is(err, publish.ErrNoAccess):
		err = h.followupError(ctx, i, fmt.Sprintf("No access to %s, message could not be sent.", channelMention(v.ChannelID)))
	default:
		msg, known := userMessage(err)
		if !known {
			slog.ErrorContext(ctx, "publish failed", "builder_id", builderID, "channel_id", v.ChannelID, "error", err)
		}
		err = h.followupError(ctx, i, msg)
	}
	if err != nil {
		slog.WarnContext(ctx, "could not update builder message", "builder_id", builderID, "error", err)
	}
	return nil
}
