package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// interactionClient is the part of *discordgo.Session used to answer
// interactions.
type interactionClient interface {
	InteractionRespond(i *discordgo.Interaction, r *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(i *discordgo.Interaction, e *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageCreate(i *discordgo.Interaction, wait bool, p *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

func (h *Handler) respond(ctx context.Context, i *discordgo.Interaction, typ discordgo.InteractionResponseType, data *discordgo.InteractionResponseData) error {
	return h.client.InteractionRespond(i, &discordgo.InteractionResponse{Type: typ, Data: data}, discordgo.WithContext(ctx))
}

func (h *Handler) respondEmbed(ctx context.Context, i *discordgo.Interaction, embed *discordgo.MessageEmbed) error {
	return h.respond(ctx, i, discordgo.InteractionResponseChannelMessageWithSource, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
		Flags:  discordgo.MessageFlagsEphemeral,
	})
}

func (h *Handler) respondError(ctx context.Context, i *discordgo.Interaction, msg string) error {
	return h.respondEmbed(ctx, i, errorEmbed(msg))
}

func (h *Handler) respondSuccess(ctx context.Context, i *discordgo.Interaction, msg string) error {
	return h.respondEmbed(ctx, i, successEmbed(msg))
}

// respondUpdate replaces the message the interaction came from.
func (h *Handler) respondUpdate(ctx context.Context, i *discordgo.Interaction, data *discordgo.InteractionResponseData) error {
	return h.respond(ctx, i, discordgo.InteractionResponseUpdateMessage, data)
}

func (h *Handler) respondDialog(ctx context.Context, i *discordgo.Interaction, data *discordgo.InteractionResponseData) error {
	return h.respond(ctx, i, discordgo.InteractionResponseModal, data)
}

func (h *Handler) respondChoices(ctx context.Context, i *discordgo.Interaction, names []string) error {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(names))
	for _, n := range names {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: n, Value: n})
	}
	return h.respond(ctx, i, discordgo.InteractionApplicationCommandAutocompleteResult, &discordgo.InteractionResponseData{
		Choices: choices,
	})
}

// replaceWithEmbed turns an acknowledged component message into a single
// embed without components.
func (h *Handler) replaceWithEmbed(ctx context.Context, i *discordgo.Interaction, embed *discordgo.MessageEmbed) error {
	empty := ""
	embeds := []*discordgo.MessageEmbed{embed}
	components := []discordgo.MessageComponent{}
	_, err := h.client.InteractionResponseEdit(i, &discordgo.WebhookEdit{
		Content:    &empty,
		Embeds:     &embeds,
		Components: &components,
	}, discordgo.WithContext(ctx))
	return err
}

func (h *Handler) followupError(ctx context.Context, i *discordgo.Interaction, msg string) error {
	_, err := h.client.FollowupMessageCreate(i, false, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{errorEmbed(msg)},
		Flags:  discordgo.MessageFlagsEphemeral,
	}, discordgo.WithContext(ctx))
	return err
}
