package discord

import (
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/Alijeyrad/formsbot/internal/repo"
	"github.com/Alijeyrad/formsbot/internal/service/form"
	"github.com/Alijeyrad/formsbot/internal/service/publish"
	"github.com/Alijeyrad/formsbot/internal/service/starter"
	"github.com/Alijeyrad/formsbot/internal/service/submission"
	"github.com/Alijeyrad/formsbot/pkg/constants"
)

const (
	colorError   = 0xAA0000
	colorSuccess = 0x00AA00

	msgUnexpected = "Something went wrong."
	noneValue     = "[None]"
)

func errorEmbed(msg string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Title: "Error", Description: msg, Color: colorError}
}

func successEmbed(msg string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Title: "Success", Description: msg, Color: colorSuccess}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func channelMention(id string) string {
	return "<#" + id + ">"
}

// rows packs components into action rows of at most five.
func rows(items []discordgo.MessageComponent) []discordgo.MessageComponent {
	var out []discordgo.MessageComponent
	for len(items) > 0 {
		n := min(len(items), constants.MaxButtonsPerActionRow)
		out = append(out, discordgo.ActionsRow{Components: items[:n]})
		items = items[n:]
	}
	return out
}

func textInput(id, label, value, placeholder string, style discordgo.TextInputStyle, required bool, minLen, maxLen int) discordgo.MessageComponent {
	return discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.TextInput{
			CustomID:    id,
			Label:       label,
			Style:       style,
			Value:       value,
			Placeholder: placeholder,
			Required:    required,
			MinLength:   minLen,
			MaxLength:   maxLen,
		},
	}}
}

func emoji(s string) *discordgo.ComponentEmoji {
	if s == "" {
		return nil
	}
	return &discordgo.ComponentEmoji{Name: s}
}

// ---------------------------------------------------------------------------
// Submission sessions
// ---------------------------------------------------------------------------

// sessionComponents renders one button per modal and the send button. Pages
// already submitted turn secondary; send stays disabled until the session
// is ready.
func sessionComponents(v submission.View) []discordgo.MessageComponent {
	items := make([]discordgo.MessageComponent, 0, len(v.Pages)+1)
	for i, p := range v.Pages {
		style := discordgo.PrimaryButton
		if p.Submitted {
			style = discordgo.SecondaryButton
		}
		items = append(items, discordgo.Button{
			Label:    p.Label,
			Style:    style,
			CustomID: sessionComponentID(v.SessionID, actionPage, i),
		})
	}
	items = append(items, discordgo.Button{
		Label:    "Send",
		Style:    discordgo.SuccessButton,
		Disabled: !v.Ready,
		CustomID: sessionSendID(v.SessionID),
	})
	return rows(items)
}

func sessionMessage(v submission.View) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		Content:    v.Message,
		Components: sessionComponents(v),
		Flags:      discordgo.MessageFlagsEphemeral,
	}
}

func pageDialog(sessionID string, p *submission.ModalPage) *discordgo.InteractionResponseData {
	inputs := make([]discordgo.MessageComponent, 0, len(p.Fields))
	for _, f := range p.Fields {
		style := discordgo.TextInputShort
		if f.Paragraph {
			style = discordgo.TextInputParagraph
		}
		inputs = append(inputs, textInput(
			strconv.Itoa(f.QuestionID), f.Label, f.Value, f.Placeholder,
			style, f.Required, f.MinLength, f.MaxLength,
		))
	}
	return &discordgo.InteractionResponseData{
		CustomID:   sessionComponentID(sessionID, actionModal, p.Index),
		Title:      truncate(p.Title, constants.MaxModalTitleLength),
		Components: inputs,
	}
}

// notificationMessage renders a completed response for the form's channel.
func notificationMessage(n *submission.Notification) *discordgo.MessageSend {
	embed := &discordgo.MessageEmbed{
		Title:     n.Title,
		Color:     n.Color,
		Timestamp: n.Timestamp.UTC().Format(time.RFC3339),
	}
	for _, f := range n.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}

	msg := &discordgo.MessageSend{
		Embeds:          []*discordgo.MessageEmbed{embed},
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}
	if n.Mention {
		msg.Content = constants.EveryoneMention
		msg.AllowedMentions.Parse = []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeEveryone}
	}
	return msg
}

// ---------------------------------------------------------------------------
// Publish builder
// ---------------------------------------------------------------------------

func builderEmbed(v publish.View) *discordgo.MessageEmbed {
	label, icon := v.Current.Label, v.Current.Icon
	if label == "" {
		label = noneValue
	}
	if icon == "" {
		icon = noneValue
	}
	return &discordgo.MessageEmbed{
		Title:       "New form message",
		Description: "Will be sent in " + channelMention(v.ChannelID),
		Fields: []*discordgo.MessageEmbedField{{
			Name:  fmt.Sprintf("Button %d/%d", v.Index+1, v.Count),
			Value: fmt.Sprintf("Current Label: %s\nCurrent Emoji: %s", label, icon),
		}},
	}
}

// builderComponents shows the form selector of the current button followed
// by the edit and navigation controls.
func builderComponents(v publish.View) []discordgo.MessageComponent {
	var out []discordgo.MessageComponent

	if len(v.Catalog) > 0 {
		placeholder := "Select a form for this button"
		if v.FormName != "" {
			placeholder = v.FormName
		}
		catalog := v.Catalog
		if len(catalog) > constants.MaxSelectMenuOptions {
			catalog = catalog[:constants.MaxSelectMenuOptions]
		}
		options := make([]discordgo.SelectMenuOption, 0, len(catalog))
		for _, f := range catalog {
			options = append(options, discordgo.SelectMenuOption{
				Label:   f.Name,
				Value:   strconv.Itoa(f.ID),
				Default: f.ID == v.Current.FormID,
			})
		}
		out = append(out, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				MenuType:    discordgo.StringSelectMenu,
				CustomID:    builderComponentID(v.BuilderID, actionForm),
				Placeholder: placeholder,
				Options:     options,
			},
		}})
	}

	out = append(out,
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "Edit Button", Style: discordgo.PrimaryButton, CustomID: builderComponentID(v.BuilderID, actionEdit)},
			discordgo.Button{Label: "Style (click to cycle)", Style: discordgo.ButtonStyle(v.Current.Style), CustomID: builderComponentID(v.BuilderID, actionStyle)},
			discordgo.Button{Label: "Delete Button", Style: discordgo.DangerButton, CustomID: builderComponentID(v.BuilderID, actionDelete)},
		}},
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Emoji: emoji("⬅️"), Style: discordgo.PrimaryButton, CustomID: builderComponentID(v.BuilderID, actionBack)},
			discordgo.Button{Label: "Add Button", Emoji: emoji("➕"), Style: discordgo.PrimaryButton, CustomID: builderComponentID(v.BuilderID, actionAdd)},
			discordgo.Button{Emoji: emoji("➡️"), Style: discordgo.PrimaryButton, CustomID: builderComponentID(v.BuilderID, actionNext)},
			discordgo.Button{Label: "Send", Emoji: emoji("📨"), Style: discordgo.SuccessButton, CustomID: builderComponentID(v.BuilderID, actionSend)},
		}},
	)
	return out
}

func builderMessage(v publish.View) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		Embeds:     []*discordgo.MessageEmbed{builderEmbed(v)},
		Components: builderComponents(v),
	}
}

func buttonDialog(v publish.View) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: builderComponentID(v.BuilderID, actionDialog),
		Title:    fmt.Sprintf("Editing Button %d", v.Index+1),
		Components: []discordgo.MessageComponent{
			textInput("label", "Label", v.Current.Label, "", discordgo.TextInputShort, true, 0, constants.MaxButtonLabelLength),
			textInput("emoji", "Emoji", v.Current.Icon, "Must be an actual emoji icon, not just an emoji name!",
				discordgo.TextInputShort, false, 0, constants.MaxButtonIconLength),
		},
	}
}

// starterComponents renders the durable buttons of a published message.
func starterComponents(messageID string, buttons []starter.Button) []discordgo.MessageComponent {
	items := make([]discordgo.MessageComponent, 0, len(buttons))
	for i, b := range buttons {
		items = append(items, discordgo.Button{
			Label:    b.Label,
			Emoji:    emoji(b.Emoji),
			Style:    discordgo.ButtonStyle(b.Style),
			CustomID: starter.CustomID(messageID, i),
		})
	}
	return rows(items)
}

// ---------------------------------------------------------------------------
// Edit dialogs
// ---------------------------------------------------------------------------

func editingTitle(name string) string {
	return "Editing " + truncate(name, 37)
}

func formDialog(f *repo.Form) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: editDialogID(editForm, f.ID),
		Title:    editingTitle(f.Name),
		Components: []discordgo.MessageComponent{
			textInput("name", "Name", f.Name, "", discordgo.TextInputShort, true, 0, constants.MaxFormNameLength),
			textInput("message", "Message", deref(f.Message),
				"The initial message that is displayed to users filling out this form.",
				discordgo.TextInputParagraph, false, 0, 2000),
			textInput("confirmation", "Confirmation", deref(f.Confirmation),
				"The confirmation message users get after submitting. Defaults to 'Response Recorded!'",
				discordgo.TextInputParagraph, false, 0, 2000),
			textInput("channel", "Channel", deref(f.ChannelID),
				"The id of a text channel where responses will be sent to.",
				discordgo.TextInputShort, false, 0, 20),
		},
	}
}

func modalEditDialog(m *repo.Modal) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: editDialogID(editModal, m.ID),
		Title:    editingTitle(m.Label),
		Components: []discordgo.MessageComponent{
			textInput("label", "Label", m.Label, "The label of the button that opens this modal.",
				discordgo.TextInputShort, true, 0, constants.MaxModalLabelLength),
			textInput("title", "Title", deref(m.Title),
				"The title of the modal. Defaults to the title of the form this modal belongs to.",
				discordgo.TextInputShort, false, 0, constants.MaxModalTitleLength),
		},
	}
}

func questionDialog(q *repo.Question) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: editDialogID(editQuestion, q.ID),
		Title:    editingTitle(q.Label),
		Components: []discordgo.MessageComponent{
			textInput("label", "Label", q.Label, "", discordgo.TextInputShort, true, 0, constants.MaxQuestionLabelLength),
			textInput("placeholder", "Placeholder", deref(q.Placeholder), "",
				discordgo.TextInputShort, false, 0, constants.MaxPlaceholderLength),
			textInput("paragraph", "Long Answer Field?", form.FormatYesNo(q.Paragraph), "Yes / No",
				discordgo.TextInputShort, true, 0, 5),
			textInput("required", "Required?", form.FormatYesNo(q.Required), "Yes / No",
				discordgo.TextInputShort, true, 0, 5),
			textInput("length", "Length, formatted as (min)-(max)", form.FormatLengthRange(q.MinLength, q.MaxLength),
				"The maximum length can be up to 1024, defaults to 1000.",
				discordgo.TextInputShort, false, 0, 80),
		},
	}
}
