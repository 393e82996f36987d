package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/Alijeyrad/formsbot/pkg/constants"
)

// Top-level command names.
const (
	cmdForms     = "forms"
	cmdModals    = "modals"
	cmdQuestions = "questions"
)

var (
	adminPermissions int64 = discordgo.PermissionAdministrator
	guildOnly              = false
)

func floatPtr(f float64) *float64 { return &f }

func intPtr(n int) *int { return &n }

func subcommand(name, description string, options ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        name,
		Description: description,
		Options:     options,
	}
}

func stringOption(name, description string, required bool, maxLen int) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    required,
		MinLength:   intPtr(1),
		MaxLength:   maxLen,
	}
}

func autocompleteOption(name, description string, maxLen int) *discordgo.ApplicationCommandOption {
	o := stringOption(name, description, true, maxLen)
	o.Autocomplete = true
	return o
}

func boolOption(name, description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionBoolean,
		Name:        name,
		Description: description,
	}
}

func intOption(name, description string, minValue, maxValue float64) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        name,
		Description: description,
		MinValue:    floatPtr(minValue),
		MaxValue:    maxValue,
	}
}

func channelOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionChannel,
		Name:        name,
		Description: description,
		Required:    required,
		ChannelTypes: []discordgo.ChannelType{
			discordgo.ChannelTypeGuildText,
			discordgo.ChannelTypeGuildNews,
			discordgo.ChannelTypeGuildPublicThread,
			discordgo.ChannelTypeGuildPrivateThread,
		},
	}
}

func adminCommand(name, description string, subs ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:                     name,
		Description:              description,
		DefaultMemberPermissions: &adminPermissions,
		DMPermission:             &guildOnly,
		Options:                  subs,
	}
}

// commands returns the slash commands the bot registers.
func commands() []*discordgo.ApplicationCommand {
	const (
		formDesc     = "The name of the form."
		modalDesc    = "The label of the modal in the selected form."
		questionDesc = "The label of the question in the selected modal."
	)

	message := stringOption("message", "The initial message that is displayed to users filling out this form.", false, 2000)
	confirmation := stringOption("confirmation", "The confirmation message users get after submitting. Defaults to 'Response Recorded!'", false, 2000)

	return []*discordgo.ApplicationCommand{
		adminCommand(cmdForms, "Manage forms.",
			subcommand("create", "Create a new form.",
				stringOption("name", "The name (title) of the form.", true, constants.MaxFormNameLength),
				message,
				confirmation,
				channelOption("channel", "The text channel where responses will be sent to.", false),
				boolOption("ping", "Whether @everyone should get pinged when the form response is sent."),
			),
			subcommand("edit", "Edit a form.", autocompleteOption("form", formDesc, constants.MaxFormNameLength)),
			subcommand("select", "Select a form to manage its modals.", autocompleteOption("form", formDesc, constants.MaxFormNameLength)),
			subcommand("remove", "Remove a form. WARNING: This deletes the form and its responses.",
				autocompleteOption("form", formDesc, constants.MaxFormNameLength)),
			subcommand("send", "Send a message with buttons for one or multiple forms to a channel.",
				channelOption("channel", "The text channel this will get sent to.", true),
				stringOption("content", "The text above the form button(s).", true, 2000),
			),
		),
		adminCommand(cmdModals, "Manage the modals of the selected form.",
			subcommand("add", "Add a new modal to the currently selected form.",
				stringOption("label", "The label of the button that opens this modal.", true, constants.MaxModalLabelLength),
				stringOption("title", "The title of the modal. Defaults to the title of the form.", false, constants.MaxModalTitleLength),
			),
			subcommand("edit", "Edit a modal of the currently selected form.", autocompleteOption("modal", modalDesc, constants.MaxModalLabelLength)),
			subcommand("select", "Select a modal to manage its questions.", autocompleteOption("modal", modalDesc, constants.MaxModalLabelLength)),
			subcommand("remove", "Remove a modal of the currently selected form. WARNING: This action is permanent.",
				autocompleteOption("modal", modalDesc, constants.MaxModalLabelLength)),
		),
		adminCommand(cmdQuestions, "Manage the questions of the selected modal.",
			subcommand("add", "Add a question to the currently selected modal.",
				stringOption("label", "The question text.", true, constants.MaxQuestionLabelLength),
				stringOption("placeholder", "Example text shown in the empty field.", false, constants.MaxPlaceholderLength),
				boolOption("paragraph", "Whether the answer field is multi-line. Defaults to no."),
				boolOption("required", "Whether an answer is required. Defaults to yes."),
				intOption("min_length", "The minimum answer length.", 0, constants.MaxAnswerLength),
				intOption("max_length", "The maximum answer length, defaults to 1000.", 1, constants.MaxAnswerLength),
				boolOption("identity", "Whether the answer is the user's in-game name. Only used on the form's first question."),
			),
			subcommand("edit", "Edit a question of the currently selected modal.", autocompleteOption("question", questionDesc, constants.MaxQuestionLabelLength)),
			subcommand("remove", "Remove a question of the currently selected modal.", autocompleteOption("question", questionDesc, constants.MaxQuestionLabelLength)),
		),
	}
}
