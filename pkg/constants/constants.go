package constants

const (
	AppName      = "formsbot"
	ConfigName   = "config"
	ConfigFormat = "yaml"
	EnvPrefix    = "FORMS"
)

// Discord limits enforced on user input.
const (
	MaxFormNameLength        = 45
	MaxModalLabelLength      = 80
	MaxModalTitleLength      = 45
	MaxQuestionLabelLength   = 45
	MaxPlaceholderLength     = 100
	MaxQuestionsPerModal     = 5
	MaxAnswerLength          = 1024
	DefaultAnswerMaxLength   = 1000
	MaxButtonLabelLength     = 80
	MaxButtonIconLength      = 32
	MaxAutocompleteChoices   = 25
	MaxSelectMenuOptions     = 25
	MaxButtonsPerActionRow   = 5
	MaxLogMessageLength      = 1994
	DefaultConfirmation      = "Response recorded!"
	UnansweredPlaceholder    = "---"
	EveryoneMention          = "@everyone"
	DefaultEnrichmentBaseURL = "https://api.wynncraft.com"
)
