package discord

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Alijeyrad/formsbot/internal/service/form"
	"github.com/Alijeyrad/formsbot/internal/service/publish"
	"github.com/Alijeyrad/formsbot/internal/service/submission"
)

// Reply texts that need more than the error's own message.
const (
	msgNoFormSelected  = "No form selected. Select one with `/forms select` first."
	msgNoModalSelected = "No modal selected. Select one with `/modals select` first."
	msgQuestionLimit   = "The selected modal already has five questions."
	msgInvalidLength   = "Not a valid length: Has to be between 0 and 1024, formatted as `(min)-(max)`."
	msgDeliveryFailed  = "An error occurred when processing your response.\nPlease contact a server administrator."
	msgSessionExpired  = "This form session is no longer active. Please open the form again."
	msgBuilderExpired  = "This message builder is no longer active. Please run `/forms send` again."
)

var errUnknownInteraction = errors.New("unknown interaction")

// known lists the errors whose own message is fit to show to the user.
var known = []error{
	form.ErrFormNotFound,
	form.ErrModalNotFound,
	form.ErrQuestionNotFound,
	form.ErrDuplicateName,
	form.ErrDuplicateLabel,
	form.ErrInvalidChannel,
	form.ErrInvalidInput,
	submission.ErrFormNotFound,
	submission.ErrFormChanged,
	submission.ErrModalNotFound,
	submission.ErrValueCount,
	submission.ErrAnswerTooLong,
	submission.ErrNotReady,
	submission.ErrAlreadySubmitted,
	publish.ErrLabelRequired,
	publish.ErrLabelTooLong,
	publish.ErrIconTooLong,
	publish.ErrUnknownForm,
	publish.ErrLastButton,
	publish.ErrButtonLimit,
	publish.ErrIncomplete,
	publish.ErrDuplicateLabels,
}

// userMessage turns err into the text of an error reply. ok is false for
// errors the user cannot act on; those get a generic reply and are logged.
func userMessage(err error) (msg string, ok bool) {
	switch {
	case errors.Is(err, form.ErrNoFormSelected):
		return msgNoFormSelected, true
	case errors.Is(err, form.ErrNoModalSelected):
		return msgNoModalSelected, true
	case errors.Is(err, form.ErrQuestionLimit):
		return msgQuestionLimit, true
	case errors.Is(err, form.ErrInvalidLength):
		return msgInvalidLength, true
	case errors.Is(err, submission.ErrDeliveryFailed):
		return msgDeliveryFailed, true
	case errors.Is(err, submission.ErrSessionNotFound):
		return msgSessionExpired, true
	case errors.Is(err, publish.ErrBuilderNotFound):
		return msgBuilderExpired, true
	}
	for _, k := range known {
		if errors.Is(err, k) {
			return sentence(err.Error()), true
		}
	}
	return msgUnexpected, false
}

// sentence capitalizes s and ends it with a period.
func sentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	s = string(unicode.ToUpper(r)) + s[size:]
	if !strings.HasSuffix(s, ".") && !strings.HasSuffix(s, "?") && !strings.HasSuffix(s, "!") {
		s += "."
	}
	return s
}
