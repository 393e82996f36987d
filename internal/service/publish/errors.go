package publish

import "errors"

var (
	ErrBuilderNotFound = errors.New("message builder not found")
	ErrLabelRequired   = errors.New("a button label is required")
	ErrLabelTooLong    = errors.New("button label is too long")
	ErrIconTooLong     = errors.New("button emoji is too long")
	ErrUnknownForm     = errors.New("form not found")
	ErrLastButton      = errors.New("a message needs at least one button")
	ErrButtonLimit     = errors.New("a message cannot hold more buttons")
	ErrIncomplete      = errors.New("you must set the label and form for each button")
	ErrDuplicateLabels = errors.New("button labels must be unique")
	ErrNoAccess        = errors.New("no access to the channel, message could not be sent")
)
