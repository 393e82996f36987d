package form

import "errors"

var (
	ErrNoFormSelected   = errors.New("no form selected")
	ErrNoModalSelected  = errors.New("no modal selected")
	ErrFormNotFound     = errors.New("form not found")
	ErrModalNotFound    = errors.New("modal not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrDuplicateName    = errors.New("a form with this name already exists")
	ErrDuplicateLabel   = errors.New("label already used")
	ErrQuestionLimit    = errors.New("modal already has the maximum number of questions")
	ErrInvalidLength    = errors.New("length range must be between 0 and 1024, formatted as (min)-(max)")
	ErrInvalidChannel   = errors.New("not a valid channel id")
	ErrInvalidInput     = errors.New("invalid input")
)
