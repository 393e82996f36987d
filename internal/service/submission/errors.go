package submission

import "errors"

var (
	ErrSessionNotFound  = errors.New("submission session not found")
	ErrFormNotFound     = errors.New("this form does not exist anymore")
	ErrModalNotFound    = errors.New("modal not found")
	ErrValueCount       = errors.New("submitted values do not match the modal's questions")
	ErrAnswerTooLong    = errors.New("answer exceeds the question's maximum length")
	ErrNotReady         = errors.New("not all required questions answered")
	ErrAlreadySubmitted = errors.New("already submitted")
	// ErrDeliveryFailed is returned together with a committed Result when the
	// notification could not be posted.
	ErrDeliveryFailed = errors.New("an error occurred when processing your response")
	// ErrFormChanged means a question of the session was removed before it
	// was sent. The session is discarded.
	ErrFormChanged = errors.New("this form was changed while you were filling it in, please open it again")
)
