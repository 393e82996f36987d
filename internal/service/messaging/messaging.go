// Package messaging holds the errors chat adapters classify delivery
// failures into, so services can react without knowing the platform.
package messaging

import "errors"

var (
	ErrForbidden      = errors.New("missing access to the channel")
	ErrUnknownChannel = errors.New("unknown channel")
)
