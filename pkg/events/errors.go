package events

import "errors"

var (
	// ErrNilListener is returned by On when no listener is given.
	ErrNilListener = errors.New("events: listener is nil")

	// ErrInvalidTarget is returned for a targets value of an unsupported type.
	ErrInvalidTarget = errors.New("events: unsupported target type")
)
