package hub

import "errors"

// ErrInvalidName is returned when a hub is looked up with an empty name.
var ErrInvalidName = errors.New("hub: a hub name is required")
