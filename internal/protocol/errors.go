package protocol

import "errors"

// ErrInvalidState is returned when a STATE body is not the expected JSON object.
var ErrInvalidState = errors.New("invalid STATE payload")
