package input

import "errors"

var (
	// ErrUnsupportedPlatform is returned when no injector exists for this OS
	ErrUnsupportedPlatform = errors.New("input injection not supported on this platform")

	// ErrUnknownKey is returned when a key name has no OS key code
	ErrUnknownKey = errors.New("unknown key")

	// ErrInvalidButton is returned for mouse buttons other than left/right/middle
	ErrInvalidButton = errors.New("invalid mouse button")
)
