package keymap

import "errors"

var (
	// ErrNotMoveCommand is returned when a command lacks the MOUSE_MOVE_ prefix
	ErrNotMoveCommand = errors.New("not a mouse move command")

	// ErrInvalidDirection is returned when a move names no direction or an unknown one
	ErrInvalidDirection = errors.New("invalid mouse move direction")

	// ErrOverridesInvalid is returned when a keymap override file cannot be parsed
	ErrOverridesInvalid = errors.New("invalid keymap overrides")
)
