package keymap

import (
	"fmt"
	"strconv"
	"strings"
)

// Mouse command tokens.
const (
	MousePrefix      = "MOUSE_"
	MouseLeftClick   = "MOUSE_LEFT"
	MouseRightClick  = "MOUSE_RIGHT"
	MouseMiddleClick = "MOUSE_MIDDLE"
	MouseDoubleClick = "MOUSE_DOUBLE_LEFT"
	MouseScrollUp    = "MOUSE_SCROLL_UP"
	MouseScrollDown  = "MOUSE_SCROLL_DOWN"
	MouseScrollStop  = "MOUSE_SCROLL_STOP"
	MouseMovePrefix  = "MOUSE_MOVE_"
)

// Direction is one component of a mouse move command.
type Direction string

const (
	Up    Direction = "UP"
	Down  Direction = "DOWN"
	Left  Direction = "LEFT"
	Right Direction = "RIGHT"
)

// Move is a decoded MOUSE_MOVE_ command.
type Move struct {
	Directions []Direction
	Level      int
}

// String joins the directions the way they appear on the wire, e.g. "UP_RIGHT".
func (m Move) String() string {
	parts := make([]string, len(m.Directions))
	for i, d := range m.Directions {
		parts[i] = string(d)
	}
	return strings.Join(parts, "_")
}

// IsMouseCommand reports whether token carries the mouse sub-prefix.
func IsMouseCommand(token string) bool {
	return strings.HasPrefix(token, MousePrefix)
}

// ParseMove decodes MOUSE_MOVE_<DIR>[_<DIR>...][_<LEVEL>]. A missing level means 1.
func ParseMove(command string) (Move, error) {
	if !strings.HasPrefix(command, MouseMovePrefix) {
		return Move{}, fmt.Errorf("%w: %s", ErrNotMoveCommand, command)
	}

	parts := strings.Split(strings.TrimPrefix(command, MouseMovePrefix), "_")
	level := 1
	if n, ok := parseLevel(parts[len(parts)-1]); ok {
		level = n
		parts = parts[:len(parts)-1]
	}

	move := Move{Level: level}
	for _, p := range parts {
		switch d := Direction(p); d {
		case Up, Down, Left, Right:
			move.Directions = append(move.Directions, d)
		default:
			return Move{}, fmt.Errorf("%w: %q in %s", ErrInvalidDirection, p, command)
		}
	}
	if len(move.Directions) == 0 {
		return Move{}, fmt.Errorf("%w: %s", ErrInvalidDirection, command)
	}

	return move, nil
}

// SpeedLevel extracts the optional trailing numeric level of a scroll
// command such as MOUSE_SCROLL_UP_3. A missing or non-numeric suffix means 1.
// Levels above MaxSpeedLevel are clamped.
func SpeedLevel(command, base string) int {
	suffix := strings.TrimPrefix(strings.TrimPrefix(command, base), "_")
	if n, ok := parseLevel(suffix); ok {
		return n
	}
	return 1
}

// MaxSpeedLevel bounds every client-supplied speed level.
const MaxSpeedLevel = 100

// ClampLevel limits a signed level to [-MaxSpeedLevel, MaxSpeedLevel].
func ClampLevel(level int) int {
	return max(-MaxSpeedLevel, min(level, MaxSpeedLevel))
}

// parseLevel accepts only ASCII digits. Values past MaxSpeedLevel,
// including ones that overflow int, become MaxSpeedLevel.
func parseLevel(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n > MaxSpeedLevel {
		return MaxSpeedLevel, true
	}
	return n, true
}
