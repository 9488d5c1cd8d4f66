// Package simulator turns resolved key tokens and mouse commands into calls on
// an input.Injector and describes each result with a human-readable outcome.
package simulator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"remotekey/internal/input"
	"remotekey/internal/keymap"
)

// Pixel deltas per mouse move speed level.
var moveSpeeds = map[int]int{1: 5, 2: 15, 3: 30}

const (
	defaultMoveSpeed = 10
	// scroll step per level for MOUSE_SCROLL_* commands
	commandScrollStep = 5
	// scroll step per level for the STATE scroll field
	stateScrollStep = 3
)

// Outcome is the result of one simulated action. Message is what the client sees.
type Outcome struct {
	Message string
	Err     error
}

// Failed reports whether the underlying injection failed.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// String returns the client-facing message.
func (o Outcome) String() string {
	return o.Message
}

// Simulator drives an Injector. It holds no per-key state; the state tracker
// decides what to press and release.
type Simulator struct {
	mapper   *keymap.Mapper
	injector input.Injector
	log      zerolog.Logger
	onFail   func(op string, err error)
}

// Option configures a Simulator
type Option func(*Simulator)

// WithLogger sets the logger used for failed actions.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Simulator) {
		s.log = log.With().Str("component", "simulator").Logger()
	}
}

// WithFailureHook registers a callback invoked for every failed injection.
func WithFailureHook(fn func(op string, err error)) Option {
	return func(s *Simulator) {
		s.onFail = fn
	}
}

// New creates a Simulator.
func New(mapper *keymap.Mapper, injector input.Injector, opts ...Option) *Simulator {
	s := &Simulator{
		mapper:   mapper,
		injector: injector,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) failed(op, subject string, err error) {
	s.log.Warn().Err(err).Str("op", op).Str("subject", subject).Msg("Injection failed")
	if s.onFail != nil {
		s.onFail(op, err)
	}
}

// PressAndHoldDown presses token. A plain key stays held until ReleaseHeld;
// a combination is pressed and released immediately.
func (s *Simulator) PressAndHoldDown(token string) Outcome {
	key := s.mapper.Resolve(token)

	if key.IsCombination() {
		if err := s.combo(key); err != nil {
			s.failed("press", token, err)
			return Outcome{Message: "Error: Cannot press key " + token, Err: err}
		}
		return Outcome{Message: "Key combo " + token + " pressed"}
	}

	if err := s.injector.KeyDown(key.Name); err != nil {
		s.failed("press", token, err)
		return Outcome{Message: "Error: Cannot press key " + token, Err: err}
	}
	return Outcome{Message: "Key " + token + " pressed"}
}

// combo presses modifier then key and releases them in reverse order. The
// modifier is released even when the key fails so nothing stays held.
func (s *Simulator) combo(key keymap.Key) error {
	if err := s.injector.KeyDown(key.Modifier); err != nil {
		return err
	}
	var errs []error
	if err := s.injector.KeyDown(key.Name); err != nil {
		errs = append(errs, err)
	} else if err := s.injector.KeyUp(key.Name); err != nil {
		errs = append(errs, err)
	}
	if err := s.injector.KeyUp(key.Modifier); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ReleaseHeld releases a plain key. Combinations were never held, so
// releasing one is a no-op acknowledgement.
func (s *Simulator) ReleaseHeld(token string) Outcome {
	key := s.mapper.Resolve(token)
	if key.IsCombination() {
		return Outcome{Message: "Key combo " + token + " released"}
	}

	if err := s.injector.KeyUp(key.Name); err != nil {
		s.failed("release", token, err)
		return Outcome{Message: "Error: Cannot release key " + token, Err: err}
	}
	return Outcome{Message: "Key " + token + " released"}
}

// Tap presses then releases token. The reply is the same whether or not the
// individual steps succeeded; failures are carried in Err.
func (s *Simulator) Tap(token string) Outcome {
	press := s.PressAndHoldDown(token)
	release := s.ReleaseHeld(token)
	return Outcome{
		Message: "Key " + token + " pressed and released",
		Err:     errors.Join(press.Err, release.Err),
	}
}

// DispatchMouse performs a MOUSE_* command.
func (s *Simulator) DispatchMouse(command string) Outcome {
	var (
		msg string
		err error
	)

	switch {
	case command == keymap.MouseLeftClick:
		msg, err = "Mouse left clicked", s.injector.Click(input.ButtonLeft)
	case command == keymap.MouseRightClick:
		msg, err = "Mouse right clicked", s.injector.Click(input.ButtonRight)
	case command == keymap.MouseMiddleClick:
		msg, err = "Mouse middle clicked", s.injector.Click(input.ButtonMiddle)
	case command == keymap.MouseDoubleClick:
		msg, err = "Mouse double clicked", s.injector.DoubleClick()
	case command == keymap.MouseScrollStop:
		msg = "Mouse scroll stopped"
	case strings.HasPrefix(command, keymap.MouseScrollUp):
		level := keymap.SpeedLevel(command, keymap.MouseScrollUp)
		msg = fmt.Sprintf("Mouse scrolled up at speed %d", level)
		err = s.injector.Scroll(level * commandScrollStep)
	case strings.HasPrefix(command, keymap.MouseScrollDown):
		level := keymap.SpeedLevel(command, keymap.MouseScrollDown)
		msg = fmt.Sprintf("Mouse scrolled down at speed %d", level)
		err = s.injector.Scroll(-level * commandScrollStep)
	case strings.HasPrefix(command, keymap.MouseMovePrefix):
		move, perr := keymap.ParseMove(command)
		if perr != nil {
			return Outcome{Message: "Invalid mouse move command: " + command, Err: perr}
		}
		dx, dy := moveDelta(move)
		msg = fmt.Sprintf("Mouse moved %s at speed %d", move, move.Level)
		err = s.injector.MoveRelative(dx, dy)
	default:
		return Outcome{Message: "Unknown mouse command: " + command}
	}

	if err != nil {
		s.failed("mouse", command, err)
		return Outcome{Message: "Error: Cannot perform mouse command " + command, Err: err}
	}
	return Outcome{Message: msg}
}

// moveDelta sums the per-axis contribution of every direction.
func moveDelta(move keymap.Move) (int, int) {
	speed, ok := moveSpeeds[move.Level]
	if !ok {
		speed = defaultMoveSpeed
	}

	var dx, dy int
	for _, d := range move.Directions {
		switch d {
		case keymap.Up:
			dy -= speed
		case keymap.Down:
			dy += speed
		case keymap.Left:
			dx -= speed
		case keymap.Right:
			dx += speed
		}
	}
	return dx, dy
}

// ApplyScroll scrolls by a signed level from a STATE message. Positive
// levels scroll up, negative down, zero stops. The magnitude is clamped to
// keymap.MaxSpeedLevel.
func (s *Simulator) ApplyScroll(level int) Outcome {
	if level == 0 {
		return Outcome{Message: "Scroll stopped"}
	}
	level = keymap.ClampLevel(level)

	direction, magnitude := "up", level
	if level < 0 {
		direction, magnitude = "down", -level
	}

	if err := s.injector.Scroll(level * stateScrollStep); err != nil {
		s.failed("scroll", fmt.Sprint(level), err)
		return Outcome{Message: fmt.Sprintf("Error: Cannot scroll at speed %d", magnitude), Err: err}
	}
	return Outcome{Message: fmt.Sprintf("Scrolled %s at speed %d", direction, magnitude)}
}
