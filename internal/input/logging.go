package input

import (
	"github.com/rs/zerolog"
)

type loggingInjector struct {
	next Injector
	log  zerolog.Logger
}

// WithLogging wraps inj so that every action is logged at debug level.
// Failed actions are logged at warn level with the error.
func WithLogging(inj Injector, log zerolog.Logger) Injector {
	return &loggingInjector{next: inj, log: log.With().Str("component", "input").Logger()}
}

func (l *loggingInjector) done(err error, action string) *zerolog.Event {
	if err != nil {
		return l.log.Warn().Err(err).Str("action", action)
	}
	return l.log.Debug().Str("action", action)
}

func (l *loggingInjector) KeyDown(key string) error {
	err := l.next.KeyDown(key)
	l.done(err, "key_down").Str("key", key).Msg("inject")
	return err
}

func (l *loggingInjector) KeyUp(key string) error {
	err := l.next.KeyUp(key)
	l.done(err, "key_up").Str("key", key).Msg("inject")
	return err
}

func (l *loggingInjector) Click(button Button) error {
	err := l.next.Click(button)
	l.done(err, "click").Stringer("button", button).Msg("inject")
	return err
}

func (l *loggingInjector) DoubleClick() error {
	err := l.next.DoubleClick()
	l.done(err, "double_click").Msg("inject")
	return err
}

func (l *loggingInjector) Scroll(amount int) error {
	err := l.next.Scroll(amount)
	l.done(err, "scroll").Int("amount", amount).Msg("inject")
	return err
}

func (l *loggingInjector) MoveRelative(dx, dy int) error {
	err := l.next.MoveRelative(dx, dy)
	l.done(err, "move").Int("dx", dx).Int("dy", dy).Msg("inject")
	return err
}
