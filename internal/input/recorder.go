package input

import (
	"errors"
	"fmt"
	"sync"
)

// Op names a recorded injector call.
type Op string

const (
	OpKeyDown     Op = "down"
	OpKeyUp       Op = "up"
	OpClick       Op = "click"
	OpDoubleClick Op = "double"
	OpScroll      Op = "scroll"
	OpMove        Op = "move"
)

// ErrInjected is the default error returned by a Recorder failure rule.
var ErrInjected = errors.New("injected failure")

// Event is one call observed by a Recorder.
type Event struct {
	Op     Op
	Key    string
	Button Button
	Amount int
	DX, DY int
}

func (e Event) String() string {
	switch e.Op {
	case OpKeyDown, OpKeyUp:
		return fmt.Sprintf("%s:%s", e.Op, e.Key)
	case OpClick:
		return fmt.Sprintf("%s:%s", e.Op, e.Button)
	case OpScroll:
		return fmt.Sprintf("%s:%d", e.Op, e.Amount)
	case OpMove:
		return fmt.Sprintf("%s:%d,%d", e.Op, e.DX, e.DY)
	default:
		return string(e.Op)
	}
}

// Recorder is an Injector that performs no OS input. It records every call
// and can be told to fail selected ones. Used for dry runs and tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	fail   map[string]error
	limit  int
}

var _ Injector = (*Recorder)(nil)

// NewRecorder creates an empty Recorder
func NewRecorder() *Recorder {
	return &Recorder{fail: make(map[string]error)}
}

// SetLimit keeps only the newest n events; n <= 0 keeps all.
func (r *Recorder) SetLimit(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.limit = n
	r.trim()
}

func (r *Recorder) trim() {
	if r.limit > 0 && len(r.events) > r.limit {
		r.events = append(r.events[:0], r.events[len(r.events)-r.limit:]...)
	}
}

// FailKey makes KeyDown/KeyUp of key (op "down" or "up", "" for both) return err.
// A nil err means ErrInjected.
func (r *Recorder) FailKey(op Op, key string, err error) {
	if err == nil {
		err = ErrInjected
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail[string(op)+"|"+key] = err
}

// FailOp makes every call of the given non-key op return err.
func (r *Recorder) FailOp(op Op, err error) {
	r.FailKey(op, "", err)
}

// Events returns a copy of the recorded calls
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Strings returns the recorded calls in their compact "op:arg" form
func (r *Recorder) Strings() []string {
	events := r.Events()
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.String()
	}
	return out
}

// Reset forgets recorded calls; failure rules are kept
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// record appends e unless a failure rule matches it.
func (r *Recorder) record(e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err, ok := r.fail[string(e.Op)+"|"+e.Key]; ok {
		return err
	}
	if e.Key != "" {
		if err, ok := r.fail["|"+e.Key]; ok {
			return err
		}
	}
	r.events = append(r.events, e)
	r.trim()
	return nil
}

func (r *Recorder) KeyDown(key string) error {
	return r.record(Event{Op: OpKeyDown, Key: key})
}

func (r *Recorder) KeyUp(key string) error {
	return r.record(Event{Op: OpKeyUp, Key: key})
}

func (r *Recorder) Click(button Button) error {
	if button < ButtonLeft || button > ButtonMiddle {
		return fmt.Errorf("%w: %d", ErrInvalidButton, button)
	}
	return r.record(Event{Op: OpClick, Button: button})
}

func (r *Recorder) DoubleClick() error {
	return r.record(Event{Op: OpDoubleClick})
}

func (r *Recorder) Scroll(amount int) error {
	return r.record(Event{Op: OpScroll, Amount: amount})
}

func (r *Recorder) MoveRelative(dx, dy int) error {
	return r.record(Event{Op: OpMove, DX: dx, DY: dy})
}
