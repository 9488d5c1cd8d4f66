// Package state tracks what the remote client currently holds down and
// converges the local keyboard and mouse to each reported snapshot.
package state

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"remotekey/internal/simulator"
)

// UpdatedMessage is the reply to every reconciled STATE message.
const UpdatedMessage = "State updated"

// Actuator performs the individual actions a reconcile decides on.
// *simulator.Simulator implements it.
type Actuator interface {
	PressAndHoldDown(token string) simulator.Outcome
	ReleaseHeld(token string) simulator.Outcome
	DispatchMouse(command string) simulator.Outcome
	ApplyScroll(level int) simulator.Outcome
}

// Snapshot is a point-in-time copy of the tracked state.
type Snapshot struct {
	ActiveKeys   []string `json:"active_keys"`
	MouseActive  bool     `json:"mouse_active"`
	MouseCommand string   `json:"mouse_command"`
}

// Tracker holds the authoritative set of held keys and the current mouse
// command for one session.
type Tracker struct {
	actuator Actuator
	log      zerolog.Logger

	mu           sync.Mutex
	activeKeys   map[string]struct{}
	mouseCommand string
	mouseActive  bool
}

// NewTracker creates an empty Tracker.
func NewTracker(actuator Actuator, log zerolog.Logger) *Tracker {
	return &Tracker{
		actuator:   actuator,
		log:        log.With().Str("component", "state").Logger(),
		activeKeys: make(map[string]struct{}),
	}
}

// Reconcile converges to the reported state: keys newly present are pressed,
// keys no longer present are released, a changed mouse command is dispatched
// and a present scroll level is always applied. Action failures are logged
// and do not stop the remaining actions.
func (t *Tracker) Reconcile(keys []string, mouse *string, scroll *int) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	reported := make(map[string]struct{}, len(keys))
	var toPress []string
	for _, k := range keys {
		if _, dup := reported[k]; dup {
			continue
		}
		reported[k] = struct{}{}
		if _, held := t.activeKeys[k]; !held {
			toPress = append(toPress, k)
		}
	}

	var toRelease []string
	for k := range t.activeKeys {
		if _, ok := reported[k]; !ok {
			toRelease = append(toRelease, k)
		}
	}
	sort.Strings(toRelease)

	for _, k := range toPress {
		t.check(t.actuator.PressAndHoldDown(k))
	}
	for _, k := range toRelease {
		t.check(t.actuator.ReleaseHeld(k))
	}
	t.activeKeys = reported

	var command string
	if mouse != nil {
		command = *mouse
	}
	if command != t.mouseCommand {
		if command != "" {
			t.check(t.actuator.DispatchMouse(command))
		}
		t.mouseActive = command != ""
		t.mouseCommand = command
	}

	if scroll != nil {
		t.check(t.actuator.ApplyScroll(*scroll))
	}

	return UpdatedMessage
}

func (t *Tracker) check(out simulator.Outcome) {
	if out.Failed() {
		t.log.Debug().Err(out.Err).Str("outcome", out.Message).Msg("Reconcile action failed")
	}
}

// ResetAll releases every held key and forgets the mouse command. It is
// called when a session ends and is a no-op on an empty tracker.
func (t *Tracker) ResetAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, k := range sortedKeys(t.activeKeys) {
		t.check(t.actuator.ReleaseHeld(k))
	}
	t.activeKeys = make(map[string]struct{})
	t.mouseCommand = ""
	t.mouseActive = false
}

// Snapshot returns a copy of the current state with keys sorted.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	return Snapshot{
		ActiveKeys:   sortedKeys(t.activeKeys),
		MouseActive:  t.mouseActive,
		MouseCommand: t.mouseCommand,
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
