package state

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"remotekey/internal/simulator"
)

// fakeActuator records every call in order.
type fakeActuator struct {
	calls []string
	fail  map[string]bool
}

func (f *fakeActuator) outcome(call string) simulator.Outcome {
	f.calls = append(f.calls, call)
	if f.fail[call] {
		return simulator.Outcome{Message: "Error: " + call, Err: errors.New("failed")}
	}
	return simulator.Outcome{Message: call}
}

func (f *fakeActuator) PressAndHoldDown(token string) simulator.Outcome {
	return f.outcome("press:" + token)
}

func (f *fakeActuator) ReleaseHeld(token string) simulator.Outcome {
	return f.outcome("release:" + token)
}

func (f *fakeActuator) DispatchMouse(command string) simulator.Outcome {
	return f.outcome("mouse:" + command)
}

func (f *fakeActuator) ApplyScroll(level int) simulator.Outcome {
	return f.outcome(fmt.Sprintf("scroll:%d", level))
}

func (f *fakeActuator) take() []string {
	calls := f.calls
	f.calls = nil
	return calls
}

func newTestTracker() (*Tracker, *fakeActuator) {
	act := &fakeActuator{fail: map[string]bool{}}
	return NewTracker(act, zerolog.Nop()), act
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestReconcilePressAndRelease(t *testing.T) {
	tr, act := newTestTracker()

	require.Equal(t, UpdatedMessage, tr.Reconcile([]string{"A", "B"}, nil, nil))
	require.Equal(t, []string{"press:A", "press:B"}, act.take())
	require.Equal(t, []string{"A", "B"}, tr.Snapshot().ActiveKeys)

	tr.Reconcile([]string{"B"}, nil, nil)
	require.Equal(t, []string{"release:A"}, act.take())
	require.Equal(t, []string{"B"}, tr.Snapshot().ActiveKeys)
}

func TestReconcileMatchesReportedSet(t *testing.T) {
	tr, act := newTestTracker()

	steps := [][]string{
		{"A", "SHIFT"},
		{"SHIFT", "C", "C"},
		{},
		{"CTRL+V", "Z"},
		nil,
	}
	for _, keys := range steps {
		tr.Reconcile(keys, nil, nil)

		want := map[string]bool{}
		for _, k := range keys {
			want[k] = true
		}
		got := tr.Snapshot().ActiveKeys
		require.Len(t, got, len(want))
		for _, k := range got {
			require.True(t, want[k], k)
		}
	}
	require.NotEmpty(t, act.take())
}

func TestReconcileIdempotent(t *testing.T) {
	tr, act := newTestTracker()

	tr.Reconcile([]string{"A"}, strPtr("MOUSE_MOVE_UP_1"), intPtr(2))
	require.Equal(t, []string{"press:A", "mouse:MOUSE_MOVE_UP_1", "scroll:2"}, act.take())

	tr.Reconcile([]string{"A"}, strPtr("MOUSE_MOVE_UP_1"), intPtr(2))
	require.Equal(t, []string{"scroll:2"}, act.take())
}

func TestReconcileMouse(t *testing.T) {
	tr, act := newTestTracker()

	tr.Reconcile(nil, strPtr("MOUSE_LEFT"), nil)
	require.Equal(t, []string{"mouse:MOUSE_LEFT"}, act.take())
	snap := tr.Snapshot()
	require.True(t, snap.MouseActive)
	require.Equal(t, "MOUSE_LEFT", snap.MouseCommand)

	// null and "" both clear the command without a dispatch
	tr.Reconcile(nil, nil, nil)
	require.Empty(t, act.take())
	require.False(t, tr.Snapshot().MouseActive)

	tr.Reconcile(nil, strPtr(""), nil)
	require.Empty(t, act.take())

	tr.Reconcile(nil, strPtr("MOUSE_LEFT"), nil)
	require.Equal(t, []string{"mouse:MOUSE_LEFT"}, act.take())
}

func TestReconcileScrollZeroStillApplied(t *testing.T) {
	tr, act := newTestTracker()

	tr.Reconcile(nil, nil, intPtr(0))
	tr.Reconcile(nil, nil, intPtr(0))
	require.Equal(t, []string{"scroll:0", "scroll:0"}, act.take())
}

func TestReconcileContinuesAfterFailures(t *testing.T) {
	tr, act := newTestTracker()
	act.fail["press:A"] = true

	require.Equal(t, UpdatedMessage, tr.Reconcile([]string{"A", "B"}, strPtr("MOUSE_RIGHT"), nil))
	require.Equal(t, []string{"press:A", "press:B", "mouse:MOUSE_RIGHT"}, act.take())
	// failed keys are still tracked as reported
	require.Equal(t, []string{"A", "B"}, tr.Snapshot().ActiveKeys)
}

func TestResetAll(t *testing.T) {
	tr, act := newTestTracker()

	tr.ResetAll()
	require.Empty(t, act.take())

	tr.Reconcile([]string{"C", "A", "B"}, strPtr("MOUSE_MOVE_LEFT"), nil)
	act.take()

	tr.ResetAll()
	require.Equal(t, []string{"release:A", "release:B", "release:C"}, act.take())
	require.Equal(t, Snapshot{ActiveKeys: []string{}}, tr.Snapshot())

	tr.ResetAll()
	require.Empty(t, act.take())
}
