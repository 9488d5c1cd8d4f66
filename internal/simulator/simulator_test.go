package simulator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"remotekey/internal/input"
	"remotekey/internal/keymap"
)

func newTestSimulator(opts ...Option) (*Simulator, *input.Recorder) {
	rec := input.NewRecorder()
	return New(keymap.New(nil), rec, opts...), rec
}

func TestPressAndHoldDown(t *testing.T) {
	sim, rec := newTestSimulator()

	out := sim.PressAndHoldDown("A")
	require.Equal(t, "Key A pressed", out.Message)
	require.False(t, out.Failed())
	require.Equal(t, []string{"down:a"}, rec.Strings())
}

func TestPressCombinationIsMomentary(t *testing.T) {
	sim, rec := newTestSimulator()

	out := sim.PressAndHoldDown("CTRL+C")
	require.Equal(t, "Key combo CTRL+C pressed", out.Message)
	require.Equal(t, []string{"down:ctrl", "down:c", "up:c", "up:ctrl"}, rec.Strings())

	rec.Reset()
	out = sim.ReleaseHeld("CTRL+C")
	require.Equal(t, "Key combo CTRL+C released", out.Message)
	require.Empty(t, rec.Strings())
}

func TestComboReleasesModifierOnFailure(t *testing.T) {
	sim, rec := newTestSimulator()
	rec.FailKey(input.OpKeyDown, "c", nil)

	out := sim.PressAndHoldDown("CTRL+C")
	require.True(t, out.Failed())
	require.Equal(t, "Error: Cannot press key CTRL+C", out.Message)
	require.Equal(t, []string{"down:ctrl", "up:ctrl"}, rec.Strings())
}

func TestReleaseHeld(t *testing.T) {
	sim, rec := newTestSimulator()

	out := sim.ReleaseHeld("SHIFT")
	require.Equal(t, "Key SHIFT released", out.Message)
	require.Equal(t, []string{"up:shift"}, rec.Strings())
}

func TestFailuresBecomeOutcomes(t *testing.T) {
	var ops []string
	sim, rec := newTestSimulator(WithFailureHook(func(op string, err error) {
		ops = append(ops, op)
	}))
	rec.FailKey("", "a", nil)
	rec.FailOp(input.OpClick, nil)

	out := sim.PressAndHoldDown("A")
	require.Equal(t, "Error: Cannot press key A", out.Message)
	require.ErrorIs(t, out.Err, input.ErrInjected)

	out = sim.ReleaseHeld("A")
	require.Equal(t, "Error: Cannot release key A", out.Message)

	out = sim.DispatchMouse("MOUSE_LEFT")
	require.Equal(t, "Error: Cannot perform mouse command MOUSE_LEFT", out.Message)

	require.Equal(t, []string{"press", "release", "mouse"}, ops)
}

func TestTap(t *testing.T) {
	sim, rec := newTestSimulator()

	out := sim.Tap("A")
	require.Equal(t, "Key A pressed and released", out.Message)
	require.NoError(t, out.Err)
	require.Equal(t, []string{"down:a", "up:a"}, rec.Strings())

	rec.FailKey(input.OpKeyUp, "b", nil)
	out = sim.Tap("B")
	require.Equal(t, "Key B pressed and released", out.Message)
	require.ErrorIs(t, out.Err, input.ErrInjected)
}

func TestDispatchMouse(t *testing.T) {
	tests := []struct {
		command string
		message string
		events  []string
	}{
		{"MOUSE_LEFT", "Mouse left clicked", []string{"click:left"}},
		{"MOUSE_RIGHT", "Mouse right clicked", []string{"click:right"}},
		{"MOUSE_MIDDLE", "Mouse middle clicked", []string{"click:middle"}},
		{"MOUSE_DOUBLE_LEFT", "Mouse double clicked", []string{"double"}},
		{"MOUSE_SCROLL_UP", "Mouse scrolled up at speed 1", []string{"scroll:5"}},
		{"MOUSE_SCROLL_UP_3", "Mouse scrolled up at speed 3", []string{"scroll:15"}},
		{"MOUSE_SCROLL_DOWN_2", "Mouse scrolled down at speed 2", []string{"scroll:-10"}},
		{"MOUSE_SCROLL_STOP", "Mouse scroll stopped", []string{}},
		{"MOUSE_MOVE_UP", "Mouse moved UP at speed 1", []string{"move:0,-5"}},
		{"MOUSE_MOVE_UP_RIGHT_2", "Mouse moved UP_RIGHT at speed 2", []string{"move:15,-15"}},
		{"MOUSE_MOVE_DOWN_LEFT_3", "Mouse moved DOWN_LEFT at speed 3", []string{"move:-30,30"}},
		{"MOUSE_MOVE_LEFT_7", "Mouse moved LEFT at speed 7", []string{"move:-10,0"}},
		{"MOUSE_MOVE_SIDEWAYS", "Invalid mouse move command: MOUSE_MOVE_SIDEWAYS", []string{}},
		{"MOUSE_WIGGLE", "Unknown mouse command: MOUSE_WIGGLE", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			sim, rec := newTestSimulator()
			out := sim.DispatchMouse(tt.command)
			require.Equal(t, tt.message, out.Message)
			require.Equal(t, tt.events, rec.Strings())
		})
	}
}

func TestApplyScroll(t *testing.T) {
	sim, rec := newTestSimulator()

	require.Equal(t, "Scroll stopped", sim.ApplyScroll(0).Message)
	require.Empty(t, rec.Strings())

	require.Equal(t, "Scrolled up at speed 2", sim.ApplyScroll(2).Message)
	require.Equal(t, "Scrolled down at speed 3", sim.ApplyScroll(-3).Message)
	require.Equal(t, []string{"scroll:6", "scroll:-9"}, rec.Strings())
}

func TestScrollLevelClamped(t *testing.T) {
	sim, rec := newTestSimulator()

	require.Equal(t, "Scrolled up at speed 100", sim.ApplyScroll(4000000000000000000).Message)
	require.Equal(t, "Scrolled down at speed 100", sim.ApplyScroll(math.MinInt).Message)
	require.Equal(t, "Mouse scrolled up at speed 100", sim.DispatchMouse("MOUSE_SCROLL_UP_3000000000000000000").Message)
	require.Equal(t, "Mouse scrolled down at speed 100", sim.DispatchMouse("MOUSE_SCROLL_DOWN_999").Message)

	require.Equal(t, []string{"scroll:300", "scroll:-300", "scroll:500", "scroll:-500"}, rec.Strings())
}

func TestMoveSignedLevelInvalid(t *testing.T) {
	sim, rec := newTestSimulator()

	out := sim.DispatchMouse("MOUSE_MOVE_UP_-1")
	require.Equal(t, "Invalid mouse move command: MOUSE_MOVE_UP_-1", out.Message)
	require.Empty(t, rec.Strings())
}
