// Package input provides cross-platform keyboard and mouse injection.
package input

// Button identifies a mouse button
type Button int

const (
	ButtonLeft   Button = 1
	ButtonRight  Button = 2
	ButtonMiddle Button = 3
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	case ButtonMiddle:
		return "middle"
	default:
		return "unknown"
	}
}

// Injector performs OS-level input events. Key names are the lowercase names
// produced by the keymap package ("a", "enter", "ctrl", "f1", "num0", ...).
type Injector interface {
	KeyDown(key string) error
	KeyUp(key string) error
	Click(button Button) error
	DoubleClick() error
	// Scroll moves the wheel; positive amounts scroll up.
	Scroll(amount int) error
	MoveRelative(dx, dy int) error
}
