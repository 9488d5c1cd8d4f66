//go:build windows

package input

import (
	"fmt"
	"math"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Windows implementation of input injection using SendInput

var (
	user32        = windows.NewLazySystemDLL("user32.dll")
	procSendInput = user32.NewProc("SendInput")
)

const (
	inputMouse    = 0
	inputKeyboard = 1

	keyeventfExtendedKey = 0x0001
	keyeventfKeyUp       = 0x0002

	mouseeventfMove       = 0x0001
	mouseeventfLeftDown   = 0x0002
	mouseeventfLeftUp     = 0x0004
	mouseeventfRightDown  = 0x0008
	mouseeventfRightUp    = 0x0010
	mouseeventfMiddleDown = 0x0020
	mouseeventfMiddleUp   = 0x0040
	mouseeventfWheel      = 0x0800

	wheelDelta = 120
)

type mouseInputData struct {
	Dx          int32
	Dy          int32
	MouseData   uint32
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

type keybdInputData struct {
	WVk         uint16
	WScan       uint16
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

// mouseInput and keyboardInput mirror INPUT with the matching union member.
type mouseInput struct {
	Type uint32
	Mi   mouseInputData
}

type keyboardInput struct {
	Type uint32
	Ki   keybdInputData
	_    [8]byte // MOUSEINPUT is the largest union member
}

// Key name to Windows virtual-key code mapping
var vkCodes = map[string]uint16{
	// Special keys
	"backspace":   0x08,
	"tab":         0x09,
	"enter":       0x0D,
	"shift":       0x10,
	"ctrl":        0x11,
	"alt":         0x12,
	"pause":       0x13,
	"capslock":    0x14,
	"esc":         0x1B,
	"space":       0x20,
	"pageup":      0x21,
	"pagedown":    0x22,
	"end":         0x23,
	"home":        0x24,
	"left":        0x25,
	"up":          0x26,
	"right":       0x27,
	"down":        0x28,
	"printscreen": 0x2C,
	"insert":      0x2D,
	"delete":      0x2E,
	"win":         0x5B,
	"command":     0x5B,
	"numlock":     0x90,
	"scrolllock":  0x91,

	// Numpad
	"multiply": 0x6A,
	"add":      0x6B,
	"subtract": 0x6D,
	"decimal":  0x6E,
	"divide":   0x6F,

	// Punctuation (US layout)
	";": 0xBA, "=": 0xBB, ",": 0xBC, "-": 0xBD, ".": 0xBE, "/": 0xBF,
	"`": 0xC0, "[": 0xDB, "\\": 0xDC, "]": 0xDD, "'": 0xDE,
}

// extendedKeys need KEYEVENTF_EXTENDEDKEY to avoid being read as numpad keys
var extendedKeys = map[uint16]bool{
	0x21: true, 0x22: true, 0x23: true, 0x24: true,
	0x25: true, 0x26: true, 0x27: true, 0x28: true,
	0x2D: true, 0x2E: true, 0x5B: true, 0x6F: true, 0x90: true,
}

func init() {
	for c := 'a'; c <= 'z'; c++ {
		vkCodes[string(c)] = uint16(0x41 + c - 'a')
	}
	for d := 0; d <= 9; d++ {
		vkCodes[fmt.Sprintf("%d", d)] = uint16(0x30 + d)
		vkCodes[fmt.Sprintf("num%d", d)] = uint16(0x60 + d)
	}
	for f := 1; f <= 12; f++ {
		vkCodes[fmt.Sprintf("f%d", f)] = uint16(0x70 + f - 1)
	}
}

var _ Injector = (*OSInjector)(nil)

// OSInjector represents a Windows input injector
type OSInjector struct{}

// NewInjector creates a new input injector for Windows
func NewInjector() *OSInjector {
	return &OSInjector{}
}

// KeyDown presses a key
func (i *OSInjector) KeyDown(key string) error {
	return i.sendKey(key, 0)
}

// KeyUp releases a key
func (i *OSInjector) KeyUp(key string) error {
	return i.sendKey(key, keyeventfKeyUp)
}

func (i *OSInjector) sendKey(key string, flags uint32) error {
	vk, ok := vkCodes[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	if extendedKeys[vk] {
		flags |= keyeventfExtendedKey
	}

	in := keyboardInput{Type: inputKeyboard}
	in.Ki.WVk = vk
	in.Ki.DwFlags = flags
	return sendInput(unsafe.Pointer(&in), unsafe.Sizeof(in))
}

// Click presses and releases a mouse button
func (i *OSInjector) Click(button Button) error {
	var down, up uint32
	switch button {
	case ButtonLeft:
		down, up = mouseeventfLeftDown, mouseeventfLeftUp
	case ButtonRight:
		down, up = mouseeventfRightDown, mouseeventfRightUp
	case ButtonMiddle:
		down, up = mouseeventfMiddleDown, mouseeventfMiddleUp
	default:
		return fmt.Errorf("%w: %d", ErrInvalidButton, button)
	}

	if err := sendMouse(0, 0, 0, down); err != nil {
		return err
	}
	return sendMouse(0, 0, 0, up)
}

// DoubleClick sends two left clicks in quick succession
func (i *OSInjector) DoubleClick() error {
	if err := i.Click(ButtonLeft); err != nil {
		return err
	}
	return i.Click(ButtonLeft)
}

// maxWheelNotches keeps amount*wheelDelta inside int32.
const maxWheelNotches = math.MaxInt32 / wheelDelta

// Scroll moves the wheel by amount notches
func (i *OSInjector) Scroll(amount int) error {
	amount = max(-maxWheelNotches, min(amount, maxWheelNotches))
	return sendMouse(0, 0, uint32(int32(amount*wheelDelta)), mouseeventfWheel)
}

// MoveRelative moves the cursor by a delta
func (i *OSInjector) MoveRelative(dx, dy int) error {
	return sendMouse(int32(dx), int32(dy), 0, mouseeventfMove)
}

func sendMouse(dx, dy int32, data, flags uint32) error {
	in := mouseInput{Type: inputMouse}
	in.Mi.Dx = dx
	in.Mi.Dy = dy
	in.Mi.MouseData = data
	in.Mi.DwFlags = flags
	return sendInput(unsafe.Pointer(&in), unsafe.Sizeof(in))
}

func sendInput(in unsafe.Pointer, size uintptr) error {
	n, _, err := procSendInput.Call(1, uintptr(in), size)
	if n != 1 {
		return fmt.Errorf("SendInput: %w", err)
	}
	return nil
}
