//go:build darwin

package input

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation -framework ApplicationServices

#include <CoreGraphics/CoreGraphics.h>
#include <CoreFoundation/CoreFoundation.h>
#include <ApplicationServices/ApplicationServices.h>

// Check if we have accessibility permissions
bool hasAccessibilityPermissions() {
    return AXIsProcessTrusted();
}

// Get current mouse position
CGPoint getCurrentMousePosition() {
    CGEventRef event = CGEventCreate(NULL);
    CGPoint cursor = CGEventGetLocation(event);
    CFRelease(event);
    return cursor;
}

// Inject mouse move with relative delta
void injectMouseMove(CGFloat dx, CGFloat dy) {
    CGPoint currentPos = getCurrentMousePosition();
    CGPoint newPos = CGPointMake(currentPos.x + dx, currentPos.y + dy);

    CGEventRef event = CGEventCreateMouseEvent(NULL, kCGEventMouseMoved, newPos, kCGMouseButtonLeft);
    CGEventPost(kCGSessionEventTap, event);
    CFRelease(event);
}

void injectMouseButton(int button, bool pressed, int clickCount) {
    CGMouseButton cgButton;
    CGEventType eventType;

    switch (button) {
        case 1:
            cgButton = kCGMouseButtonLeft;
            eventType = pressed ? kCGEventLeftMouseDown : kCGEventLeftMouseUp;
            break;
        case 2:
            cgButton = kCGMouseButtonRight;
            eventType = pressed ? kCGEventRightMouseDown : kCGEventRightMouseUp;
            break;
        case 3:
            cgButton = kCGMouseButtonCenter;
            eventType = pressed ? kCGEventOtherMouseDown : kCGEventOtherMouseUp;
            break;
        default:
            return;
    }

    CGPoint currentPos = getCurrentMousePosition();
    CGEventRef event = CGEventCreateMouseEvent(NULL, eventType, currentPos, cgButton);
    CGEventSetIntegerValueField(event, kCGMouseEventClickState, clickCount);
    CGEventPost(kCGSessionEventTap, event);
    CFRelease(event);
}

void injectScroll(int amount) {
    CGEventRef event = CGEventCreateScrollWheelEvent(NULL, kCGScrollEventUnitLine, 1, amount);
    CGEventPost(kCGSessionEventTap, event);
    CFRelease(event);
}

void injectKey(CGKeyCode keyCode, bool pressed) {
    CGEventRef event = CGEventCreateKeyboardEvent(NULL, keyCode, pressed);
    CGEventPost(kCGSessionEventTap, event);
    CFRelease(event);
}
*/
import "C"
import (
	"fmt"
)

// macOS implementation of input injection using CoreGraphics

// Key name to macOS CGKeyCode mapping
// Reference: https://developer.apple.com/documentation/coregraphics/cgkeycode
var macKeyCodes = map[string]uint16{
	// Letters
	"a": 0x00, "b": 0x0B, "c": 0x08, "d": 0x02, "e": 0x0E, "f": 0x03,
	"g": 0x05, "h": 0x04, "i": 0x22, "j": 0x26, "k": 0x28, "l": 0x25,
	"m": 0x2E, "n": 0x2D, "o": 0x1F, "p": 0x23, "q": 0x0C, "r": 0x0F,
	"s": 0x01, "t": 0x11, "u": 0x20, "v": 0x09, "w": 0x0D, "x": 0x07,
	"y": 0x10, "z": 0x06,

	// Numbers
	"0": 0x1D, "1": 0x12, "2": 0x13, "3": 0x14, "4": 0x15,
	"5": 0x17, "6": 0x16, "7": 0x1A, "8": 0x1C, "9": 0x19,

	// Function keys
	"f1": 0x7A, "f2": 0x78, "f3": 0x63, "f4": 0x76, "f5": 0x60, "f6": 0x61,
	"f7": 0x62, "f8": 0x64, "f9": 0x65, "f10": 0x6D, "f11": 0x67, "f12": 0x6F,

	// Special keys
	"backspace": 0x33, // Delete
	"tab":       0x30,
	"enter":     0x24,
	"shift":     0x38,
	"ctrl":      0x3B,
	"alt":       0x3A, // Option
	"capslock":  0x39,
	"esc":       0x35,
	"space":     0x31,
	"win":       0x37, // Command
	"command":   0x37,

	// Arrow keys
	"left":  0x7B,
	"up":    0x7E,
	"right": 0x7C,
	"down":  0x7D,

	// Navigation keys
	"pageup":   0x74,
	"pagedown": 0x79,
	"end":      0x77,
	"home":     0x73,
	"insert":   0x72, // Help
	"delete":   0x75, // Forward Delete

	// No direct equivalents; mapped to F13-F15 like Apple keyboards
	"printscreen": 0x69,
	"scrolllock":  0x6B,
	"pause":       0x71,

	// Punctuation and symbols
	";": 0x29, "=": 0x18, ",": 0x2B, "-": 0x1B, ".": 0x2F, "/": 0x2C,
	"`": 0x32, "[": 0x21, "\\": 0x2A, "]": 0x1E, "'": 0x27,

	// Numpad
	"num0": 0x52, "num1": 0x53, "num2": 0x54, "num3": 0x55, "num4": 0x56,
	"num5": 0x57, "num6": 0x58, "num7": 0x59, "num8": 0x5B, "num9": 0x5C,
	"numlock":  0x47, // Clear
	"multiply": 0x43,
	"add":      0x45,
	"subtract": 0x4E,
	"decimal":  0x41,
	"divide":   0x4B,
}

var _ Injector = (*OSInjector)(nil)

// OSInjector represents a macOS input injector
type OSInjector struct{}

// NewInjector creates a new input injector for macOS
func NewInjector() *OSInjector {
	return &OSInjector{}
}

// Trusted reports whether the process has accessibility permission to post events
func (i *OSInjector) Trusted() bool {
	return bool(C.hasAccessibilityPermissions())
}

// KeyDown presses a key
func (i *OSInjector) KeyDown(key string) error {
	return i.injectKey(key, true)
}

// KeyUp releases a key
func (i *OSInjector) KeyUp(key string) error {
	return i.injectKey(key, false)
}

func (i *OSInjector) injectKey(key string, pressed bool) error {
	code, ok := macKeyCodes[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	C.injectKey(C.CGKeyCode(code), C.bool(pressed))
	return nil
}

// Click presses and releases a mouse button
func (i *OSInjector) Click(button Button) error {
	if button < ButtonLeft || button > ButtonMiddle {
		return fmt.Errorf("%w: %d", ErrInvalidButton, button)
	}
	C.injectMouseButton(C.int(button), C.bool(true), 1)
	C.injectMouseButton(C.int(button), C.bool(false), 1)
	return nil
}

// DoubleClick sends two left clicks, the second flagged as a double click
func (i *OSInjector) DoubleClick() error {
	for clicks := 1; clicks <= 2; clicks++ {
		C.injectMouseButton(C.int(ButtonLeft), C.bool(true), C.int(clicks))
		C.injectMouseButton(C.int(ButtonLeft), C.bool(false), C.int(clicks))
	}
	return nil
}

// Scroll moves the wheel by amount lines
func (i *OSInjector) Scroll(amount int) error {
	C.injectScroll(C.int(amount))
	return nil
}

// MoveRelative moves the cursor by a delta
func (i *OSInjector) MoveRelative(dx, dy int) error {
	C.injectMouseMove(C.CGFloat(dx), C.CGFloat(dy))
	return nil
}
