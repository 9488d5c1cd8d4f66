//go:build !darwin && !windows

package input

// Stub implementation for platforms without an injector

var _ Injector = (*OSInjector)(nil)

// OSInjector represents a stub input injector
type OSInjector struct{}

// NewInjector creates a new stub injector
func NewInjector() *OSInjector {
	return &OSInjector{}
}

// KeyDown presses a key (stub)
func (i *OSInjector) KeyDown(key string) error {
	return ErrUnsupportedPlatform
}

// KeyUp releases a key (stub)
func (i *OSInjector) KeyUp(key string) error {
	return ErrUnsupportedPlatform
}

// Click clicks a mouse button (stub)
func (i *OSInjector) Click(button Button) error {
	return ErrUnsupportedPlatform
}

// DoubleClick double clicks the left button (stub)
func (i *OSInjector) DoubleClick() error {
	return ErrUnsupportedPlatform
}

// Scroll moves the mouse wheel (stub)
func (i *OSInjector) Scroll(amount int) error {
	return ErrUnsupportedPlatform
}

// MoveRelative moves the cursor (stub)
func (i *OSInjector) MoveRelative(dx, dy int) error {
	return ErrUnsupportedPlatform
}
