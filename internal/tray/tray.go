// Package tray provides the operator's system tray icon using getlantern/systray.
package tray

import (
	"fmt"
	"time"

	"github.com/getlantern/systray"
)

// MenuItem represents a menu item
type MenuItem struct {
	ID       int
	Title    string
	Callback func()
	item     *systray.MenuItem
}

// Tray manages the system tray icon, a status line and the menu
type Tray struct {
	title    string
	status   func() string
	interval time.Duration

	items      []*MenuItem
	statusItem *systray.MenuItem
	lastStatus string
	readyCh    chan struct{}
	quitCh     chan struct{}
}

// New creates a new system tray. status is polled every interval and shown
// as the tooltip and the first, disabled menu line.
func New(title string, status func() string, interval time.Duration) *Tray {
	if interval <= 0 {
		interval = time.Second
	}
	return &Tray{
		title:    title,
		status:   status,
		interval: interval,
		items:    make([]*MenuItem, 0),
		readyCh:  make(chan struct{}),
		quitCh:   make(chan struct{}),
	}
}

// AddMenuItem adds a menu item to the tray
func (t *Tray) AddMenuItem(title string, callback func()) int {
	id := len(t.items)
	t.items = append(t.items, &MenuItem{
		ID:       id,
		Title:    title,
		Callback: callback,
	})
	return id
}

// AddSeparator adds a separator to the menu
func (t *Tray) AddSeparator() {
	t.items = append(t.items, nil) // nil indicates separator
}

// Run starts the tray event loop (blocks until Stop)
func (t *Tray) Run() {
	systray.Run(t.setupMenu, func() { close(t.quitCh) })
}

// Ready is closed once the menu is built
func (t *Tray) Ready() <-chan struct{} {
	return t.readyCh
}

// setupMenu is called when systray is ready
func (t *Tray) setupMenu() {
	systray.SetTitle(t.title)
	systray.SetIcon(getIcon())

	t.statusItem = systray.AddMenuItem(t.title, "")
	t.statusItem.Disable()
	systray.AddSeparator()

	for _, menuItem := range t.items {
		if menuItem == nil {
			systray.AddSeparator()
			continue
		}

		menuItem.item = systray.AddMenuItem(menuItem.Title, "")
		if menuItem.Callback != nil {
			go func(mi *MenuItem) {
				for {
					select {
					case <-mi.item.ClickedCh:
						mi.Callback()
					case <-t.quitCh:
						return
					}
				}
			}(menuItem)
		}
	}

	t.refresh()
	go t.poll()
	close(t.readyCh)
}

func (t *Tray) poll() {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			t.refresh()
		case <-t.quitCh:
			return
		}
	}
}

func (t *Tray) refresh() {
	if t.status == nil {
		return
	}
	text := t.status()
	if text == t.lastStatus {
		return
	}
	t.lastStatus = text
	systray.SetTooltip(fmt.Sprintf("%s\n%s", t.title, text))
	t.statusItem.SetTitle(text)
}

// Stop stops the tray
func (t *Tray) Stop() {
	systray.Quit()
}

// FormatStatus renders the status line for the server address and client.
func FormatStatus(ip string, port int, connected bool, remote string) string {
	addr := fmt.Sprintf("ws://%s:%d", ip, port)
	if !connected {
		return addr + " - no client"
	}
	if remote == "" {
		return addr + " - client connected"
	}
	return fmt.Sprintf("%s - connected: %s", addr, remote)
}

// getIcon returns a 16x16 32-bit ICO with a keyboard-like bar
func getIcon() []byte {
	const (
		headerSize = 6 + 16
		dibSize    = 40
		pixelSize  = 16 * 16 * 4
		maskSize   = 16 * 4
	)
	icon := make([]byte, headerSize+dibSize+pixelSize+maskSize)

	// ICO Header
	copy(icon[0:6], []byte{0x00, 0x00, 0x01, 0x00, 0x01, 0x00})
	// Icon Directory
	copy(icon[6:22], []byte{
		0x10, 0x10, 0x00, 0x00, 0x01, 0x00, 0x20, 0x00,
		0x68, 0x04, 0x00, 0x00, // Size: 40 + 1024 + 64 = 1128 bytes
		0x16, 0x00, 0x00, 0x00, // Offset
	})
	// DIB Header
	copy(icon[22:62], []byte{
		0x28, 0x00, 0x00, 0x00, // Size
		0x10, 0x00, 0x00, 0x00, // Width
		0x20, 0x00, 0x00, 0x00, // Height (16 * 2 for icon)
		0x01, 0x00, // Planes
		0x20, 0x00, // BPP
		0x00, 0x00, 0x00, 0x00, // Compression
		0x00, 0x04, 0x00, 0x00, // Image Size
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
	})

	// Rows are stored bottom-up in BGRA
	pixels := icon[headerSize+dibSize : headerSize+dibSize+pixelSize]
	for y := 4; y < 12; y++ {
		for x := 1; x < 15; x++ {
			i := (y*16 + x) * 4
			key := y%3 != 0 && x%3 != 0
			if key {
				copy(pixels[i:i+4], []byte{0xF0, 0xF0, 0xF0, 0xFF})
			} else {
				copy(pixels[i:i+4], []byte{0x40, 0x40, 0x40, 0xFF})
			}
		}
	}
	return icon
}
