package tray

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatStatus(t *testing.T) {
	require.Equal(t, "ws://10.0.0.2:8765 - no client", FormatStatus("10.0.0.2", 8765, false, ""))
	require.Equal(t, "ws://10.0.0.2:8765 - client connected", FormatStatus("10.0.0.2", 8765, true, ""))
	require.Equal(t, "ws://10.0.0.2:8765 - connected: 10.0.0.9:5000", FormatStatus("10.0.0.2", 8765, true, "10.0.0.9:5000"))
}

func TestMenuItems(t *testing.T) {
	tr := New("Remote Key", nil, 0)

	called := false
	id := tr.AddMenuItem("Disconnect client", func() { called = true })
	tr.AddSeparator()
	quit := tr.AddMenuItem("Quit", nil)

	require.Equal(t, 0, id)
	require.Equal(t, 2, quit)
	require.Nil(t, tr.items[1])

	tr.items[id].Callback()
	require.True(t, called)
}

func TestIconHeader(t *testing.T) {
	icon := getIcon()

	require.Equal(t, uint16(1), binary.LittleEndian.Uint16(icon[2:4]))
	size := binary.LittleEndian.Uint32(icon[14:18])
	offset := binary.LittleEndian.Uint32(icon[18:22])
	require.Equal(t, len(icon), int(offset+size))
}
