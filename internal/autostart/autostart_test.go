package autostart

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

var testEntry = Entry{
	Label: "com.example.remotekey",
	Name:  "Remote Key",
	Args:  []string{"/opt/remote key/remotekey", "serve", "--no-tray"},
}

func TestRenderPlist(t *testing.T) {
	data, err := renderPlist(Entry{Label: "com.example.a&b", Args: []string{"/bin/x", "<y>"}})
	require.NoError(t, err)

	out := string(data)
	require.Contains(t, out, "<string>com.example.a&amp;b</string>")
	require.Contains(t, out, "<string>/bin/x</string>")
	require.Contains(t, out, "<string>&lt;y&gt;</string>")
	require.Contains(t, out, "<key>RunAtLoad</key>")
}

func TestRenderDesktop(t *testing.T) {
	out := string(renderDesktop(testEntry))

	require.Contains(t, out, "Name=Remote Key\n")
	require.Contains(t, out, `Exec="/opt/remote key/remotekey" serve --no-tray`+"\n")
}

func TestDesktopQuote(t *testing.T) {
	require.Equal(t, "serve", desktopQuote("serve"))
	require.Equal(t, `""`, desktopQuote(""))
	require.Equal(t, `"a\"b"`, desktopQuote(`a"b`))
	require.Equal(t, `"\$HOME"`, desktopQuote("$HOME"))
}

func TestInvalidEntry(t *testing.T) {
	require.ErrorIs(t, Enable(Entry{Label: "x"}), ErrInvalidEntry)
	require.ErrorIs(t, Disable(Entry{}), ErrInvalidEntry)
	require.False(t, IsEnabled(Entry{}))
}

func TestEnableDisableXDG(t *testing.T) {
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		t.Skip("writes to the user's login items")
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	require.False(t, IsEnabled(testEntry))
	require.NoError(t, Enable(testEntry))
	require.True(t, IsEnabled(testEntry))

	data, err := os.ReadFile(filepath.Join(dir, "autostart", "com.example.remotekey.desktop"))
	require.NoError(t, err)
	require.Contains(t, string(data), "Exec=")

	require.NoError(t, Disable(testEntry))
	require.False(t, IsEnabled(testEntry))
	require.NoError(t, Disable(testEntry))
}
