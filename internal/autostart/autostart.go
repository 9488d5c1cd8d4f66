// Package autostart registers the server to start when the user logs in.
package autostart

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"
)

// ErrInvalidEntry is returned for an Entry without a label or command.
var ErrInvalidEntry = errors.New("autostart entry needs a label and a command")

// Entry describes the program started at login.
type Entry struct {
	// Label names the registration: the launchd label, the .desktop file
	// name and the Windows Run value.
	Label string
	// Name is shown by desktop environments that list autostart entries.
	Name string
	// Args is the executable followed by its arguments.
	Args []string
}

func (e Entry) validate() error {
	if e.Label == "" || len(e.Args) == 0 || e.Args[0] == "" {
		return ErrInvalidEntry
	}
	return nil
}

// Enable registers e to run at login, replacing an earlier registration.
func Enable(e Entry) error {
	if err := e.validate(); err != nil {
		return err
	}
	return enable(e)
}

// Disable removes the registration. A missing one is not an error.
func Disable(e Entry) error {
	if e.Label == "" {
		return ErrInvalidEntry
	}
	return disable(e)
}

// IsEnabled reports whether e is registered.
func IsEnabled(e Entry) bool {
	if e.Label == "" {
		return false
	}
	return isEnabled(e)
}

const launchAgentPlist = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>{{.Label}}</string>
    <key>ProgramArguments</key>
    <array>
{{- range .Args}}
        <string>{{.}}</string>
{{- end}}
    </array>
    <key>RunAtLoad</key>
    <true/>
    <key>KeepAlive</key>
    <false/>
</dict>
</plist>
`

var plistTmpl = template.Must(template.New("plist").Parse(launchAgentPlist))

// renderPlist renders a launchd agent for e. Values are XML-escaped first.
func renderPlist(e Entry) ([]byte, error) {
	data := Entry{Label: xmlEscape(e.Label), Args: make([]string, len(e.Args))}
	for i, a := range e.Args {
		data.Args[i] = xmlEscape(a)
	}

	var buf bytes.Buffer
	if err := plistTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render launch agent: %w", err)
	}
	return buf.Bytes(), nil
}

var xmlReplacer = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&apos;")

func xmlEscape(s string) string {
	return xmlReplacer.Replace(s)
}

// renderDesktop renders an XDG autostart .desktop entry for e.
func renderDesktop(e Entry) []byte {
	name := e.Name
	if name == "" {
		name = e.Label
	}

	quoted := make([]string, len(e.Args))
	for i, a := range e.Args {
		quoted[i] = desktopQuote(a)
	}

	var buf bytes.Buffer
	buf.WriteString("[Desktop Entry]\n")
	buf.WriteString("Type=Application\n")
	fmt.Fprintf(&buf, "Name=%s\n", name)
	fmt.Fprintf(&buf, "Exec=%s\n", strings.Join(quoted, " "))
	buf.WriteString("Terminal=false\n")
	buf.WriteString("X-GNOME-Autostart-enabled=true\n")
	return buf.Bytes()
}

// desktopQuote quotes an Exec argument per the Desktop Entry rules.
func desktopQuote(arg string) string {
	if arg != "" && !strings.ContainsAny(arg, " \t\n\"'\\><~|&;$*?#()`") {
		return arg
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "`", "\\`", "$", `\$`)
	return `"` + r.Replace(arg) + `"`
}
