package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"remotekey/internal/autostart"
)

const autostartLabel = "com.remotekey.server"

type AutostartCmd struct {
	Action string   `arg:"" enum:"enable,disable,status" help:"enable, disable or status"`
	Args   []string `help:"extra serve flags to start with, e.g. --no-tray" sep:"none"`
}

func (a *AutostartCmd) Run(ctx context.Context, globals *Globals) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}
	return a.run(os.Stdout, a.entry(exe, globals))
}

// entry builds the login item: the executable, the config path if one was
// given and then serve with the extra flags.
func (a *AutostartCmd) entry(exe string, globals *Globals) autostart.Entry {
	args := []string{exe}
	if globals.Config != "" {
		args = append(args, "--config", globals.Config)
	}
	args = append(args, "serve")
	args = append(args, a.Args...)

	return autostart.Entry{Label: autostartLabel, Name: "Remote Key", Args: args}
}

func (a *AutostartCmd) run(out io.Writer, e autostart.Entry) error {
	switch a.Action {
	case "enable":
		if err := autostart.Enable(e); err != nil {
			return fmt.Errorf("failed to enable autostart: %w", err)
		}
		fmt.Fprintln(out, "Autostart enabled")
	case "disable":
		if err := autostart.Disable(e); err != nil {
			return fmt.Errorf("failed to disable autostart: %w", err)
		}
		fmt.Fprintln(out, "Autostart disabled")
	default:
		if autostart.IsEnabled(e) {
			fmt.Fprintln(out, "Autostart is enabled")
		} else {
			fmt.Fprintln(out, "Autostart is disabled")
		}
	}
	return nil
}
