// remotekey - remote keyboard and mouse server
// Accepts one authenticated WebSocket client and replays its keys and mouse
// actions on this machine.
package main

import (
	"context"

	"github.com/alecthomas/kong"

	"remotekey/cmd/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Debug   bool             `help:"Enable debug logging."`
		Config  string           `help:"Path to the configuration file." type:"path" env:"REMOTEKEY_CONFIG"`
		Version kong.VersionFlag `help:"Show version."`

		Serve commands.ServeCmd `cmd:"" default:"1" help:"Run the remote key server (default)."`
		Send  commands.SendCmd  `cmd:"" help:"Send keys or a state snapshot to a running server."`
		Keys  commands.KeysCmd  `cmd:"" help:"Show how key tokens resolve."`

		Autostart commands.AutostartCmd `cmd:"" help:"Manage starting the server at login."`
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("remotekey"),
		kong.Description("Remote keyboard and mouse server."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version, Config: cli.Config})
	cmd.FatalIfErrorf(err)
}
