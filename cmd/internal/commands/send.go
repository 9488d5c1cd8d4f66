package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"remotekey/internal/network"
	"remotekey/internal/protocol"
)

type SendCmd struct {
	Addr       string        `help:"server address, host:port or ws:// URL" default:"127.0.0.1:8765" env:"REMOTEKEY_ADDR"`
	Credential string        `help:"shared secret" default:"default123" env:"REMOTEKEY_CREDENTIAL"`
	State      string        `help:"send one STATE JSON object instead of keys, e.g. '{\"keys\":[\"SHIFT\"]}'"`
	Timeout    time.Duration `help:"connect and reply timeout" default:"10s"`

	Tokens []string `arg:"" optional:"" help:"KEY tokens, e.g. ENTER CTRL+C MOUSE_LEFT"`
}

// errNothingToSend is returned when neither tokens nor --state are given.
var errNothingToSend = errors.New("nothing to send: pass key tokens or --state")

func (s *SendCmd) Run(ctx context.Context, globals *Globals) error {
	return s.run(ctx, os.Stdout)
}

func (s *SendCmd) run(ctx context.Context, out io.Writer) error {
	if s.State == "" && len(s.Tokens) == 0 {
		return errNothingToSend
	}

	var payload protocol.StatePayload
	if s.State != "" {
		var err error
		if payload, err = protocol.ParseState(s.State); err != nil {
			return err
		}
	}

	dialCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	client, err := network.Dial(dialCtx, s.Addr)
	if err != nil {
		return err
	}
	defer client.Close()
	client.ReplyTimeout = s.Timeout

	if err := client.Authenticate(s.Credential); err != nil {
		return err
	}

	if s.State != "" {
		reply, err := client.State(payload)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "STATE -> %s\n", reply)
		return nil
	}

	for _, token := range s.Tokens {
		reply, err := client.Key(token)
		if err != nil {
			return fmt.Errorf("send %s: %w", token, err)
		}
		fmt.Fprintf(out, "%s -> %s\n", token, reply)
	}
	return nil
}
