package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"remotekey/internal/keymap"
)

type KeysCmd struct {
	Keymap string `help:"YAML file overriding key names" type:"path" env:"REMOTEKEY_KEYMAP"`
	Format string `help:"output format" default:"text" enum:"text,json,yaml"`

	Tokens []string `arg:"" optional:"" help:"tokens to resolve; the whole table is listed when empty"`
}

// resolution is one resolved token.
type resolution struct {
	Token    string `json:"token" yaml:"token"`
	Kind     string `json:"kind" yaml:"kind"`
	Modifier string `json:"modifier,omitempty" yaml:"modifier,omitempty"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
}

func (k *KeysCmd) Run(ctx context.Context, globals *Globals) error {
	return k.run(os.Stdout)
}

func (k *KeysCmd) run(out io.Writer) error {
	mapper, err := newMapper(k.Keymap)
	if err != nil {
		return err
	}

	var rows []resolution
	if len(k.Tokens) == 0 {
		for _, e := range mapper.Table() {
			rows = append(rows, resolution{Token: e.Token, Kind: "key", Name: e.Name})
		}
	} else {
		for _, token := range k.Tokens {
			rows = append(rows, resolve(mapper, token))
		}
	}

	switch k.Format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "yaml":
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		return enc.Encode(rows)
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TOKEN\tKIND\tRESOLVES TO")
	for _, r := range rows {
		target := r.Name
		if r.Modifier != "" {
			target = r.Modifier + "+" + r.Name
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.Token, r.Kind, target)
	}
	return w.Flush()
}

func resolve(mapper *keymap.Mapper, token string) resolution {
	if keymap.IsMouseCommand(token) {
		return resolution{Token: token, Kind: "mouse"}
	}
	key := mapper.Resolve(token)
	if key.IsCombination() {
		return resolution{Token: token, Kind: "combination", Modifier: key.Modifier, Name: key.Name}
	}
	return resolution{Token: token, Kind: "key", Name: key.Name}
}
