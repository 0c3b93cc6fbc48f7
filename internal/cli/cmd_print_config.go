package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"aoc/internal/config"
)

// printConfigCmd returns the print-config command.
func printConfigCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("print-config", flag.ContinueOnError),
		Usage: "print-config",
		Short: "Show resolved configuration",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			// Never print the raw credential.
			cfg := a.cfg
			if cfg.Token != "" {
				cfg.Token = maskToken(cfg.Token)
			}

			formatted, err := config.Format(cfg)
			if err != nil {
				return err
			}

			o.Println(formatted)
			o.Println()

			if a.cfg.Source != "" {
				o.Println("# source:", a.cfg.Source)
			} else {
				o.Println("# source: defaults only")
			}

			return nil
		},
	}
}
