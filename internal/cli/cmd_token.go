package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"aoc/internal/token"
)

// Token command errors.
var (
	ErrTokenSubcommand = errors.New("expected subcommand: set or show")
	ErrPromptAborted   = errors.New("token entry aborted")
)

// tokenCmd returns the token command.
func tokenCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("token", flag.ContinueOnError),
		Usage: "token set|show",
		Short: "Manage the saved session token",
		Long: "set saves a session token to the data directory (prompts interactively\n" +
			"when no value is given); show prints the resolved token, masked.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			return execToken(a, o, args)
		},
	}
}

func execToken(a *app, o *IO, args []string) error {
	if len(args) == 0 {
		return ErrTokenSubcommand
	}

	switch args[0] {
	case "set":
		return execTokenSet(a, o, args[1:])
	case "show":
		return execTokenShow(a, o)
	default:
		return fmt.Errorf("%w, got: %s", ErrTokenSubcommand, args[0])
	}
}

func execTokenSet(a *app, o *IO, args []string) error {
	var tok string

	if len(args) > 0 {
		tok = args[0]
	} else {
		prompted, err := promptToken()
		if err != nil {
			return err
		}

		tok = prompted
	}

	err := token.Save(a.cfg.DataDir, tok)
	if err != nil {
		return err
	}

	o.Infoln("token saved for user", token.UserID(tok))

	return nil
}

// promptToken reads a token interactively. Only reached from a terminal;
// scripted callers pass the value as an argument.
func promptToken() (string, error) {
	line := liner.NewLiner()
	defer func() { _ = line.Close() }()

	line.SetCtrlCAborts(true)

	tok, err := line.Prompt("session token: ")
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", ErrPromptAborted
		}

		return "", fmt.Errorf("reading token: %w", err)
	}

	return tok, nil
}

func execTokenShow(a *app, o *IO) error {
	tok, err := a.sessionToken()
	if err != nil {
		return err
	}

	o.Println("token:", maskToken(tok))
	o.Println("user:", token.UserID(tok))

	return nil
}
