package cli

import (
	"context"
	"errors"

	flag "github.com/spf13/pflag"
)

// ErrValueRequired is returned when submit is called without a value.
var ErrValueRequired = errors.New("answer value is required")

// submitCmd returns the submit command.
func submitCmd(a *app) *Command {
	var idf identityFlags

	fs := flag.NewFlagSet("submit", flag.ContinueOnError)
	addIdentityFlags(fs, &idf, true)

	return &Command{
		Flags: fs,
		Usage: "submit <value> [flags]",
		Short: "Submit an answer",
		Long: "Submit an answer for a puzzle part. Prior guesses, inferred bounds, and\n" +
			"known correct answers are checked locally first; a value the server has\n" +
			"already judged is never re-submitted.",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			return execSubmit(ctx, a, o, idf, args)
		},
	}
}

func execSubmit(ctx context.Context, a *app, o *IO, idf identityFlags, args []string) error {
	if len(args) == 0 {
		return ErrValueRequired
	}

	value := args[0]

	tok, err := a.sessionToken()
	if err != nil {
		return err
	}

	id, err := idf.identity(tok)
	if err != nil {
		return err
	}

	ctrl, err := a.controller(tok)
	if err != nil {
		return err
	}

	outcome, err := ctrl.Submit(ctx, id, value)
	if err != nil {
		return err
	}

	o.Println(outcome.String())

	return nil
}
