package cli

import (
	"context"

	flag "github.com/spf13/pflag"
)

// getCmd returns the get command.
func getCmd(a *app) *Command {
	var idf identityFlags

	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	addIdentityFlags(fs, &idf, false)

	return &Command{
		Flags: fs,
		Usage: "get -y <year> -d <day>",
		Short: "Fetch and cache a puzzle input",
		Long:  "Print the puzzle input for the given day, downloading and caching it on first use.",
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			return execGet(ctx, a, o, idf)
		},
	}
}

func execGet(ctx context.Context, a *app, o *IO, idf identityFlags) error {
	tok, err := a.sessionToken()
	if err != nil {
		return err
	}

	id, err := idf.identity(tok)
	if err != nil {
		return err
	}

	store, err := a.datasetCache(a.client(tok))
	if err != nil {
		return err
	}

	input, err := store.Input(ctx, id)
	if err != nil {
		return err
	}

	o.Printf("%s", input)

	return nil
}
