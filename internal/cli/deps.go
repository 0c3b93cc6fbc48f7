package cli

import (
	"fmt"
	"time"

	flag "github.com/spf13/pflag"

	"aoc/internal/cache"
	"aoc/internal/ledger"
	"aoc/internal/puzzle"
	"aoc/internal/submit"
	"aoc/internal/token"
	"aoc/internal/transport"
)

// sessionToken resolves the credential for network commands.
func (a *app) sessionToken() (string, error) {
	return token.Resolve(token.ResolveInput{
		Flag:    a.tokenFlag,
		Env:     a.env,
		Config:  a.cfg.Token,
		DataDir: a.cfg.DataDir,
	})
}

// client builds a transport client for the given token.
func (a *app) client(tok string) *transport.Client {
	opts := []transport.Option{transport.WithLogger(a.log)}

	if base := a.env["AOC_BASE_URL"]; base != "" {
		// Test/mirror override; production never sets it.
		opts = append(opts, transport.WithBaseURL(base))
	}

	return transport.NewClient(tok, opts...)
}

// ledgerStore opens the guess ledger under the data dir.
func (a *app) ledgerStore() (*ledger.Store, error) {
	return ledger.Open(a.cfg.LedgerDir())
}

// datasetCache opens the dataset cache, fetching through the given client.
func (a *app) datasetCache(fetcher cache.Fetcher) (*cache.Store, error) {
	return cache.Open(a.cfg.CacheDir(), fetcher, a.log)
}

// controller wires a submission controller for one account.
func (a *app) controller(tok string) (*submit.Controller, error) {
	store, err := a.ledgerStore()
	if err != nil {
		return nil, err
	}

	return submit.NewController(store, a.client(tok), a.log), nil
}

// identityFlags registers the -y/-d/-p selectors on a FlagSet.
type identityFlags struct {
	year int
	day  int
	part string
}

func addIdentityFlags(fs *flag.FlagSet, f *identityFlags, withPart bool) {
	fs.IntVarP(&f.year, "year", "y", 0, "puzzle year (2015+)")
	fs.IntVarP(&f.day, "day", "d", 0, "puzzle day (1-25)")

	if withPart {
		fs.StringVarP(&f.part, "part", "p", "a", "puzzle part (a or b)")
	}
}

// identity resolves the flags plus the account's user ID into an Identity.
func (f identityFlags) identity(tok string) (puzzle.Identity, error) {
	part := puzzle.PartA

	if f.part != "" {
		parsed, err := puzzle.ParsePart(f.part)
		if err != nil {
			return puzzle.Identity{}, err
		}

		part = parsed
	}

	return puzzle.NewIdentity(f.year, f.day, part, token.UserID(tok))
}

// timeoutFlag converts a --timeout seconds value, falling back to config.
func (a *app) timeout(seconds int) time.Duration {
	if seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return a.cfg.Timeout()
}

// maskToken renders a token safely for display.
func maskToken(tok string) string {
	if len(tok) <= 8 {
		return "********"
	}

	return fmt.Sprintf("%s...%s", tok[:4], tok[len(tok)-4:])
}
