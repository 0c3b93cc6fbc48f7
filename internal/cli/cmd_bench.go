package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	flag "github.com/spf13/pflag"

	"aoc/internal/puzzle"
	"aoc/internal/runner"
	"aoc/internal/submit"
	"aoc/internal/token"
)

// Bench errors.
var (
	ErrSolverRequired = errors.New("--solver is required")
	ErrNoAccounts     = errors.New("no session token or accounts available")
)

type benchFlags struct {
	identityFlags
	solver  string
	timeout int
	quiet   bool
	example bool
	check   bool
}

// benchCmd returns the bench command.
func benchCmd(a *app) *Command {
	var bf benchFlags

	fs := flag.NewFlagSet("bench", flag.ContinueOnError)
	addIdentityFlags(fs, &bf.identityFlags, false)
	fs.StringVar(&bf.solver, "solver", "", "registered solver to run")
	fs.IntVar(&bf.timeout, "timeout", 0, "per-invocation timeout in seconds")
	fs.BoolVarP(&bf.quiet, "quiet", "q", false, "only print failures")
	fs.BoolVar(&bf.example, "example", false, "run against the example input instead of real data")
	fs.BoolVar(&bf.check, "check", false, "verify unexpected answers live against the server")

	return &Command{
		Flags: fs,
		Usage: "bench --solver <name> [flags]",
		Short: "Benchmark a solver against cached datasets",
		Long: "Run a registered solver against every account's cached input for a day,\n" +
			"each invocation under a wall-clock timeout, and judge the answers against\n" +
			"the known correct answers from each account's ledger.",
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			return execBench(ctx, a, o, bf)
		},
	}
}

func execBench(ctx context.Context, a *app, o *IO, bf benchFlags) error {
	if bf.solver == "" {
		return ErrSolverRequired
	}

	solver, err := a.registry.Get(bf.solver)
	if err != nil {
		return fmt.Errorf("%w (registered: %v)", err, a.registry.Names())
	}

	accounts, err := a.benchAccounts()
	if err != nil {
		return err
	}

	datasets, err := a.buildDatasets(ctx, accounts, bf)
	if err != nil {
		return err
	}

	plan := runner.Plan{
		SolverName: bf.solver,
		Solver:     solver,
		Datasets:   datasets,
		Timeout:    a.timeout(bf.timeout),
	}

	if bf.check {
		checker, checkErr := a.buildChecker(accounts)
		if checkErr != nil {
			return checkErr
		}

		plan.Checker = checker
	}

	report, err := runner.Run(ctx, plan, a.log)
	if err != nil {
		return err
	}

	printReport(o, report, bf.quiet)

	if report.Failed() {
		return fmt.Errorf("benchmark run %s had failures", report.RunID)
	}

	return nil
}

// benchAccounts returns the accounts to benchmark: the multi-account tokens
// file when present, else the single resolved session token.
func (a *app) benchAccounts() ([]token.Account, error) {
	accounts, err := token.Accounts(a.cfg.DataDir)
	if err != nil {
		return nil, err
	}

	if len(accounts) > 0 {
		return accounts, nil
	}

	tok, tokErr := a.sessionToken()
	if tokErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoAccounts, tokErr)
	}

	return []token.Account{{Name: "default", Token: tok}}, nil
}

func (a *app) buildDatasets(ctx context.Context, accounts []token.Account, bf benchFlags) ([]runner.Dataset, error) {
	datasets := make([]runner.Dataset, 0, len(accounts))

	store, err := a.ledgerStore()
	if err != nil {
		return nil, err
	}

	for _, acct := range accounts {
		user := token.UserID(acct.Token)

		dsCache, cacheErr := a.datasetCache(a.client(acct.Token))
		if cacheErr != nil {
			return nil, cacheErr
		}

		var input string

		id, idErr := puzzle.NewIdentity(bf.year, bf.day, puzzle.PartA, user)

		err = idErr
		if err == nil {
			if bf.example {
				input, err = dsCache.Example(ctx, id)
			} else {
				input, err = dsCache.Input(ctx, id)
			}
		}

		if err != nil {
			return nil, fmt.Errorf("dataset for account %s: %w", acct.Name, err)
		}

		expected := make(map[puzzle.Part]string)

		// Example inputs have no per-account expectations.
		if !bf.example {
			for _, part := range []puzzle.Part{puzzle.PartA, puzzle.PartB} {
				id, idErr := puzzle.NewIdentity(bf.year, bf.day, part, user)
				if idErr != nil {
					return nil, idErr
				}

				answer, known, ansErr := store.CorrectAnswer(id)
				if ansErr != nil {
					return nil, ansErr
				}

				if known {
					expected[part] = answer
				}
			}
		}

		datasets = append(datasets, runner.Dataset{
			Account:  acct.Name,
			Year:     bf.year,
			Day:      bf.day,
			User:     user,
			Input:    input,
			Expected: expected,
		})
	}

	return datasets, nil
}

// accountChecker routes live checks to the controller owning each user's
// credentials.
type accountChecker struct {
	byUser map[string]*submit.Controller
}

func (c *accountChecker) Submit(ctx context.Context, id puzzle.Identity, value string) (submit.Outcome, error) {
	ctrl, ok := c.byUser[id.User]
	if !ok {
		return submit.Outcome{}, fmt.Errorf("no controller for user %s", id.User)
	}

	return ctrl.Submit(ctx, id, value)
}

func (a *app) buildChecker(accounts []token.Account) (runner.Checker, error) {
	byUser := make(map[string]*submit.Controller, len(accounts))

	for _, acct := range accounts {
		ctrl, err := a.controller(acct.Token)
		if err != nil {
			return nil, err
		}

		byUser[token.UserID(acct.Token)] = ctrl
	}

	return &accountChecker{byUser: byUser}, nil
}

func printReport(o *IO, report runner.Report, quiet bool) {
	o.Infoln("run:", report.RunID, "solver:", report.Solver, "elapsed:", report.Elapsed.Round(time.Millisecond))

	for _, res := range report.Results {
		if quiet && (res.Status == runner.StatusPass || res.Status == runner.StatusUnknown) {
			continue
		}

		line := fmt.Sprintf("%-10s %d day %2d part %s  %-8s %-12s %s",
			res.Account, res.Year, res.Day, res.Part, res.Status, res.Got, res.Detail)
		o.Println(line)
	}
}
