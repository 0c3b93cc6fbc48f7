// Package runner benchmarks solver callables against cached datasets, one or
// many accounts at a time, each invocation under an enforced wall-clock
// timeout.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"aoc/internal/puzzle"
	"aoc/internal/submit"
)

// DefaultTimeout is the per-invocation wall-clock limit.
const DefaultTimeout = 60 * time.Second

// DefaultParallelism bounds concurrent solver invocations. Datasets for
// different identities are independent.
const DefaultParallelism = 4

// Status classifies one checked part answer.
type Status string

// Status constants.
const (
	StatusPass    Status = "pass"    // answer matches the known correct answer
	StatusFail    Status = "fail"    // answer contradicts the known correct answer
	StatusUnknown Status = "unknown" // no expectation available (and no live check)
	StatusTimeout Status = "timeout" // solver exceeded the wall-clock limit
	StatusError   Status = "error"   // solver returned an error or panicked
)

// Dataset is one account's input for one day, with any known answers.
type Dataset struct {
	Account  string
	Year     int
	Day      int
	User     string // opaque user identity for ledger addressing
	Input    string
	Expected map[puzzle.Part]string // known correct answers, may be sparse
}

// Checker verifies an unexpected answer live against the server.
// Satisfied by *submit.Controller.
type Checker interface {
	Submit(ctx context.Context, id puzzle.Identity, value string) (submit.Outcome, error)
}

// Plan describes one benchmark run.
type Plan struct {
	SolverName  string
	Solver      Solver
	Datasets    []Dataset
	Timeout     time.Duration // 0 means DefaultTimeout
	Parallelism int           // 0 means DefaultParallelism
	Checker     Checker       // nil disables live verification
}

// Result is the judgment of one (dataset, part) pair.
type Result struct {
	Account string
	Year    int
	Day     int
	Part    puzzle.Part
	Got     string
	Want    string
	Status  Status
	Detail  string
	Elapsed time.Duration
}

// Report is the outcome of a full Run.
type Report struct {
	RunID   string
	Solver  string
	Results []Result
	Elapsed time.Duration
}

// Failed reports whether any result is not a pass or unknown.
func (r Report) Failed() bool {
	for _, res := range r.Results {
		if res.Status == StatusFail || res.Status == StatusTimeout || res.Status == StatusError {
			return true
		}
	}

	return false
}

// Run executes the plan: every dataset gets one solver invocation under its
// own timeout, datasets run concurrently, and each produced part answer is
// judged against the dataset's expected answers (or the live Checker).
// A timed-out invocation is reported as such, never silently skipped.
func Run(ctx context.Context, plan Plan, log *zap.Logger) (Report, error) {
	if log == nil {
		log = zap.NewNop()
	}

	timeout := plan.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	parallelism := plan.Parallelism
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}

	runID := uuid.NewString()
	start := time.Now()

	log.Info("benchmark run starting",
		zap.String("run_id", runID),
		zap.String("solver", plan.SolverName),
		zap.Int("datasets", len(plan.Datasets)),
		zap.Duration("timeout", timeout))

	perDataset := make([][]Result, len(plan.Datasets))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(parallelism)

	for i, ds := range plan.Datasets {
		i, ds := i, ds

		group.Go(func() error {
			perDataset[i] = runDataset(groupCtx, plan, ds, timeout, log)

			return nil
		})
	}

	// Workers only report results, they never return errors, so Wait cannot
	// fail except via ctx.
	if err := group.Wait(); err != nil {
		return Report{}, err
	}

	report := Report{RunID: runID, Solver: plan.SolverName}
	for _, results := range perDataset {
		report.Results = append(report.Results, results...)
	}

	report.Elapsed = time.Since(start)

	log.Info("benchmark run finished",
		zap.String("run_id", runID),
		zap.Duration("elapsed", report.Elapsed))

	return report, nil
}

// invocation carries a solver's return values across the timeout boundary.
type invocation struct {
	partA string
	partB string
	err   error
}

func runDataset(ctx context.Context, plan Plan, ds Dataset, timeout time.Duration, log *zap.Logger) []Result {
	solveCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	done := make(chan invocation, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- invocation{err: fmt.Errorf("solver panicked: %v", r)}
			}
		}()

		partA, partB, err := plan.Solver(solveCtx, ds.Year, ds.Day, ds.Input)
		done <- invocation{partA: partA, partB: partB, err: err}
	}()

	var inv invocation

	select {
	case inv = <-done:
	case <-solveCtx.Done():
		elapsed := time.Since(start)

		log.Warn("solver timed out",
			zap.String("account", ds.Account),
			zap.Int("year", ds.Year),
			zap.Int("day", ds.Day),
			zap.Duration("elapsed", elapsed))

		return []Result{
			timeoutResult(ds, puzzle.PartA, timeout, elapsed),
			timeoutResult(ds, puzzle.PartB, timeout, elapsed),
		}
	}

	elapsed := time.Since(start)

	if inv.err != nil {
		detail := inv.err.Error()

		return []Result{
			errorResult(ds, puzzle.PartA, detail, elapsed),
			errorResult(ds, puzzle.PartB, detail, elapsed),
		}
	}

	// An invocation that produced nothing must not pass silently.
	if inv.partA == "" && inv.partB == "" {
		detail := "solver produced no answers"

		return []Result{
			errorResult(ds, puzzle.PartA, detail, elapsed),
			errorResult(ds, puzzle.PartB, detail, elapsed),
		}
	}

	results := make([]Result, 0, 2)

	if inv.partA != "" {
		results = append(results, judge(ctx, plan, ds, puzzle.PartA, inv.partA, elapsed))
	}

	if inv.partB != "" {
		results = append(results, judge(ctx, plan, ds, puzzle.PartB, inv.partB, elapsed))
	}

	return results
}

func judge(ctx context.Context, plan Plan, ds Dataset, part puzzle.Part, got string, elapsed time.Duration) Result {
	res := Result{
		Account: ds.Account,
		Year:    ds.Year,
		Day:     ds.Day,
		Part:    part,
		Got:     puzzle.Canonical(got),
		Elapsed: elapsed,
	}

	if want, ok := ds.Expected[part]; ok {
		res.Want = want

		if res.Got == want {
			res.Status = StatusPass
		} else {
			res.Status = StatusFail
			res.Detail = fmt.Sprintf("got %s, want %s", res.Got, want)
		}

		return res
	}

	if plan.Checker == nil {
		res.Status = StatusUnknown

		return res
	}

	return checkLive(ctx, plan, ds, part, res)
}

// checkLive routes an answer with no local expectation through the
// submission controller. The controller's own memoization and bounds
// guarantee this never re-submits a judged value.
func checkLive(ctx context.Context, plan Plan, ds Dataset, part puzzle.Part, res Result) Result {
	id, err := puzzle.NewIdentity(ds.Year, ds.Day, part, ds.User)
	if err != nil {
		res.Status = StatusError
		res.Detail = err.Error()

		return res
	}

	outcome, err := plan.Checker.Submit(ctx, id, res.Got)
	if err != nil {
		res.Status = StatusError
		res.Detail = err.Error()

		return res
	}

	switch outcome.Status {
	case submit.StatusAccepted:
		res.Status = StatusPass
	case submit.StatusAlreadySolved:
		switch {
		case outcome.Answer == "":
			// Solved before this run, but the true answer was never
			// recorded; there is nothing to judge against.
			res.Status = StatusUnknown
			res.Detail = "part already solved, answer unknown"
		case outcome.Answer == res.Got:
			res.Status = StatusPass
		default:
			res.Status = StatusFail
			res.Detail = fmt.Sprintf("got %s, want %s", res.Got, outcome.Answer)
		}
	case submit.StatusRejected:
		res.Status = StatusFail
		res.Detail = outcome.String()
	case submit.StatusRateLimited:
		res.Status = StatusUnknown
		res.Detail = outcome.String()
	}

	return res
}

func timeoutResult(ds Dataset, part puzzle.Part, timeout, elapsed time.Duration) Result {
	return Result{
		Account: ds.Account,
		Year:    ds.Year,
		Day:     ds.Day,
		Part:    part,
		Status:  StatusTimeout,
		Detail:  fmt.Sprintf("exceeded %s", timeout),
		Elapsed: elapsed,
	}
}

func errorResult(ds Dataset, part puzzle.Part, detail string, elapsed time.Duration) Result {
	return Result{
		Account: ds.Account,
		Year:    ds.Year,
		Day:     ds.Day,
		Part:    part,
		Status:  StatusError,
		Detail:  detail,
		Elapsed: elapsed,
	}
}
