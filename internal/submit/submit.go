// Package submit orchestrates answer submission: local checks against the
// guess ledger and inferred bounds first, the network only when a value has
// never been judged and could still be right.
package submit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"aoc/internal/classify"
	"aoc/internal/ledger"
	"aoc/internal/puzzle"
	"aoc/internal/transport"
)

// Submission errors.
var (
	ErrEmptyValue = errors.New("answer value is empty")
	ErrTransport  = errors.New("transport failure")
	ErrPersist    = errors.New("failed to persist verdict")
)

// persistAttempts bounds the retry loop for writing a verdict that the
// network has already judged. Losing such a verdict risks a duplicate
// future submission, so the write is retried before failing loudly.
const persistAttempts = 3

// Transport is the network collaborator. Implementations own credentials,
// endpoints, and request timeouts.
type Transport interface {
	PostAnswer(ctx context.Context, id puzzle.Identity, value string) (string, error)
	FetchProse(ctx context.Context, id puzzle.Identity) (string, error)
}

// Controller runs the submission state machine against a ledger and a
// transport. Safe for concurrent use; same-identity submissions serialize on
// the ledger's identity lock.
type Controller struct {
	ledger    *ledger.Store
	transport Transport
	log       *zap.Logger
}

// NewController wires a Controller. A nil logger defaults to nop.
func NewController(store *ledger.Store, tp Transport, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}

	return &Controller{ledger: store, transport: tp, log: log}
}

// Submit runs one submission attempt for (identity, value).
//
// The value is validated, then under the identity lock: known correct answer,
// prior guess, and bound feasibility are checked locally before any network
// call. A fresh value is posted, the reply classified, and the verdict made
// durable before the outcome is returned.
func (c *Controller) Submit(ctx context.Context, id puzzle.Identity, value string) (Outcome, error) {
	canonical := puzzle.Canonical(value)
	if canonical == "" {
		return Outcome{}, ErrEmptyValue
	}

	var out Outcome

	err := c.ledger.WithIdentityLock(id, func() error {
		var lockErr error

		out, lockErr = c.submitLocked(ctx, id, canonical)

		return lockErr
	})
	if err != nil {
		return Outcome{}, err
	}

	return out, nil
}

func (c *Controller) submitLocked(ctx context.Context, id puzzle.Identity, value string) (Outcome, error) {
	// Known correct answer wins over everything, including the value itself.
	answer, solved, err := c.ledger.CorrectAnswer(id)
	if err != nil {
		return Outcome{}, err
	}

	if solved {
		c.log.Debug("already solved", zap.String("identity", id.String()))

		return Outcome{Status: StatusAlreadySolved, Answer: answer, Source: SourceCache}, nil
	}

	// Prior guess: serve the stored verdict, never re-submit.
	prior, found, err := c.ledger.Lookup(id, value)
	if err != nil {
		return Outcome{}, err
	}

	if found {
		c.log.Debug("guess served from ledger",
			zap.String("identity", id.String()),
			zap.String("verdict", string(prior.Verdict)))

		return Outcome{
			Status:  StatusRejected,
			Verdict: prior.Verdict,
			Message: prior.Message,
			Source:  SourceCache,
		}, nil
	}

	// Bound inference: a value at or outside the open interval is provably
	// wrong and is rejected without touching the network.
	bounds, err := c.ledger.Bounds(id)
	if err != nil {
		return Outcome{}, err
	}

	if !bounds.Feasible(value) {
		c.log.Debug("guess outside feasible bounds",
			zap.String("identity", id.String()),
			zap.String("bounds", bounds.String()))

		return Outcome{
			Status:  StatusRejected,
			Verdict: classify.VerdictIncorrect,
			Message: "guaranteed incorrect, not submitted: " + bounds.Violation(value),
			Source:  SourceBound,
		}, nil
	}

	// The only state that performs I/O. Transport failures cause no ledger
	// mutation and are surfaced distinctly, never classified.
	raw, err := c.transport.PostAnswer(ctx, id, value)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	result, err := classify.Classify(raw)
	if err != nil {
		// Fail closed: an unparseable response is never recorded or guessed at.
		return Outcome{}, fmt.Errorf("classifying response for %s: %w", id, err)
	}

	return c.persist(ctx, id, value, raw, result)
}

func (c *Controller) persist(ctx context.Context, id puzzle.Identity, value, raw string, result classify.Result) (Outcome, error) {
	switch {
	case result.Verdict == classify.VerdictCorrect:
		err := c.retryPersist(func() error {
			markErr := c.ledger.MarkCorrect(id, value)
			if markErr != nil {
				return markErr
			}

			return c.ledger.Record(id, value, result.Verdict, raw)
		})
		if err != nil {
			return Outcome{}, err
		}

		return Outcome{Status: StatusAccepted, Answer: value, Source: SourceNetwork}, nil

	case result.Wrong():
		err := c.retryPersist(func() error {
			return c.ledger.Record(id, value, result.Verdict, raw)
		})
		if err != nil {
			return Outcome{}, err
		}

		return Outcome{
			Status:  StatusRejected,
			Verdict: result.Verdict,
			Message: raw,
			Source:  SourceNetwork,
		}, nil

	case result.Verdict == classify.VerdictAlreadyComplete:
		// The value was never judged, so no guess is recorded. Try to
		// discover the true answer from the puzzle prose instead.
		answer, found := c.discoverAnswer(ctx, id)
		if found {
			markErr := c.ledger.MarkCorrect(id, answer)
			if markErr != nil {
				return Outcome{}, markErr
			}
		}

		return Outcome{Status: StatusAlreadySolved, Answer: answer, Source: SourceNetwork}, nil

	case result.Verdict == classify.VerdictRateLimited:
		// No ledger mutation; the value was never judged.
		return Outcome{Status: StatusRateLimited, Wait: result.Wait, Source: SourceNetwork}, nil

	default:
		return Outcome{}, fmt.Errorf("classifying response for %s: %w", id, classify.ErrUnrecognized)
	}
}

// retryPersist retries a ledger write a few times before surfacing the
// failure. All-or-nothing: the underlying writes are atomic.
func (c *Controller) retryPersist(write func() error) error {
	var err error

	for attempt := 0; attempt < persistAttempts; attempt++ {
		err = write()
		if err == nil {
			return nil
		}

		// Integrity violations will not heal on retry.
		if errors.Is(err, ledger.ErrAnswerConflict) || errors.Is(err, ledger.ErrDuplicateGuess) {
			return err
		}

		c.log.Warn("ledger write failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(err))

		time.Sleep(time.Duration(attempt+1) * 50 * time.Millisecond)
	}

	return fmt.Errorf("%w: %w", ErrPersist, err)
}

// discoverAnswer fetches the puzzle prose and extracts the recorded answer
// for this part, if the page shows it. Best effort; failures leave the
// answer unknown rather than failing the submission.
func (c *Controller) discoverAnswer(ctx context.Context, id puzzle.Identity) (string, bool) {
	prose, err := c.transport.FetchProse(ctx, id)
	if err != nil {
		c.log.Warn("could not fetch prose for answer discovery",
			zap.String("identity", id.String()),
			zap.Error(err))

		return "", false
	}

	return transport.ExtractAnswer(prose, id.Part)
}
