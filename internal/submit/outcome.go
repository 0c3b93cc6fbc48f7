package submit

import (
	"fmt"
	"time"

	"aoc/internal/classify"
)

// Status is the caller-facing result class of a submission attempt.
type Status string

// Status constants.
const (
	StatusAccepted      Status = "accepted"
	StatusRejected      Status = "rejected"
	StatusAlreadySolved Status = "already_solved"
	StatusRateLimited   Status = "rate_limited"
)

// Source records where an outcome came from.
type Source string

// Source constants.
const (
	SourceNetwork Source = "network"
	SourceCache   Source = "cache"
	SourceBound   Source = "bound-inference"
)

// Outcome is the result of one submission attempt.
type Outcome struct {
	Status  Status
	Verdict classify.Verdict // set for StatusRejected
	Message string           // stored or synthesized server message
	Answer  string           // set for StatusAccepted and StatusAlreadySolved (may be empty if unknown)
	Wait    time.Duration    // set for StatusRateLimited
	Source  Source
}

// String renders a one-line human-readable summary.
func (o Outcome) String() string {
	switch o.Status {
	case StatusAccepted:
		return fmt.Sprintf("correct: %s", o.Answer)
	case StatusAlreadySolved:
		if o.Answer == "" {
			return "already solved (answer unknown)"
		}

		return fmt.Sprintf("already solved, answer = %s", o.Answer)
	case StatusRateLimited:
		return fmt.Sprintf("rate limited, wait %s", o.Wait)
	case StatusRejected:
		if o.Source == SourceCache {
			return fmt.Sprintf("incorrect (%s, cached): %s", o.Verdict, o.Message)
		}

		return fmt.Sprintf("incorrect (%s): %s", o.Verdict, o.Message)
	default:
		return string(o.Status)
	}
}
