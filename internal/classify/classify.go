// Package classify turns the free-text reply of an answer submission into a
// structured verdict.
//
// Matching is substring-based on the stable phrases the server uses, not
// full-string equality, so minor wording changes don't break classification.
// Text that matches no known phrase is a hard error: an unparseable response
// must never be treated as correct or as safe to retry.
package classify

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Verdict is the classified outcome of a submission response.
type Verdict string

// Verdict constants.
const (
	VerdictCorrect         Verdict = "correct"
	VerdictTooHigh         Verdict = "too_high"
	VerdictTooLow          Verdict = "too_low"
	VerdictIncorrect       Verdict = "incorrect"
	VerdictAlreadyComplete Verdict = "already_complete"
	VerdictRateLimited     Verdict = "rate_limited"
)

// ErrUnrecognized is returned when response text matches no known pattern.
// Fail-closed: callers must surface it, never guess a verdict.
var ErrUnrecognized = errors.New("unrecognized server response")

// DefaultWait is the conservative backoff used when a rate-limit message
// carries no parseable duration.
const DefaultWait = 5 * time.Minute

// Result is a classified response.
type Result struct {
	Verdict Verdict
	// Wait is the server-requested backoff. Only set for VerdictRateLimited.
	Wait time.Duration
}

// Wrong reports whether the verdict is any flavor of incorrect.
func (r Result) Wrong() bool {
	return r.Verdict == VerdictTooHigh || r.Verdict == VerdictTooLow || r.Verdict == VerdictIncorrect
}

// Classify maps raw response text to exactly one verdict.
// Directional verdicts win over the generic wrong-answer phrase when both
// patterns are present.
func Classify(raw string) (Result, error) {
	text := strings.ToLower(raw)

	switch {
	case strings.Contains(text, "that's the right answer"):
		return Result{Verdict: VerdictCorrect}, nil
	case strings.Contains(text, "too high"):
		return Result{Verdict: VerdictTooHigh}, nil
	case strings.Contains(text, "too low"):
		return Result{Verdict: VerdictTooLow}, nil
	case strings.Contains(text, "not the right answer"):
		return Result{Verdict: VerdictIncorrect}, nil
	case strings.Contains(text, "did you already complete it"),
		strings.Contains(text, "already complete"):
		return Result{Verdict: VerdictAlreadyComplete}, nil
	case strings.Contains(text, "gave an answer too recently"),
		strings.Contains(text, "to wait"):
		return Result{Verdict: VerdictRateLimited, Wait: parseWait(text)}, nil
	default:
		return Result{}, ErrUnrecognized
	}
}

// Duration fragments like "5m", "45s", "2 minutes", "30 seconds".
var (
	minutesPattern = regexp.MustCompile(`(\d+)\s*m(?:in(?:ute)?s?)?\b`)
	secondsPattern = regexp.MustCompile(`(\d+)\s*s(?:econd)?s?\b`)
)

// wordAmounts covers the spelled-out durations the server sometimes uses.
var wordAmounts = map[string]time.Duration{
	"one minute":   time.Minute,
	"two minutes":  2 * time.Minute,
	"five minutes": 5 * time.Minute,
	"ten minutes":  10 * time.Minute,
	"one hour":     time.Hour,
}

// parseWait extracts the wait duration from a rate-limit message.
// Falls back to DefaultWait when nothing parses.
func parseWait(text string) time.Duration {
	for phrase, d := range wordAmounts {
		if strings.Contains(text, phrase) {
			return d
		}
	}

	// Look for "you have 1m 30s left" style amounts after "have".
	_, after, found := strings.Cut(text, "have")
	if !found {
		after = text
	}

	var wait time.Duration

	if match := minutesPattern.FindStringSubmatch(after); match != nil {
		mins, err := strconv.Atoi(match[1])
		if err == nil {
			wait += time.Duration(mins) * time.Minute
		}
	}

	if match := secondsPattern.FindStringSubmatch(after); match != nil {
		secs, err := strconv.Atoi(match[1])
		if err == nil {
			wait += time.Duration(secs) * time.Second
		}
	}

	if wait == 0 {
		return DefaultWait
	}

	return wait
}
