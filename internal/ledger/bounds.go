package ledger

import (
	"fmt"

	"aoc/internal/classify"
	"aoc/internal/puzzle"
)

// Bounds is the open feasibility interval inferred from directional verdicts.
// Lower is the highest value judged too low, Upper the lowest value judged
// too high. Both start unset. Only integer answers participate; non-integer
// values are bound-exempt.
type Bounds struct {
	Lower    int64
	HasLower bool
	Upper    int64
	HasUpper bool
}

// BoundsOf derives bounds from a guess history. Bounds only ever tighten:
// max of the too-low values, min of the too-high values. Guesses whose value
// does not parse as an integer are skipped.
func BoundsOf(guesses []Guess) Bounds {
	var b Bounds

	for _, g := range guesses {
		n, ok := puzzle.AsInt(g.Value)
		if !ok {
			continue
		}

		switch g.Verdict {
		case classify.VerdictTooLow:
			if !b.HasLower || n > b.Lower {
				b.Lower = n
				b.HasLower = true
			}
		case classify.VerdictTooHigh:
			if !b.HasUpper || n < b.Upper {
				b.Upper = n
				b.HasUpper = true
			}
		}
	}

	return b
}

// Feasible reports whether value could still be the answer.
// Non-integer values are always feasible; integer values must lie strictly
// between the established bounds.
func (b Bounds) Feasible(value string) bool {
	n, ok := puzzle.AsInt(value)
	if !ok {
		return true
	}

	if b.HasLower && n <= b.Lower {
		return false
	}

	if b.HasUpper && n >= b.Upper {
		return false
	}

	return true
}

// Violation names the bound a value fails, for user-facing rejections.
// Only meaningful when Feasible(value) is false.
func (b Bounds) Violation(value string) string {
	n, ok := puzzle.AsInt(value)
	if !ok {
		return ""
	}

	if b.HasLower && n <= b.Lower {
		return fmt.Sprintf("%d is not above the known lower bound %d", n, b.Lower)
	}

	if b.HasUpper && n >= b.Upper {
		return fmt.Sprintf("%d is not below the known upper bound %d", n, b.Upper)
	}

	return ""
}

// String renders the interval for display, e.g. "(1299, 1400)".
func (b Bounds) String() string {
	lower := "-inf"
	if b.HasLower {
		lower = fmt.Sprintf("%d", b.Lower)
	}

	upper := "+inf"
	if b.HasUpper {
		upper = fmt.Sprintf("%d", b.Upper)
	}

	return fmt.Sprintf("(%s, %s)", lower, upper)
}
