// Package puzzle defines the identity of a single puzzle-answer slot and the
// canonical form of candidate answer values.
package puzzle

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Part identifies one half of a daily puzzle.
type Part string

// Part constants.
const (
	PartA Part = "a"
	PartB Part = "b"
)

// FirstYear is the first year with puzzles.
const FirstYear = 2015

// Identity errors.
var (
	ErrInvalidYear = errors.New("year must be 2015 or later")
	ErrInvalidDay  = errors.New("day must be between 1 and 25")
	ErrInvalidPart = errors.New("part must be a or b")
	ErrUserEmpty   = errors.New("user cannot be empty")
)

// Identity addresses one puzzle-answer slot: (year, day, part, user).
// Immutable once constructed via NewIdentity.
type Identity struct {
	Year int
	Day  int
	Part Part
	User string
}

// NewIdentity validates and constructs an Identity.
// User is an opaque string derived from the session credential.
func NewIdentity(year, day int, part Part, user string) (Identity, error) {
	if year < FirstYear {
		return Identity{}, fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}

	if day < 1 || day > 25 {
		return Identity{}, fmt.Errorf("%w: %d", ErrInvalidDay, day)
	}

	if part != PartA && part != PartB {
		return Identity{}, fmt.Errorf("%w: %q", ErrInvalidPart, part)
	}

	if user == "" {
		return Identity{}, ErrUserEmpty
	}

	return Identity{Year: year, Day: day, Part: part, User: user}, nil
}

// String returns a stable key like "2015-24-a-u1".
// Used as the filename stem for ledger and cache entries.
func (id Identity) String() string {
	return fmt.Sprintf("%d-%02d-%s-%s", id.Year, id.Day, id.Part, id.User)
}

// Level returns the numeric level the server expects for this part.
func (id Identity) Level() string {
	if id.Part == PartB {
		return "2"
	}

	return "1"
}

// ParsePart parses "a", "b", "1", "2" (case-insensitive) into a Part.
func ParsePart(s string) (Part, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a", "1":
		return PartA, nil
	case "b", "2":
		return PartB, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPart, s)
	}
}

// Canonical returns the canonical form of a candidate answer value.
// Values are compared as trimmed strings.
func Canonical(value string) string {
	return strings.TrimSpace(value)
}

// AsInt reports whether the canonicalized value parses as a base-10 integer.
// Only integer values participate in bound arithmetic; everything else is
// bound-exempt.
func AsInt(value string) (int64, bool) {
	n, err := strconv.ParseInt(Canonical(value), 10, 64)
	if err != nil {
		return 0, false
	}

	return n, true
}
