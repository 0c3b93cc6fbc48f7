// Package ledger stores the durable, append-only guess history for each
// puzzle identity, along with the correct answer once it is known.
//
// The ledger is the only defense against re-submitting a guess the server has
// already judged, so every successful Record and MarkCorrect is durable
// before the call returns: state is written with an atomic temp-file+rename,
// never buffered.
package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"

	"aoc/internal/classify"
	"aoc/internal/puzzle"
)

const schemaVersion = 1

// File and directory permissions.
const (
	dirPerms  = 0o755
	filePerms = 0o644
)

// Ledger errors.
var (
	ErrDuplicateGuess  = errors.New("value already submitted for this puzzle")
	ErrAnswerConflict  = errors.New("conflicting correct answer already recorded")
	ErrCorrupt         = errors.New("ledger file corrupt")
	ErrVersionMismatch = errors.New("unsupported ledger schema version")
)

// Guess is one submitted value and its server verdict.
// Guesses are never deleted or revised, only appended.
type Guess struct {
	Value   string           `json:"value"`
	Verdict classify.Verdict `json:"verdict"`
	Message string           `json:"message"`
	When    time.Time        `json:"when"`
}

// state is the on-disk document for one identity.
type state struct {
	SchemaVersion int     `json:"schema_version"`
	Guesses       []Guess `json:"guesses"`
	// Correct is the known correct answer, empty until solved.
	// Empty values never reach the ledger, so "" is unambiguous.
	Correct string `json:"correct,omitempty"`
}

// Store is a file-backed ledger keyed by puzzle identity.
// One JSON document per identity under dir.
type Store struct {
	dir string
}

// Open returns a Store rooted at dir, creating it if needed.
func Open(dir string) (*Store, error) {
	err := os.MkdirAll(dir, dirPerms)
	if err != nil {
		return nil, fmt.Errorf("creating ledger dir: %w", err)
	}

	return &Store{dir: dir}, nil
}

// Dir returns the ledger directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(id puzzle.Identity) string {
	return filepath.Join(s.dir, id.String()+".json")
}

// load reads the state for an identity. A missing file is an empty state.
func (s *Store) load(id puzzle.Identity) (state, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return state{SchemaVersion: schemaVersion}, nil
		}

		return state{}, fmt.Errorf("reading ledger: %w", err)
	}

	var st state

	unmarshalErr := json.Unmarshal(data, &st)
	if unmarshalErr != nil {
		return state{}, fmt.Errorf("%w: %s: %w", ErrCorrupt, s.path(id), unmarshalErr)
	}

	if st.SchemaVersion != schemaVersion {
		return state{}, fmt.Errorf("%w: %d", ErrVersionMismatch, st.SchemaVersion)
	}

	return st, nil
}

// save writes the state durably. Atomic rename, no partial writes.
func (s *Store) save(id puzzle.Identity, st state) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding ledger: %w", err)
	}

	writeErr := atomic.WriteFile(s.path(id), bytes.NewReader(data))
	if writeErr != nil {
		return fmt.Errorf("writing ledger: %w", writeErr)
	}

	return nil
}

// Lookup returns the existing guess for the canonicalized value, if any.
func (s *Store) Lookup(id puzzle.Identity, value string) (Guess, bool, error) {
	st, err := s.load(id)
	if err != nil {
		return Guess{}, false, err
	}

	canonical := puzzle.Canonical(value)

	for _, g := range st.Guesses {
		if g.Value == canonical {
			return g, true, nil
		}
	}

	return Guess{}, false, nil
}

// Record appends a guess. Fails with ErrDuplicateGuess if the canonicalized
// value already has a record; callers must Lookup first.
func (s *Store) Record(id puzzle.Identity, value string, verdict classify.Verdict, message string) error {
	canonical := puzzle.Canonical(value)

	st, err := s.load(id)
	if err != nil {
		return err
	}

	for _, g := range st.Guesses {
		if g.Value == canonical {
			return fmt.Errorf("%w: %q", ErrDuplicateGuess, canonical)
		}
	}

	st.Guesses = append(st.Guesses, Guess{
		Value:   canonical,
		Verdict: verdict,
		Message: message,
		When:    time.Now().UTC(),
	})

	return s.save(id, st)
}

// MarkCorrect sets the identity's correct answer. Idempotent for the same
// value; a different value already recorded is a data-integrity violation
// and fails with ErrAnswerConflict rather than overwriting.
func (s *Store) MarkCorrect(id puzzle.Identity, value string) error {
	canonical := puzzle.Canonical(value)

	st, err := s.load(id)
	if err != nil {
		return err
	}

	if st.Correct != "" {
		if st.Correct == canonical {
			return nil
		}

		return fmt.Errorf("%w: have %q, got %q", ErrAnswerConflict, st.Correct, canonical)
	}

	st.Correct = canonical

	return s.save(id, st)
}

// CorrectAnswer returns the known correct answer for an identity.
func (s *Store) CorrectAnswer(id puzzle.Identity) (string, bool, error) {
	st, err := s.load(id)
	if err != nil {
		return "", false, err
	}

	return st.Correct, st.Correct != "", nil
}

// Guesses returns the insertion-ordered guess history for an identity.
func (s *Store) Guesses(id puzzle.Identity) ([]Guess, error) {
	st, err := s.load(id)
	if err != nil {
		return nil, err
	}

	return st.Guesses, nil
}

// Bounds derives the feasibility bounds for an identity from its guess
// history. Always recomputed from the ledger, never persisted separately, so
// it reflects every prior directional verdict.
func (s *Store) Bounds(id puzzle.Identity) (Bounds, error) {
	guesses, err := s.Guesses(id)
	if err != nil {
		return Bounds{}, err
	}

	return BoundsOf(guesses), nil
}

// Delete removes all state for an identity. User-driven only.
func (s *Store) Delete(id puzzle.Identity) error {
	err := os.Remove(s.path(id))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting ledger: %w", err)
	}

	return nil
}
