// Package cache stores fetched puzzle datasets (inputs and prose) on disk so
// each is downloaded at most once per identity. Entries never expire; only
// the user deletes them.
package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"go.uber.org/zap"

	"aoc/internal/puzzle"
	"aoc/internal/transport"
)

const dirPerms = 0o755

// Cache errors.
var (
	ErrFetcherRequired = errors.New("dataset not cached and no fetcher configured")
	ErrNoExample       = errors.New("no example block found in puzzle prose")
)

// Fetcher retrieves datasets over the network on cache miss.
type Fetcher interface {
	FetchInput(ctx context.Context, id puzzle.Identity) (string, error)
	FetchProse(ctx context.Context, id puzzle.Identity) (string, error)
}

// Store is a file-backed dataset cache.
type Store struct {
	dir     string
	fetcher Fetcher
	log     *zap.Logger
}

// Open returns a Store rooted at dir. fetcher may be nil for offline use.
func Open(dir string, fetcher Fetcher, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	err := os.MkdirAll(dir, dirPerms)
	if err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	return &Store{dir: dir, fetcher: fetcher, log: log}, nil
}

// inputPath ignores the part: both parts share one input.
func (s *Store) inputPath(id puzzle.Identity) string {
	return filepath.Join(s.dir, fmt.Sprintf("%d-%02d-%s-input.txt", id.Year, id.Day, id.User))
}

func (s *Store) prosePath(id puzzle.Identity) string {
	return filepath.Join(s.dir, fmt.Sprintf("%d-%02d-%s-prose.html", id.Year, id.Day, id.User))
}

// Input returns the cached puzzle input, fetching and storing it on miss.
func (s *Store) Input(ctx context.Context, id puzzle.Identity) (string, error) {
	return s.get(ctx, id, s.inputPath(id), func(f Fetcher) (string, error) {
		return f.FetchInput(ctx, id)
	})
}

// Prose returns the cached puzzle page, fetching and storing it on miss.
func (s *Store) Prose(ctx context.Context, id puzzle.Identity) (string, error) {
	return s.get(ctx, id, s.prosePath(id), func(f Fetcher) (string, error) {
		return f.FetchProse(ctx, id)
	})
}

func (s *Store) get(_ context.Context, id puzzle.Identity, path string, fetch func(Fetcher) (string, error)) (string, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		return string(data), nil
	}

	if !os.IsNotExist(err) {
		return "", fmt.Errorf("reading cache: %w", err)
	}

	if s.fetcher == nil {
		return "", fmt.Errorf("%w: %s", ErrFetcherRequired, id)
	}

	s.log.Debug("cache miss, fetching", zap.String("path", path))

	text, fetchErr := fetch(s.fetcher)
	if fetchErr != nil {
		return "", fetchErr
	}

	writeErr := atomic.WriteFile(path, bytes.NewReader([]byte(text)))
	if writeErr != nil {
		return "", fmt.Errorf("writing cache: %w", writeErr)
	}

	return text, nil
}

// ExamplePath is where a hand-curated example input for a day lives.
// Examples are shared across accounts; a curated file always wins over
// anything extracted from prose.
func (s *Store) ExamplePath(year, day int) string {
	return filepath.Join(s.dir, fmt.Sprintf("%d-%02d-example.txt", year, day))
}

// Example returns the example input for a day: the curated file when one
// exists, otherwise the first code block extracted from the puzzle prose
// (cached, fetched on miss).
func (s *Store) Example(ctx context.Context, id puzzle.Identity) (string, error) {
	data, err := os.ReadFile(s.ExamplePath(id.Year, id.Day))
	if err == nil {
		return string(data), nil
	}

	if !os.IsNotExist(err) {
		return "", fmt.Errorf("reading example input: %w", err)
	}

	prose, proseErr := s.Prose(ctx, id)
	if proseErr != nil {
		return "", fmt.Errorf("no curated example, falling back to prose: %w", proseErr)
	}

	example, ok := transport.ExtractExample(prose)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoExample, id)
	}

	return example, nil
}

// Delete removes the cached datasets for an identity. Missing files are fine.
func (s *Store) Delete(id puzzle.Identity) error {
	for _, path := range []string{s.inputPath(id), s.prosePath(id)} {
		err := os.Remove(path)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("deleting cache entry: %w", err)
		}
	}

	return nil
}
