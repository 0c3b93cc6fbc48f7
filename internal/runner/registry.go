package runner

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// Solver computes both part answers for one day's input.
// An empty string means the solver does not produce that part.
// Solvers must honor ctx; the harness abandons them on timeout.
type Solver func(ctx context.Context, year, day int, input string) (partA, partB string, err error)

// Registry errors.
var (
	ErrSolverExists   = errors.New("solver already registered")
	ErrSolverNotFound = errors.New("solver not found")
)

// Registry maps solver names to callables. Registration is explicit; there
// is no dynamic discovery.
type Registry struct {
	solvers map[string]Solver
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{solvers: make(map[string]Solver)}
}

// Register adds a named solver. Names are unique.
func (r *Registry) Register(name string, solver Solver) error {
	if _, ok := r.solvers[name]; ok {
		return fmt.Errorf("%w: %s", ErrSolverExists, name)
	}

	r.solvers[name] = solver

	return nil
}

// Get returns the named solver.
func (r *Registry) Get(name string) (Solver, error) {
	solver, ok := r.solvers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSolverNotFound, name)
	}

	return solver, nil
}

// Names lists registered solver names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.solvers))
	for name := range r.solvers {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
