// Package main provides aoc, a CLI that fetches, caches, and submits daily
// programming puzzle answers, and benchmarks solver plugins against cached
// datasets.
package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"aoc/internal/cli"
	"aoc/internal/runner"
)

func main() {
	environ := os.Environ()
	env := make(map[string]string, len(environ))

	for _, e := range environ {
		if k, v, ok := strings.Cut(e, "="); ok {
			env[k] = v
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	// Solvers register here. The binary ships none; users link their own
	// via a fork or a small wrapper main.
	registry := runner.NewRegistry()

	exitCode := cli.Run(ctx, os.Stdin, os.Stdout, os.Stderr, os.Args, env, registry)

	stop()
	os.Exit(exitCode)
}
