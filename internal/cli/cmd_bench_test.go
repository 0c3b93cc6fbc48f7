package cli

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"aoc/internal/ledger"
	"aoc/internal/puzzle"
	"aoc/internal/token"
)

const benchToken = "bench-session-token"

// seedDataset writes a cached input and records the known part-a answer.
func seedDataset(t *testing.T, c *CLI, input, answerA string) {
	t.Helper()

	c.Env[token.EnvVar] = benchToken
	user := token.UserID(benchToken)

	cacheDir := filepath.Join(c.DataDir, "cache")
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(cacheDir, "2020-05-"+user+"-input.txt")
	if err := os.WriteFile(path, []byte(input), 0o644); err != nil {
		t.Fatal(err)
	}

	if answerA == "" {
		return
	}

	store, err := ledger.Open(filepath.Join(c.DataDir, "ledger"))
	if err != nil {
		t.Fatal(err)
	}

	id, err := puzzle.NewIdentity(2020, 5, puzzle.PartA, user)
	if err != nil {
		t.Fatal(err)
	}

	if err := store.MarkCorrect(id, answerA); err != nil {
		t.Fatal(err)
	}
}

func TestBenchRequiresSolver(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	stderr := c.MustFail("bench", "-y", "2020", "-d", "5")
	AssertContains(t, stderr, "--solver is required")
}

func TestBenchUnknownSolverListsRegistered(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	err := c.Registry.Register("real", func(context.Context, int, int, string) (string, string, error) {
		return "", "", nil
	})
	if err != nil {
		t.Fatal(err)
	}

	stderr := c.MustFail("bench", "--solver", "missing", "-y", "2020", "-d", "5")
	AssertContains(t, stderr, "solver not found: missing")
	AssertContains(t, stderr, "real")
}

func TestBenchPassingSolver(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)
	seedDataset(t, c, "1\n2\n3\n", "42")

	err := c.Registry.Register("answer", func(_ context.Context, _, _ int, input string) (string, string, error) {
		if input != "1\n2\n3\n" {
			t.Errorf("solver input=%q", input)
		}

		return "42", "", nil
	})
	if err != nil {
		t.Fatal(err)
	}

	stdout := c.MustRun("bench", "--solver", "answer", "-y", "2020", "-d", "5")
	AssertContains(t, stdout, "pass")
	AssertContains(t, stdout, "default")
}

func TestBenchFailingSolverExitsNonZero(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)
	seedDataset(t, c, "1\n2\n3\n", "42")

	err := c.Registry.Register("wrong", func(context.Context, int, int, string) (string, string, error) {
		return "41", "", nil
	})
	if err != nil {
		t.Fatal(err)
	}

	stdout, stderr, code := c.Run("bench", "--solver", "wrong", "-y", "2020", "-d", "5")
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}

	AssertContains(t, stdout, "fail")
	AssertContains(t, stdout, "got 41, want 42")
	AssertContains(t, stderr, "had failures")
}

func TestBenchQuietHidesPasses(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)
	seedDataset(t, c, "1\n2\n3\n", "42")

	err := c.Registry.Register("answer", func(context.Context, int, int, string) (string, string, error) {
		return "42", "", nil
	})
	if err != nil {
		t.Fatal(err)
	}

	stdout := c.MustRun("bench", "--solver", "answer", "-y", "2020", "-d", "5", "-q")
	AssertNotContains(t, stdout, "pass")
}

func TestBenchExampleInput(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)
	c.Env[token.EnvVar] = benchToken

	cacheDir := filepath.Join(c.DataDir, "cache")
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		t.Fatal(err)
	}

	writeErr := os.WriteFile(filepath.Join(cacheDir, "2020-05-example.txt"), []byte("tiny\n"), 0o644)
	if writeErr != nil {
		t.Fatal(writeErr)
	}

	err := c.Registry.Register("answer", func(_ context.Context, _, _ int, input string) (string, string, error) {
		if input != "tiny\n" {
			t.Errorf("solver input=%q, want example input", input)
		}

		return "42", "", nil
	})
	if err != nil {
		t.Fatal(err)
	}

	// Example runs have no expectations; the answer is reported as unknown.
	stdout := c.MustRun("bench", "--solver", "answer", "-y", "2020", "-d", "5", "--example")
	AssertContains(t, stdout, "unknown")
}

func TestBenchExampleExtractedFromProse(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	// No curated example file; the example comes out of the puzzle prose.
	prose := `<article><p>For example:</p>
<pre><code>tiny
example
</code></pre></article>`

	startServer(t, c, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got, want := r.URL.Path, "/2020/day/5"; got != want {
			t.Errorf("path=%q, want=%q", got, want)
		}

		_, _ = w.Write([]byte(prose))
	}))

	err := c.Registry.Register("answer", func(_ context.Context, _, _ int, input string) (string, string, error) {
		if input != "tiny\nexample\n" {
			t.Errorf("solver input=%q, want extracted example", input)
		}

		return "42", "", nil
	})
	if err != nil {
		t.Fatal(err)
	}

	stdout := c.MustRun("bench", "--solver", "answer", "-y", "2020", "-d", "5", "--example")
	AssertContains(t, stdout, "unknown")
}

func TestBenchMissingDataset(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)
	startServer(t, c, http.NotFoundHandler())

	err := c.Registry.Register("answer", func(context.Context, int, int, string) (string, string, error) {
		return "42", "", nil
	})
	if err != nil {
		t.Fatal(err)
	}

	// The cache miss falls through to the fetcher, which gets a 404.
	stderr := c.MustFail("bench", "--solver", "answer", "-y", "2020", "-d", "5")
	AssertContains(t, stderr, "dataset for account default")
}
