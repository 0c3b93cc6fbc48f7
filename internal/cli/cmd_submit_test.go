package cli

import (
	"net/http"
	"sync/atomic"
	"testing"
)

func answerServer(t *testing.T, c *CLI, reply string) *atomic.Int32 {
	t.Helper()

	var posts atomic.Int32

	startServer(t, c, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method=%s, want POST", r.Method)
		}

		posts.Add(1)
		_, _ = w.Write([]byte(reply))
	}))

	return &posts
}

func TestSubmitRequiresValue(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	stderr := c.MustFail("submit", "-y", "2020", "-d", "5")
	AssertContains(t, stderr, "answer value is required")
}

func TestSubmitCorrect(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)
	answerServer(t, c, "That's the right answer! You are one gold star closer.")

	stdout := c.MustRun("submit", "42", "-y", "2020", "-d", "5", "-p", "a")
	AssertContains(t, stdout, "correct: 42")

	// The accepted answer is durable: resubmitting anything short-circuits.
	stdout = c.MustRun("submit", "7", "-y", "2020", "-d", "5", "-p", "a")
	AssertContains(t, stdout, "already solved, answer = 42")
}

func TestSubmitIncorrectThenCachedVerdict(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)
	posts := answerServer(t, c, "That's not the right answer; your answer is too high.")

	stdout := c.MustRun("submit", "1300", "-y", "2020", "-d", "5")
	AssertContains(t, stdout, "incorrect (too_high)")

	// Same value again is answered from the ledger, no network call.
	stdout = c.MustRun("submit", "1300", "-y", "2020", "-d", "5")
	AssertContains(t, stdout, "cached")

	if got := posts.Load(); got != 1 {
		t.Errorf("server posts=%d, want 1", got)
	}
}

func TestSubmitBoundShortCircuit(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)
	posts := answerServer(t, c, "That's not the right answer; your answer is too high.")

	c.MustRun("submit", "1300", "-y", "2020", "-d", "5")

	// 1400 violates the inferred upper bound; rejected without a network call.
	stdout := c.MustRun("submit", "1400", "-y", "2020", "-d", "5")
	AssertContains(t, stdout, "not submitted")
	AssertContains(t, stdout, "1300")

	if got := posts.Load(); got != 1 {
		t.Errorf("server posts=%d, want 1", got)
	}
}

func TestSubmitRateLimited(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)
	answerServer(t, c, "You gave an answer too recently; you have 45s left to wait.")

	stdout := c.MustRun("submit", "42", "-y", "2020", "-d", "5")
	AssertContains(t, stdout, "rate limited, wait 45s")
}

func TestSubmitUnrecognizedResponseFails(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)
	answerServer(t, c, "<html>surprise maintenance page</html>")

	stderr := c.MustFail("submit", "42", "-y", "2020", "-d", "5")
	AssertContains(t, stderr, "unrecognized")
}

func TestSubmitPartsAreIndependent(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)
	posts := answerServer(t, c, "That's the right answer!")

	c.MustRun("submit", "42", "-y", "2020", "-d", "5", "-p", "a")

	// Part b is a separate identity with its own ledger.
	stdout := c.MustRun("submit", "42", "-y", "2020", "-d", "5", "-p", "b")
	AssertContains(t, stdout, "correct: 42")

	if got := posts.Load(); got != 2 {
		t.Errorf("server posts=%d, want 2", got)
	}
}
