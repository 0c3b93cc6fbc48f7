package token_test

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"

	"aoc/internal/token"
)

func TestResolvePrecedence(t *testing.T) {
	t.Parallel()

	dataDir := t.TempDir()
	if err := token.Save(dataDir, "from-file"); err != nil {
		t.Fatal(err)
	}

	for _, tt := range []struct {
		name  string
		input token.ResolveInput
		want  string
	}{
		{
			name: "flag beats everything",
			input: token.ResolveInput{
				Flag:    "from-flag",
				Env:     map[string]string{token.EnvVar: "from-env"},
				Config:  "from-config",
				DataDir: dataDir,
			},
			want: "from-flag",
		},
		{
			name: "env beats config and file",
			input: token.ResolveInput{
				Env:     map[string]string{token.EnvVar: "from-env"},
				Config:  "from-config",
				DataDir: dataDir,
			},
			want: "from-env",
		},
		{
			name: "config beats file",
			input: token.ResolveInput{
				Config:  "from-config",
				DataDir: dataDir,
			},
			want: "from-config",
		},
		{
			name:  "saved file is the fallback",
			input: token.ResolveInput{DataDir: dataDir},
			want:  "from-file",
		},
		{
			name: "whitespace-only sources are skipped",
			input: token.ResolveInput{
				Flag:    "   ",
				Env:     map[string]string{token.EnvVar: "\t"},
				Config:  "from-config",
				DataDir: dataDir,
			},
			want: "from-config",
		},
	} {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := token.Resolve(tt.input)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}

			if got != tt.want {
				t.Errorf("Resolve()=%q, want=%q", got, tt.want)
			}
		})
	}
}

func TestResolveNotFound(t *testing.T) {
	t.Parallel()

	_, err := token.Resolve(token.ResolveInput{DataDir: t.TempDir()})
	if !errors.Is(err, token.ErrNotFound) {
		t.Errorf("Resolve() error = %v, want ErrNotFound", err)
	}
}

func TestSaveTrimsAndRestrictsPerms(t *testing.T) {
	t.Parallel()

	dataDir := filepath.Join(t.TempDir(), "nested", "data")

	if err := token.Save(dataDir, "  secret \n"); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dataDir, "token")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if got, want := string(data), "secret\n"; got != want {
		t.Errorf("file content=%q, want=%q", got, want)
	}

	if runtime.GOOS != "windows" {
		info, statErr := os.Stat(path)
		if statErr != nil {
			t.Fatal(statErr)
		}

		if got, want := info.Mode().Perm(), os.FileMode(0o600); got != want {
			t.Errorf("token file perms=%v, want=%v", got, want)
		}
	}
}

func TestSaveEmptyRejected(t *testing.T) {
	t.Parallel()

	err := token.Save(t.TempDir(), "   ")
	if !errors.Is(err, token.ErrTokenEmpty) {
		t.Errorf("Save() error = %v, want ErrTokenEmpty", err)
	}
}

func TestAccounts(t *testing.T) {
	t.Parallel()

	dataDir := t.TempDir()

	tokens := `{"bravo": "tok-b ", "alpha": "tok-a"}`
	if err := os.WriteFile(filepath.Join(dataDir, "tokens.json"), []byte(tokens), 0o600); err != nil {
		t.Fatal(err)
	}

	accounts, err := token.Accounts(dataDir)
	if err != nil {
		t.Fatal(err)
	}

	want := []token.Account{
		{Name: "alpha", Token: "tok-a"},
		{Name: "bravo", Token: "tok-b"},
	}
	if diff := cmp.Diff(want, accounts); diff != "" {
		t.Errorf("Accounts() mismatch (-want +got):\n%s", diff)
	}
}

func TestAccountsMissingFile(t *testing.T) {
	t.Parallel()

	accounts, err := token.Accounts(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if len(accounts) != 0 {
		t.Errorf("Accounts()=%v, want empty", accounts)
	}
}

func TestAccountsInvalidFile(t *testing.T) {
	t.Parallel()

	dataDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dataDir, "tokens.json"), []byte("not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := token.Accounts(dataDir)
	if !errors.Is(err, token.ErrTokensInvalid) {
		t.Errorf("Accounts() error = %v, want ErrTokensInvalid", err)
	}
}

func TestUserID(t *testing.T) {
	t.Parallel()

	first := token.UserID("session-abc")

	// Stable across calls and whitespace, distinct across tokens.
	if got := token.UserID(" session-abc \n"); got != first {
		t.Errorf("UserID not whitespace-stable: %q vs %q", got, first)
	}

	if got := token.UserID("session-xyz"); got == first {
		t.Error("distinct tokens produced the same user id")
	}

	if len(first) != 16 {
		t.Errorf("UserID length=%d, want 16 hex chars", len(first))
	}

	for _, r := range first {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			t.Errorf("UserID contains non-hex rune %q", r)
		}
	}
}
