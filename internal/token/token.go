// Package token resolves the session credential used to talk to the puzzle
// server. Browser cookie stores are deliberately out of scope; tokens come
// from explicit flags, the environment, config, or a saved token file.
package token

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/natefinch/atomic"
)

// EnvVar is the environment variable consulted for the session token.
const EnvVar = "AOC_SESSION"

// tokenFileName is the saved-token file under the data dir.
const tokenFileName = "token"

// tokensFileName maps account names to tokens for multi-account benchmarking.
const tokensFileName = "tokens.json"

const (
	dirPerms = 0o755
	// Token files hold credentials; keep them private.
	tokenPerms = 0o600
)

// Token errors.
var (
	ErrNotFound      = errors.New("no session token found (use --token, $" + EnvVar + ", config, or `aoc token set`)")
	ErrTokenEmpty    = errors.New("token cannot be empty")
	ErrTokensInvalid = errors.New("invalid tokens file")
)

// ResolveInput holds the token sources in precedence order.
type ResolveInput struct {
	Flag    string            // --token flag value
	Env     map[string]string // process environment
	Config  string            // token from config file
	DataDir string            // directory holding the saved token file
}

// Resolve returns the session token with precedence:
// flag > environment > config > saved token file.
func Resolve(input ResolveInput) (string, error) {
	if t := strings.TrimSpace(input.Flag); t != "" {
		return t, nil
	}

	if t := strings.TrimSpace(input.Env[EnvVar]); t != "" {
		return t, nil
	}

	if t := strings.TrimSpace(input.Config); t != "" {
		return t, nil
	}

	if input.DataDir != "" {
		data, err := os.ReadFile(filepath.Join(input.DataDir, tokenFileName))
		if err == nil {
			if t := strings.TrimSpace(string(data)); t != "" {
				return t, nil
			}
		} else if !os.IsNotExist(err) {
			return "", fmt.Errorf("reading token file: %w", err)
		}
	}

	return "", ErrNotFound
}

// Save writes the token file under dataDir with private permissions.
func Save(dataDir, tok string) error {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return ErrTokenEmpty
	}

	err := os.MkdirAll(dataDir, dirPerms)
	if err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	path := filepath.Join(dataDir, tokenFileName)

	writeErr := atomic.WriteFile(path, strings.NewReader(tok+"\n"))
	if writeErr != nil {
		return fmt.Errorf("writing token file: %w", writeErr)
	}

	if chmodErr := os.Chmod(path, tokenPerms); chmodErr != nil {
		return fmt.Errorf("restricting token file: %w", chmodErr)
	}

	return nil
}

// Account is one named credential from the tokens file.
type Account struct {
	Name  string
	Token string
}

// Accounts loads the multi-account tokens file for the benchmark harness,
// sorted by name. A missing file yields no accounts.
func Accounts(dataDir string) ([]Account, error) {
	data, err := os.ReadFile(filepath.Join(dataDir, tokensFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("reading tokens file: %w", err)
	}

	var byName map[string]string

	unmarshalErr := json.Unmarshal(data, &byName)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokensInvalid, unmarshalErr)
	}

	accounts := make([]Account, 0, len(byName))
	for name, tok := range byName {
		accounts = append(accounts, Account{Name: name, Token: strings.TrimSpace(tok)})
	}

	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Name < accounts[j].Name })

	return accounts, nil
}

// UserID derives the opaque user identity from a session token. The token
// itself never appears in filenames or logs.
func UserID(tok string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(tok)))

	return hex.EncodeToString(sum[:8])
}
