// Package transport talks HTTP to the puzzle server: posting answers,
// fetching inputs, and fetching puzzle prose. It owns credentials and
// endpoint construction; callers never see URLs or cookies.
package transport

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"aoc/internal/puzzle"
)

// DefaultBaseURL is the production puzzle server.
const DefaultBaseURL = "https://adventofcode.com"

// DefaultTimeout bounds every request. Exceeding it surfaces as a transport
// error, never a hang.
const DefaultTimeout = 30 * time.Second

// userAgent identifies this client honestly to the server operator.
const userAgent = "aoc-cli (+https://github.com/aoc-tools/aoc)"

// Transport errors.
var (
	ErrHTTPStatus = errors.New("unexpected HTTP status")
	ErrRequest    = errors.New("request failed")
)

// Client is an HTTP client bound to one session token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the server base URL (tests, mirrors).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithLogger attaches a logger. Default is a nop logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient returns a Client authenticated with the given session token.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		http:    &http.Client{Timeout: DefaultTimeout},
		log:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// PostAnswer submits a value for the identity's part and returns the raw
// response body. The caller classifies; this layer only moves bytes.
func (c *Client) PostAnswer(ctx context.Context, id puzzle.Identity, value string) (string, error) {
	endpoint := fmt.Sprintf("%s/%d/day/%d/answer", c.baseURL, id.Year, id.Day)

	form := url.Values{}
	form.Set("level", id.Level())
	form.Set("answer", puzzle.Canonical(value))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRequest, err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	c.log.Debug("posting answer",
		zap.String("identity", id.String()),
		zap.String("endpoint", endpoint))

	return c.do(req)
}

// FetchInput returns the identity's puzzle input.
func (c *Client) FetchInput(ctx context.Context, id puzzle.Identity) (string, error) {
	endpoint := fmt.Sprintf("%s/%d/day/%d/input", c.baseURL, id.Year, id.Day)

	return c.get(ctx, endpoint)
}

// FetchProse returns the puzzle description page. When a part is already
// solved the page contains "Your puzzle answer was X." for that part, which
// ExtractAnswer can recover.
func (c *Client) FetchProse(ctx context.Context, id puzzle.Identity) (string, error) {
	endpoint := fmt.Sprintf("%s/%d/day/%d", c.baseURL, id.Year, id.Day)

	return c.get(ctx, endpoint)
}

func (c *Client) get(ctx context.Context, endpoint string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRequest, err)
	}

	c.log.Debug("fetching", zap.String("endpoint", endpoint))

	return c.do(req)
}

func (c *Client) do(req *http.Request) (string, error) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Cookie", "session="+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRequest, err)
	}

	defer func() { _ = resp.Body.Close() }()

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return "", fmt.Errorf("%w: reading body: %w", ErrRequest, readErr)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %d %s", ErrHTTPStatus, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	return string(body), nil
}

// answerPattern matches the solved-answer line in puzzle prose.
var answerPattern = regexp.MustCompile(`Your puzzle answer was <code>([^<]+)</code>`)

// examplePattern matches a code block in puzzle prose.
var examplePattern = regexp.MustCompile(`(?s)<pre><code>(.*?)</code></pre>`)

// ExtractExample pulls the likely example input out of puzzle prose: the
// first code block of the page, which is where the day's example lives by
// convention. HTML entities are unescaped.
func ExtractExample(prose string) (string, bool) {
	match := examplePattern.FindStringSubmatch(prose)
	if match == nil {
		return "", false
	}

	return html.UnescapeString(match[1]), true
}

// ExtractAnswer pulls the recorded correct answer for a part out of puzzle
// prose. The page lists part A's answer first, then part B's.
func ExtractAnswer(prose string, part puzzle.Part) (string, bool) {
	matches := answerPattern.FindAllStringSubmatch(prose, -1)

	idx := 0
	if part == puzzle.PartB {
		idx = 1
	}

	if idx >= len(matches) {
		return "", false
	}

	return strings.TrimSpace(matches[idx][1]), true
}
