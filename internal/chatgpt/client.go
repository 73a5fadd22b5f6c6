// Package chatgpt is the resilient client for the ChatGPT backend team-seat
// API. It classifies upstream failures, recovers from Cloudflare challenges
// through FlareSolverr, and keeps one reusable cookie-bearing session.
package chatgpt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBaseURL    = "https://chatgpt.com/backend-api"
	defaultOriginURL  = "https://chatgpt.com"
	defaultSessionURL = "https://chatgpt.com/api/auth/session"
	defaultTokenURL   = "https://auth.openai.com/oauth/token"

	maxAttempts    = 3
	requestTimeout = 30 * time.Second
	solverTimeout  = 120 * time.Second

	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Config carries the upstream endpoints. Zero values fall back to the real
// service; tests point them at httptest servers.
type Config struct {
	BaseURL    string
	OriginURL  string
	SessionURL string
	TokenURL   string
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.OriginURL == "" {
		c.OriginURL = defaultOriginURL
	}
	if c.SessionURL == "" {
		c.SessionURL = defaultSessionURL
	}
	if c.TokenURL == "" {
		c.TokenURL = defaultTokenURL
	}
	return c
}

// Client issues authenticated calls against the upstream API. All session and
// clearance state is guarded by mu; operations are safe for concurrent use,
// network I/O happens outside the lock.
type Client struct {
	cfg    Config
	solver SolverConfigSource
	logger *zap.Logger

	retryDelays []time.Duration
	now         func() time.Time

	mu        sync.Mutex
	session   *http.Client
	clearance *clearance
}

// New constructs a Client. solver provides the FlareSolverr configuration and
// may be nil when challenge recovery is not wanted (e.g. some tests).
func New(cfg Config, solver SolverConfigSource, logger *zap.Logger) *Client {
	return &Client{
		cfg:         cfg.withDefaults(),
		solver:      solver,
		logger:      logger,
		retryDelays: []time.Duration{time.Second, 2 * time.Second, 4 * time.Second},
		now:         time.Now,
	}
}

// do runs one logical call: at most maxAttempts physical attempts with
// exponential backoff on transient failures, and at most one challenge
// recovery regardless of how many challenges are detected. A successful
// recovery replays the same attempt index without consuming the budget.
func (c *Client) do(ctx context.Context, method, url string, headers map[string]string, body any) Result {
	sess := c.getOrCreateSession(ctx)

	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return Result{Success: false, Error: fmt.Sprintf("encode request body: %v", err)}
		}
		payload = b
	}

	challengeRetried := false
	for attempt := 0; attempt < maxAttempts; attempt++ {
		c.logger.Info("upstream request",
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", maxAttempts))

		req, err := c.newRequest(ctx, method, url, headers, payload)
		if err != nil {
			return Result{Success: false, Error: fmt.Sprintf("build request: %v", err)}
		}

		resp, err := sess.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return Result{Success: false, Error: "request canceled"}
			}
			if isTimeout(err) {
				c.logger.Warn("upstream request timed out", zap.Int("attempt", attempt+1))
				if attempt < maxAttempts-1 && c.sleep(ctx, c.retryDelays[attempt]) {
					continue
				}
				return Result{Success: false, Error: fmt.Sprintf("request timed out, retried %d times", maxAttempts)}
			}
			c.logger.Error("upstream request failed", zap.Error(err), zap.Int("attempt", attempt+1))
			if attempt < maxAttempts-1 && c.sleep(ctx, c.retryDelays[attempt]) {
				continue
			}
			return Result{Success: false, Error: fmt.Sprintf("request failed: %v, retried %d times", err, maxAttempts)}
		}

		raw, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			if attempt < maxAttempts-1 && c.sleep(ctx, c.retryDelays[attempt]) {
				continue
			}
			return Result{Success: false, StatusCode: resp.StatusCode, Error: fmt.Sprintf("read response: %v, retried %d times", readErr, maxAttempts)}
		}

		out := Classify(resp.StatusCode, raw)
		switch out.Kind {
		case OutcomeSuccess:
			return Result{Success: true, StatusCode: out.StatusCode, Data: out.Payload}

		case OutcomeChallenge:
			if !challengeRetried && c.recoverChallenge(ctx) {
				challengeRetried = true
				sess = c.currentSession()
				attempt-- // replay the same attempt, recovery does not consume the budget
				continue
			}
			c.logger.Warn("cloudflare challenge not recoverable",
				zap.Int("status", out.StatusCode), zap.Bool("already_retried", challengeRetried))
			return Result{Success: false, StatusCode: out.StatusCode, Error: out.Message, ErrorCode: ErrCodeChallenge}

		case OutcomeClientError:
			c.logger.Warn("upstream client error",
				zap.Int("status", out.StatusCode), zap.String("error", out.Message), zap.String("code", out.ErrorCode))
			return Result{Success: false, StatusCode: out.StatusCode, Error: out.Message, ErrorCode: out.ErrorCode}

		case OutcomeServerError:
			c.logger.Warn("upstream server error",
				zap.Int("status", out.StatusCode), zap.Int("attempt", attempt+1))
			if attempt < maxAttempts-1 && c.sleep(ctx, c.retryDelays[attempt]) {
				continue
			}
			return Result{Success: false, StatusCode: out.StatusCode, Error: fmt.Sprintf("upstream error %d, retried %d times", out.StatusCode, maxAttempts)}
		}
	}

	return Result{Success: false, Error: "unknown error"}
}

// newRequest applies the browser fingerprint, caller headers, and the cached
// FlareSolverr user agent (which overrides everything for this attempt).
func (c *Client) newRequest(ctx context.Context, method, url string, headers map[string]string, payload []byte) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if ua := c.clearanceUserAgent(); ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	return req, nil
}

// sleep waits for the backoff delay, aborting early when the context ends.
func (c *Client) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
