package chatgpt

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// clearanceTTL bounds how long solved challenge cookies are trusted.
const clearanceTTL = 1800 * time.Second

// SolverConfig is the operator-provided FlareSolverr configuration.
type SolverConfig struct {
	Enabled bool
	URL     string
}

// SolverConfigSource supplies the current solver configuration. It is
// read-only from the client's perspective; the settings service implements it.
type SolverConfigSource interface {
	SolverConfig(ctx context.Context) (SolverConfig, error)
}

// clearance holds solved challenge cookies, the matching browser identity,
// and when they were captured. Cookies and CapturedAt are set together.
type clearance struct {
	Cookies    map[string]string
	UserAgent  string
	CapturedAt time.Time
}

type solverRequest struct {
	Cmd        string `json:"cmd"`
	URL        string `json:"url"`
	MaxTimeout int    `json:"maxTimeout"`
}

type solverResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Solution struct {
		Cookies []struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		} `json:"cookies"`
		UserAgent string `json:"userAgent"`
	} `json:"solution"`
}

// fetchClearance asks FlareSolverr to solve the challenge for the upstream
// origin. On any failure the previously cached clearance is left untouched.
func (c *Client) fetchClearance(ctx context.Context) bool {
	if c.solver == nil {
		return false
	}
	cfg, err := c.solver.SolverConfig(ctx)
	if err != nil {
		c.logger.Error("read flaresolverr config", zap.Error(err))
		return false
	}
	if !cfg.Enabled || cfg.URL == "" {
		return false
	}

	endpoint := strings.TrimRight(cfg.URL, "/") + "/v1"
	c.logger.Info("fetching cf clearance via flaresolverr", zap.String("endpoint", endpoint))

	body, err := json.Marshal(solverRequest{
		Cmd:        "request.get",
		URL:        c.cfg.OriginURL,
		MaxTimeout: 60000,
	})
	if err != nil {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	// The solver drives a real browser; give it a generous budget of its own.
	hc := &http.Client{Timeout: solverTimeout}
	resp, err := hc.Do(req)
	if err != nil {
		c.logger.Error("flaresolverr request failed", zap.Error(err))
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("flaresolverr http error", zap.Int("status", resp.StatusCode))
		return false
	}

	var out solverResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.logger.Error("decode flaresolverr response", zap.Error(err))
		return false
	}
	if out.Status != "ok" {
		c.logger.Warn("flaresolverr failed", zap.String("status", out.Status), zap.String("message", out.Message))
		return false
	}

	cookies := make(map[string]string, len(out.Solution.Cookies))
	for _, ck := range out.Solution.Cookies {
		cookies[ck.Name] = ck.Value
	}

	c.mu.Lock()
	c.clearance = &clearance{
		Cookies:    cookies,
		UserAgent:  out.Solution.UserAgent,
		CapturedAt: c.now(),
	}
	c.mu.Unlock()

	c.logger.Info("flaresolverr succeeded", zap.Int("cookies", len(cookies)))
	return true
}

// clearanceValid reports whether cached cookies exist and are younger than the TTL.
func (c *Client) clearanceValid() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clearance != nil && len(c.clearance.Cookies) > 0 &&
		c.now().Sub(c.clearance.CapturedAt) < clearanceTTL
}

// ensureClearance refreshes the cache only when it is missing or expired.
// Idempotent: a valid cache makes this a no-op.
func (c *Client) ensureClearance(ctx context.Context) {
	if !c.clearanceValid() {
		c.fetchClearance(ctx)
	}
}

// recoverChallenge drops the cached clearance, re-solves the challenge, and on
// success rebuilds the session so the fresh cookies take effect.
func (c *Client) recoverChallenge(ctx context.Context) bool {
	c.logger.Info("cloudflare challenge detected, recovering via flaresolverr")

	c.mu.Lock()
	c.clearance = nil
	c.mu.Unlock()

	if !c.fetchClearance(ctx) {
		return false
	}

	c.Close()
	c.buildSession()
	return true
}

func (c *Client) clearanceUserAgent() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.clearance == nil {
		return ""
	}
	return c.clearance.UserAgent
}
