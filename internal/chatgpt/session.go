package chatgpt

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"go.uber.org/zap"
)

// getOrCreateSession returns the live session, building one (after ensuring
// challenge clearance) when none exists. Existing sessions are returned
// without any network call.
func (c *Client) getOrCreateSession(ctx context.Context) *http.Client {
	c.mu.Lock()
	if c.session != nil {
		sess := c.session
		c.mu.Unlock()
		return sess
	}
	c.mu.Unlock()

	c.ensureClearance(ctx)
	return c.buildSession()
}

func (c *Client) currentSession() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// buildSession creates the cookie-bearing session and seeds the jar with any
// cached clearance cookies, scoped to the upstream origin.
func (c *Client) buildSession() *http.Client {
	jar, _ := cookiejar.New(nil)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.clearance != nil && len(c.clearance.Cookies) > 0 {
		if origin, err := url.Parse(c.cfg.OriginURL); err == nil {
			cookies := make([]*http.Cookie, 0, len(c.clearance.Cookies))
			for name, value := range c.clearance.Cookies {
				cookies = append(cookies, &http.Cookie{Name: name, Value: value, Path: "/"})
			}
			jar.SetCookies(origin, cookies)
			c.logger.Info("applied cf clearance cookies to session", zap.Int("cookies", len(cookies)))
		}
	}

	c.session = &http.Client{
		Jar:     jar,
		Timeout: requestTimeout,
	}
	c.logger.Info("created upstream http session")
	return c.session
}

// Close releases the session's idle connections. The state is left
// sessionless on every path.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		c.session.CloseIdleConnections()
		c.session = nil
		c.logger.Info("upstream http session closed")
	}
}

// ClearSession drops both the cached clearance and the session. Used when the
// operator reconfigures FlareSolverr so the next call rebuilds clean.
func (c *Client) ClearSession() {
	c.mu.Lock()
	c.clearance = nil
	c.mu.Unlock()
	c.Close()
}
