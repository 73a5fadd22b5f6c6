package chatgpt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

const (
	memberPageSize = 50
	// maxMemberPages bounds the pagination loop against an upstream that
	// under-reports total or serves empty pages: 50 pages covers 2500 seats.
	maxMemberPages = 50

	inviteRole = "standard-user"
)

func (c *Client) authHeaders(accessToken, accountID string) map[string]string {
	h := map[string]string{
		"Authorization": "Bearer " + accessToken,
	}
	if accountID != "" {
		h["chatgpt-account-id"] = accountID
	}
	return h
}

// SendInvite invites an email address onto the team as a standard user.
func (c *Client) SendInvite(ctx context.Context, accessToken, accountID, email string) Result {
	url := fmt.Sprintf("%s/accounts/%s/invites", c.cfg.BaseURL, accountID)
	headers := c.authHeaders(accessToken, accountID)
	headers["Content-Type"] = "application/json"

	body := map[string]any{
		"email_addresses": []string{email},
		"role":            inviteRole,
		"resend_emails":   true,
	}

	c.logger.Info("sending team invite", zap.String("email", email), zap.String("account_id", accountID))
	res := c.do(ctx, http.MethodPost, url, headers, body)

	switch res.StatusCode {
	case http.StatusConflict:
		res.Error = "user is already a member of this team"
	case http.StatusUnprocessableEntity:
		res.Error = "team is full or the email address is invalid"
	}
	return res
}

// Members lists every seat on the team, following limit/offset pagination
// until the server-reported total is reached.
func (c *Client) Members(ctx context.Context, accessToken, accountID string) MembersResult {
	var all []Member

	for page := 0; ; page++ {
		if page >= maxMemberPages {
			return MembersResult{
				Success:   false,
				Error:     fmt.Sprintf("member listing exceeded %d pages without reaching the reported total", maxMemberPages),
				ErrorCode: ErrCodePaginationStalled,
			}
		}

		offset := page * memberPageSize
		url := fmt.Sprintf("%s/accounts/%s/users?limit=%d&offset=%d", c.cfg.BaseURL, accountID, memberPageSize, offset)

		c.logger.Info("listing team members", zap.String("account_id", accountID), zap.Int("offset", offset))
		res := c.do(ctx, http.MethodGet, url, c.authHeaders(accessToken, ""), nil)
		if !res.Success {
			return MembersResult{Success: false, Error: res.Error, ErrorCode: res.ErrorCode}
		}

		var parsed struct {
			Items []Member `json:"items"`
			Total int      `json:"total"`
		}
		if err := json.Unmarshal(res.Data, &parsed); err != nil {
			return MembersResult{Success: false, Error: fmt.Sprintf("decode member page: %v", err), ErrorCode: ErrCodeInvalidResponse}
		}

		// A page that adds nothing can never reach the total; report instead
		// of spinning.
		if len(parsed.Items) == 0 && len(all) < parsed.Total {
			return MembersResult{
				Success:   false,
				Error:     fmt.Sprintf("member listing stalled at %d of %d reported members", len(all), parsed.Total),
				ErrorCode: ErrCodePaginationStalled,
			}
		}

		all = append(all, parsed.Items...)
		if len(all) >= parsed.Total {
			break
		}
	}

	c.logger.Info("listed team members", zap.String("account_id", accountID), zap.Int("count", len(all)))
	return MembersResult{Success: true, Members: all, Total: len(all)}
}

// Invites lists pending invitations. Single request, no pagination.
func (c *Client) Invites(ctx context.Context, accessToken, accountID string) InvitesResult {
	url := fmt.Sprintf("%s/accounts/%s/invites", c.cfg.BaseURL, accountID)

	c.logger.Info("listing team invites", zap.String("account_id", accountID))
	res := c.do(ctx, http.MethodGet, url, c.authHeaders(accessToken, accountID), nil)
	if !res.Success {
		return InvitesResult{Success: false, Error: res.Error, ErrorCode: res.ErrorCode}
	}

	var parsed struct {
		Items []Invite `json:"items"`
		Total int      `json:"total"`
	}
	if err := json.Unmarshal(res.Data, &parsed); err != nil {
		return InvitesResult{Success: false, Error: fmt.Sprintf("decode invite list: %v", err), ErrorCode: ErrCodeInvalidResponse}
	}
	total := parsed.Total
	if total == 0 {
		total = len(parsed.Items)
	}
	return InvitesResult{Success: true, Items: parsed.Items, Total: total}
}

// RevokeInvite withdraws a pending invitation keyed by email address.
func (c *Client) RevokeInvite(ctx context.Context, accessToken, accountID, email string) Result {
	url := fmt.Sprintf("%s/accounts/%s/invites", c.cfg.BaseURL, accountID)
	headers := c.authHeaders(accessToken, accountID)
	headers["Content-Type"] = "application/json"

	c.logger.Info("revoking team invite", zap.String("email", email), zap.String("account_id", accountID))
	return c.do(ctx, http.MethodDelete, url, headers, map[string]any{"email_address": email})
}

// RemoveMember removes an accepted member keyed by upstream user id.
func (c *Client) RemoveMember(ctx context.Context, accessToken, accountID, userID string) Result {
	url := fmt.Sprintf("%s/accounts/%s/users/%s", c.cfg.BaseURL, accountID, userID)

	c.logger.Info("removing team member", zap.String("user_id", userID), zap.String("account_id", accountID))
	res := c.do(ctx, http.MethodDelete, url, c.authHeaders(accessToken, accountID), nil)

	switch res.StatusCode {
	case http.StatusForbidden:
		res.Error = "no permission to remove this member (possibly the owner)"
	case http.StatusNotFound:
		res.Error = "user not found"
	}
	return res
}

// AccountInfo resolves the accounts visible to a credential and keeps only
// the team-tier ones, projected down to the fields the service layer needs.
func (c *Client) AccountInfo(ctx context.Context, accessToken string) AccountsResult {
	url := c.cfg.BaseURL + "/accounts/check/v4-2023-04-27"

	c.logger.Info("fetching account and subscription info")
	res := c.do(ctx, http.MethodGet, url, c.authHeaders(accessToken, ""), nil)
	if !res.Success {
		return AccountsResult{Success: false, Error: res.Error, ErrorCode: res.ErrorCode}
	}

	var parsed struct {
		Accounts map[string]struct {
			Account struct {
				Name     string `json:"name"`
				PlanType string `json:"plan_type"`
			} `json:"account"`
			Entitlement struct {
				SubscriptionPlan      string `json:"subscription_plan"`
				ExpiresAt             string `json:"expires_at"`
				HasActiveSubscription bool   `json:"has_active_subscription"`
			} `json:"entitlement"`
		} `json:"accounts"`
	}
	if err := json.Unmarshal(res.Data, &parsed); err != nil {
		return AccountsResult{Success: false, Error: fmt.Sprintf("decode account info: %v", err), ErrorCode: ErrCodeInvalidResponse}
	}

	teams := make([]TeamAccount, 0, len(parsed.Accounts))
	for accountID, entry := range parsed.Accounts {
		if entry.Account.PlanType != "team" {
			continue
		}
		teams = append(teams, TeamAccount{
			AccountID:             accountID,
			Name:                  entry.Account.Name,
			PlanType:              entry.Account.PlanType,
			SubscriptionPlan:      entry.Entitlement.SubscriptionPlan,
			ExpiresAt:             entry.Entitlement.ExpiresAt,
			HasActiveSubscription: entry.Entitlement.HasActiveSubscription,
		})
	}

	c.logger.Info("fetched account info", zap.Int("team_accounts", len(teams)))
	return AccountsResult{Success: true, Accounts: teams}
}

// RefreshWithSessionToken exchanges a cookie-borne session token for a fresh
// access token. Single attempt: the session endpoint uses its own cookie and
// identity contract, so it bypasses the retry executor.
func (c *Client) RefreshWithSessionToken(ctx context.Context, sessionToken string) TokenResult {
	sess := c.getOrCreateSession(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.SessionURL, nil)
	if err != nil {
		return TokenResult{Success: false, Error: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7")
	ua := c.clearanceUserAgent()
	if ua == "" {
		ua = defaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	req.AddCookie(&http.Cookie{Name: "__Secure-next-auth.session-token", Value: sessionToken})

	c.logger.Info("refreshing access token via session token")
	resp, err := sess.Do(req)
	if err != nil {
		c.logger.Error("session token refresh failed", zap.Error(err))
		return TokenResult{Success: false, Error: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return TokenResult{Success: false, StatusCode: resp.StatusCode, Error: fmt.Sprintf("read response: %v", err)}
	}

	if resp.StatusCode == http.StatusOK {
		var parsed struct {
			AccessToken string `json:"accessToken"`
		}
		if err := json.Unmarshal(raw, &parsed); err != nil || parsed.AccessToken == "" {
			return TokenResult{Success: false, StatusCode: resp.StatusCode, Error: "response did not contain an accessToken"}
		}
		return TokenResult{Success: true, AccessToken: parsed.AccessToken}
	}

	out := classifyClientError(resp.StatusCode, raw)
	c.logger.Warn("session token refresh rejected",
		zap.Int("status", resp.StatusCode), zap.String("error", out.Message), zap.String("code", out.ErrorCode))
	return TokenResult{Success: false, StatusCode: resp.StatusCode, Error: out.Message, ErrorCode: out.ErrorCode}
}

// RefreshWithRefreshToken runs the OAuth refresh-token grant. Single attempt
// with OAuth-style error parsing.
func (c *Client) RefreshWithRefreshToken(ctx context.Context, refreshToken, clientID string) TokenResult {
	sess := c.getOrCreateSession(ctx)

	body, err := json.Marshal(map[string]string{
		"client_id":     clientID,
		"grant_type":    "refresh_token",
		"redirect_uri":  "com.openai.sora://auth.openai.com/android/com.openai.sora/callback",
		"refresh_token": refreshToken,
	})
	if err != nil {
		return TokenResult{Success: false, Error: fmt.Sprintf("encode request body: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, bytes.NewReader(body))
	if err != nil {
		return TokenResult{Success: false, Error: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", defaultUserAgent)

	c.logger.Info("refreshing access token via refresh token")
	resp, err := sess.Do(req)
	if err != nil {
		c.logger.Error("refresh token grant failed", zap.Error(err))
		return TokenResult{Success: false, Error: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return TokenResult{Success: false, StatusCode: resp.StatusCode, Error: fmt.Sprintf("read response: %v", err)}
	}

	if resp.StatusCode == http.StatusOK {
		var parsed struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
		}
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return TokenResult{Success: false, StatusCode: resp.StatusCode, Error: fmt.Sprintf("decode token response: %v", err)}
		}
		return TokenResult{Success: true, AccessToken: parsed.AccessToken, RefreshToken: parsed.RefreshToken}
	}

	errMsg, _ := simplifyErrorText(string(raw))
	errCode := ""
	var oauthErr struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if json.Unmarshal(raw, &oauthErr) == nil {
		errCode = oauthErr.Error
		if oauthErr.ErrorDescription != "" {
			errMsg = oauthErr.ErrorDescription
		}
	}

	c.logger.Warn("refresh token grant rejected",
		zap.Int("status", resp.StatusCode), zap.String("error", errMsg), zap.String("code", errCode))
	return TokenResult{Success: false, StatusCode: resp.StatusCode, Error: errMsg, ErrorCode: errCode}
}
