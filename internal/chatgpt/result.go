package chatgpt

import "encoding/json"

// Result is the uniform envelope every upstream call resolves to. Failures
// never surface as Go errors; callers branch on Success and map Error /
// ErrorCode to user-facing responses.
type Result struct {
	Success    bool            `json:"success"`
	StatusCode int             `json:"status_code,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	Error      string          `json:"error,omitempty"`
	ErrorCode  string          `json:"error_code,omitempty"`
}

// Member is one occupied seat on the upstream team.
type Member struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Invite is one pending (not yet accepted) team invitation.
type Invite struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
	Role         string `json:"role"`
}

// TeamAccount is the projected subset of an upstream account entry whose plan
// is the team tier.
type TeamAccount struct {
	AccountID             string `json:"account_id"`
	Name                  string `json:"name"`
	PlanType              string `json:"plan_type"`
	SubscriptionPlan      string `json:"subscription_plan"`
	ExpiresAt             string `json:"expires_at"`
	HasActiveSubscription bool   `json:"has_active_subscription"`
}

// MembersResult aggregates every pagination page of the member listing.
type MembersResult struct {
	Success   bool     `json:"success"`
	Members   []Member `json:"members"`
	Total     int      `json:"total"`
	Error     string   `json:"error,omitempty"`
	ErrorCode string   `json:"error_code,omitempty"`
}

// InvitesResult holds the pending invite listing.
type InvitesResult struct {
	Success   bool     `json:"success"`
	Items     []Invite `json:"items"`
	Total     int      `json:"total"`
	Error     string   `json:"error,omitempty"`
	ErrorCode string   `json:"error_code,omitempty"`
}

// AccountsResult holds the team-tier accounts visible to a credential.
type AccountsResult struct {
	Success   bool          `json:"success"`
	Accounts  []TeamAccount `json:"accounts"`
	Error     string        `json:"error,omitempty"`
	ErrorCode string        `json:"error_code,omitempty"`
}

// TokenResult is the outcome of either credential-refresh flow.
type TokenResult struct {
	Success      bool   `json:"success"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	StatusCode   int    `json:"status_code,omitempty"`
	Error        string `json:"error,omitempty"`
	ErrorCode    string `json:"error_code,omitempty"`
}
