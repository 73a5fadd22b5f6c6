package chatgpt

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendInviteBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/accounts/acc-1/invites", r.URL.Path)
		assert.Equal(t, "Bearer at", r.Header.Get("Authorization"))
		assert.Equal(t, "acc-1", r.Header.Get("chatgpt-account-id"))

		var body struct {
			EmailAddresses []string `json:"email_addresses"`
			Role           string   `json:"role"`
			ResendEmails   bool     `json:"resend_emails"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"new@user.test"}, body.EmailAddresses)
		assert.Equal(t, "standard-user", body.Role)
		assert.True(t, body.ResendEmails)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"sent"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	res := c.SendInvite(context.Background(), "at", "acc-1", "new@user.test")
	assert.True(t, res.Success)
}

func TestSendInviteStatusOverrides(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{http.StatusConflict, "user is already a member of this team"},
		{http.StatusUnprocessableEntity, "team is full or the email address is invalid"},
	}
	for _, tc := range tests {
		t.Run(strconv.Itoa(tc.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"detail":"some upstream wording that must not surface"}`))
			}))
			defer srv.Close()

			c := newTestClient(t, srv.URL, nil)
			res := c.SendInvite(context.Background(), "at", "acc-1", "x@y.test")
			require.False(t, res.Success)
			assert.Equal(t, tc.status, res.StatusCode)
			assert.Equal(t, tc.want, res.Error)
		})
	}
}

func TestMembersPagination(t *testing.T) {
	const total = 120
	var requests int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		assert.Equal(t, 50, limit)

		count := total - offset
		if count > limit {
			count = limit
		}
		items := make([]Member, 0, count)
		for i := 0; i < count; i++ {
			items = append(items, Member{
				ID:    fmt.Sprintf("user-%d", offset+i),
				Email: fmt.Sprintf("member%d@team.test", offset+i),
				Role:  "standard-user",
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"items": items, "total": total})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	res := c.Members(context.Background(), "at", "acc-1")
	require.True(t, res.Success)
	assert.Equal(t, total, res.Total)
	require.Len(t, res.Members, total)
	assert.EqualValues(t, 3, atomic.LoadInt64(&requests), "offsets 0, 50, 100 and nothing more")

	seen := make(map[string]bool, total)
	for _, m := range res.Members {
		assert.False(t, seen[m.ID], "duplicate member %s", m.ID)
		seen[m.ID] = true
	}
}

func TestMembersPaginationStalled(t *testing.T) {
	var requests int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		// The server claims ten members but never serves any.
		_, _ = w.Write([]byte(`{"items":[],"total":10}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	res := c.Members(context.Background(), "at", "acc-1")
	require.False(t, res.Success)
	assert.Equal(t, ErrCodePaginationStalled, res.ErrorCode)
	assert.EqualValues(t, 1, atomic.LoadInt64(&requests), "a zero-progress page aborts immediately")
}

func TestMembersUpstreamFailurePropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"token expired","error":{"code":"token_expired"}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	res := c.Members(context.Background(), "at", "acc-1")
	require.False(t, res.Success)
	assert.Equal(t, "token expired", res.Error)
	assert.Equal(t, "token_expired", res.ErrorCode)
}

func TestInvites(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/accounts/acc-1/invites", r.URL.Path)
		_, _ = w.Write([]byte(`{"items":[{"id":"inv-1","email_address":"p@q.test","role":"standard-user"}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	res := c.Invites(context.Background(), "at", "acc-1")
	require.True(t, res.Success)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "p@q.test", res.Items[0].EmailAddress)
	assert.Equal(t, 1, res.Total, "missing total falls back to item count")
}

func TestRevokeInvite(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		var body struct {
			EmailAddress string `json:"email_address"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gone@team.test", body.EmailAddress)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	res := c.RevokeInvite(context.Background(), "at", "acc-1", "gone@team.test")
	assert.True(t, res.Success)
}

func TestRemoveMemberStatusOverrides(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{http.StatusForbidden, "no permission to remove this member (possibly the owner)"},
		{http.StatusNotFound, "user not found"},
	}
	for _, tc := range tests {
		t.Run(strconv.Itoa(tc.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/accounts/acc-1/users/user-9", r.URL.Path)
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"detail":"raw"}`))
			}))
			defer srv.Close()

			c := newTestClient(t, srv.URL, nil)
			res := c.RemoveMember(context.Background(), "at", "acc-1", "user-9")
			require.False(t, res.Success)
			assert.Equal(t, tc.want, res.Error)
		})
	}
}

func TestAccountInfoFiltersTeamPlans(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts/check/v4-2023-04-27", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"accounts": {
				"acc-personal": {
					"account": {"name": "", "plan_type": "plus"},
					"entitlement": {"subscription_plan": "chatgptplusplan", "has_active_subscription": true}
				},
				"acc-team": {
					"account": {"name": "Acme", "plan_type": "team"},
					"entitlement": {
						"subscription_plan": "chatgptteamplan",
						"expires_at": "2026-10-01T00:00:00Z",
						"has_active_subscription": true
					}
				}
			}
		}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	res := c.AccountInfo(context.Background(), "at")
	require.True(t, res.Success)
	require.Len(t, res.Accounts, 1)
	acc := res.Accounts[0]
	assert.Equal(t, "acc-team", acc.AccountID)
	assert.Equal(t, "Acme", acc.Name)
	assert.Equal(t, "team", acc.PlanType)
	assert.Equal(t, "chatgptteamplan", acc.SubscriptionPlan)
	assert.Equal(t, "2026-10-01T00:00:00Z", acc.ExpiresAt)
	assert.True(t, acc.HasActiveSubscription)
}

func TestRefreshWithSessionToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/session" {
			http.NotFound(w, r)
			return
		}
		if ck, err := r.Cookie("__Secure-next-auth.session-token"); assert.NoError(t, err) {
			assert.Equal(t, "sess-tok", ck.Value)
		}
		_, _ = w.Write([]byte(`{"accessToken":"fresh-at"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	res := c.RefreshWithSessionToken(context.Background(), "sess-tok")
	require.True(t, res.Success)
	assert.Equal(t, "fresh-at", res.AccessToken)
}

func TestRefreshWithSessionTokenMissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	res := c.RefreshWithSessionToken(context.Background(), "sess-tok")
	require.False(t, res.Success)
	assert.Contains(t, res.Error, "accessToken")
}

func TestRefreshWithRefreshToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth/token" {
			http.NotFound(w, r)
			return
		}
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "refresh_token", body["grant_type"])
		assert.Equal(t, "client-1", body["client_id"])
		assert.Equal(t, "rt-old", body["refresh_token"])
		_, _ = w.Write([]byte(`{"access_token":"at-new","refresh_token":"rt-new"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	res := c.RefreshWithRefreshToken(context.Background(), "rt-old", "client-1")
	require.True(t, res.Success)
	assert.Equal(t, "at-new", res.AccessToken)
	assert.Equal(t, "rt-new", res.RefreshToken)
}

func TestRefreshWithRefreshTokenOAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"refresh token revoked"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	res := c.RefreshWithRefreshToken(context.Background(), "rt-old", "client-1")
	require.False(t, res.Success)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "invalid_grant", res.ErrorCode)
	assert.Equal(t, "refresh token revoked", res.Error)
}
