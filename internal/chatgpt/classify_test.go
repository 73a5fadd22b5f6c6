package chatgpt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const challengePage = `<!DOCTYPE html><html lang="en"><head>
<script src="/cdn-cgi/challenge-platform/h/b/orchestrate/chl_page/v1"></script>
<script>window._cf_chl_opt={cvId: "3"};</script>
</head><body>Enable JavaScript and cookies to continue</body></html>`

const plainHTMLPage = `<!DOCTYPE html><html><head><title>Sign in</title></head><body>redirected</body></html>`

func TestClassifyChallengeRegardlessOfStatus(t *testing.T) {
	for _, status := range []int{200, 403, 503} {
		out := Classify(status, []byte(challengePage))
		assert.Equal(t, OutcomeChallenge, out.Kind, "status %d", status)
		assert.Equal(t, ErrCodeChallenge, out.ErrorCode, "status %d", status)
		assert.Equal(t, status, out.StatusCode)
		assert.NotContains(t, out.Message, "<html", "raw markup must never leak")
	}
}

func TestClassifySuccessPayload(t *testing.T) {
	out := Classify(200, []byte(`{"items":[],"total":0}`))
	require.Equal(t, OutcomeSuccess, out.Kind)
	assert.JSONEq(t, `{"items":[],"total":0}`, string(out.Payload))
}

func TestClassifySuccessWithHTMLBody(t *testing.T) {
	out := Classify(200, []byte(plainHTMLPage))
	require.Equal(t, OutcomeClientError, out.Kind)
	assert.Equal(t, ErrCodeHTMLResponse, out.ErrorCode)
	assert.NotContains(t, out.Message, "<html")
}

func TestClassifySuccessWithGarbageBody(t *testing.T) {
	out := Classify(200, []byte("not json at all"))
	require.Equal(t, OutcomeClientError, out.Kind)
	assert.Equal(t, ErrCodeInvalidResponse, out.ErrorCode)
	assert.Equal(t, "not json at all", out.Message)
}

func TestClassifyClientErrorDetailAndTopLevelCode(t *testing.T) {
	out := Classify(422, []byte(`{"detail":"team is at capacity","code":"team_full"}`))
	require.Equal(t, OutcomeClientError, out.Kind)
	assert.Equal(t, "team is at capacity", out.Message)
	assert.Equal(t, "team_full", out.ErrorCode)
}

func TestClassifyClientErrorNestedCode(t *testing.T) {
	out := Classify(401, []byte(`{"detail":"expired","error":{"code":"token_expired"}}`))
	require.Equal(t, OutcomeClientError, out.Kind)
	assert.Equal(t, "token_expired", out.ErrorCode)
}

func TestClassifyClientErrorNonJSONBody(t *testing.T) {
	out := Classify(400, []byte("bad request"))
	require.Equal(t, OutcomeClientError, out.Kind)
	assert.Equal(t, "bad request", out.Message)
	assert.Empty(t, out.ErrorCode)
}

func TestClassifyServerError(t *testing.T) {
	out := Classify(502, []byte("bad gateway"))
	require.Equal(t, OutcomeServerError, out.Kind)
	assert.Equal(t, 502, out.StatusCode)
	assert.Equal(t, "bad gateway", out.Message)
}

func TestSimplifyErrorTextTruncation(t *testing.T) {
	long := strings.Repeat("x", 3000)
	msg, code := simplifyErrorText(long)
	assert.Empty(t, code)
	assert.Len(t, msg, maxErrorTextLen+len("...(truncated)"))
	assert.True(t, strings.HasSuffix(msg, "...(truncated)"))
}

func TestSimplifyErrorTextEmpty(t *testing.T) {
	msg, code := simplifyErrorText("   ")
	assert.Equal(t, "request failed", msg)
	assert.Empty(t, code)
}

func TestLooksLikeHTML(t *testing.T) {
	assert.True(t, looksLikeHTML("  <!DOCTYPE HTML><html>"))
	assert.True(t, looksLikeHTML("<HTML><body>"))
	assert.True(t, looksLikeHTML(`some prefix <html lang="en">`))
	assert.False(t, looksLikeHTML(strings.Repeat("a", 250)+"<html>"))
	assert.False(t, looksLikeHTML(""))
	assert.False(t, looksLikeHTML("plain text"))
}
