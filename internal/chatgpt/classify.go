package chatgpt

import (
	"encoding/json"
	"strings"
)

// Error codes carried in Result.ErrorCode.
const (
	ErrCodeChallenge         = "cloudflare_challenge"
	ErrCodeHTMLResponse      = "html_response"
	ErrCodeInvalidResponse   = "invalid_response"
	ErrCodePaginationStalled = "pagination_stalled"
)

const maxErrorTextLen = 2000

// OutcomeKind tags exactly one classification of an upstream response.
type OutcomeKind int

const (
	// OutcomeSuccess carries a decoded JSON payload.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeChallenge marks an anti-bot interstitial, regardless of status code.
	OutcomeChallenge
	// OutcomeClientError is a permanent 4xx-style failure (never retried).
	OutcomeClientError
	// OutcomeServerError is a transient failure eligible for backoff retry.
	OutcomeServerError
)

// Outcome is the structured classification of one raw HTTP response.
// Timeouts and transport errors never reach Classify; the executor handles
// them before a status code exists.
type Outcome struct {
	Kind       OutcomeKind
	StatusCode int
	Payload    json.RawMessage
	Message    string
	ErrorCode  string
}

// Classify inspects status code and body and produces exactly one Outcome.
// Pure function, no side effects.
func Classify(statusCode int, body []byte) Outcome {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return classifySuccess(statusCode, body)
	case statusCode >= 400 && statusCode < 500:
		return classifyClientError(statusCode, body)
	default:
		// 5xx, and anything else that slipped past redirect handling, is
		// treated as transient unless the body is a challenge page.
		return classifyServerError(statusCode, body)
	}
}

func classifySuccess(statusCode int, body []byte) Outcome {
	var probe any
	if json.Unmarshal(body, &probe) == nil {
		return Outcome{Kind: OutcomeSuccess, StatusCode: statusCode, Payload: json.RawMessage(body)}
	}

	// A 2xx that does not decode is usually a challenge or redirect page
	// masquerading as success.
	msg, code := simplifyErrorText(string(body))
	if code == ErrCodeChallenge {
		return Outcome{Kind: OutcomeChallenge, StatusCode: statusCode, Message: msg, ErrorCode: code}
	}
	if code == "" {
		code = ErrCodeInvalidResponse
	}
	return Outcome{Kind: OutcomeClientError, StatusCode: statusCode, Message: msg, ErrorCode: code}
}

func classifyClientError(statusCode int, body []byte) Outcome {
	msg := string(body)
	code := ""

	var payload map[string]any
	if json.Unmarshal(body, &payload) == nil {
		if detail, ok := payload["detail"].(string); ok && detail != "" {
			msg = detail
		}
		// The error code sits either at the top level or nested under "error".
		if nested, ok := payload["error"].(map[string]any); ok {
			code, _ = nested["code"].(string)
		} else {
			code, _ = payload["code"].(string)
		}
	}

	// The "error body" may itself be a challenge page served with a 403.
	simplified, simplifiedCode := simplifyErrorText(msg)
	if simplifiedCode == ErrCodeChallenge {
		return Outcome{Kind: OutcomeChallenge, StatusCode: statusCode, Message: simplified, ErrorCode: ErrCodeChallenge}
	}
	if code == "" {
		code = simplifiedCode
	}
	return Outcome{Kind: OutcomeClientError, StatusCode: statusCode, Message: simplified, ErrorCode: code}
}

func classifyServerError(statusCode int, body []byte) Outcome {
	text := string(body)
	if looksLikeHTML(text) && isChallengePage(text) {
		msg, _ := simplifyErrorText(text)
		return Outcome{Kind: OutcomeChallenge, StatusCode: statusCode, Message: msg, ErrorCode: ErrCodeChallenge}
	}
	msg, code := simplifyErrorText(text)
	return Outcome{Kind: OutcomeServerError, StatusCode: statusCode, Message: msg, ErrorCode: code}
}

func looksLikeHTML(text string) bool {
	if text == "" {
		return false
	}
	stripped := strings.ToLower(strings.TrimLeft(text, " \t\r\n"))
	if strings.HasPrefix(stripped, "<!doctype html") || strings.HasPrefix(stripped, "<html") {
		return true
	}
	head := stripped
	if len(head) > 200 {
		head = head[:200]
	}
	return strings.Contains(head, "<html")
}

func isChallengePage(text string) bool {
	if text == "" {
		return false
	}
	lowered := strings.ToLower(text)
	return strings.Contains(lowered, "cdn-cgi/challenge-platform") ||
		strings.Contains(lowered, "_cf_chl_opt") ||
		strings.Contains(lowered, "cf-chl") ||
		strings.Contains(lowered, "enable javascript and cookies to continue")
}

// simplifyErrorText collapses HTML pages and oversized bodies into short
// operator-readable messages so raw markup never reaches an end user.
func simplifyErrorText(text string) (message, code string) {
	if strings.TrimSpace(text) == "" {
		return "request failed", ""
	}
	if looksLikeHTML(text) && isChallengePage(text) {
		return "request blocked by a Cloudflare challenge (browser verification required); configure FlareSolverr in settings and retry", ErrCodeChallenge
	}
	if looksLikeHTML(text) {
		return "upstream returned an HTML page (possibly intercepted or redirected), try again later", ErrCodeHTMLResponse
	}
	trimmed := strings.TrimSpace(text)
	if len(trimmed) > maxErrorTextLen {
		trimmed = trimmed[:maxErrorTextLen] + "...(truncated)"
	}
	return trimmed, ""
}
