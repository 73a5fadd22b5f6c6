package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrRefreshTokenInvalid = errors.New("refresh token invalid or revoked")
	ErrTeamNotFound        = errors.New("team not found")
	ErrTeamExists          = errors.New("team already imported")
	ErrTeamFull            = errors.New("team has no free seats")
	ErrCodeNotFound        = errors.New("redemption code not found")
	ErrCodeUsed            = errors.New("redemption code already used")
	ErrCodeDisabled        = errors.New("redemption code disabled")
	ErrRecordNotFound      = errors.New("redemption record not found")
	ErrRecordWithdrawn     = errors.New("membership already withdrawn")
	ErrNoTeamAvailable     = errors.New("no team with a free seat available")
	ErrInvalidSolverURL    = errors.New("solver url must be http or https")
	ErrInvalidLogLevel     = errors.New("unknown log level")
)

// UpstreamError carries the classified failure from a ChatGPT backend call.
type UpstreamError struct {
	Message    string
	Code       string
	StatusCode int
}

func (e *UpstreamError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("upstream: %s (%s)", e.Message, e.Code)
	}
	return fmt.Sprintf("upstream: %s", e.Message)
}
