package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"gptteam/seathub/internal/service"
	"gptteam/seathub/pkg/response"
)

// handleServiceError maps service-layer failures onto the API envelope.
// Upstream failures surface as 502 with the classified message so the
// operator sees what the ChatGPT backend actually said.
func handleServiceError(c *gin.Context, err error) {
	var upstream *service.UpstreamError
	if errors.As(err, &upstream) {
		response.BadGateway(c, upstream.Message)
		return
	}

	switch {
	case errors.Is(err, service.ErrTeamNotFound),
		errors.Is(err, service.ErrCodeNotFound),
		errors.Is(err, service.ErrRecordNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrTeamExists),
		errors.Is(err, service.ErrCodeUsed),
		errors.Is(err, service.ErrRecordWithdrawn):
		response.Conflict(c, err.Error())
	case errors.Is(err, service.ErrTeamFull),
		errors.Is(err, service.ErrNoTeamAvailable),
		errors.Is(err, service.ErrCodeDisabled):
		response.UnprocessableEntity(c, err.Error())
	case errors.Is(err, service.ErrInvalidSolverURL),
		errors.Is(err, service.ErrInvalidLogLevel):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, "internal error")
	}
}
