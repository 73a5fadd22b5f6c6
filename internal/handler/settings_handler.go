package handler

import (
	"github.com/gin-gonic/gin"

	"gptteam/seathub/internal/service"
	"gptteam/seathub/pkg/response"
)

type SettingsHandler struct {
	settingsService service.SettingsService
}

func NewSettingsHandler(settingsService service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

type SolverConfigRequest struct {
	Enabled bool   `json:"enabled"`
	URL     string `json:"url"`
}

type LogLevelRequest struct {
	Level string `json:"level" binding:"required"`
}

func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.settingsService.Get(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, settings)
}

func (h *SettingsHandler) UpdateSolver(c *gin.Context) {
	var req SolverConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	settings, err := h.settingsService.UpdateSolver(c.Request.Context(), req.Enabled, req.URL)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, settings)
}

func (h *SettingsHandler) UpdateLogLevel(c *gin.Context) {
	var req LogLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	settings, err := h.settingsService.UpdateLogLevel(c.Request.Context(), req.Level)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, settings)
}
