package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gptteam/seathub/internal/model"
	"gptteam/seathub/internal/repository"
	"gptteam/seathub/internal/service"
	"gptteam/seathub/pkg/response"
)

type CodeHandler struct {
	codeService service.CodeService
}

func NewCodeHandler(codeService service.CodeService) *CodeHandler {
	return &CodeHandler{codeService: codeService}
}

type GenerateCodesRequest struct {
	Count        int    `json:"count"`
	DurationDays int    `json:"duration_days"`
	TeamID       string `json:"team_id"`
}

type BulkDeleteRequest struct {
	Codes []string `json:"codes" binding:"required"`
}

type RedeemRequest struct {
	Code  string `json:"code" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

func (h *CodeHandler) Generate(c *gin.Context) {
	var req GenerateCodesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	input := service.GenerateCodesInput{
		Count:        req.Count,
		DurationDays: req.DurationDays,
	}
	if req.TeamID != "" {
		teamID, err := uuid.Parse(req.TeamID)
		if err != nil {
			response.BadRequest(c, "invalid team id")
			return
		}
		input.TeamID = &teamID
	}

	codes, err := h.codeService.GenerateCodes(c.Request.Context(), input)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"codes": codes})
}

func (h *CodeHandler) List(c *gin.Context) {
	filter := repository.CodeFilter{
		Status:  model.CodeStatus(c.Query("status")),
		BatchID: c.Query("batch_id"),
	}
	if raw := c.Query("team_id"); raw != "" {
		teamID, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "invalid team id")
			return
		}
		filter.TeamID = &teamID
	}

	codes, err := h.codeService.ListCodes(c.Request.Context(), filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"codes": codes})
}

func (h *CodeHandler) Delete(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		response.BadRequest(c, "missing code")
		return
	}

	if err := h.codeService.DeleteCode(c.Request.Context(), code); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *CodeHandler) BulkDelete(c *gin.Context) {
	var req BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	result, err := h.codeService.BulkDeleteCodes(c.Request.Context(), req.Codes)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, result)
}

// Redeem is the public endpoint: a buyer exchanges a code for a team invite.
func (h *CodeHandler) Redeem(c *gin.Context) {
	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	result, err := h.codeService.Redeem(c.Request.Context(), req.Code, req.Email)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *CodeHandler) ListRecords(c *gin.Context) {
	records, err := h.codeService.ListRecords(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"records": records})
}

func (h *CodeHandler) Withdraw(c *gin.Context) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid record id")
		return
	}

	if err := h.codeService.Withdraw(c.Request.Context(), recordID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, nil)
}
