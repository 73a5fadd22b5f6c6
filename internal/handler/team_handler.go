package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gptteam/seathub/internal/service"
	"gptteam/seathub/pkg/response"
)

type TeamHandler struct {
	teamService service.TeamService
}

func NewTeamHandler(teamService service.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

type ImportTeamRequest struct {
	Name          string `json:"name"`
	AccessToken   string `json:"access_token" binding:"required"`
	RefreshToken  string `json:"refresh_token"`
	SessionToken  string `json:"session_token"`
	OAuthClientID string `json:"oauth_client_id"`
	AccountID     string `json:"account_id"`
	SeatsTotal    int    `json:"seats_total"`
}

type UpdateTeamRequest struct {
	Name         *string `json:"name"`
	AccessToken  *string `json:"access_token"`
	RefreshToken *string `json:"refresh_token"`
	SessionToken *string `json:"session_token"`
	SeatsTotal   *int    `json:"seats_total"`
	Enabled      *bool   `json:"enabled"`
}

type MemberEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *TeamHandler) Import(c *gin.Context) {
	var req ImportTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	team, err := h.teamService.ImportTeam(c.Request.Context(), service.ImportTeamInput{
		Name:          req.Name,
		AccessToken:   req.AccessToken,
		RefreshToken:  req.RefreshToken,
		SessionToken:  req.SessionToken,
		OAuthClientID: req.OAuthClientID,
		AccountID:     req.AccountID,
		SeatsTotal:    req.SeatsTotal,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, team)
}

func (h *TeamHandler) List(c *gin.Context) {
	teams, err := h.teamService.ListTeams(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"teams": teams})
}

func (h *TeamHandler) Get(c *gin.Context) {
	id, ok := parseTeamID(c)
	if !ok {
		return
	}

	team, err := h.teamService.GetTeam(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, team)
}

func (h *TeamHandler) Update(c *gin.Context) {
	id, ok := parseTeamID(c)
	if !ok {
		return
	}

	var req UpdateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	team, err := h.teamService.UpdateTeam(c.Request.Context(), id, service.TeamUpdateInput{
		Name:         req.Name,
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		SessionToken: req.SessionToken,
		SeatsTotal:   req.SeatsTotal,
		Enabled:      req.Enabled,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, team)
}

func (h *TeamHandler) Delete(c *gin.Context) {
	id, ok := parseTeamID(c)
	if !ok {
		return
	}

	if err := h.teamService.DeleteTeam(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *TeamHandler) RefreshCredentials(c *gin.Context) {
	id, ok := parseTeamID(c)
	if !ok {
		return
	}

	team, err := h.teamService.RefreshCredentials(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, team)
}

func (h *TeamHandler) ListMembers(c *gin.Context) {
	id, ok := parseTeamID(c)
	if !ok {
		return
	}

	members, err := h.teamService.ListMembers(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"members": members})
}

func (h *TeamHandler) ListInvites(c *gin.Context) {
	id, ok := parseTeamID(c)
	if !ok {
		return
	}

	invites, err := h.teamService.ListInvites(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"invites": invites})
}

func (h *TeamHandler) AddMember(c *gin.Context) {
	id, ok := parseTeamID(c)
	if !ok {
		return
	}

	var req MemberEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if err := h.teamService.AddMember(c.Request.Context(), id, req.Email); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *TeamHandler) RemoveMember(c *gin.Context) {
	id, ok := parseTeamID(c)
	if !ok {
		return
	}

	userID := c.Param("user_id")
	if userID == "" {
		response.BadRequest(c, "missing user id")
		return
	}

	if err := h.teamService.RemoveMember(c.Request.Context(), id, userID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *TeamHandler) RevokeInvite(c *gin.Context) {
	id, ok := parseTeamID(c)
	if !ok {
		return
	}

	var req MemberEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if err := h.teamService.RevokeInvite(c.Request.Context(), id, req.Email); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

func parseTeamID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid team id")
		return uuid.Nil, false
	}
	return id, true
}
