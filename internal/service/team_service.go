package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gptteam/seathub/internal/chatgpt"
	"gptteam/seathub/internal/model"
	"gptteam/seathub/internal/repository"
)

// defaultSeatsTotal is the seat cap assigned to newly imported teams until
// the operator adjusts it.
const defaultSeatsTotal = 7

// UpstreamClient is the slice of the ChatGPT backend client the services
// depend on; the concrete client in internal/chatgpt satisfies it.
type UpstreamClient interface {
	SendInvite(ctx context.Context, accessToken, accountID, email string) chatgpt.Result
	Members(ctx context.Context, accessToken, accountID string) chatgpt.MembersResult
	Invites(ctx context.Context, accessToken, accountID string) chatgpt.InvitesResult
	RevokeInvite(ctx context.Context, accessToken, accountID, email string) chatgpt.Result
	RemoveMember(ctx context.Context, accessToken, accountID, userID string) chatgpt.Result
	AccountInfo(ctx context.Context, accessToken string) chatgpt.AccountsResult
	RefreshWithSessionToken(ctx context.Context, sessionToken string) chatgpt.TokenResult
	RefreshWithRefreshToken(ctx context.Context, refreshToken, clientID string) chatgpt.TokenResult
}

// ImportTeamInput carries the credentials pasted by the operator. Only
// AccessToken is mandatory; the rest enable credential refresh later.
type ImportTeamInput struct {
	Name          string
	AccessToken   string
	RefreshToken  string
	SessionToken  string
	OAuthClientID string
	AccountID     string
	SeatsTotal    int
}

// TeamUpdateInput holds optional field updates; nil pointers leave the
// stored value untouched.
type TeamUpdateInput struct {
	Name         *string
	AccessToken  *string
	RefreshToken *string
	SessionToken *string
	SeatsTotal   *int
	Enabled      *bool
}

type TeamService interface {
	ImportTeam(ctx context.Context, input ImportTeamInput) (*model.Team, error)
	ListTeams(ctx context.Context) ([]model.Team, error)
	GetTeam(ctx context.Context, id uuid.UUID) (*model.Team, error)
	UpdateTeam(ctx context.Context, id uuid.UUID, input TeamUpdateInput) (*model.Team, error)
	DeleteTeam(ctx context.Context, id uuid.UUID) error
	RefreshCredentials(ctx context.Context, id uuid.UUID) (*model.Team, error)

	ListMembers(ctx context.Context, id uuid.UUID) ([]chatgpt.Member, error)
	ListInvites(ctx context.Context, id uuid.UUID) ([]chatgpt.Invite, error)
	AddMember(ctx context.Context, id uuid.UUID, email string) error
	RemoveMember(ctx context.Context, id uuid.UUID, userID string) error
	RevokeInvite(ctx context.Context, id uuid.UUID, email string) error
}

type teamService struct {
	teamRepo        repository.TeamRepository
	upstream        UpstreamClient
	defaultClientID string
	logger          *zap.Logger
}

func NewTeamService(teamRepo repository.TeamRepository, upstream UpstreamClient, defaultClientID string, logger *zap.Logger) TeamService {
	return &teamService{
		teamRepo:        teamRepo,
		upstream:        upstream,
		defaultClientID: defaultClientID,
		logger:          logger,
	}
}

func (s *teamService) ImportTeam(ctx context.Context, input ImportTeamInput) (*model.Team, error) {
	accounts := s.upstream.AccountInfo(ctx, input.AccessToken)
	if !accounts.Success {
		return nil, upstreamErr(accounts.Error, accounts.ErrorCode, 0)
	}
	if len(accounts.Accounts) == 0 {
		return nil, &UpstreamError{Message: "no team account found for this credential"}
	}

	account := accounts.Accounts[0]
	if input.AccountID != "" {
		found := false
		for _, a := range accounts.Accounts {
			if a.AccountID == input.AccountID {
				account = a
				found = true
				break
			}
		}
		if !found {
			return nil, &UpstreamError{Message: fmt.Sprintf("account %s not visible to this credential", input.AccountID)}
		}
	}

	if existing, err := s.teamRepo.GetByAccountID(ctx, account.AccountID); err == nil && existing != nil {
		return nil, fmt.Errorf("account %s: %w", account.AccountID, ErrTeamExists)
	}

	name := input.Name
	if name == "" {
		name = account.Name
	}
	seats := input.SeatsTotal
	if seats <= 0 {
		seats = defaultSeatsTotal
	}

	team := &model.Team{
		Name:             name,
		AccountID:        account.AccountID,
		AccessToken:      input.AccessToken,
		RefreshToken:     input.RefreshToken,
		SessionToken:     input.SessionToken,
		OAuthClientID:    input.OAuthClientID,
		PlanType:         account.PlanType,
		SubscriptionPlan: account.SubscriptionPlan,
		SeatsTotal:       seats,
		Enabled:          true,
	}
	if t, err := time.Parse(time.RFC3339, account.ExpiresAt); err == nil {
		team.ExpiresAt = &t
	}

	// Seed the seat count from the live member list; a failure here is not
	// fatal, the next member listing corrects it.
	if members := s.upstream.Members(ctx, input.AccessToken, account.AccountID); members.Success {
		team.SeatsUsed = members.Total
	} else {
		s.logger.Warn("member listing failed during import",
			zap.String("account_id", account.AccountID),
			zap.String("error", members.Error))
	}

	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, fmt.Errorf("create team: %w", err)
	}
	s.logger.Info("team imported",
		zap.String("team_id", team.ID.String()),
		zap.String("account_id", team.AccountID),
		zap.Int("seats_used", team.SeatsUsed))
	return team, nil
}

func (s *teamService) ListTeams(ctx context.Context) ([]model.Team, error) {
	return s.teamRepo.List(ctx)
}

func (s *teamService) GetTeam(ctx context.Context, id uuid.UUID) (*model.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("get team: %w", err)
	}
	return team, nil
}

func (s *teamService) UpdateTeam(ctx context.Context, id uuid.UUID, input TeamUpdateInput) (*model.Team, error) {
	team, err := s.GetTeam(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		team.Name = *input.Name
	}
	if input.AccessToken != nil {
		team.AccessToken = *input.AccessToken
	}
	if input.RefreshToken != nil {
		team.RefreshToken = *input.RefreshToken
	}
	if input.SessionToken != nil {
		team.SessionToken = *input.SessionToken
	}
	if input.SeatsTotal != nil && *input.SeatsTotal > 0 {
		team.SeatsTotal = *input.SeatsTotal
	}
	if input.Enabled != nil {
		team.Enabled = *input.Enabled
	}

	if err := s.teamRepo.Update(ctx, team); err != nil {
		return nil, fmt.Errorf("update team: %w", err)
	}
	return team, nil
}

func (s *teamService) DeleteTeam(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetTeam(ctx, id); err != nil {
		return err
	}
	return s.teamRepo.Delete(ctx, id)
}

// RefreshCredentials renews the stored access token, preferring the OAuth
// refresh-token grant and falling back to the web session cookie flow.
func (s *teamService) RefreshCredentials(ctx context.Context, id uuid.UUID) (*model.Team, error) {
	team, err := s.GetTeam(ctx, id)
	if err != nil {
		return nil, err
	}

	var token chatgpt.TokenResult
	switch {
	case team.RefreshToken != "":
		clientID := team.OAuthClientID
		if clientID == "" {
			clientID = s.defaultClientID
		}
		token = s.upstream.RefreshWithRefreshToken(ctx, team.RefreshToken, clientID)
	case team.SessionToken != "":
		token = s.upstream.RefreshWithSessionToken(ctx, team.SessionToken)
	default:
		return nil, &UpstreamError{Message: "team has no refresh token or session token"}
	}

	if !token.Success {
		return nil, upstreamErr(token.Error, token.ErrorCode, token.StatusCode)
	}

	team.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		team.RefreshToken = token.RefreshToken
	}
	if err := s.teamRepo.Update(ctx, team); err != nil {
		return nil, fmt.Errorf("store refreshed credentials: %w", err)
	}
	s.logger.Info("team credentials refreshed", zap.String("team_id", team.ID.String()))
	return team, nil
}

func (s *teamService) ListMembers(ctx context.Context, id uuid.UUID) ([]chatgpt.Member, error) {
	team, err := s.GetTeam(ctx, id)
	if err != nil {
		return nil, err
	}

	result := s.upstream.Members(ctx, team.AccessToken, team.AccountID)
	if !result.Success {
		return nil, upstreamErr(result.Error, result.ErrorCode, 0)
	}

	// Keep the stored seat count in step with upstream.
	if team.SeatsUsed != result.Total {
		team.SeatsUsed = result.Total
		if err := s.teamRepo.Update(ctx, team); err != nil {
			s.logger.Warn("seat count update failed", zap.String("team_id", id.String()), zap.Error(err))
		}
	}
	return result.Members, nil
}

func (s *teamService) ListInvites(ctx context.Context, id uuid.UUID) ([]chatgpt.Invite, error) {
	team, err := s.GetTeam(ctx, id)
	if err != nil {
		return nil, err
	}

	result := s.upstream.Invites(ctx, team.AccessToken, team.AccountID)
	if !result.Success {
		return nil, upstreamErr(result.Error, result.ErrorCode, 0)
	}
	return result.Items, nil
}

func (s *teamService) AddMember(ctx context.Context, id uuid.UUID, email string) error {
	team, err := s.GetTeam(ctx, id)
	if err != nil {
		return err
	}
	if team.SeatsUsed >= team.SeatsTotal {
		return ErrTeamFull
	}

	result := s.upstream.SendInvite(ctx, team.AccessToken, team.AccountID, email)
	if !result.Success {
		return upstreamErr(result.Error, result.ErrorCode, result.StatusCode)
	}

	team.SeatsUsed++
	if err := s.teamRepo.Update(ctx, team); err != nil {
		s.logger.Warn("seat count update failed", zap.String("team_id", id.String()), zap.Error(err))
	}
	return nil
}

func (s *teamService) RemoveMember(ctx context.Context, id uuid.UUID, userID string) error {
	team, err := s.GetTeam(ctx, id)
	if err != nil {
		return err
	}

	result := s.upstream.RemoveMember(ctx, team.AccessToken, team.AccountID, userID)
	if !result.Success {
		return upstreamErr(result.Error, result.ErrorCode, result.StatusCode)
	}

	if team.SeatsUsed > 0 {
		team.SeatsUsed--
		if err := s.teamRepo.Update(ctx, team); err != nil {
			s.logger.Warn("seat count update failed", zap.String("team_id", id.String()), zap.Error(err))
		}
	}
	return nil
}

func (s *teamService) RevokeInvite(ctx context.Context, id uuid.UUID, email string) error {
	team, err := s.GetTeam(ctx, id)
	if err != nil {
		return err
	}

	result := s.upstream.RevokeInvite(ctx, team.AccessToken, team.AccountID, email)
	if !result.Success {
		return upstreamErr(result.Error, result.ErrorCode, result.StatusCode)
	}

	if team.SeatsUsed > 0 {
		team.SeatsUsed--
		if err := s.teamRepo.Update(ctx, team); err != nil {
			s.logger.Warn("seat count update failed", zap.String("team_id", id.String()), zap.Error(err))
		}
	}
	return nil
}

func upstreamErr(message, code string, statusCode int) *UpstreamError {
	return &UpstreamError{Message: message, Code: code, StatusCode: statusCode}
}

var _ TeamService = (*teamService)(nil)
