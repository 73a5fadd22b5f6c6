package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gptteam/seathub/internal/chatgpt"
	"gptteam/seathub/internal/model"
	"gptteam/seathub/internal/repository"
	"gptteam/seathub/pkg/codeutil"
	"gptteam/seathub/pkg/crypto"
	"gptteam/seathub/pkg/pricing"
)

type GenerateCodesInput struct {
	Count        int
	DurationDays int
	TeamID       *uuid.UUID
}

// CodeView is a listing row: the stored code plus display fields derived
// from the bound team's subscription.
type CodeView struct {
	model.RedemptionCode
	TeamName      string `json:"team_name,omitempty"`
	RemainingDays *int   `json:"remaining_days,omitempty"`
	PriceYuan     string `json:"price_yuan,omitempty"`
}

// RecordView joins a redemption record with its team's name.
type RecordView struct {
	model.RedemptionRecord
	TeamName string `json:"team_name,omitempty"`
}

type BulkDeleteResult struct {
	Deleted  []string `json:"deleted"`
	Skipped  []string `json:"skipped"`
	NotFound []string `json:"not_found"`
}

type RedeemResult struct {
	TeamName  string     `json:"team_name"`
	Email     string     `json:"email"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type CodeService interface {
	GenerateCodes(ctx context.Context, input GenerateCodesInput) ([]model.RedemptionCode, error)
	ListCodes(ctx context.Context, filter repository.CodeFilter) ([]CodeView, error)
	DeleteCode(ctx context.Context, code string) error
	BulkDeleteCodes(ctx context.Context, codes []string) (*BulkDeleteResult, error)

	Redeem(ctx context.Context, rawCode, email string) (*RedeemResult, error)
	ListRecords(ctx context.Context) ([]RecordView, error)
	Withdraw(ctx context.Context, recordID uuid.UUID) error
}

type codeService struct {
	codeRepo   repository.CodeRepository
	recordRepo repository.RecordRepository
	teamRepo   repository.TeamRepository
	upstream   UpstreamClient
	logger     *zap.Logger
	now        func() time.Time
}

func NewCodeService(
	codeRepo repository.CodeRepository,
	recordRepo repository.RecordRepository,
	teamRepo repository.TeamRepository,
	upstream UpstreamClient,
	logger *zap.Logger,
) CodeService {
	return &codeService{
		codeRepo:   codeRepo,
		recordRepo: recordRepo,
		teamRepo:   teamRepo,
		upstream:   upstream,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *codeService) GenerateCodes(ctx context.Context, input GenerateCodesInput) ([]model.RedemptionCode, error) {
	if input.Count <= 0 {
		input.Count = 1
	}
	if input.DurationDays <= 0 {
		input.DurationDays = pricing.DefaultBaseDays
	}
	if input.TeamID != nil {
		if _, err := s.teamRepo.GetByID(ctx, *input.TeamID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTeamNotFound
			}
			return nil, fmt.Errorf("get team: %w", err)
		}
	}

	batchID := uuid.New().String()
	codes := make([]*model.RedemptionCode, 0, input.Count)
	for i := 0; i < input.Count; i++ {
		code, err := crypto.GenerateRedemptionCode()
		if err != nil {
			return nil, fmt.Errorf("generate code: %w", err)
		}
		codes = append(codes, &model.RedemptionCode{
			Code:         code,
			TeamID:       input.TeamID,
			DurationDays: input.DurationDays,
			Status:       model.CodeStatusUnused,
			BatchID:      batchID,
		})
	}

	if err := s.codeRepo.CreateBatch(ctx, codes); err != nil {
		return nil, fmt.Errorf("create codes: %w", err)
	}
	s.logger.Info("codes generated", zap.Int("count", len(codes)), zap.String("batch_id", batchID))

	out := make([]model.RedemptionCode, len(codes))
	for i, c := range codes {
		out[i] = *c
	}
	return out, nil
}

func (s *codeService) ListCodes(ctx context.Context, filter repository.CodeFilter) ([]CodeView, error) {
	codes, err := s.codeRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list codes: %w", err)
	}

	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	teamByID := make(map[uuid.UUID]*model.Team, len(teams))
	for i := range teams {
		teamByID[teams[i].ID] = &teams[i]
	}

	now := s.now()
	views := make([]CodeView, 0, len(codes))
	for _, code := range codes {
		view := CodeView{RedemptionCode: code}
		if code.TeamID != nil {
			if team, ok := teamByID[*code.TeamID]; ok {
				view.TeamName = team.Name
				if days := pricing.RemainingDays(team.ExpiresAt, now); days >= 0 {
					view.RemainingDays = &days
					view.PriceYuan = pricing.FormatYuan(pricing.PriceCents(days, pricing.DefaultBaseDays, pricing.DefaultBasePriceCents))
				}
			}
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *codeService) DeleteCode(ctx context.Context, code string) error {
	stored, err := s.codeRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCodeNotFound
		}
		return fmt.Errorf("get code: %w", err)
	}
	if stored.Status != model.CodeStatusUnused {
		return ErrCodeUsed
	}
	return s.codeRepo.Delete(ctx, code)
}

// BulkDeleteCodes removes the unused codes among the given list and reports
// what was skipped (already used/disabled) or unknown.
func (s *codeService) BulkDeleteCodes(ctx context.Context, codes []string) (*BulkDeleteResult, error) {
	seen := make(map[string]struct{}, len(codes))
	result := &BulkDeleteResult{Deleted: []string{}, Skipped: []string{}, NotFound: []string{}}
	deletable := make([]string, 0, len(codes))

	for _, raw := range codes {
		code := strings.TrimSpace(raw)
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}

		stored, err := s.codeRepo.GetByCode(ctx, code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result.NotFound = append(result.NotFound, code)
				continue
			}
			return nil, fmt.Errorf("get code: %w", err)
		}
		if stored.Status != model.CodeStatusUnused {
			result.Skipped = append(result.Skipped, code)
			continue
		}
		deletable = append(deletable, code)
	}

	if len(deletable) > 0 {
		if _, err := s.codeRepo.DeleteBatch(ctx, deletable); err != nil {
			return nil, fmt.Errorf("delete codes: %w", err)
		}
		result.Deleted = deletable
	}
	return result, nil
}

// Redeem places email on a team seat in exchange for a valid code. The code
// is burned only after the upstream invite succeeds.
func (s *codeService) Redeem(ctx context.Context, rawCode, email string) (*RedeemResult, error) {
	code := codeutil.Normalize(rawCode)
	if code == "" {
		return nil, ErrCodeNotFound
	}

	stored, err := s.codeRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, fmt.Errorf("get code: %w", err)
	}
	switch stored.Status {
	case model.CodeStatusUsed:
		return nil, ErrCodeUsed
	case model.CodeStatusDisabled:
		return nil, ErrCodeDisabled
	}

	team, err := s.pickTeam(ctx, stored.TeamID)
	if err != nil {
		return nil, err
	}

	invite := s.upstream.SendInvite(ctx, team.AccessToken, team.AccountID, email)
	if !invite.Success {
		return nil, upstreamErr(invite.Error, invite.ErrorCode, invite.StatusCode)
	}

	now := s.now()
	expires := now.AddDate(0, 0, stored.DurationDays)
	// A seat cannot outlive the team subscription.
	if team.ExpiresAt != nil && team.ExpiresAt.Before(expires) {
		expires = *team.ExpiresAt
	}

	stored.Status = model.CodeStatusUsed
	stored.RedeemedBy = email
	stored.RedeemedAt = &now
	if stored.TeamID == nil {
		stored.TeamID = &team.ID
	}
	if err := s.codeRepo.Update(ctx, stored); err != nil {
		return nil, fmt.Errorf("mark code used: %w", err)
	}

	record := &model.RedemptionRecord{
		Code:      stored.Code,
		Email:     email,
		TeamID:    team.ID,
		Status:    model.RecordStatusInvited,
		ExpiresAt: &expires,
	}
	if err := s.recordRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}

	team.SeatsUsed++
	if err := s.teamRepo.Update(ctx, team); err != nil {
		s.logger.Warn("seat count update failed", zap.String("team_id", team.ID.String()), zap.Error(err))
	}

	s.logger.Info("code redeemed",
		zap.String("code", stored.Code),
		zap.String("team_id", team.ID.String()),
		zap.String("email", email))
	return &RedeemResult{TeamName: team.Name, Email: email, ExpiresAt: &expires}, nil
}

// pickTeam resolves the bound team, or the first enabled team with a free
// seat for unbound codes.
func (s *codeService) pickTeam(ctx context.Context, boundTeamID *uuid.UUID) (*model.Team, error) {
	if boundTeamID != nil {
		team, err := s.teamRepo.GetByID(ctx, *boundTeamID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTeamNotFound
			}
			return nil, fmt.Errorf("get team: %w", err)
		}
		if !team.Enabled {
			return nil, ErrNoTeamAvailable
		}
		if team.SeatsUsed >= team.SeatsTotal {
			return nil, ErrTeamFull
		}
		return team, nil
	}

	teams, err := s.teamRepo.ListEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	for i := range teams {
		if teams[i].SeatsUsed < teams[i].SeatsTotal {
			return &teams[i], nil
		}
	}
	return nil, ErrNoTeamAvailable
}

func (s *codeService) ListRecords(ctx context.Context) ([]RecordView, error) {
	records, err := s.recordRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	nameByID := make(map[uuid.UUID]string, len(teams))
	for _, t := range teams {
		nameByID[t.ID] = t.Name
	}

	views := make([]RecordView, 0, len(records))
	for _, r := range records {
		views = append(views, RecordView{RedemptionRecord: r, TeamName: nameByID[r.TeamID]})
	}
	return views, nil
}

// Withdraw frees the seat a record occupies: a pending invite is revoked,
// an accepted member is removed.
func (s *codeService) Withdraw(ctx context.Context, recordID uuid.UUID) error {
	record, err := s.recordRepo.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecordNotFound
		}
		return fmt.Errorf("get record: %w", err)
	}
	if record.Status == model.RecordStatusWithdrawn {
		return ErrRecordWithdrawn
	}

	team, err := s.teamRepo.GetByID(ctx, record.TeamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("get team: %w", err)
	}

	memberID := record.MemberUserID
	if memberID == "" {
		// Invite not yet accepted; check whether the member shows up in the
		// live listing before falling back to an invite revoke.
		if members := s.upstream.Members(ctx, team.AccessToken, team.AccountID); members.Success {
			for _, m := range members.Members {
				if strings.EqualFold(m.Email, record.Email) {
					memberID = m.ID
					break
				}
			}
		}
	}

	result := s.revokeSeat(ctx, team, record.Email, memberID)
	if !result.Success {
		return upstreamErr(result.Error, result.ErrorCode, result.StatusCode)
	}

	now := s.now()
	record.Status = model.RecordStatusWithdrawn
	record.WithdrawnAt = &now
	if memberID != "" {
		record.MemberUserID = memberID
	}
	if err := s.recordRepo.Update(ctx, record); err != nil {
		return fmt.Errorf("mark record withdrawn: %w", err)
	}

	if team.SeatsUsed > 0 {
		team.SeatsUsed--
		if err := s.teamRepo.Update(ctx, team); err != nil {
			s.logger.Warn("seat count update failed", zap.String("team_id", team.ID.String()), zap.Error(err))
		}
	}

	s.logger.Info("record withdrawn",
		zap.String("record_id", recordID.String()),
		zap.String("team_id", team.ID.String()),
		zap.String("email", record.Email))
	return nil
}

func (s *codeService) revokeSeat(ctx context.Context, team *model.Team, email, memberID string) chatgpt.Result {
	if memberID != "" {
		return s.upstream.RemoveMember(ctx, team.AccessToken, team.AccountID, memberID)
	}
	return s.upstream.RevokeInvite(ctx, team.AccessToken, team.AccountID, email)
}

var _ CodeService = (*codeService)(nil)
