package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"gptteam/seathub/internal/model"
)

type pgTeamRepository struct {
	db *gorm.DB
}

func NewPGTeamRepository(db *gorm.DB) TeamRepository {
	return &pgTeamRepository{db: db}
}

func (r *pgTeamRepository) Create(ctx context.Context, team *model.Team) error {
	return r.db.WithContext(ctx).Create(team).Error
}

func (r *pgTeamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Team, error) {
	var team model.Team
	if err := r.db.WithContext(ctx).First(&team, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *pgTeamRepository) GetByAccountID(ctx context.Context, accountID string) (*model.Team, error) {
	var team model.Team
	if err := r.db.WithContext(ctx).Where("account_id = ?", accountID).First(&team).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *pgTeamRepository) List(ctx context.Context) ([]model.Team, error) {
	var teams []model.Team
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *pgTeamRepository) ListEnabled(ctx context.Context) ([]model.Team, error) {
	var teams []model.Team
	if err := r.db.WithContext(ctx).
		Where("enabled = ?", true).
		Order("created_at ASC").
		Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *pgTeamRepository) Update(ctx context.Context, team *model.Team) error {
	return r.db.WithContext(ctx).Save(team).Error
}

func (r *pgTeamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Team{}, "id = ?", id).Error
}
