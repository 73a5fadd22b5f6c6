package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"gptteam/seathub/internal/model"
)

type pgRecordRepository struct {
	db *gorm.DB
}

func NewPGRecordRepository(db *gorm.DB) RecordRepository {
	return &pgRecordRepository{db: db}
}

func (r *pgRecordRepository) Create(ctx context.Context, record *model.RedemptionRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *pgRecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.RedemptionRecord, error) {
	var record model.RedemptionRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *pgRecordRepository) List(ctx context.Context) ([]model.RedemptionRecord, error) {
	var records []model.RedemptionRecord
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *pgRecordRepository) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]model.RedemptionRecord, error) {
	var records []model.RedemptionRecord
	if err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *pgRecordRepository) Update(ctx context.Context, record *model.RedemptionRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}
