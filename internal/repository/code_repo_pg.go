package repository

import (
	"context"

	"gorm.io/gorm"

	"gptteam/seathub/internal/model"
)

type pgCodeRepository struct {
	db *gorm.DB
}

func NewPGCodeRepository(db *gorm.DB) CodeRepository {
	return &pgCodeRepository{db: db}
}

func (r *pgCodeRepository) CreateBatch(ctx context.Context, codes []*model.RedemptionCode) error {
	return r.db.WithContext(ctx).Create(codes).Error
}

func (r *pgCodeRepository) GetByCode(ctx context.Context, code string) (*model.RedemptionCode, error) {
	var rc model.RedemptionCode
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&rc).Error; err != nil {
		return nil, err
	}
	return &rc, nil
}

func (r *pgCodeRepository) List(ctx context.Context, filter CodeFilter) ([]model.RedemptionCode, error) {
	q := r.db.WithContext(ctx).Model(&model.RedemptionCode{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.TeamID != nil {
		q = q.Where("team_id = ?", *filter.TeamID)
	}
	if filter.BatchID != "" {
		q = q.Where("batch_id = ?", filter.BatchID)
	}

	var codes []model.RedemptionCode
	if err := q.Order("created_at DESC").Find(&codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

func (r *pgCodeRepository) Update(ctx context.Context, code *model.RedemptionCode) error {
	return r.db.WithContext(ctx).Save(code).Error
}

func (r *pgCodeRepository) Delete(ctx context.Context, code string) error {
	return r.db.WithContext(ctx).Where("code = ?", code).Delete(&model.RedemptionCode{}).Error
}

func (r *pgCodeRepository) DeleteBatch(ctx context.Context, codes []string) (int64, error) {
	res := r.db.WithContext(ctx).Where("code IN ?", codes).Delete(&model.RedemptionCode{})
	return res.RowsAffected, res.Error
}
