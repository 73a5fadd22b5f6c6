package repository

import (
	"context"

	"github.com/google/uuid"

	"gptteam/seathub/internal/model"
)

type RecordRepository interface {
	Create(ctx context.Context, record *model.RedemptionRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.RedemptionRecord, error)
	List(ctx context.Context) ([]model.RedemptionRecord, error)
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]model.RedemptionRecord, error)
	Update(ctx context.Context, record *model.RedemptionRecord) error
}
