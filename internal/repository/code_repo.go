package repository

import (
	"context"

	"github.com/google/uuid"

	"gptteam/seathub/internal/model"
)

// CodeFilter narrows code listings; zero values mean "any".
type CodeFilter struct {
	Status  model.CodeStatus
	TeamID  *uuid.UUID
	BatchID string
}

type CodeRepository interface {
	CreateBatch(ctx context.Context, codes []*model.RedemptionCode) error
	GetByCode(ctx context.Context, code string) (*model.RedemptionCode, error)
	List(ctx context.Context, filter CodeFilter) ([]model.RedemptionCode, error)
	Update(ctx context.Context, code *model.RedemptionCode) error
	Delete(ctx context.Context, code string) error
	DeleteBatch(ctx context.Context, codes []string) (int64, error)
}
