package repository

import (
	"context"

	"github.com/google/uuid"

	"gptteam/seathub/internal/model"
)

type TeamRepository interface {
	Create(ctx context.Context, team *model.Team) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Team, error)
	GetByAccountID(ctx context.Context, accountID string) (*model.Team, error)
	List(ctx context.Context) ([]model.Team, error)
	ListEnabled(ctx context.Context) ([]model.Team, error)
	Update(ctx context.Context, team *model.Team) error
	Delete(ctx context.Context, id uuid.UUID) error
}
