package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ugurkiymetli/secret-santa/internal/model"
)

type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error)
	GetByHandle(ctx context.Context, handle string) (*model.Account, error)
	HandleExists(ctx context.Context, handle string) (bool, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Account, error)
	ListByRole(ctx context.Context, role model.Role) ([]model.Account, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]model.Account, error)
	Count(ctx context.Context) (int64, error)
	// SetCredential stores the hash only if no credential is set yet.
	// Returns ErrVersionConflict when the account was already claimed.
	SetCredential(ctx context.Context, id uuid.UUID, hash string) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByCreator(ctx context.Context, creatorID uuid.UUID) (int64, error)
}
