package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ugurkiymetli/secret-santa/internal/model"
)

type pgAccountRepository struct {
	db *gorm.DB
}

func NewPGAccountRepository(db *gorm.DB) AccountRepository {
	return &pgAccountRepository{db: db}
}

func (r *pgAccountRepository) Create(ctx context.Context, account *model.Account) error {
	return translateError(r.db.WithContext(ctx).Create(account).Error)
}

func (r *pgAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	var account model.Account
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &account, nil
}

func (r *pgAccountRepository) GetByHandle(ctx context.Context, handle string) (*model.Account, error) {
	var account model.Account
	if err := r.db.WithContext(ctx).Where("handle = ?", handle).First(&account).Error; err != nil {
		return nil, translateError(err)
	}
	return &account, nil
}

func (r *pgAccountRepository) HandleExists(ctx context.Context, handle string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Account{}).Where("handle = ?", handle).Count(&n).Error
	return n > 0, err
}

func (r *pgAccountRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Account, error) {
	var accounts []model.Account
	if len(ids) == 0 {
		return accounts, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&accounts).Error
	return accounts, err
}

func (r *pgAccountRepository) ListByRole(ctx context.Context, role model.Role) ([]model.Account, error) {
	var accounts []model.Account
	err := r.db.WithContext(ctx).Where("role = ?", role).Order("created_at ASC").Find(&accounts).Error
	return accounts, err
}

func (r *pgAccountRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]model.Account, error) {
	var accounts []model.Account
	err := r.db.WithContext(ctx).Where("created_by = ?", creatorID).Order("created_at ASC").Find(&accounts).Error
	return accounts, err
}

func (r *pgAccountRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Account{}).Count(&n).Error
	return n, err
}

func (r *pgAccountRepository) SetCredential(ctx context.Context, id uuid.UUID, hash string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("id = ? AND (credential_hash IS NULL OR credential_hash = '')", id).
		Updates(map[string]interface{}{
			"credential_hash": hash,
			"is_activated":    true,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrVersionConflict
	}
	return nil
}

func (r *pgAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Account{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgAccountRepository) DeleteByCreator(ctx context.Context, creatorID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&model.Account{}, "created_by = ?", creatorID)
	return res.RowsAffected, res.Error
}
