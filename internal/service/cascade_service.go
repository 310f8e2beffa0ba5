package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ugurkiymetli/secret-santa/internal/model"
	"github.com/ugurkiymetli/secret-santa/internal/repository"
)

type CascadeResult struct {
	EventsDeleted   int64 `json:"events_deleted"`
	AccountsDeleted int64 `json:"accounts_deleted"`
}

type CascadeService interface {
	// DeleteOrganizer removes an organizer together with every event it owns
	// and every account it created. Nothing is removed if any step fails.
	DeleteOrganizer(ctx context.Context, actor Principal, organizerID uuid.UUID) (*CascadeResult, error)
}

type cascadeService struct {
	store  repository.Store
	logger *zap.Logger
}

func NewCascadeService(store repository.Store, logger *zap.Logger) CascadeService {
	return &cascadeService{store: store, logger: logger}
}

func (s *cascadeService) DeleteOrganizer(ctx context.Context, actor Principal, organizerID uuid.UUID) (*CascadeResult, error) {
	if !actor.HasRole(model.RoleSuperAdmin) {
		return nil, ErrUnauthorized
	}
	if actor.AccountID == organizerID {
		return nil, ErrCannotDeleteSelf
	}

	result := &CascadeResult{}
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		target, err := tx.Accounts().GetByID(ctx, organizerID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrAccountNotFound
			}
			return fmt.Errorf("failed to find organizer: %w", err)
		}
		if target.Role != model.RoleOrganizer {
			return ErrNotAnOrganizer
		}

		events, err := tx.Events().DeleteByOrganizer(ctx, organizerID)
		if err != nil {
			return fmt.Errorf("failed to delete events: %w", err)
		}
		accounts, err := tx.Accounts().DeleteByCreator(ctx, organizerID)
		if err != nil {
			return fmt.Errorf("failed to delete created accounts: %w", err)
		}
		if err := tx.Accounts().Delete(ctx, organizerID); err != nil {
			return fmt.Errorf("failed to delete organizer: %w", err)
		}

		result.EventsDeleted = events
		result.AccountsDeleted = accounts + 1
		return nil
	})
	if err != nil {
		s.logger.Warn("organizer cascade failed",
			zap.String("organizer_id", organizerID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("organizer deleted",
		zap.String("organizer_id", organizerID.String()),
		zap.String("deleted_by", actor.AccountID.String()),
		zap.Int64("events", result.EventsDeleted),
		zap.Int64("accounts", result.AccountsDeleted),
	)
	return result, nil
}

var _ CascadeService = (*cascadeService)(nil)
