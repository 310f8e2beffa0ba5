package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/ugurkiymetli/secret-santa/internal/model"
	"github.com/ugurkiymetli/secret-santa/internal/repository"
)

// Principal is the caller identity carried by a session token.
type Principal struct {
	AccountID uuid.UUID  `json:"user_id"`
	Handle    string     `json:"username"`
	Role      model.Role `json:"role"`
}

// HasRole reports whether the principal holds any of roles.
func (p *Principal) HasRole(roles ...model.Role) bool {
	return p != nil && slices.Contains(roles, p.Role)
}

func principalOf(a *model.Account) *Principal {
	return &Principal{AccountID: a.ID, Handle: a.Handle, Role: a.Role}
}

// requireAccount reloads the account behind a session before it writes.
// A token outlives a cascade delete, so a missing account or a changed
// role is ErrUnauthorized.
func requireAccount(ctx context.Context, accounts repository.AccountRepository, id uuid.UUID, role model.Role) (*model.Account, error) {
	account, err := accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	if account.Role != role {
		return nil, ErrUnauthorized
	}
	return account, nil
}
