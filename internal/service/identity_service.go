package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ugurkiymetli/secret-santa/internal/model"
	"github.com/ugurkiymetli/secret-santa/internal/repository"
	"github.com/ugurkiymetli/secret-santa/pkg/crypto"
)

const (
	minCredentialLength = 6
	maxNameLength       = 256
)

type IdentityService interface {
	// CreateAccount creates an unclaimed account. A nil actor is only
	// accepted while no account exists (bootstrap).
	CreateAccount(ctx context.Context, actor *Principal, name string, role model.Role) (*model.Account, error)
	RegisterOrganizer(ctx context.Context, name, handle, credential string) (*model.Account, error)
	ClaimAccount(ctx context.Context, handle, credential string) (*model.Account, error)
	Authenticate(ctx context.Context, handle, credential string) (*Principal, error)
	GetAccount(ctx context.Context, id uuid.UUID) (*model.Account, error)
	ListByRole(ctx context.Context, role model.Role) ([]model.Account, error)
	ListCreatedBy(ctx context.Context, creatorID uuid.UUID) ([]model.Account, error)
	DeleteAccount(ctx context.Context, actor Principal, id uuid.UUID) error
}

type identityService struct {
	accountRepo    repository.AccountRepository
	generateHandle HandleGenerator
}

func NewIdentityService(accountRepo repository.AccountRepository) IdentityService {
	return &identityService{
		accountRepo:    accountRepo,
		generateHandle: RandomHandle,
	}
}

func (s *identityService) CreateAccount(ctx context.Context, actor *Principal, name string, role model.Role) (*model.Account, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	// 1. Resolve which role the actor may create and who owns the result
	var createdBy *uuid.UUID
	switch {
	case actor == nil:
		if role == "" {
			role = model.RoleSuperAdmin
		}
		if role != model.RoleSuperAdmin && role != model.RoleOrganizer {
			return nil, ErrInvalidRole
		}
		n, err := s.accountRepo.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count accounts: %w", err)
		}
		if n > 0 {
			return nil, ErrUnauthorized
		}
	case actor.Role == model.RoleOrganizer:
		if role == "" {
			role = model.RoleParticipant
		}
		if role != model.RoleParticipant {
			return nil, ErrRoleNotPermitted
		}
		if _, err := requireAccount(ctx, s.accountRepo, actor.AccountID, model.RoleOrganizer); err != nil {
			return nil, err
		}
		id := actor.AccountID
		createdBy = &id
	case actor.Role == model.RoleSuperAdmin:
		if role == "" {
			role = model.RoleOrganizer
		}
		if role != model.RoleOrganizer {
			return nil, ErrRoleNotPermitted
		}
		if _, err := requireAccount(ctx, s.accountRepo, actor.AccountID, model.RoleSuperAdmin); err != nil {
			return nil, err
		}
	default:
		return nil, ErrRoleNotPermitted
	}

	// 2. Pick a free handle
	handle, err := s.uniqueHandle(ctx)
	if err != nil {
		return nil, err
	}

	// 3. Create; a concurrent writer may still take the same handle
	account := &model.Account{
		Handle:    handle,
		Name:      name,
		Role:      role,
		CreatedBy: createdBy,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDuplicateHandle
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return account, nil
}

func (s *identityService) uniqueHandle(ctx context.Context) (string, error) {
	for attempt := 0; attempt < handleAttempts; attempt++ {
		candidate, err := s.generateHandle()
		if err != nil {
			return "", fmt.Errorf("failed to generate handle: %w", err)
		}
		taken, err := s.accountRepo.HandleExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check handle: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrGenerationExhausted
}

func (s *identityService) RegisterOrganizer(ctx context.Context, name, handle, credential string) (*model.Account, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	handle = normalizeHandle(handle)
	if !handlePattern.MatchString(handle) {
		return nil, ErrInvalidHandle
	}
	if utf8.RuneCountInString(credential) < minCredentialLength {
		return nil, ErrCredentialTooShort
	}

	taken, err := s.accountRepo.HandleExists(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("failed to check handle: %w", err)
	}
	if taken {
		return nil, ErrDuplicateHandle
	}

	hash, err := crypto.HashPassword(credential)
	if err != nil {
		return nil, fmt.Errorf("failed to hash credential: %w", err)
	}

	account := &model.Account{
		Handle:         handle,
		Name:           name,
		Role:           model.RoleOrganizer,
		CredentialHash: &hash,
		IsActivated:    true,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDuplicateHandle
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return account, nil
}

func (s *identityService) ClaimAccount(ctx context.Context, handle, credential string) (*model.Account, error) {
	if utf8.RuneCountInString(credential) < minCredentialLength {
		return nil, ErrCredentialTooShort
	}

	account, err := s.accountRepo.GetByHandle(ctx, normalizeHandle(handle))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	if account.IsClaimed() {
		return nil, ErrAlreadyClaimed
	}

	hash, err := crypto.HashPassword(credential)
	if err != nil {
		return nil, fmt.Errorf("failed to hash credential: %w", err)
	}

	// SetCredential only writes while the credential is still empty, so two
	// racing claims cannot both succeed.
	if err := s.accountRepo.SetCredential(ctx, account.ID, hash); err != nil {
		switch {
		case errors.Is(err, repository.ErrVersionConflict):
			return nil, ErrAlreadyClaimed
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to store credential: %w", err)
	}
	account.CredentialHash = &hash
	account.IsActivated = true
	return account, nil
}

func (s *identityService) Authenticate(ctx context.Context, handle, credential string) (*Principal, error) {
	account, err := s.accountRepo.GetByHandle(ctx, normalizeHandle(handle))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	if !account.IsClaimed() {
		return nil, ErrNotClaimed
	}
	if !crypto.CheckPassword(credential, *account.CredentialHash) {
		return nil, ErrInvalidCredentials
	}
	return principalOf(account), nil
}

func (s *identityService) GetAccount(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return account, nil
}

func (s *identityService) ListByRole(ctx context.Context, role model.Role) ([]model.Account, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	accounts, err := s.accountRepo.ListByRole(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

func (s *identityService) ListCreatedBy(ctx context.Context, creatorID uuid.UUID) ([]model.Account, error) {
	accounts, err := s.accountRepo.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// DeleteAccount removes a participant. Organizers may only delete accounts
// they created; organizer accounts go through the cascade instead.
func (s *identityService) DeleteAccount(ctx context.Context, actor Principal, id uuid.UUID) error {
	if actor.AccountID == id {
		return ErrCannotDeleteSelf
	}
	if !actor.HasRole(model.RoleOrganizer, model.RoleSuperAdmin) {
		return ErrRoleNotPermitted
	}

	target, err := s.GetAccount(ctx, id)
	if err != nil {
		return err
	}
	if target.Role != model.RoleParticipant {
		return ErrRoleNotPermitted
	}
	if actor.Role == model.RoleOrganizer && (target.CreatedBy == nil || *target.CreatedBy != actor.AccountID) {
		return ErrAccountNotFound
	}

	if err := s.accountRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return "", ErrInvalidName
	}
	return name, nil
}

var _ IdentityService = (*identityService)(nil)
