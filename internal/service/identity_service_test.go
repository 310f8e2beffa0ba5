package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ugurkiymetli/secret-santa/internal/model"
	"github.com/ugurkiymetli/secret-santa/internal/repository"
)

func TestCreateAccount_Bootstrap(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	root, err := env.identity.CreateAccount(ctx, nil, "  Root  ", "")
	require.NoError(t, err)
	assert.Equal(t, model.RoleSuperAdmin, root.Role)
	assert.Equal(t, "Root", root.Name)
	assert.False(t, root.IsClaimed())
	assert.Regexp(t, handlePattern, root.Handle)

	_, err = env.identity.CreateAccount(ctx, nil, "Second", model.RoleSuperAdmin)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCreateAccount_BootstrapRejectsParticipant(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.identity.CreateAccount(context.Background(), nil, "Alice", model.RoleParticipant)
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestCreateAccount_RoleRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.superAdmin(t)
	org := env.organizer(t, admin, "Olive")

	t.Run("super admin cannot create participants", func(t *testing.T) {
		_, err := env.identity.CreateAccount(ctx, &admin, "Pat", model.RoleParticipant)
		assert.ErrorIs(t, err, ErrRoleNotPermitted)
	})

	t.Run("organizer creates participants it owns", func(t *testing.T) {
		p, err := env.identity.CreateAccount(ctx, &org, "Pat", "")
		require.NoError(t, err)
		assert.Equal(t, model.RoleParticipant, p.Role)
		require.NotNil(t, p.CreatedBy)
		assert.Equal(t, org.AccountID, *p.CreatedBy)
	})

	t.Run("organizer cannot create organizers", func(t *testing.T) {
		_, err := env.identity.CreateAccount(ctx, &org, "Other", model.RoleOrganizer)
		assert.ErrorIs(t, err, ErrRoleNotPermitted)
	})

	t.Run("participant cannot create accounts", func(t *testing.T) {
		ids := env.participants(t, org, "Quinn")
		p := Principal{AccountID: ids[0], Role: model.RoleParticipant}
		_, err := env.identity.CreateAccount(ctx, &p, "Sam", model.RoleParticipant)
		assert.ErrorIs(t, err, ErrRoleNotPermitted)
	})

	t.Run("blank name", func(t *testing.T) {
		_, err := env.identity.CreateAccount(ctx, &org, "   ", "")
		assert.ErrorIs(t, err, ErrInvalidName)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestCreateAccount_GenerationExhausted(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := &identityService{
		accountRepo:    store.Accounts(),
		generateHandle: func() (string, error) { return "red-fox", nil },
	}
	ctx := context.Background()

	first, err := svc.CreateAccount(ctx, nil, "Root", model.RoleSuperAdmin)
	require.NoError(t, err)
	assert.Equal(t, "red-fox", first.Handle)

	admin := *principalOf(first)
	_, err = svc.CreateAccount(ctx, &admin, "Olive", model.RoleOrganizer)
	assert.ErrorIs(t, err, ErrGenerationExhausted)
}

// racingAccounts hides existing handles so the unique constraint is the
// only thing that catches a collision.
type racingAccounts struct {
	repository.AccountRepository
}

func (racingAccounts) HandleExists(context.Context, string) (bool, error) { return false, nil }

func TestCreateAccount_DuplicateHandleRace(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := &identityService{
		accountRepo:    racingAccounts{store.Accounts()},
		generateHandle: func() (string, error) { return "red-fox", nil },
	}
	ctx := context.Background()

	first, err := svc.CreateAccount(ctx, nil, "Root", model.RoleSuperAdmin)
	require.NoError(t, err)

	admin := *principalOf(first)
	_, err = svc.CreateAccount(ctx, &admin, "Olive", model.RoleOrganizer)
	assert.ErrorIs(t, err, ErrDuplicateHandle)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestClaimAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.superAdmin(t)
	org := env.organizer(t, admin, "Olive")
	ids := env.participants(t, org, "Alice")

	alice, err := env.identity.GetAccount(ctx, ids[0])
	require.NoError(t, err)

	_, err = env.identity.ClaimAccount(ctx, "no-such-handle", "secret1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.identity.ClaimAccount(ctx, alice.Handle, "short")
	assert.ErrorIs(t, err, ErrCredentialTooShort)

	claimed, err := env.identity.ClaimAccount(ctx, " "+alice.Handle+" ", "secret1")
	require.NoError(t, err)
	assert.True(t, claimed.IsClaimed())
	assert.True(t, claimed.IsActivated)

	_, err = env.identity.ClaimAccount(ctx, alice.Handle, "another1")
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAuthenticate_DistinctFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.superAdmin(t)
	org := env.organizer(t, admin, "Olive")
	ids := env.participants(t, org, "Alice", "Bob")

	alice, err := env.identity.GetAccount(ctx, ids[0])
	require.NoError(t, err)
	bob, err := env.identity.GetAccount(ctx, ids[1])
	require.NoError(t, err)
	_, err = env.identity.ClaimAccount(ctx, alice.Handle, "secret1")
	require.NoError(t, err)

	_, err = env.identity.Authenticate(ctx, "no-such-handle", "secret1")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	_, err = env.identity.Authenticate(ctx, bob.Handle, "secret1")
	assert.ErrorIs(t, err, ErrNotClaimed)

	_, err = env.identity.Authenticate(ctx, alice.Handle, "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	p, err := env.identity.Authenticate(ctx, alice.Handle, "secret1")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, p.AccountID)
	assert.Equal(t, model.RoleParticipant, p.Role)
	assert.Equal(t, alice.Handle, p.Handle)
}

func TestRegisterOrganizer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	org, err := env.identity.RegisterOrganizer(ctx, "Olive", "Olive-Tree", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "olive-tree", org.Handle)
	assert.Equal(t, model.RoleOrganizer, org.Role)
	assert.True(t, org.IsClaimed())

	p, err := env.identity.Authenticate(ctx, "olive-tree", "secret1")
	require.NoError(t, err)
	assert.Equal(t, org.ID, p.AccountID)

	_, err = env.identity.RegisterOrganizer(ctx, "Other", "olive-tree", "secret1")
	assert.ErrorIs(t, err, ErrDuplicateHandle)

	_, err = env.identity.RegisterOrganizer(ctx, "Other", "a b", "secret1")
	assert.ErrorIs(t, err, ErrInvalidHandle)

	_, err = env.identity.RegisterOrganizer(ctx, "Other", "other-handle", "123")
	assert.ErrorIs(t, err, ErrCredentialTooShort)
}

func TestListByRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.superAdmin(t)
	org := env.organizer(t, admin, "Olive")
	env.participants(t, org, "Alice", "Bob")

	participants, err := env.identity.ListByRole(ctx, model.RoleParticipant)
	require.NoError(t, err)
	require.Len(t, participants, 2)
	assert.Equal(t, "Alice", participants[0].Name)
	assert.Equal(t, "Bob", participants[1].Name)

	organizers, err := env.identity.ListByRole(ctx, model.RoleOrganizer)
	require.NoError(t, err)
	assert.Len(t, organizers, 1)

	_, err = env.identity.ListByRole(ctx, model.Role("JANITOR"))
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestDeleteAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.superAdmin(t)
	olive := env.organizer(t, admin, "Olive")
	oscar := env.organizer(t, admin, "Oscar")
	ids := env.participants(t, olive, "Alice")

	assert.ErrorIs(t, env.identity.DeleteAccount(ctx, olive, olive.AccountID), ErrCannotDeleteSelf)
	assert.ErrorIs(t, env.identity.DeleteAccount(ctx, oscar, ids[0]), ErrAccountNotFound)
	assert.ErrorIs(t, env.identity.DeleteAccount(ctx, admin, oscar.AccountID), ErrRoleNotPermitted)
	assert.ErrorIs(t, env.identity.DeleteAccount(ctx, olive, uuid.New()), ErrAccountNotFound)

	require.NoError(t, env.identity.DeleteAccount(ctx, olive, ids[0]))
	_, err := env.identity.GetAccount(ctx, ids[0])
	assert.ErrorIs(t, err, ErrNotFound)
}
