package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ugurkiymetli/secret-santa/internal/model"
	"github.com/ugurkiymetli/secret-santa/internal/repository"
	jwtpkg "github.com/ugurkiymetli/secret-santa/pkg/jwt"
)

type testEnv struct {
	store      repository.Store
	state      repository.StateStore
	identity   IdentityService
	events     EventService
	assignment AssignmentService
	cascade    CascadeService
	gate       AuthorizationGate
	jwt        *jwtpkg.Manager
}

func newTestEnv(t *testing.T, opts ...jwtpkg.Option) *testEnv {
	t.Helper()
	logger := zaptest.NewLogger(t)
	store := repository.NewMemoryStore()
	state := repository.NewMemoryStateStore()
	manager := jwtpkg.NewManager("test-signing-key", "secret-santa-test", 0, opts...)

	return &testEnv{
		store:      store,
		state:      state,
		identity:   NewIdentityService(store.Accounts()),
		events:     NewEventService(store.Events(), store.Accounts()),
		assignment: NewAssignmentService(store.Events(), store.Accounts(), state, 0, logger),
		cascade:    NewCascadeService(store, logger),
		gate:       NewAuthorizationGate(manager, state, store.Accounts(), logger),
		jwt:        manager,
	}
}

func (e *testEnv) superAdmin(t *testing.T) Principal {
	t.Helper()
	account, err := e.identity.CreateAccount(context.Background(), nil, "Root", model.RoleSuperAdmin)
	require.NoError(t, err)
	return *principalOf(account)
}

func (e *testEnv) organizer(t *testing.T, admin Principal, name string) Principal {
	t.Helper()
	account, err := e.identity.CreateAccount(context.Background(), &admin, name, model.RoleOrganizer)
	require.NoError(t, err)
	return *principalOf(account)
}

func (e *testEnv) participants(t *testing.T, organizer Principal, names ...string) []uuid.UUID {
	t.Helper()
	ids := make([]uuid.UUID, 0, len(names))
	for _, name := range names {
		account, err := e.identity.CreateAccount(context.Background(), &organizer, name, model.RoleParticipant)
		require.NoError(t, err)
		ids = append(ids, account.ID)
	}
	return ids
}

func (e *testEnv) event(t *testing.T, organizer Principal, name string) *model.Event {
	t.Helper()
	event, err := e.events.CreateEvent(context.Background(), organizer.AccountID, CreateEventInput{Name: name})
	require.NoError(t, err)
	return event
}
