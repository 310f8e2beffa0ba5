package repository

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ugurkiymetli/secret-santa/internal/model"
)

type memoryState struct {
	mu       sync.RWMutex
	seq      int64
	accounts map[uuid.UUID]model.Account
	events   map[uuid.UUID]model.Event
	order    map[uuid.UUID]int64
}

type memoryStore struct {
	txMu  sync.Mutex
	state *memoryState
}

// NewMemoryStore returns a process-local Store. Transactions are serialized
// and roll back by restoring a snapshot, so writes made outside a
// transaction while one is running may be discarded on rollback.
func NewMemoryStore() Store {
	return &memoryStore{
		state: &memoryState{
			accounts: make(map[uuid.UUID]model.Account),
			events:   make(map[uuid.UUID]model.Event),
			order:    make(map[uuid.UUID]int64),
		},
	}
}

func (s *memoryStore) Accounts() AccountRepository { return &memoryAccountRepository{s: s.state} }

func (s *memoryStore) Events() EventRepository { return &memoryEventRepository{s: s.state} }

func (s *memoryStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.state.mu.RLock()
	accounts := maps.Clone(s.state.accounts)
	events := maps.Clone(s.state.events)
	order := maps.Clone(s.state.order)
	s.state.mu.RUnlock()

	if err := fn(&memoryTx{state: s.state}); err != nil {
		s.state.mu.Lock()
		s.state.accounts = accounts
		s.state.events = events
		s.state.order = order
		s.state.mu.Unlock()
		return err
	}
	return nil
}

// memoryTx is the Store handed to a transaction body. Nested transactions
// run inline because the outer one already holds the lock.
type memoryTx struct {
	state *memoryState
}

func (t *memoryTx) Accounts() AccountRepository { return &memoryAccountRepository{s: t.state} }

func (t *memoryTx) Events() EventRepository { return &memoryEventRepository{s: t.state} }

func (t *memoryTx) Transaction(_ context.Context, fn func(tx Store) error) error {
	return fn(t)
}

func (s *memoryState) nextSeq(id uuid.UUID) {
	s.seq++
	s.order[id] = s.seq
}

func cloneAccount(a model.Account) model.Account {
	if a.CredentialHash != nil {
		h := *a.CredentialHash
		a.CredentialHash = &h
	}
	if a.CreatedBy != nil {
		c := *a.CreatedBy
		a.CreatedBy = &c
	}
	return a
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func cloneEvent(e model.Event) model.Event {
	e.GiftDate = cloneTime(e.GiftDate)
	e.MatchedAt = cloneTime(e.MatchedAt)
	e.Participants = slices.Clone(e.Participants)
	matches := slices.Clone(e.Matches)
	for i := range matches {
		matches[i].RevealedAt = cloneTime(matches[i].RevealedAt)
	}
	e.Matches = matches
	return e
}

type memoryAccountRepository struct {
	s *memoryState
}

func (r *memoryAccountRepository) Create(_ context.Context, account *model.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.accounts {
		if existing.Handle == account.Handle {
			return ErrDuplicateKey
		}
	}
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	if _, ok := r.s.accounts[account.ID]; ok {
		return ErrDuplicateKey
	}
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now
	r.s.accounts[account.ID] = cloneAccount(*account)
	r.s.nextSeq(account.ID)
	return nil
}

func (r *memoryAccountRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	account, ok := r.s.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneAccount(account)
	return &out, nil
}

func (r *memoryAccountRepository) GetByHandle(_ context.Context, handle string) (*model.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, account := range r.s.accounts {
		if account.Handle == handle {
			out := cloneAccount(account)
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryAccountRepository) HandleExists(ctx context.Context, handle string) (bool, error) {
	_, err := r.GetByHandle(ctx, handle)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *memoryAccountRepository) filter(keep func(model.Account) bool) []model.Account {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []model.Account
	for _, account := range r.s.accounts {
		if keep(account) {
			out = append(out, cloneAccount(account))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return r.s.order[out[i].ID] < r.s.order[out[j].ID]
	})
	return out
}

func (r *memoryAccountRepository) ListByIDs(_ context.Context, ids []uuid.UUID) ([]model.Account, error) {
	return r.filter(func(a model.Account) bool { return slices.Contains(ids, a.ID) }), nil
}

func (r *memoryAccountRepository) ListByRole(_ context.Context, role model.Role) ([]model.Account, error) {
	return r.filter(func(a model.Account) bool { return a.Role == role }), nil
}

func (r *memoryAccountRepository) ListByCreator(_ context.Context, creatorID uuid.UUID) ([]model.Account, error) {
	return r.filter(func(a model.Account) bool { return a.CreatedBy != nil && *a.CreatedBy == creatorID }), nil
}

func (r *memoryAccountRepository) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.accounts)), nil
}

func (r *memoryAccountRepository) SetCredential(_ context.Context, id uuid.UUID, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	account, ok := r.s.accounts[id]
	if !ok {
		return ErrNotFound
	}
	if account.IsClaimed() {
		return ErrVersionConflict
	}
	account.CredentialHash = &hash
	account.IsActivated = true
	account.UpdatedAt = time.Now()
	r.s.accounts[id] = account
	return nil
}

func (r *memoryAccountRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.accounts[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.accounts, id)
	delete(r.s.order, id)
	return nil
}

func (r *memoryAccountRepository) DeleteByCreator(_ context.Context, creatorID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, account := range r.s.accounts {
		if account.CreatedBy != nil && *account.CreatedBy == creatorID {
			delete(r.s.accounts, id)
			delete(r.s.order, id)
			n++
		}
	}
	return n, nil
}

type memoryEventRepository struct {
	s *memoryState
}

func (r *memoryEventRepository) Create(_ context.Context, event *model.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if _, ok := r.s.events[event.ID]; ok {
		return ErrDuplicateKey
	}
	if event.Version == 0 {
		event.Version = 1
	}
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now
	r.s.events[event.ID] = cloneEvent(*event)
	r.s.nextSeq(event.ID)
	return nil
}

func (r *memoryEventRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	event, ok := r.s.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneEvent(event)
	return &out, nil
}

// filter returns matching events newest first.
func (r *memoryEventRepository) filter(keep func(model.Event) bool) []model.Event {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []model.Event
	for _, event := range r.s.events {
		if keep(event) {
			out = append(out, cloneEvent(event))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return r.s.order[out[i].ID] > r.s.order[out[j].ID]
	})
	return out
}

func (r *memoryEventRepository) List(_ context.Context) ([]model.Event, error) {
	return r.filter(func(model.Event) bool { return true }), nil
}

func (r *memoryEventRepository) ListByOrganizer(_ context.Context, organizerID uuid.UUID) ([]model.Event, error) {
	return r.filter(func(e model.Event) bool { return e.OrganizerID == organizerID }), nil
}

func (r *memoryEventRepository) ListByGiver(_ context.Context, accountID uuid.UUID) ([]model.Event, error) {
	return r.filter(func(e model.Event) bool { return e.MatchFor(accountID) >= 0 }), nil
}

func (r *memoryEventRepository) Update(_ context.Context, event *model.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.events[event.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != event.Version {
		return ErrVersionConflict
	}
	event.Version++
	event.UpdatedAt = time.Now()
	event.CreatedAt = stored.CreatedAt
	event.OrganizerID = stored.OrganizerID
	r.s.events[event.ID] = cloneEvent(*event)
	return nil
}

func (r *memoryEventRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.events[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.events, id)
	delete(r.s.order, id)
	return nil
}

func (r *memoryEventRepository) DeleteByOrganizer(_ context.Context, organizerID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, event := range r.s.events {
		if event.OrganizerID == organizerID {
			delete(r.s.events, id)
			delete(r.s.order, id)
			n++
		}
	}
	return n, nil
}
