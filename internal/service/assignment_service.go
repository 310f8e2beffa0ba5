package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/ugurkiymetli/secret-santa/internal/model"
	"github.com/ugurkiymetli/secret-santa/internal/repository"
	"github.com/ugurkiymetli/secret-santa/pkg/crypto"
)

const (
	assignLockPrefix      = "lock:event:"
	DefaultAssignLockTTL  = 30 * time.Second
	assignLockTokenLength = 16
)

type AssignOptions struct {
	// Reshuffle must be set to replace an existing match set. Prior reveals
	// are discarded.
	Reshuffle bool
}

type AssignmentService interface {
	// Assign draws a fresh derangement over participantIDs and stores it on
	// the event, which becomes ACTIVE.
	Assign(ctx context.Context, organizerID, eventID uuid.UUID, participantIDs []uuid.UUID, opts AssignOptions) (*model.Event, error)
	// MarkRevealed records the first time giverID views their receiver.
	// Later calls leave the stored timestamp untouched.
	MarkRevealed(ctx context.Context, eventID, giverID uuid.UUID) (*model.Event, error)
	// Reveal marks the reveal and returns the giver's own view of the event.
	Reveal(ctx context.Context, eventID, giverID uuid.UUID) (*ParticipantEventView, error)
}

type assignmentService struct {
	eventRepo   repository.EventRepository
	accountRepo repository.AccountRepository
	stateStore  repository.StateStore
	lockTTL     time.Duration
	logger      *zap.Logger

	now     func() time.Time
	newRand func() (*rand.Rand, error)
}

func NewAssignmentService(
	eventRepo repository.EventRepository,
	accountRepo repository.AccountRepository,
	stateStore repository.StateStore,
	lockTTL time.Duration,
	logger *zap.Logger,
) AssignmentService {
	if lockTTL <= 0 {
		lockTTL = DefaultAssignLockTTL
	}
	return &assignmentService{
		eventRepo:   eventRepo,
		accountRepo: accountRepo,
		stateStore:  stateStore,
		lockTTL:     lockTTL,
		logger:      logger,
		now:         time.Now,
		newRand:     NewSecureRand,
	}
}

func (s *assignmentService) Assign(ctx context.Context, organizerID, eventID uuid.UUID, participantIDs []uuid.UUID, opts AssignOptions) (*model.Event, error) {
	// 1. Validate input before touching the store
	ids := dedupeIDs(participantIDs)
	if len(ids) < MinParticipants {
		return nil, ErrInsufficientParticipants
	}

	// 2. Check the caller and ownership, then serialize runs on this event
	if _, err := requireAccount(ctx, s.accountRepo, organizerID, model.RoleOrganizer); err != nil {
		return nil, err
	}
	event, err := s.loadOwnedEvent(ctx, organizerID, eventID)
	if err != nil {
		return nil, err
	}

	release, err := s.acquireLock(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	// 3. Re-read under the lock so the version check compares against the
	// state this run actually replaces
	event, err = s.loadOwnedEvent(ctx, organizerID, eventID)
	if err != nil {
		return nil, err
	}
	if event.Status == model.EventStatusCompleted {
		return nil, ErrInvalidTransition
	}
	if len(event.Matches) > 0 && !opts.Reshuffle {
		return nil, ErrReshuffleNotConfirmed
	}

	// 4. Every id must be a participant account this organizer created
	accounts, err := s.accountRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load participants: %w", err)
	}
	if len(accounts) != len(ids) {
		return nil, ErrInvalidParticipant
	}
	for _, a := range accounts {
		if a.Role != model.RoleParticipant || a.CreatedBy == nil || *a.CreatedBy != organizerID {
			return nil, ErrInvalidParticipant
		}
	}

	// 5. Draw and store
	rng, err := s.newRand()
	if err != nil {
		return nil, fmt.Errorf("failed to seed generator: %w", err)
	}
	matches, err := Derange(ids, rng)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	previous := len(event.Matches)
	event.Matches = datatypes.JSONSlice[model.Match](matches)
	event.Participants = model.IDList(ids)
	event.Status = model.EventStatusActive
	event.MatchedAt = &now

	if err := s.eventRepo.Update(ctx, event); err != nil {
		switch {
		case errors.Is(err, repository.ErrVersionConflict):
			return nil, ErrConcurrentUpdate
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to store matches: %w", err)
	}

	s.logger.Info("assignment completed",
		zap.String("event_id", event.ID.String()),
		zap.String("organizer_id", organizerID.String()),
		zap.Int("participants", len(ids)),
		zap.Bool("reshuffled", previous > 0),
	)
	return event, nil
}

func (s *assignmentService) loadOwnedEvent(ctx context.Context, organizerID, eventID uuid.UUID) (*model.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to find event: %w", err)
	}
	if !event.IsOwnedBy(organizerID) {
		return nil, ErrEventNotFound
	}
	return event, nil
}

// acquireLock takes the per-event assignment lock. The returned func
// releases it only if this run still owns it.
func (s *assignmentService) acquireLock(ctx context.Context, eventID uuid.UUID) (func(), error) {
	token, err := crypto.GenerateRandomString(assignLockTokenLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate lock token: %w", err)
	}
	key := assignLockPrefix + eventID.String()

	ok, err := s.stateStore.SetNX(ctx, key, []byte(token), s.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire assignment lock: %w", err)
	}
	if !ok {
		return nil, ErrAssignmentInProgress
	}

	return func() {
		// the request context may already be cancelled
		if _, err := s.stateStore.CompareAndDelete(context.WithoutCancel(ctx), key, []byte(token)); err != nil {
			s.logger.Warn("failed to release assignment lock",
				zap.String("event_id", eventID.String()),
				zap.Error(err),
			)
		}
	}, nil
}

func (s *assignmentService) MarkRevealed(ctx context.Context, eventID, giverID uuid.UUID) (*model.Event, error) {
	event, err := updateEvent(ctx, s.eventRepo, eventID, func(e *model.Event) error {
		i := e.MatchFor(giverID)
		if i < 0 {
			return ErrMatchNotFound
		}
		if e.Matches[i].Revealed {
			return errNoChange
		}
		now := s.now().UTC()
		e.Matches[i].Revealed = true
		e.Matches[i].RevealedAt = &now
		return nil
	})
	if err != nil {
		// a non-giver learns nothing about whether the event exists
		if errors.Is(err, ErrEventNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return event, nil
}

func (s *assignmentService) Reveal(ctx context.Context, eventID, giverID uuid.UUID) (*ParticipantEventView, error) {
	event, err := s.MarkRevealed(ctx, eventID, giverID)
	if err != nil {
		return nil, err
	}
	view, err := participantView(ctx, s.accountRepo, event, giverID)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, ErrMatchNotFound
	}
	return view, nil
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

var _ AssignmentService = (*assignmentService)(nil)
