package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/ugurkiymetli/secret-santa/internal/model"
	"github.com/ugurkiymetli/secret-santa/internal/repository"
)

const eventUpdateAttempts = 3

// errNoChange lets an update callback finish without writing.
var errNoChange = errors.New("no change")

type CreateEventInput struct {
	Name       string
	GiftBudget *float64
	GiftDate   *time.Time
}

// EventChanges lists the event fields to change. A nil GiftBudget is left
// alone; GiftDate is only applied when SetGiftDate is true, and a nil date
// clears it.
type EventChanges struct {
	GiftBudget  *float64
	SetGiftDate bool
	GiftDate    *time.Time
}

func (c EventChanges) empty() bool {
	return c.GiftBudget == nil && !c.SetGiftDate
}

// ParticipantEventView is everything a participant may see about an event.
// It never carries other participants or other matches.
type ParticipantEventView struct {
	EventID      uuid.UUID         `json:"id"`
	Name         string            `json:"name"`
	GiftBudget   float64           `json:"gift_limit"`
	GiftDate     *time.Time        `json:"gift_date,omitempty"`
	Status       model.EventStatus `json:"status"`
	Revealed     bool              `json:"is_revealed"`
	RevealedAt   *time.Time        `json:"revealed_at,omitempty"`
	ReceiverName *string           `json:"match_name"`
}

type EventService interface {
	CreateEvent(ctx context.Context, organizerID uuid.UUID, input CreateEventInput) (*model.Event, error)
	GetEvent(ctx context.Context, organizerID, eventID uuid.UUID) (*model.Event, error)
	UpdateBudget(ctx context.Context, organizerID, eventID uuid.UUID, budget float64) (*model.Event, error)
	UpdateGiftDate(ctx context.Context, organizerID, eventID uuid.UUID, date *time.Time) (*model.Event, error)
	// UpdateEvent applies every change in one versioned write.
	UpdateEvent(ctx context.Context, organizerID, eventID uuid.UUID, changes EventChanges) (*model.Event, error)
	CompleteEvent(ctx context.Context, organizerID, eventID uuid.UUID) (*model.Event, error)
	ListEventsForOrganizer(ctx context.Context, organizerID uuid.UUID) ([]model.Event, error)
	ListAllEvents(ctx context.Context) ([]model.Event, error)
	DeleteEvent(ctx context.Context, organizerID, eventID uuid.UUID) error
	ListEventsForParticipant(ctx context.Context, accountID uuid.UUID) ([]ParticipantEventView, error)
}

type eventService struct {
	eventRepo   repository.EventRepository
	accountRepo repository.AccountRepository
}

func NewEventService(eventRepo repository.EventRepository, accountRepo repository.AccountRepository) EventService {
	return &eventService{
		eventRepo:   eventRepo,
		accountRepo: accountRepo,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, organizerID uuid.UUID, input CreateEventInput) (*model.Event, error) {
	name, err := normalizeName(input.Name)
	if err != nil {
		return nil, err
	}
	budget := float64(model.DefaultGiftBudget)
	if input.GiftBudget != nil {
		budget = *input.GiftBudget
	}
	if err := validateBudget(budget); err != nil {
		return nil, err
	}
	if _, err := requireAccount(ctx, s.accountRepo, organizerID, model.RoleOrganizer); err != nil {
		return nil, err
	}

	event := &model.Event{
		Name:         name,
		GiftBudget:   budget,
		GiftDate:     input.GiftDate,
		Status:       model.EventStatusDraft,
		OrganizerID:  organizerID,
		Participants: model.IDList{},
		Matches:      datatypes.JSONSlice[model.Match]{},
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, organizerID, eventID uuid.UUID) (*model.Event, error) {
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

func (s *eventService) UpdateBudget(ctx context.Context, organizerID, eventID uuid.UUID, budget float64) (*model.Event, error) {
	return s.UpdateEvent(ctx, organizerID, eventID, EventChanges{GiftBudget: &budget})
}

func (s *eventService) UpdateGiftDate(ctx context.Context, organizerID, eventID uuid.UUID, date *time.Time) (*model.Event, error) {
	return s.UpdateEvent(ctx, organizerID, eventID, EventChanges{SetGiftDate: true, GiftDate: date})
}

func (s *eventService) UpdateEvent(ctx context.Context, organizerID, eventID uuid.UUID, changes EventChanges) (*model.Event, error) {
	if changes.empty() {
		return nil, ErrNothingToUpdate
	}
	if changes.GiftBudget != nil {
		if err := validateBudget(*changes.GiftBudget); err != nil {
			return nil, err
		}
	}
	return updateEvent(ctx, s.eventRepo, eventID, func(e *model.Event) error {
		if !e.IsOwnedBy(organizerID) {
			return ErrEventNotFound
		}
		if changes.GiftBudget != nil {
			e.GiftBudget = *changes.GiftBudget
		}
		if changes.SetGiftDate {
			e.GiftDate = changes.GiftDate
		}
		return nil
	})
}

func (s *eventService) CompleteEvent(ctx context.Context, organizerID, eventID uuid.UUID) (*model.Event, error) {
	return updateEvent(ctx, s.eventRepo, eventID, func(e *model.Event) error {
		if !e.IsOwnedBy(organizerID) {
			return ErrEventNotFound
		}
		if err := e.UpdateStatus(model.EventStatusCompleted); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidTransition, err)
		}
		return nil
	})
}

func (s *eventService) ListEventsForOrganizer(ctx context.Context, organizerID uuid.UUID) ([]model.Event, error) {
	events, err := s.eventRepo.ListByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (s *eventService) ListAllEvents(ctx context.Context) ([]model.Event, error) {
	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, organizerID, eventID uuid.UUID) error {
	if _, err := s.GetEvent(ctx, organizerID, eventID); err != nil {
		return err
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

func (s *eventService) ListEventsForParticipant(ctx context.Context, accountID uuid.UUID) ([]ParticipantEventView, error) {
	events, err := s.eventRepo.ListByGiver(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	views := make([]ParticipantEventView, 0, len(events))
	for i := range events {
		view, err := participantView(ctx, s.accountRepo, &events[i], accountID)
		if err != nil {
			return nil, err
		}
		if view != nil {
			views = append(views, *view)
		}
	}
	return views, nil
}

// participantView projects event onto what giverID may see. The receiver
// name is only included once the giver has revealed it. Returns nil when
// giverID has no match in the event.
func participantView(ctx context.Context, accounts repository.AccountRepository, event *model.Event, giverID uuid.UUID) (*ParticipantEventView, error) {
	i := event.MatchFor(giverID)
	if i < 0 {
		return nil, nil
	}
	match := event.Matches[i]

	view := &ParticipantEventView{
		EventID:    event.ID,
		Name:       event.Name,
		GiftBudget: event.GiftBudget,
		GiftDate:   event.GiftDate,
		Status:     event.Status,
		Revealed:   match.Revealed,
		RevealedAt: match.RevealedAt,
	}
	if !match.Revealed {
		return view, nil
	}

	receiver, err := accounts.GetByID(ctx, match.Receiver)
	switch {
	case err == nil:
		name := receiver.Name
		view.ReceiverName = &name
	case errors.Is(err, repository.ErrNotFound):
		// receiver was deleted after the draw
	default:
		return nil, fmt.Errorf("failed to find receiver: %w", err)
	}
	return view, nil
}

// updateEvent applies mutate to a fresh copy of the event and writes it back
// with an optimistic version check, retrying when another writer won.
func updateEvent(ctx context.Context, events repository.EventRepository, eventID uuid.UUID, mutate func(*model.Event) error) (*model.Event, error) {
	for attempt := 0; attempt < eventUpdateAttempts; attempt++ {
		event, err := events.GetByID(ctx, eventID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrEventNotFound
			}
			return nil, fmt.Errorf("failed to find event: %w", err)
		}
		if err := mutate(event); err != nil {
			if errors.Is(err, errNoChange) {
				return event, nil
			}
			return nil, err
		}

		err = events.Update(ctx, event)
		switch {
		case err == nil:
			return event, nil
		case errors.Is(err, repository.ErrVersionConflict):
			continue
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrEventNotFound
		default:
			return nil, fmt.Errorf("failed to update event: %w", err)
		}
	}
	return nil, ErrConcurrentUpdate
}

func validateBudget(budget float64) error {
	if budget < 0 || math.IsNaN(budget) || math.IsInf(budget, 0) {
		return ErrInvalidBudget
	}
	return nil
}

var _ EventService = (*eventService)(nil)
