package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ugurkiymetli/secret-santa/internal/model"
)

type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Event, error)
	List(ctx context.Context) ([]model.Event, error)
	ListByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]model.Event, error)
	ListByGiver(ctx context.Context, accountID uuid.UUID) ([]model.Event, error)
	// Update writes the event only if its stored version still equals
	// event.Version, then increments event.Version.
	Update(ctx context.Context, event *model.Event) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByOrganizer(ctx context.Context, organizerID uuid.UUID) (int64, error)
}
