package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ugurkiymetli/secret-santa/internal/model"
)

type pgEventRepository struct {
	db *gorm.DB
}

func NewPGEventRepository(db *gorm.DB) EventRepository {
	return &pgEventRepository{db: db}
}

func (r *pgEventRepository) Create(ctx context.Context, event *model.Event) error {
	if event.Version == 0 {
		event.Version = 1
	}
	return translateError(r.db.WithContext(ctx).Create(event).Error)
}

func (r *pgEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	var event model.Event
	if err := r.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &event, nil
}

func (r *pgEventRepository) List(ctx context.Context) ([]model.Event, error) {
	var events []model.Event
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&events).Error
	return events, err
}

func (r *pgEventRepository) ListByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]model.Event, error) {
	var events []model.Event
	err := r.db.WithContext(ctx).
		Where("organizer_id = ?", organizerID).
		Order("created_at DESC").
		Find(&events).Error
	return events, err
}

func (r *pgEventRepository) ListByGiver(ctx context.Context, accountID uuid.UUID) ([]model.Event, error) {
	filter, err := json.Marshal([]map[string]uuid.UUID{{"giver": accountID}})
	if err != nil {
		return nil, err
	}
	var events []model.Event
	err = r.db.WithContext(ctx).
		Where("matches @> ?::jsonb", string(filter)).
		Order("created_at DESC").
		Find(&events).Error
	return events, err
}

func (r *pgEventRepository) Update(ctx context.Context, event *model.Event) error {
	res := r.db.WithContext(ctx).
		Model(&model.Event{}).
		Where("id = ? AND version = ?", event.ID, event.Version).
		Updates(map[string]interface{}{
			"name":         event.Name,
			"gift_budget":  event.GiftBudget,
			"gift_date":    event.GiftDate,
			"status":       event.Status,
			"participants": event.Participants,
			"matches":      event.Matches,
			"matched_at":   event.MatchedAt,
			"version":      gorm.Expr("version + 1"),
			"updated_at":   time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, event.ID); err != nil {
			return err
		}
		return ErrVersionConflict
	}
	event.Version++
	return nil
}

func (r *pgEventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Event{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgEventRepository) DeleteByOrganizer(ctx context.Context, organizerID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&model.Event{}, "organizer_id = ?", organizerID)
	return res.RowsAffected, res.Error
}
