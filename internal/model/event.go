package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type EventStatus string

const (
	EventStatusDraft     EventStatus = "DRAFT"
	EventStatusActive    EventStatus = "ACTIVE"
	EventStatusCompleted EventStatus = "COMPLETED"
)

// DefaultGiftBudget applies when an event is created without a budget.
const DefaultGiftBudget = 20

// IDList is a helper type for storing []uuid.UUID as JSONB in PostgreSQL.
type IDList []uuid.UUID

func (l IDList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]uuid.UUID{})
	}
	return json.Marshal([]uuid.UUID(l))
}

func (l *IDList) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("IDList.Scan: unsupported column type")
	}
	return json.Unmarshal(raw, l)
}

// Match is one giver -> receiver pair. It only exists inside its Event.
type Match struct {
	Giver      uuid.UUID  `json:"giver"`
	Receiver   uuid.UUID  `json:"receiver"`
	Revealed   bool       `json:"is_revealed"`
	RevealedAt *time.Time `json:"giver_revealed_date,omitempty"`
}

type Event struct {
	ID           uuid.UUID                  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name         string                     `gorm:"type:varchar(256);not null" json:"name"`
	GiftBudget   float64                    `gorm:"not null;default:0" json:"gift_limit"`
	GiftDate     *time.Time                 `json:"gift_date,omitempty"`
	Status       EventStatus                `gorm:"type:varchar(16);not null;default:'DRAFT'" json:"status"`
	OrganizerID  uuid.UUID                  `gorm:"type:uuid;not null;index" json:"organizer_id"`
	Participants IDList                     `gorm:"type:jsonb;not null;default:'[]'" json:"participants"`
	Matches      datatypes.JSONSlice[Match] `gorm:"type:jsonb;not null;default:'[]'" json:"matches"`
	MatchedAt    *time.Time                 `json:"match_date,omitempty"`
	Version      int64                      `gorm:"not null;default:1" json:"-"`
	CreatedAt    time.Time                  `json:"created_at"`
	UpdatedAt    time.Time                  `json:"updated_at"`
}

func (Event) TableName() string { return "events" }

// IsOwnedBy checks if the given organizer created this event.
func (e *Event) IsOwnedBy(organizerID uuid.UUID) bool {
	return e.OrganizerID == organizerID
}

// MatchFor returns the index of the match where giverID gives, or -1.
func (e *Event) MatchFor(giverID uuid.UUID) int {
	for i := range e.Matches {
		if e.Matches[i].Giver == giverID {
			return i
		}
	}
	return -1
}

// CanTransitionTo reports whether a manual status change is allowed.
// DRAFT -> ACTIVE is reserved to assignment runs and is not listed here.
func (e *Event) CanTransitionTo(next EventStatus) bool {
	transitions := map[EventStatus][]EventStatus{
		EventStatusDraft:     {},
		EventStatusActive:    {EventStatusCompleted},
		EventStatusCompleted: {},
	}
	allowed, ok := transitions[e.Status]
	if !ok {
		return false
	}
	return slices.Contains(allowed, next)
}

// UpdateStatus applies a manual status change if the transition is valid.
func (e *Event) UpdateStatus(next EventStatus) error {
	if !e.CanTransitionTo(next) {
		return fmt.Errorf("cannot transition from %s to %s", e.Status, next)
	}
	e.Status = next
	return nil
}
