package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleSuperAdmin  Role = "SUPER_ADMIN"
	RoleOrganizer   Role = "ORGANIZER"
	RoleParticipant Role = "PARTICIPANT"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleOrganizer, RoleParticipant:
		return true
	}
	return false
}

// Account is a login identity. Participants are pre-created by an organizer
// without a credential and become usable once claimed.
type Account struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Handle         string     `gorm:"type:varchar(128);uniqueIndex;not null" json:"handle"`
	Name           string     `gorm:"type:varchar(256);not null" json:"name"`
	Role           Role       `gorm:"type:varchar(16);not null;index" json:"role"`
	CredentialHash *string    `gorm:"type:varchar(256)" json:"-"`
	IsActivated    bool       `gorm:"not null;default:false" json:"is_activated"`
	CreatedBy      *uuid.UUID `gorm:"type:uuid;index" json:"created_by,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (Account) TableName() string { return "accounts" }

// IsClaimed reports whether a credential has been set.
func (a *Account) IsClaimed() bool {
	return a.CredentialHash != nil && *a.CredentialHash != ""
}
