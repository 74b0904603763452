package entity

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile is the canonical source of a user's role and tenant membership.
// Clinicians and institution admins always carry an InstitutionID.
type UserProfile struct {
	UserID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"user_id"`
	Role          Role       `gorm:"type:user_role;not null;index" json:"role"`
	InstitutionID *uuid.UUID `gorm:"type:uuid;index" json:"institution_id,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	User        *User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Institution *Institution `gorm:"foreignKey:InstitutionID" json:"institution,omitempty"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}

// HasValidBinding reports whether the role/institution pair satisfies the tenant invariant.
func (p *UserProfile) HasValidBinding() bool {
	if p.Role.RequiresInstitution() {
		return p.InstitutionID != nil
	}
	return true
}
