package entity

import (
	"time"

	"github.com/google/uuid"
)

// ApprovalStatus gates staff accounts. A nil status means approval was never requested.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

func (s ApprovalStatus) IsValid() bool {
	return s == ApprovalPending || s == ApprovalApproved || s == ApprovalRejected
}

// User represents the centralized authentication table
type User struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Email            string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password         string          `gorm:"type:text;not null" json:"-"`
	FullName         string          `gorm:"type:varchar(255);not null" json:"full_name"`
	ApprovalStatus   *ApprovalStatus `gorm:"type:approval_status;index" json:"approval_status,omitempty"`
	EmailConfirmedAt *time.Time      `json:"email_confirmed_at,omitempty"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Profile *UserProfile `gorm:"foreignKey:UserID" json:"profile,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// IsApproved reports whether the account has been approved by an administrator.
func (u *User) IsApproved() bool {
	return u.ApprovalStatus != nil && *u.ApprovalStatus == ApprovalApproved
}
