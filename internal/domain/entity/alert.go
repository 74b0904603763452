package entity

import (
	"time"

	"github.com/google/uuid"
)

type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "low"
	SeverityMedium   AlertSeverity = "medium"
	SeverityHigh     AlertSeverity = "high"
	SeverityCritical AlertSeverity = "critical"
)

func (s AlertSeverity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Alert is raised against a patient's own login (UserID), not the patient row.
type Alert struct {
	ID         uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID     uuid.UUID     `gorm:"type:uuid;not null;index" json:"user_id"`
	Type       string        `gorm:"type:varchar(100);not null" json:"type"`
	Severity   AlertSeverity `gorm:"type:alert_severity;not null;index" json:"severity"`
	Message    string        `gorm:"type:text;not null" json:"message"`
	IsRead     bool          `gorm:"not null;default:false" json:"is_read"`
	ResolvedAt *time.Time    `gorm:"index" json:"resolved_at,omitempty"`
	ResolvedBy *uuid.UUID    `gorm:"type:uuid" json:"resolved_by,omitempty"`
	CreatedAt  time.Time     `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Alert) TableName() string {
	return "alerts"
}

func (a *Alert) IsResolved() bool {
	return a.ResolvedAt != nil
}
