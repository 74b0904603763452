package entity

import (
	"time"

	"github.com/google/uuid"
)

// Patient is a monitored patient record.
// AssignedClinicianID moves from nil to a clinician exactly once, through the claim path.
type Patient struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID              *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"user_id,omitempty"`
	InstitutionID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"institution_id"`
	AssignedClinicianID *uuid.UUID `gorm:"type:uuid;index" json:"assigned_clinician_id,omitempty"`
	Name                string     `gorm:"type:varchar(255);not null" json:"name"`
	DateOfBirth         *time.Time `gorm:"type:date" json:"date_of_birth,omitempty"`
	Gender              string     `gorm:"type:varchar(20)" json:"gender,omitempty"`
	Condition           string     `gorm:"type:varchar(255)" json:"condition,omitempty"`
	RiskLevel           string     `gorm:"type:varchar(20);not null;default:'low'" json:"risk_level"`
	CreatedAt           time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Institution       *Institution `gorm:"foreignKey:InstitutionID" json:"institution,omitempty"`
	AssignedClinician *User        `gorm:"foreignKey:AssignedClinicianID" json:"assigned_clinician,omitempty"`
}

func (Patient) TableName() string {
	return "patients"
}

// IsAssigned reports whether a clinician has claimed the patient.
func (p *Patient) IsAssigned() bool {
	return p.AssignedClinicianID != nil
}

// Age returns the patient's age in whole years at the given instant, or nil when unknown.
func (p *Patient) Age(at time.Time) *int {
	if p.DateOfBirth == nil {
		return nil
	}
	dob := *p.DateOfBirth
	age := at.Year() - dob.Year()
	if at.Month() < dob.Month() || (at.Month() == dob.Month() && at.Day() < dob.Day()) {
		age--
	}
	return &age
}

// Gender constants
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// Risk levels
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)
