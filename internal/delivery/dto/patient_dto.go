package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreatePatientRequest struct {
	Name          string     `json:"name" validate:"required,min=2,max=255"`
	DateOfBirth   string     `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	Gender        string     `json:"gender" validate:"omitempty,oneof=male female other"`
	Condition     string     `json:"condition" validate:"omitempty,max=255"`
	RiskLevel     string     `json:"riskLevel" validate:"omitempty,oneof=low medium high"`
	InstitutionID *uuid.UUID `json:"institutionId"`
}

// Response DTOs

type PatientResponse struct {
	ID                  uuid.UUID  `json:"id"`
	Name                string     `json:"name"`
	Age                 *int       `json:"age"`
	Gender              string     `json:"gender,omitempty"`
	Condition           string     `json:"condition,omitempty"`
	RiskLevel           string     `json:"riskLevel"`
	Status              string     `json:"status"`
	InstitutionID       uuid.UUID  `json:"institutionId"`
	InstitutionName     string     `json:"institutionName,omitempty"`
	AssignedClinicianID *uuid.UUID `json:"assignedClinicianId"`
	CreatedAt           time.Time  `json:"createdAt"`
}

type ClaimPatientResponse struct {
	Message   string    `json:"message"`
	PatientID uuid.UUID `json:"patientId"`
}
