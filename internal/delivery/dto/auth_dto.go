package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// LogoutRequest optionally carries the refresh token so it is revoked with the access token.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RegisterPatientRequest creates a login, a patient profile and an unassigned patient record.
// Without institutionId the patient lands in the default institution.
type RegisterPatientRequest struct {
	Email         string     `json:"email" validate:"required,email"`
	Password      string     `json:"password" validate:"required,min=8"`
	FullName      string     `json:"fullName" validate:"required,min=2,max=255"`
	DateOfBirth   string     `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	Gender        string     `json:"gender" validate:"omitempty,oneof=male female other"`
	Condition     string     `json:"condition" validate:"omitempty,max=255"`
	InstitutionID *uuid.UUID `json:"institutionId"`
}

// RegisterClinicianRequest creates a clinician pending approval.
type RegisterClinicianRequest struct {
	Email         string    `json:"email" validate:"required,email"`
	Password      string    `json:"password" validate:"required,min=8"`
	FullName      string    `json:"fullName" validate:"required,min=2,max=255"`
	InstitutionID uuid.UUID `json:"institutionId" validate:"required"`
}

// Response DTOs

type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

type UserResponse struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	FullName       string     `json:"fullName"`
	Role           string     `json:"role,omitempty"`
	InstitutionID  *uuid.UUID `json:"institutionId,omitempty"`
	ApprovalStatus *string    `json:"approvalStatus,omitempty"`
	EmailConfirmed bool       `json:"emailConfirmed"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}
