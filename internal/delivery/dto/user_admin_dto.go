package dto

import "github.com/google/uuid"

type ApprovalRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected pending"`
}

// UpdateProfileRequest changes a user's role and tenant binding together so the pair
// is validated as one.
type UpdateProfileRequest struct {
	Role          string     `json:"role" validate:"required,oneof=patient clinician admin institution_admin"`
	InstitutionID *uuid.UUID `json:"institutionId"`
}
