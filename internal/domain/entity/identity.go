package entity

import "github.com/google/uuid"

// Identity is the resolved caller of an authenticated request.
type Identity struct {
	UserID         uuid.UUID
	Email          string
	EmailConfirmed bool
	Role           Role
	InstitutionID  *uuid.UUID
	ApprovalStatus *ApprovalStatus
	TokenID        string
}

// IsApproved treats admins as always approved.
func (i *Identity) IsApproved() bool {
	if i.Role == RoleAdmin {
		return true
	}
	return i.ApprovalStatus != nil && *i.ApprovalStatus == ApprovalApproved
}
