package converter

import (
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/delivery/dto"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/entity"
)

// UserToResponse converts a User entity to UserResponse DTO.
// Role and institution are filled only when the profile is loaded.
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	response := &dto.UserResponse{
		ID:             user.ID,
		Email:          user.Email,
		FullName:       user.FullName,
		EmailConfirmed: user.EmailConfirmedAt != nil,
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}

	if user.ApprovalStatus != nil {
		status := string(*user.ApprovalStatus)
		response.ApprovalStatus = &status
	}

	if user.Profile != nil {
		response.Role = string(user.Profile.Role)
		response.InstitutionID = user.Profile.InstitutionID
	}

	return response
}

func UsersToResponses(users []entity.User) []dto.UserResponse {
	responses := make([]dto.UserResponse, len(users))
	for i := range users {
		responses[i] = *UserToResponse(&users[i])
	}
	return responses
}
