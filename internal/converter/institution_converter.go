package converter

import (
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/delivery/dto"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/entity"
)

func InstitutionToResponse(institution *entity.Institution) *dto.InstitutionResponse {
	if institution == nil {
		return nil
	}
	return &dto.InstitutionResponse{
		ID:        institution.ID,
		Name:      institution.Name,
		IsDefault: institution.IsDefault,
		CreatedAt: institution.CreatedAt,
	}
}

func InstitutionsToResponses(institutions []entity.Institution) []dto.InstitutionResponse {
	responses := make([]dto.InstitutionResponse, len(institutions))
	for i := range institutions {
		responses[i] = *InstitutionToResponse(&institutions[i])
	}
	return responses
}
