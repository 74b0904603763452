package converter

import (
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/delivery/dto"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/entity"
)

func PerformersToResponses(performers []entity.ClinicianPerformance) []dto.TopPerformerResponse {
	responses := make([]dto.TopPerformerResponse, len(performers))
	for i, p := range performers {
		responses[i] = dto.TopPerformerResponse{
			ClinicianID:      p.ClinicianID,
			FullName:         p.FullName,
			InstitutionID:    p.InstitutionID,
			AssignedPatients: p.AssignedPatients,
			ResolvedAlerts:   p.ResolvedAlerts,
		}
	}
	return responses
}
