package converter

import (
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/delivery/dto"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/entity"
)

func VitalToResponse(reading *entity.VitalReading) *dto.VitalReadingResponse {
	if reading == nil {
		return nil
	}
	return &dto.VitalReadingResponse{
		ID:         reading.ID,
		Type:       reading.Type,
		Value:      reading.Value,
		Unit:       reading.Unit,
		RecordedAt: reading.RecordedAt,
	}
}

func VitalsToResponses(readings []entity.VitalReading) []dto.VitalReadingResponse {
	responses := make([]dto.VitalReadingResponse, len(readings))
	for i := range readings {
		responses[i] = *VitalToResponse(&readings[i])
	}
	return responses
}
