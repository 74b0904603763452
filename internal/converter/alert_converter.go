package converter

import (
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/delivery/dto"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/entity"
)

func AlertToResponse(alert *entity.Alert) *dto.AlertResponse {
	if alert == nil {
		return nil
	}

	status := "active"
	if alert.IsResolved() {
		status = "resolved"
	}

	return &dto.AlertResponse{
		ID:         alert.ID,
		UserID:     alert.UserID,
		Type:       alert.Type,
		Severity:   string(alert.Severity),
		Message:    alert.Message,
		IsRead:     alert.IsRead,
		Status:     status,
		ResolvedAt: alert.ResolvedAt,
		ResolvedBy: alert.ResolvedBy,
		CreatedAt:  alert.CreatedAt,
	}
}

func AlertsToResponses(alerts []entity.Alert) []dto.AlertResponse {
	responses := make([]dto.AlertResponse, len(alerts))
	for i := range alerts {
		responses[i] = *AlertToResponse(&alerts[i])
	}
	return responses
}
