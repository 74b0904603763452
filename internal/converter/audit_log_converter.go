package converter

import (
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/delivery/dto"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/entity"
)

// AuditLogToResponse converts an AuditLog entity. System entries carry no user.
func AuditLogToResponse(log *entity.AuditLog) *dto.AuditLogResponse {
	if log == nil {
		return nil
	}

	return &dto.AuditLogResponse{
		ID:        log.ID,
		UserID:    log.UserID,
		User:      UserToResponse(log.User),
		Action:    log.Action,
		Metadata:  log.Metadata,
		CreatedAt: log.CreatedAt,
	}
}

func AuditLogsToResponses(logs []entity.AuditLog) []dto.AuditLogResponse {
	responses := make([]dto.AuditLogResponse, len(logs))
	for i := range logs {
		responses[i] = *AuditLogToResponse(&logs[i])
	}
	return responses
}
