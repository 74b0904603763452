package dto

import (
	"time"

	"github.com/google/uuid"
)

type AlertResponse struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"userId"`
	Type       string     `json:"type"`
	Severity   string     `json:"severity"`
	Message    string     `json:"message"`
	IsRead     bool       `json:"isRead"`
	Status     string     `json:"status"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
	ResolvedBy *uuid.UUID `json:"resolvedBy,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}
