package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateInstitutionRequest struct {
	Name      string `json:"name" validate:"required,min=2,max=255"`
	IsDefault bool   `json:"isDefault"`
}

type InstitutionResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
}
