package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RecordVitalRequest struct {
	Type       string          `json:"type" validate:"required,oneof=heart_rate blood_pressure_systolic blood_pressure_diastolic oxygen_saturation temperature glucose"`
	Value      decimal.Decimal `json:"value"`
	Unit       string          `json:"unit" validate:"required,max=20"`
	RecordedAt *time.Time      `json:"recordedAt"`
}

type VitalReadingResponse struct {
	ID         uuid.UUID       `json:"id"`
	Type       string          `json:"type"`
	Value      decimal.Decimal `json:"value"`
	Unit       string          `json:"unit"`
	RecordedAt time.Time       `json:"recordedAt"`
}
