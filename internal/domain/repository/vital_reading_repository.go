package repository

import (
	"context"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VitalReadingRepository interface {
	Create(ctx context.Context, db *gorm.DB, reading *entity.VitalReading) error
	FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID, vitalType string, limit int) ([]entity.VitalReading, error)
}
