package repository

import (
	"context"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/entity"
	domainRepo "github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type vitalReadingRepository struct{}

func NewVitalReadingRepository() domainRepo.VitalReadingRepository {
	return &vitalReadingRepository{}
}

func (r *vitalReadingRepository) Create(ctx context.Context, db *gorm.DB, reading *entity.VitalReading) error {
	return db.WithContext(ctx).Create(reading).Error
}

// FindByUserID returns the newest readings first. An empty vitalType matches every type.
func (r *vitalReadingRepository) FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID, vitalType string, limit int) ([]entity.VitalReading, error) {
	var readings []entity.VitalReading
	query := db.WithContext(ctx).Where("user_id = ?", userID)
	if vitalType != "" {
		query = query.Where("type = ?", vitalType)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Order("recorded_at DESC").Find(&readings).Error
	if err != nil {
		return nil, err
	}
	return readings, nil
}
