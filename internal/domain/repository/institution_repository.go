package repository

import (
	"context"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InstitutionRepository interface {
	Create(ctx context.Context, db *gorm.DB, institution *entity.Institution) error
	FindAll(ctx context.Context, db *gorm.DB) ([]entity.Institution, error)
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Institution, error)
	FindDefault(ctx context.Context, db *gorm.DB) (*entity.Institution, error)
	ClearDefault(ctx context.Context, db *gorm.DB) error
	MarkDefault(ctx context.Context, db *gorm.DB, id uuid.UUID) (int64, error)
}
