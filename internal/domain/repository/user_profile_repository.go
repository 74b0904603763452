package repository

import (
	"context"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserProfileRepository interface {
	Create(ctx context.Context, db *gorm.DB, profile *entity.UserProfile) error
	FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.UserProfile, error)
	Update(ctx context.Context, db *gorm.DB, profile *entity.UserProfile) error
}
