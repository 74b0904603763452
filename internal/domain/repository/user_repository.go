package repository

import (
	"context"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, db *gorm.DB, user *entity.User) error
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*entity.User, error)
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.User, error)
	FindPending(ctx context.Context, db *gorm.DB, institutionID *uuid.UUID) ([]entity.User, error)
	UpdateApprovalStatus(ctx context.Context, db *gorm.DB, id uuid.UUID, status entity.ApprovalStatus) (int64, error)
	// FindIDsByApprovalStatus pages through ids in ascending order, starting after afterID.
	FindIDsByApprovalStatus(ctx context.Context, db *gorm.DB, status entity.ApprovalStatus, afterID uuid.UUID, limit int) ([]uuid.UUID, error)
}
