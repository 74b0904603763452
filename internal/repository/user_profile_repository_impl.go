package repository

import (
	"context"
	"errors"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/entity"
	domainRepo "github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userProfileRepository struct{}

func NewUserProfileRepository() domainRepo.UserProfileRepository {
	return &userProfileRepository{}
}

func (r *userProfileRepository) Create(ctx context.Context, db *gorm.DB, profile *entity.UserProfile) error {
	return db.WithContext(ctx).Omit("User", "Institution").Create(profile).Error
}

func (r *userProfileRepository) FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.UserProfile, error) {
	var profile entity.UserProfile
	err := db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *userProfileRepository) Update(ctx context.Context, db *gorm.DB, profile *entity.UserProfile) error {
	return db.WithContext(ctx).Omit("User", "Institution").Save(profile).Error
}
