package repository

import (
	"context"
	"errors"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/entity"
	domainRepo "github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type institutionRepository struct{}

func NewInstitutionRepository() domainRepo.InstitutionRepository {
	return &institutionRepository{}
}

func (r *institutionRepository) Create(ctx context.Context, db *gorm.DB, institution *entity.Institution) error {
	return db.WithContext(ctx).Create(institution).Error
}

func (r *institutionRepository) FindAll(ctx context.Context, db *gorm.DB) ([]entity.Institution, error) {
	var institutions []entity.Institution
	err := db.WithContext(ctx).Order("name ASC").Find(&institutions).Error
	if err != nil {
		return nil, err
	}
	return institutions, nil
}

func (r *institutionRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Institution, error) {
	var institution entity.Institution
	err := db.WithContext(ctx).Where("id = ?", id).First(&institution).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &institution, nil
}

func (r *institutionRepository) FindDefault(ctx context.Context, db *gorm.DB) (*entity.Institution, error) {
	var institution entity.Institution
	err := db.WithContext(ctx).Where("is_default = ?", true).First(&institution).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &institution, nil
}

func (r *institutionRepository) ClearDefault(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Model(&entity.Institution{}).
		Where("is_default = ?", true).
		Update("is_default", false).Error
}

func (r *institutionRepository) MarkDefault(ctx context.Context, db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Institution{}).
		Where("id = ?", id).
		Update("is_default", true)
	return result.RowsAffected, result.Error
}
