package repository

import (
	"context"
	"errors"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/entity"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/policy"
	domainRepo "github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type patientRepository struct{}

func NewPatientRepository() domainRepo.PatientRepository {
	return &patientRepository{}
}

func (r *patientRepository) Create(ctx context.Context, db *gorm.DB, patient *entity.Patient) error {
	return db.WithContext(ctx).Omit("Institution", "AssignedClinician").Create(patient).Error
}

func (r *patientRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Patient, error) {
	var patient entity.Patient
	err := db.WithContext(ctx).Preload("Institution").Where("id = ?", id).First(&patient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &patient, nil
}

func (r *patientRepository) FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.Patient, error) {
	var patient entity.Patient
	err := db.WithContext(ctx).Preload("Institution").Where("user_id = ?", userID).First(&patient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &patient, nil
}

func (r *patientRepository) FindByScope(ctx context.Context, db *gorm.DB, scope policy.Scope) ([]entity.Patient, error) {
	var patients []entity.Patient
	err := scopePatients(db.WithContext(ctx).Model(&entity.Patient{}), scope).
		Preload("Institution").
		Order("patients.created_at DESC").
		Find(&patients).Error
	if err != nil {
		return nil, err
	}
	return patients, nil
}

func (r *patientRepository) FindUnassigned(ctx context.Context, db *gorm.DB, scope policy.Scope) ([]entity.Patient, error) {
	var patients []entity.Patient
	err := scopePatients(db.WithContext(ctx).Model(&entity.Patient{}), scope).
		Where("patients.assigned_clinician_id IS NULL").
		Preload("Institution").
		Order("patients.created_at ASC").
		Find(&patients).Error
	if err != nil {
		return nil, err
	}
	return patients, nil
}

// ClaimIfUnassigned is a compare-and-set evaluated by PostgreSQL: the IS NULL guard on the
// UPDATE itself, not an earlier read, decides which concurrent claimer wins.
func (r *patientRepository) ClaimIfUnassigned(ctx context.Context, db *gorm.DB, patientID, clinicianID, institutionID uuid.UUID) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Patient{}).
		Where("id = ? AND assigned_clinician_id IS NULL AND institution_id = ?", patientID, institutionID).
		Update("assigned_clinician_id", clinicianID)
	return result.RowsAffected, result.Error
}
