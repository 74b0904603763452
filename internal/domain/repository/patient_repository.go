package repository

import (
	"context"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/entity"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/policy"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PatientRepository interface {
	Create(ctx context.Context, db *gorm.DB, patient *entity.Patient) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Patient, error)
	FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.Patient, error)
	FindByScope(ctx context.Context, db *gorm.DB, scope policy.Scope) ([]entity.Patient, error)
	FindUnassigned(ctx context.Context, db *gorm.DB, scope policy.Scope) ([]entity.Patient, error)

	// ClaimIfUnassigned sets the assigned clinician only while the row is still unassigned
	// and belongs to institutionID. Returns affected rows: 1 = claimed, 0 = lost the race.
	ClaimIfUnassigned(ctx context.Context, db *gorm.DB, patientID, clinicianID, institutionID uuid.UUID) (int64, error)
}
