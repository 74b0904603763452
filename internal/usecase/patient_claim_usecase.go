package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/converter"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/delivery/dto"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/entity"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/policy"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/repository"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrOnlyClinicians         = errors.New("only clinicians can claim patients")
	ErrPatientNotFound        = errors.New("patient not found")
	ErrCrossTenantClaim       = errors.New("cannot claim patients from other institutions")
	ErrPatientAlreadyAssigned = errors.New("patient is already assigned to a clinician")
	ErrClaimRaceLost          = errors.New("this patient was just claimed by another clinician, please choose another patient")
)

type PatientClaimUsecase interface {
	ListUnassigned(ctx context.Context, caller *entity.Identity) ([]dto.PatientResponse, error)
	Claim(ctx context.Context, caller *entity.Identity, patientID uuid.UUID) (*dto.ClaimPatientResponse, error)
}

type patientClaimUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	patientRepo  repository.PatientRepository
	auditService service.AuditService
	now          func() time.Time
}

func NewPatientClaimUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	patientRepo repository.PatientRepository,
	auditService service.AuditService,
) PatientClaimUsecase {
	return &patientClaimUsecase{
		db:           db,
		log:          log,
		patientRepo:  patientRepo,
		auditService: auditService,
		now:          time.Now,
	}
}

func (u *patientClaimUsecase) ListUnassigned(ctx context.Context, caller *entity.Identity) ([]dto.PatientResponse, error) {
	scope, err := policy.Resolve(policy.ResourceUnassignedPatients, policy.CallerFromIdentity(caller))
	if err != nil {
		return nil, err
	}

	patients, err := u.patientRepo.FindUnassigned(ctx, u.db, scope)
	if err != nil {
		u.log.Warnf("Failed to list unassigned patients: %+v", err)
		return nil, err
	}

	return converter.PatientsToResponses(patients, u.now()), nil
}

// Claim assigns an unassigned patient of the caller's institution to the calling clinician.
// The pre-read only produces precise errors; the conditional update decides the winner.
func (u *patientClaimUsecase) Claim(ctx context.Context, caller *entity.Identity, patientID uuid.UUID) (*dto.ClaimPatientResponse, error) {
	if caller.Role != entity.RoleClinician {
		return nil, ErrOnlyClinicians
	}
	if caller.InstitutionID == nil {
		return nil, policy.ErrNotLinkedToInstitution
	}
	institutionID := *caller.InstitutionID

	patient, err := u.patientRepo.FindByID(ctx, u.db, patientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", patientID, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	if patient.InstitutionID != institutionID {
		u.log.WithFields(logrus.Fields{
			"clinician_id": caller.UserID,
			"patient_id":   patientID,
		}).Info("Rejected cross-institution claim")
		return nil, ErrCrossTenantClaim
	}

	if patient.IsAssigned() {
		return nil, ErrPatientAlreadyAssigned
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	affected, err := u.patientRepo.ClaimIfUnassigned(ctx, tx, patientID, caller.UserID, institutionID)
	if err != nil {
		u.log.Warnf("Failed to claim patient %s: %+v", patientID, err)
		return nil, err
	}
	if affected == 0 {
		u.log.WithFields(logrus.Fields{
			"clinician_id": caller.UserID,
			"patient_id":   patientID,
		}).Info("Claim lost to a concurrent clinician")
		return nil, ErrClaimRaceLost
	}

	if err := u.auditService.LogUpdate(ctx, tx, &caller.UserID, entity.AuditActionPatientClaim, "patient", patientID.String(),
		entity.JSON{"assigned_clinician_id": nil},
		entity.JSON{"assigned_clinician_id": caller.UserID.String()},
	); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Errorf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return &dto.ClaimPatientResponse{
		Message:   fmt.Sprintf("You are now the assigned clinician for %s", patient.Name),
		PatientID: patientID,
	}, nil
}
