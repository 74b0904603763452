package usecase

import (
	"context"
	"errors"
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
	ErrInvalidDateFormat       = errors.New("invalid date format, use YYYY-MM-DD")
	ErrInstitutionNotFound     = errors.New("institution not found")
	ErrNoDefaultInstitution    = errors.New("no default institution configured")
	ErrInstitutionOutsideScope = errors.New("cannot create patients for another institution")
)

const dateLayout = "2006-01-02"

type PatientUsecase interface {
	List(ctx context.Context, caller *entity.Identity) ([]dto.PatientResponse, error)
	Get(ctx context.Context, caller *entity.Identity, id uuid.UUID) (*dto.PatientResponse, error)
	Create(ctx context.Context, caller *entity.Identity, req *dto.CreatePatientRequest) (*dto.PatientResponse, error)
	GetMine(ctx context.Context, caller *entity.Identity) (*dto.PatientResponse, error)
}

type patientUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	patientRepo     repository.PatientRepository
	institutionRepo repository.InstitutionRepository
	auditService    service.AuditService
	now             func() time.Time
}

func NewPatientUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	patientRepo repository.PatientRepository,
	institutionRepo repository.InstitutionRepository,
	auditService service.AuditService,
) PatientUsecase {
	return &patientUsecase{
		db:              db,
		log:             log,
		patientRepo:     patientRepo,
		institutionRepo: institutionRepo,
		auditService:    auditService,
		now:             time.Now,
	}
}

// List returns the patients visible to the caller. A clinician with no claimed patients gets an empty list.
func (u *patientUsecase) List(ctx context.Context, caller *entity.Identity) ([]dto.PatientResponse, error) {
	scope, err := policy.Resolve(policy.ResourcePatients, policy.CallerFromIdentity(caller))
	if err != nil {
		return nil, err
	}

	patients, err := u.patientRepo.FindByScope(ctx, u.db, scope)
	if err != nil {
		u.log.Warnf("Failed to list patients: %+v", err)
		return nil, err
	}

	return converter.PatientsToResponses(patients, u.now()), nil
}

// Get returns one patient. A patient outside the caller's scope is a denial, not a 404.
func (u *patientUsecase) Get(ctx context.Context, caller *entity.Identity, id uuid.UUID) (*dto.PatientResponse, error) {
	scope, err := policy.Resolve(policy.ResourcePatients, policy.CallerFromIdentity(caller))
	if err != nil {
		return nil, err
	}

	patient, err := u.patientRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", id, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}
	if !scope.PermitsPatient(patient) {
		return nil, policy.ErrDenied
	}

	return converter.PatientToResponse(patient, u.now()), nil
}

// Create registers a patient record without a login. It always starts unassigned.
func (u *patientUsecase) Create(ctx context.Context, caller *entity.Identity, req *dto.CreatePatientRequest) (*dto.PatientResponse, error) {
	institutionID, err := u.targetInstitution(ctx, caller, req.InstitutionID)
	if err != nil {
		return nil, err
	}

	patient := &entity.Patient{
		InstitutionID: institutionID,
		Name:          req.Name,
		Gender:        req.Gender,
		Condition:     req.Condition,
		RiskLevel:     entity.RiskLow,
	}
	if req.RiskLevel != "" {
		patient.RiskLevel = req.RiskLevel
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse(dateLayout, req.DateOfBirth)
		if err != nil {
			return nil, ErrInvalidDateFormat
		}
		patient.DateOfBirth = &dob
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.patientRepo.Create(ctx, tx, patient); err != nil {
		u.log.Warnf("Failed to create patient: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, &caller.UserID, entity.AuditActionPatientCreate, "patient", patient.ID.String(), patient); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Errorf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.PatientToResponse(patient, u.now()), nil
}

func (u *patientUsecase) GetMine(ctx context.Context, caller *entity.Identity) (*dto.PatientResponse, error) {
	if _, err := policy.ResolveSelf(policy.CallerFromIdentity(caller)); err != nil {
		return nil, err
	}

	patient, err := u.patientRepo.FindByUserID(ctx, u.db, caller.UserID)
	if err != nil {
		u.log.Warnf("Failed to find own patient record: %+v", err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	return converter.PatientToResponse(patient, u.now()), nil
}

// targetInstitution picks the institution a new patient belongs to. Admins may choose any
// institution and fall back to the default; everyone else is pinned to their own.
func (u *patientUsecase) targetInstitution(ctx context.Context, caller *entity.Identity, requested *uuid.UUID) (uuid.UUID, error) {
	switch caller.Role {
	case entity.RoleAdmin:
		if requested != nil {
			inst, err := u.institutionRepo.FindByID(ctx, u.db, *requested)
			if err != nil {
				u.log.Warnf("Failed to find institution: %+v", err)
				return uuid.Nil, err
			}
			if inst == nil {
				return uuid.Nil, ErrInstitutionNotFound
			}
			return inst.ID, nil
		}
		inst, err := u.institutionRepo.FindDefault(ctx, u.db)
		if err != nil {
			u.log.Warnf("Failed to find default institution: %+v", err)
			return uuid.Nil, err
		}
		if inst == nil {
			return uuid.Nil, ErrNoDefaultInstitution
		}
		return inst.ID, nil
	case entity.RoleInstitutionAdmin, entity.RoleClinician:
		if caller.InstitutionID == nil {
			return uuid.Nil, policy.ErrNotLinkedToInstitution
		}
		if requested != nil && *requested != *caller.InstitutionID {
			return uuid.Nil, ErrInstitutionOutsideScope
		}
		return *caller.InstitutionID, nil
	}
	return uuid.Nil, policy.ErrDenied
}
