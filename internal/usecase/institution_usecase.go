package usecase

import (
	"context"
	"errors"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/converter"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/delivery/dto"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/entity"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/repository"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrInstitutionNameTaken = errors.New("institution name already exists")

type InstitutionUsecase interface {
	Create(ctx context.Context, caller *entity.Identity, req *dto.CreateInstitutionRequest) (*dto.InstitutionResponse, error)
	List(ctx context.Context) ([]dto.InstitutionResponse, error)
	SetDefault(ctx context.Context, caller *entity.Identity, id uuid.UUID) (*dto.InstitutionResponse, error)
	GetDefault(ctx context.Context) (*dto.InstitutionResponse, error)
}

type institutionUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	institutionRepo repository.InstitutionRepository
	auditService    service.AuditService
}

func NewInstitutionUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	institutionRepo repository.InstitutionRepository,
	auditService service.AuditService,
) InstitutionUsecase {
	return &institutionUsecase{
		db:              db,
		log:             log,
		institutionRepo: institutionRepo,
		auditService:    auditService,
	}
}

func (u *institutionUsecase) Create(ctx context.Context, caller *entity.Identity, req *dto.CreateInstitutionRequest) (*dto.InstitutionResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if req.IsDefault {
		if err := u.institutionRepo.ClearDefault(ctx, tx); err != nil {
			u.log.Warnf("Failed to clear default institution: %+v", err)
			return nil, err
		}
	}

	institution := &entity.Institution{
		Name:      req.Name,
		IsDefault: req.IsDefault,
	}
	if err := u.institutionRepo.Create(ctx, tx, institution); err != nil {
		if isDuplicateKeyError(err, "name") {
			return nil, ErrInstitutionNameTaken
		}
		u.log.Warnf("Failed to create institution: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, &caller.UserID, entity.AuditActionInstitutionCreate, "institution", institution.ID.String(), institution); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Errorf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.InstitutionToResponse(institution), nil
}

func (u *institutionUsecase) List(ctx context.Context) ([]dto.InstitutionResponse, error) {
	institutions, err := u.institutionRepo.FindAll(ctx, u.db)
	if err != nil {
		u.log.Warnf("Failed to list institutions: %+v", err)
		return nil, err
	}
	return converter.InstitutionsToResponses(institutions), nil
}

// SetDefault moves the default flag in one transaction so at most one institution holds it.
func (u *institutionUsecase) SetDefault(ctx context.Context, caller *entity.Identity, id uuid.UUID) (*dto.InstitutionResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	institution, err := u.institutionRepo.FindByID(ctx, tx, id)
	if err != nil {
		u.log.Warnf("Failed to find institution %s: %+v", id, err)
		return nil, err
	}
	if institution == nil {
		return nil, ErrInstitutionNotFound
	}

	previous, err := u.institutionRepo.FindDefault(ctx, tx)
	if err != nil {
		u.log.Warnf("Failed to find default institution: %+v", err)
		return nil, err
	}

	if err := u.institutionRepo.ClearDefault(ctx, tx); err != nil {
		u.log.Warnf("Failed to clear default institution: %+v", err)
		return nil, err
	}
	affected, err := u.institutionRepo.MarkDefault(ctx, tx, id)
	if err != nil {
		u.log.Warnf("Failed to mark default institution: %+v", err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrInstitutionNotFound
	}

	var previousID interface{}
	if previous != nil {
		previousID = previous.ID.String()
	}
	if err := u.auditService.LogUpdate(ctx, tx, &caller.UserID, entity.AuditActionInstitutionDefault, "institution", id.String(),
		entity.JSON{"default_institution_id": previousID},
		entity.JSON{"default_institution_id": id.String()},
	); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Errorf("Failed commit transaction: %+v", err)
		return nil, err
	}

	institution.IsDefault = true
	return converter.InstitutionToResponse(institution), nil
}

func (u *institutionUsecase) GetDefault(ctx context.Context) (*dto.InstitutionResponse, error) {
	institution, err := u.institutionRepo.FindDefault(ctx, u.db)
	if err != nil {
		u.log.Warnf("Failed to find default institution: %+v", err)
		return nil, err
	}
	if institution == nil {
		return nil, ErrNoDefaultInstitution
	}
	return converter.InstitutionToResponse(institution), nil
}
