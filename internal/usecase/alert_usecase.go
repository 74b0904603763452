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
	ErrAlertNotFound        = errors.New("alert not found")
	ErrAlertAlreadyResolved = errors.New("alert is already resolved")
)

type AlertUsecase interface {
	List(ctx context.Context, caller *entity.Identity, onlyUnresolved bool, severity entity.AlertSeverity) ([]dto.AlertResponse, error)
	Resolve(ctx context.Context, caller *entity.Identity, id uuid.UUID) (*dto.AlertResponse, error)
	ListMine(ctx context.Context, caller *entity.Identity) ([]dto.AlertResponse, error)
	MarkMineRead(ctx context.Context, caller *entity.Identity, id uuid.UUID) error
}

type alertUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	alertRepo    repository.AlertRepository
	patientRepo  repository.PatientRepository
	auditService service.AuditService
	now          func() time.Time
}

func NewAlertUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	alertRepo repository.AlertRepository,
	patientRepo repository.PatientRepository,
	auditService service.AuditService,
) AlertUsecase {
	return &alertUsecase{
		db:           db,
		log:          log,
		alertRepo:    alertRepo,
		patientRepo:  patientRepo,
		auditService: auditService,
		now:          time.Now,
	}
}

func (u *alertUsecase) List(ctx context.Context, caller *entity.Identity, onlyUnresolved bool, severity entity.AlertSeverity) ([]dto.AlertResponse, error) {
	scope, err := policy.Resolve(policy.ResourceAlerts, policy.CallerFromIdentity(caller))
	if err != nil {
		return nil, err
	}

	alerts, err := u.alertRepo.FindByScope(ctx, u.db, scope, repository.AlertFilter{
		OnlyUnresolved: onlyUnresolved,
		Severity:       severity,
	})
	if err != nil {
		u.log.Warnf("Failed to list alerts: %+v", err)
		return nil, err
	}

	return converter.AlertsToResponses(alerts), nil
}

// Resolve closes an open alert. Visibility is decided by the patient who owns the alert.
func (u *alertUsecase) Resolve(ctx context.Context, caller *entity.Identity, id uuid.UUID) (*dto.AlertResponse, error) {
	scope, err := policy.Resolve(policy.ResourceAlerts, policy.CallerFromIdentity(caller))
	if err != nil {
		return nil, err
	}

	alert, err := u.alertRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find alert %s: %+v", id, err)
		return nil, err
	}
	if alert == nil {
		return nil, ErrAlertNotFound
	}

	if !scope.Global() {
		owner, err := u.patientRepo.FindByUserID(ctx, u.db, alert.UserID)
		if err != nil {
			u.log.Warnf("Failed to find alert owner: %+v", err)
			return nil, err
		}
		if owner == nil || !scope.PermitsPatient(owner) {
			return nil, policy.ErrDenied
		}
	}

	if alert.IsResolved() {
		return nil, ErrAlertAlreadyResolved
	}

	at := u.now()

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	affected, err := u.alertRepo.Resolve(ctx, tx, id, caller.UserID, at)
	if err != nil {
		u.log.Warnf("Failed to resolve alert %s: %+v", id, err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrAlertAlreadyResolved
	}

	if err := u.auditService.LogUpdate(ctx, tx, &caller.UserID, entity.AuditActionAlertResolve, "alert", id.String(),
		entity.JSON{"resolved_at": nil},
		entity.JSON{"resolved_at": at, "resolved_by": caller.UserID.String()},
	); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Errorf("Failed commit transaction: %+v", err)
		return nil, err
	}

	alert.ResolvedAt = &at
	alert.ResolvedBy = &caller.UserID
	alert.IsRead = true
	return converter.AlertToResponse(alert), nil
}

func (u *alertUsecase) ListMine(ctx context.Context, caller *entity.Identity) ([]dto.AlertResponse, error) {
	scope, err := policy.ResolveSelf(policy.CallerFromIdentity(caller))
	if err != nil {
		return nil, err
	}

	alerts, err := u.alertRepo.FindByScope(ctx, u.db, scope, repository.AlertFilter{})
	if err != nil {
		u.log.Warnf("Failed to list own alerts: %+v", err)
		return nil, err
	}

	return converter.AlertsToResponses(alerts), nil
}

// MarkMineRead flags one of the caller's own alerts as read.
func (u *alertUsecase) MarkMineRead(ctx context.Context, caller *entity.Identity, id uuid.UUID) error {
	if _, err := policy.ResolveSelf(policy.CallerFromIdentity(caller)); err != nil {
		return err
	}

	affected, err := u.alertRepo.MarkRead(ctx, u.db, id, caller.UserID)
	if err != nil {
		u.log.Warnf("Failed to mark alert %s read: %+v", id, err)
		return err
	}
	if affected == 0 {
		return ErrAlertNotFound
	}
	return nil
}
