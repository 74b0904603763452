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
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrInvalidVitalValue  = errors.New("vital value must be greater than zero")
	ErrFutureVitalReading = errors.New("recordedAt cannot be in the future")
)

const (
	defaultVitalLimit = 100
	maxVitalLimit     = 500
)

// vitalThreshold raises an alert when a reading leaves [Low, High].
type vitalThreshold struct {
	Low, High decimal.Decimal
	Severity  entity.AlertSeverity
}

var vitalThresholds = map[string][]vitalThreshold{
	entity.VitalHeartRate: {
		{Low: decimal.NewFromInt(40), High: decimal.NewFromInt(140), Severity: entity.SeverityCritical},
		{Low: decimal.NewFromInt(50), High: decimal.NewFromInt(120), Severity: entity.SeverityHigh},
	},
	entity.VitalOxygenSaturation: {
		{Low: decimal.NewFromInt(88), High: decimal.NewFromInt(100), Severity: entity.SeverityCritical},
		{Low: decimal.NewFromInt(92), High: decimal.NewFromInt(100), Severity: entity.SeverityHigh},
	},
	entity.VitalBloodPressureSys: {
		{Low: decimal.NewFromInt(80), High: decimal.NewFromInt(180), Severity: entity.SeverityCritical},
		{Low: decimal.NewFromInt(90), High: decimal.NewFromInt(140), Severity: entity.SeverityMedium},
	},
	entity.VitalTemperature: {
		{Low: decimal.NewFromFloat(35.0), High: decimal.NewFromFloat(39.5), Severity: entity.SeverityHigh},
		{Low: decimal.NewFromFloat(35.5), High: decimal.NewFromFloat(38.0), Severity: entity.SeverityMedium},
	},
}

// evaluateVital returns the alert a reading triggers, or nil. Thresholds are ordered from most to least severe.
func evaluateVital(reading *entity.VitalReading) *entity.Alert {
	for _, th := range vitalThresholds[reading.Type] {
		if reading.Value.LessThan(th.Low) || reading.Value.GreaterThan(th.High) {
			return &entity.Alert{
				UserID:   reading.UserID,
				Type:     reading.Type,
				Severity: th.Severity,
				Message:  fmt.Sprintf("%s reading %s %s is outside %s-%s", reading.Type, reading.Value.String(), reading.Unit, th.Low.String(), th.High.String()),
			}
		}
	}
	return nil
}

type VitalUsecase interface {
	ListForPatient(ctx context.Context, caller *entity.Identity, patientID uuid.UUID, vitalType string, limit int) ([]dto.VitalReadingResponse, error)
	ListMine(ctx context.Context, caller *entity.Identity, vitalType string, limit int) ([]dto.VitalReadingResponse, error)
	RecordMine(ctx context.Context, caller *entity.Identity, req *dto.RecordVitalRequest) (*dto.VitalReadingResponse, error)
}

type vitalUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	vitalRepo    repository.VitalReadingRepository
	patientRepo  repository.PatientRepository
	alertRepo    repository.AlertRepository
	auditService service.AuditService
	now          func() time.Time
}

func NewVitalUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	vitalRepo repository.VitalReadingRepository,
	patientRepo repository.PatientRepository,
	alertRepo repository.AlertRepository,
	auditService service.AuditService,
) VitalUsecase {
	return &vitalUsecase{
		db:           db,
		log:          log,
		vitalRepo:    vitalRepo,
		patientRepo:  patientRepo,
		alertRepo:    alertRepo,
		auditService: auditService,
		now:          time.Now,
	}
}

func clampVitalLimit(limit int) int {
	if limit <= 0 {
		return defaultVitalLimit
	}
	if limit > maxVitalLimit {
		return maxVitalLimit
	}
	return limit
}

func (u *vitalUsecase) ListForPatient(ctx context.Context, caller *entity.Identity, patientID uuid.UUID, vitalType string, limit int) ([]dto.VitalReadingResponse, error) {
	scope, err := policy.Resolve(policy.ResourceVitals, policy.CallerFromIdentity(caller))
	if err != nil {
		return nil, err
	}

	patient, err := u.patientRepo.FindByID(ctx, u.db, patientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", patientID, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}
	if !scope.PermitsPatient(patient) {
		return nil, policy.ErrDenied
	}
	// records created by staff have no login and so no readings
	if patient.UserID == nil {
		return []dto.VitalReadingResponse{}, nil
	}

	readings, err := u.vitalRepo.FindByUserID(ctx, u.db, *patient.UserID, vitalType, clampVitalLimit(limit))
	if err != nil {
		u.log.Warnf("Failed to list vitals: %+v", err)
		return nil, err
	}

	return converter.VitalsToResponses(readings), nil
}

func (u *vitalUsecase) ListMine(ctx context.Context, caller *entity.Identity, vitalType string, limit int) ([]dto.VitalReadingResponse, error) {
	if _, err := policy.ResolveSelf(policy.CallerFromIdentity(caller)); err != nil {
		return nil, err
	}

	readings, err := u.vitalRepo.FindByUserID(ctx, u.db, caller.UserID, vitalType, clampVitalLimit(limit))
	if err != nil {
		u.log.Warnf("Failed to list own vitals: %+v", err)
		return nil, err
	}

	return converter.VitalsToResponses(readings), nil
}

// RecordMine stores a reading submitted by the patient and raises an alert when it is out of range.
func (u *vitalUsecase) RecordMine(ctx context.Context, caller *entity.Identity, req *dto.RecordVitalRequest) (*dto.VitalReadingResponse, error) {
	if _, err := policy.ResolveSelf(policy.CallerFromIdentity(caller)); err != nil {
		return nil, err
	}
	if !req.Value.IsPositive() {
		return nil, ErrInvalidVitalValue
	}

	now := u.now()
	recordedAt := now
	if req.RecordedAt != nil {
		if req.RecordedAt.After(now) {
			return nil, ErrFutureVitalReading
		}
		recordedAt = *req.RecordedAt
	}

	patient, err := u.patientRepo.FindByUserID(ctx, u.db, caller.UserID)
	if err != nil {
		u.log.Warnf("Failed to find own patient record: %+v", err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	reading := &entity.VitalReading{
		UserID:     caller.UserID,
		Type:       req.Type,
		Value:      req.Value.Round(2),
		Unit:       req.Unit,
		RecordedAt: recordedAt,
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.vitalRepo.Create(ctx, tx, reading); err != nil {
		u.log.Warnf("Failed to record vital: %+v", err)
		return nil, err
	}

	if alert := evaluateVital(reading); alert != nil {
		if err := u.alertRepo.Create(ctx, tx, alert); err != nil {
			u.log.Warnf("Failed to raise vital alert: %+v", err)
			return nil, err
		}
		u.log.WithFields(logrus.Fields{
			"patient_id": patient.ID,
			"type":       reading.Type,
			"severity":   alert.Severity,
		}).Info("Vital reading out of range")
	}

	if err := u.auditService.LogCreate(ctx, tx, &caller.UserID, entity.AuditActionVitalRecord, "vital_reading", reading.ID.String(), reading); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Errorf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.VitalToResponse(reading), nil
}
