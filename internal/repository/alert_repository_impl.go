package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/entity"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/policy"
	domainRepo "github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type alertRepository struct{}

func NewAlertRepository() domainRepo.AlertRepository {
	return &alertRepository{}
}

func (r *alertRepository) Create(ctx context.Context, db *gorm.DB, alert *entity.Alert) error {
	return db.WithContext(ctx).Create(alert).Error
}

func (r *alertRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Alert, error) {
	var alert entity.Alert
	err := db.WithContext(ctx).Where("id = ?", id).First(&alert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &alert, nil
}

func (r *alertRepository) FindByScope(ctx context.Context, db *gorm.DB, scope policy.Scope, filter domainRepo.AlertFilter) ([]entity.Alert, error) {
	var alerts []entity.Alert
	query := scopeOwnedRows(db.WithContext(ctx).Model(&entity.Alert{}), "alerts", scope).
		Select("alerts.*")

	if filter.OnlyUnresolved {
		query = query.Where("alerts.resolved_at IS NULL")
	}
	if filter.Severity != "" {
		query = query.Where("alerts.severity = ?", filter.Severity)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	err := query.Order("alerts.created_at DESC").Find(&alerts).Error
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

// Resolve marks an alert resolved only if it is still open. Returns affected rows.
func (r *alertRepository) Resolve(ctx context.Context, db *gorm.DB, id, resolvedBy uuid.UUID, at time.Time) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Alert{}).
		Where("id = ? AND resolved_at IS NULL", id).
		Updates(map[string]interface{}{
			"resolved_at": at,
			"resolved_by": resolvedBy,
			"is_read":     true,
		})
	return result.RowsAffected, result.Error
}

func (r *alertRepository) MarkRead(ctx context.Context, db *gorm.DB, id, ownerUserID uuid.UUID) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Alert{}).
		Where("id = ? AND user_id = ?", id, ownerUserID).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}
