package repository

import (
	"context"
	"time"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/entity"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/policy"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AlertFilter narrows a scoped alert listing.
type AlertFilter struct {
	OnlyUnresolved bool
	Severity       entity.AlertSeverity
	Limit          int
}

type AlertRepository interface {
	Create(ctx context.Context, db *gorm.DB, alert *entity.Alert) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Alert, error)
	FindByScope(ctx context.Context, db *gorm.DB, scope policy.Scope, filter AlertFilter) ([]entity.Alert, error)
	Resolve(ctx context.Context, db *gorm.DB, id, resolvedBy uuid.UUID, at time.Time) (int64, error)
	MarkRead(ctx context.Context, db *gorm.DB, id, ownerUserID uuid.UUID) (int64, error)
}
