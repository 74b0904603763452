package repository

import (
	"context"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/entity"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/policy"

	"gorm.io/gorm"
)

type DashboardRepository interface {
	CountPatients(ctx context.Context, db *gorm.DB, scope policy.Scope) (int64, error)
	CountUnassignedPatients(ctx context.Context, db *gorm.DB, scope policy.Scope) (int64, error)
	CountActiveAlerts(ctx context.Context, db *gorm.DB, scope policy.Scope, severity entity.AlertSeverity) (int64, error)
	TopPerformers(ctx context.Context, db *gorm.DB, scope policy.Scope, limit int) ([]entity.ClinicianPerformance, error)
}
