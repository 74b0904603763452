package repository

import (
	"context"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/entity"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/policy"
	domainRepo "github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/repository"

	"gorm.io/gorm"
)

type dashboardRepository struct{}

func NewDashboardRepository() domainRepo.DashboardRepository {
	return &dashboardRepository{}
}

func (r *dashboardRepository) CountPatients(ctx context.Context, db *gorm.DB, scope policy.Scope) (int64, error) {
	var total int64
	err := scopePatients(db.WithContext(ctx).Model(&entity.Patient{}), scope).Count(&total).Error
	return total, err
}

func (r *dashboardRepository) CountUnassignedPatients(ctx context.Context, db *gorm.DB, scope policy.Scope) (int64, error) {
	var total int64
	err := scopePatients(db.WithContext(ctx).Model(&entity.Patient{}), scope).
		Where("patients.assigned_clinician_id IS NULL").
		Count(&total).Error
	return total, err
}

// CountActiveAlerts counts unresolved alerts. An empty severity counts every severity.
func (r *dashboardRepository) CountActiveAlerts(ctx context.Context, db *gorm.DB, scope policy.Scope, severity entity.AlertSeverity) (int64, error) {
	var total int64
	query := scopeOwnedRows(db.WithContext(ctx).Model(&entity.Alert{}), "alerts", scope).
		Where("alerts.resolved_at IS NULL")
	if severity != "" {
		query = query.Where("alerts.severity = ?", severity)
	}
	err := query.Count(&total).Error
	return total, err
}

// TopPerformers ranks clinicians by resolved alerts, then by assigned patients.
// Only global and institution scopes are meaningful here.
func (r *dashboardRepository) TopPerformers(ctx context.Context, db *gorm.DB, scope policy.Scope, limit int) ([]entity.ClinicianPerformance, error) {
	var rows []entity.ClinicianPerformance
	query := db.WithContext(ctx).Table("users").
		Select(`
			users.id AS clinician_id,
			users.full_name,
			user_profiles.institution_id,
			(SELECT COUNT(*) FROM patients WHERE patients.assigned_clinician_id = users.id) AS assigned_patients,
			(SELECT COUNT(*) FROM alerts WHERE alerts.resolved_by = users.id) AS resolved_alerts
		`).
		Joins("JOIN user_profiles ON user_profiles.user_id = users.id").
		Where("user_profiles.role = ?", entity.RoleClinician)

	switch scope.Kind {
	case policy.KindGlobal:
	case policy.KindInstitution:
		query = query.Where("user_profiles.institution_id = ?", scope.InstitutionID)
	default:
		return []entity.ClinicianPerformance{}, nil
	}

	err := query.
		Order("resolved_alerts DESC, assigned_patients DESC, users.full_name ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
