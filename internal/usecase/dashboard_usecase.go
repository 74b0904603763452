package usecase

import (
	"context"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/converter"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/delivery/dto"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/entity"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/policy"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	defaultTopPerformers = 5
	maxTopPerformers     = 50
)

type DashboardUsecase interface {
	Stats(ctx context.Context, caller *entity.Identity) (*dto.DashboardStatsResponse, error)
	TopPerformers(ctx context.Context, caller *entity.Identity, limit int) ([]dto.TopPerformerResponse, error)
}

type dashboardUsecase struct {
	db            *gorm.DB
	log           *logrus.Logger
	dashboardRepo repository.DashboardRepository
}

func NewDashboardUsecase(db *gorm.DB, log *logrus.Logger, dashboardRepo repository.DashboardRepository) DashboardUsecase {
	return &dashboardUsecase{
		db:            db,
		log:           log,
		dashboardRepo: dashboardRepo,
	}
}

// Stats counts within the caller's scope. For a clinician the unassigned count is
// always zero because their scope only holds patients they claimed.
func (u *dashboardUsecase) Stats(ctx context.Context, caller *entity.Identity) (*dto.DashboardStatsResponse, error) {
	scope, err := policy.Resolve(policy.ResourceDashboardStats, policy.CallerFromIdentity(caller))
	if err != nil {
		return nil, err
	}

	stats := &dto.DashboardStatsResponse{Scope: scope.Kind.String()}

	if stats.TotalPatients, err = u.dashboardRepo.CountPatients(ctx, u.db, scope); err != nil {
		u.log.Warnf("Failed to count patients: %+v", err)
		return nil, err
	}
	if stats.UnassignedPatients, err = u.dashboardRepo.CountUnassignedPatients(ctx, u.db, scope); err != nil {
		u.log.Warnf("Failed to count unassigned patients: %+v", err)
		return nil, err
	}
	if stats.ActiveAlerts, err = u.dashboardRepo.CountActiveAlerts(ctx, u.db, scope, ""); err != nil {
		u.log.Warnf("Failed to count active alerts: %+v", err)
		return nil, err
	}
	if stats.CriticalAlerts, err = u.dashboardRepo.CountActiveAlerts(ctx, u.db, scope, entity.SeverityCritical); err != nil {
		u.log.Warnf("Failed to count critical alerts: %+v", err)
		return nil, err
	}

	return stats, nil
}

func (u *dashboardUsecase) TopPerformers(ctx context.Context, caller *entity.Identity, limit int) ([]dto.TopPerformerResponse, error) {
	scope, err := policy.Resolve(policy.ResourceTopPerformers, policy.CallerFromIdentity(caller))
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultTopPerformers
	} else if limit > maxTopPerformers {
		limit = maxTopPerformers
	}

	performers, err := u.dashboardRepo.TopPerformers(ctx, u.db, scope, limit)
	if err != nil {
		u.log.Warnf("Failed to rank clinicians: %+v", err)
		return nil, err
	}

	return converter.PerformersToResponses(performers), nil
}
