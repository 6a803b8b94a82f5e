package services

import (
	"context"
	"log/slog"

	"github.com/harborcrm/harbor/internal/models"
)

// DashboardStore runs the aggregate queries behind the dashboard.
type DashboardStore interface {
	Totals(ctx context.Context) (customers, leads, users, activeCustomers int, err error)
	LeadsGroupedBy(ctx context.Context, column string) ([]models.StatusCount, error)
	WinRate(ctx context.Context) (float64, error)
	RecentLeads(ctx context.Context, limit int) ([]*models.Lead, error)
	LeadsByMonth(ctx context.Context, months int) ([]models.MonthlyCount, error)
}

const (
	recentLeadsLimit = 5
	leadTrendMonths  = 6
)

// DashboardService assembles the aggregate stats snapshot.
type DashboardService struct {
	store  DashboardStore
	logger *slog.Logger
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(store DashboardStore, logger *slog.Logger) *DashboardService {
	return &DashboardService{store: store, logger: logger}
}

// GetStats runs the dashboard aggregations and returns a single snapshot.
// The counts come from separate queries, so the snapshot is not a strict
// point-in-time view; for a dashboard that is fine.
func (s *DashboardService) GetStats(ctx context.Context) (*models.DashboardStats, error) {
	customers, leads, users, activeCustomers, err := s.store.Totals(ctx)
	if err != nil {
		s.logger.Error("failed to load dashboard totals", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	byStatus, err := s.store.LeadsGroupedBy(ctx, "status")
	if err != nil {
		s.logger.Error("failed to group leads by status", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	bySource, err := s.store.LeadsGroupedBy(ctx, "source")
	if err != nil {
		s.logger.Error("failed to group leads by source", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	winRate, err := s.store.WinRate(ctx)
	if err != nil {
		s.logger.Error("failed to compute win rate", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	recent, err := s.store.RecentLeads(ctx, recentLeadsLimit)
	if err != nil {
		s.logger.Error("failed to load recent leads", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	byMonth, err := s.store.LeadsByMonth(ctx, leadTrendMonths)
	if err != nil {
		s.logger.Error("failed to load monthly lead counts", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return &models.DashboardStats{
		TotalCustomers:  customers,
		TotalLeads:      leads,
		TotalUsers:      users,
		ActiveCustomers: activeCustomers,
		LeadsByStatus:   byStatus,
		LeadsBySource:   bySource,
		WinRate:         winRate,
		RecentLeads:     recent,
		LeadsByMonth:    byMonth,
	}, nil
}
