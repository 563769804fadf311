package http

import (
	"context"

	"hpicpulse/internal/services"
	"hpicpulse/pkg/contracts/domain"
)

// DashboardServiceInterface defines the pipeline operations the transport
// layer consumes. *services.DashboardService satisfies it.
type DashboardServiceInterface interface {
	Compute(ctx context.Context, filters services.DashboardFilters) (*domain.DashboardView, error)
	Timeline(ctx context.Context, filters services.DashboardFilters) (*services.TimelineView, error)
	RevenueBreakdown(ctx context.Context) (*services.RevenueView, error)

	// Export accessors: the same filtered rows the view was built from,
	// so downloads never disagree with the page.
	FilteredMembership(ctx context.Context, filters services.DashboardFilters) ([]domain.MembershipRecord, error)
	RevenueCategories(ctx context.Context) ([]domain.RevenueCategory, error)
}
