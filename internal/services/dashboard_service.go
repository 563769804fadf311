package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"hpicpulse/internal/analytics"
	"hpicpulse/internal/charts"
	"hpicpulse/internal/config"
	"hpicpulse/internal/exporter"
	"hpicpulse/internal/infrastructure"
	"hpicpulse/pkg/contracts/domain"
)

// SnapshotStore is the cached dataset access the pipeline runs on.
// *dataset.Store satisfies it.
type SnapshotStore interface {
	MembershipTimeline(ctx context.Context) ([]domain.MembershipRecord, error)
	RevenueAnalysis(ctx context.Context) ([]domain.RevenueCategory, error)
}

// DashboardFilters carries the user-selected date range. A zero time means
// unbounded on that side; both bounds are clamped to the data span.
type DashboardFilters struct {
	Start time.Time
	End   time.Time
}

// TimelineView is the membership timeline payload: the filtered rows, the
// scalar bundle, and the assembled figure.
type TimelineView struct {
	State      domain.ViewState          `json:"view_state"`
	Filter     domain.FilterState        `json:"filter"`
	Records    []domain.MembershipRecord `json:"records,omitempty"`
	Metrics    *domain.MembershipMetrics `json:"metrics,omitempty"`
	Milestones []domain.Milestone        `json:"milestones,omitempty"`
	Figure     *domain.Figure            `json:"figure,omitempty"`
}

// RevenueView is the revenue breakdown payload. The revenue table is not
// date-filtered; it aggregates the full snapshot.
type RevenueView struct {
	Summary domain.RevenueSummary `json:"summary"`
	Rows    []domain.RevenueRow   `json:"rows"`
	Tiles   []domain.MetricTile   `json:"tiles"`
	Figure  *domain.Figure        `json:"figure"`
}

// DashboardService runs the per-request pipeline: load, filter, compute,
// assemble. It holds no per-request state; every call works from the
// cached snapshots.
type DashboardService struct {
	store         SnapshotStore
	metrics       *infrastructure.BusinessMetrics
	milestoneStep int
	logger        *slog.Logger
}

// NewDashboardService creates the dashboard pipeline service. metrics may
// be nil when observability is disabled.
func NewDashboardService(store SnapshotStore, metrics *infrastructure.BusinessMetrics, milestoneStep int, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	if milestoneStep <= 0 {
		milestoneStep = config.DefaultMilestoneStep
	}

	return &DashboardService{
		store:         store,
		metrics:       metrics,
		milestoneStep: milestoneStep,
		logger:        logger,
	}
}

// Compute runs one full pipeline pass and assembles the view model.
func (s *DashboardService) Compute(ctx context.Context, filters DashboardFilters) (*domain.DashboardView, error) {
	started := time.Now()

	view, err := s.compute(ctx, filters)
	noData := err == nil && view.State == domain.ViewStateNoData
	infrastructure.RecordPipelineCompute(ctx, s.metrics, time.Since(started), noData, err)
	if err != nil {
		s.logger.ErrorContext(ctx, "dashboard compute failed",
			slog.String("error", err.Error()))
		return nil, err
	}

	s.logger.InfoContext(ctx, "dashboard computed",
		slog.String("view_state", string(view.State)),
		slog.Duration("duration", time.Since(started)))
	return view, nil
}

func (s *DashboardService) compute(ctx context.Context, filters DashboardFilters) (*domain.DashboardView, error) {
	records, err := s.store.MembershipTimeline(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.store.RevenueAnalysis(ctx)
	if err != nil {
		return nil, err
	}

	span := analytics.Span(records)
	start, end := analytics.ClampRange(records, filters.Start, filters.End)
	filtered := analytics.FilterByMonthRange(records, start, end)

	view := &domain.DashboardView{
		Filter: domain.FilterState{
			Start:    start,
			End:      end,
			MinMonth: span.MinMonth,
			MaxMonth: span.MaxMonth,
		},
		GeneratedAt: time.Now().UTC(),
	}
	if len(records) > 0 {
		view.DataThrough = exporter.FormatMonth(span.MaxMonth)
	}

	if len(filtered) == 0 {
		view.State = domain.ViewStateNoData
		view.Warning = config.ErrMsgNoDataInRange
		return view, nil
	}

	metrics := analytics.ComputeMetrics(filtered)
	metrics.DeltaLabel = exporter.FormatDelta(metrics.MemberDelta)
	milestones := analytics.Milestones(filtered, s.milestoneStep)
	summary := analytics.SummarizeRevenue(categories)

	view.State = domain.ViewStateOK
	view.Tiles = membershipTiles(metrics)
	view.Insights = growthInsightCards(metrics.Growth)
	view.Milestones = milestones
	view.TimelineFigure = charts.MembershipTimeline(filtered, milestones)
	view.RevenueFigure = charts.RevenuePie(summary.NonGrant)
	view.RevenueRows = revenueTableRows(categories)
	view.RevenueTiles = revenueTiles(summary)
	return view, nil
}

// Timeline returns the filtered membership rows with their scalar bundle.
func (s *DashboardService) Timeline(ctx context.Context, filters DashboardFilters) (*TimelineView, error) {
	records, err := s.store.MembershipTimeline(ctx)
	if err != nil {
		return nil, err
	}

	span := analytics.Span(records)
	start, end := analytics.ClampRange(records, filters.Start, filters.End)
	filtered := analytics.FilterByMonthRange(records, start, end)

	view := &TimelineView{
		Filter: domain.FilterState{
			Start:    start,
			End:      end,
			MinMonth: span.MinMonth,
			MaxMonth: span.MaxMonth,
		},
		Records: filtered,
	}
	if len(filtered) == 0 {
		view.State = domain.ViewStateNoData
		return view, nil
	}

	metrics := analytics.ComputeMetrics(filtered)
	metrics.DeltaLabel = exporter.FormatDelta(metrics.MemberDelta)
	milestones := analytics.Milestones(filtered, s.milestoneStep)

	view.State = domain.ViewStateOK
	view.Metrics = &metrics
	view.Milestones = milestones
	view.Figure = charts.MembershipTimeline(filtered, milestones)
	return view, nil
}

// RevenueBreakdown returns the revenue section: aggregates, formatted
// table rows, stat tiles, and the category pie.
func (s *DashboardService) RevenueBreakdown(ctx context.Context) (*RevenueView, error) {
	categories, err := s.store.RevenueAnalysis(ctx)
	if err != nil {
		return nil, err
	}

	summary := analytics.SummarizeRevenue(categories)
	return &RevenueView{
		Summary: summary,
		Rows:    revenueTableRows(categories),
		Tiles:   revenueTiles(summary),
		Figure:  charts.RevenuePie(summary.NonGrant),
	}, nil
}

// FilteredMembership returns the rows a membership export carries for the
// given range.
func (s *DashboardService) FilteredMembership(ctx context.Context, filters DashboardFilters) ([]domain.MembershipRecord, error) {
	records, err := s.store.MembershipTimeline(ctx)
	if err != nil {
		return nil, err
	}

	start, end := analytics.ClampRange(records, filters.Start, filters.End)
	return analytics.FilterByMonthRange(records, start, end), nil
}

// RevenueCategories returns the full revenue table for exports.
func (s *DashboardService) RevenueCategories(ctx context.Context) ([]domain.RevenueCategory, error) {
	return s.store.RevenueAnalysis(ctx)
}

func membershipTiles(m domain.MembershipMetrics) []domain.MetricTile {
	return []domain.MetricTile{
		{
			Label: "Total Members",
			Value: exporter.FormatCount(m.Current.ActiveMembers),
			Delta: m.DeltaLabel,
		},
		{
			Label: "Classic Members",
			Value: exporter.FormatCount(m.Current.ClassicMembers),
			Share: shareCaption(m.ClassicShare),
		},
		{
			Label: "Champion Members",
			Value: exporter.FormatCount(m.Current.ChampionMembers),
			Share: shareCaption(m.ChampionShare),
		},
		{
			Label: "HPIC System",
			Value: exporter.FormatCount(m.Current.HPICMembers),
			Share: shareCaption(m.HPICShare),
		},
	}
}

func growthInsightCards(g domain.GrowthInsights) []domain.InsightCard {
	return []domain.InsightCard{
		{
			Label:   "Total Growth",
			Value:   signedMembers(g.TotalGrowth),
			Caption: fmt.Sprintf("across %s", monthsLabel(g.Months)),
		},
		{
			Label: "Average Monthly Growth",
			Value: fmt.Sprintf("%.1f members/month", g.AvgMonthlyGrowth),
		},
		{
			Label:   "Peak Membership",
			Value:   exporter.FormatCount(g.PeakMembers) + " members",
			Caption: exporter.FormatMonth(g.PeakMonth),
		},
		{
			Label:   "Recent Growth",
			Value:   signedMembers(g.SixMonthGrowth),
			Caption: "last six months",
		},
	}
}

// revenueTableRows formats the full revenue table, largest category first.
// The grant row stays in the table even though the pie excludes it.
func revenueTableRows(categories []domain.RevenueCategory) []domain.RevenueRow {
	sorted := make([]domain.RevenueCategory, len(categories))
	copy(sorted, categories)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TotalRevenue.GreaterThan(sorted[j].TotalRevenue)
	})

	rows := make([]domain.RevenueRow, 0, len(sorted))
	for _, cat := range sorted {
		rows = append(rows, domain.RevenueRow{
			Category:       cat.Category,
			Label:          exporter.CategoryLabel(cat.Category),
			TotalRevenue:   exporter.FormatCurrency(cat.TotalRevenue),
			Revenue2025:    exporter.FormatCurrency(cat.Revenue2025),
			Transactions:   exporter.FormatCount(cat.TransactionCount),
			Contributors:   exporter.FormatCount(cat.UniqueContributors),
			ShareOfTotal:   exporter.FormatPercent(cat.PercentageOfTotal),
			AvgTransaction: exporter.FormatCurrency(cat.AvgTransactionAmount),
		})
	}
	return rows
}

func revenueTiles(summary domain.RevenueSummary) []domain.MetricTile {
	return []domain.MetricTile{
		{
			Label: "Total Revenue",
			Value: exporter.FormatCurrency(summary.TotalRevenue),
		},
		{
			Label: "Grant Funding",
			Value: exporter.FormatCurrency(summary.GrantRevenue),
			Share: shareCaption(summary.GrantShare),
		},
		{
			Label: "Transactions",
			Value: exporter.FormatCount(summary.TransactionCount),
		},
		{
			Label: "Contributions",
			Value: exporter.FormatCount(summary.Contributors),
		},
	}
}

func shareCaption(share float64) string {
	return exporter.FormatPercent(share) + " of total"
}

// signedMembers renders growth figures; unlike tile deltas, zero growth
// still reads "0 members" on an insight card.
func signedMembers(n int) string {
	if delta := exporter.FormatDelta(n); delta != "" {
		return delta + " members"
	}
	return "0 members"
}

func monthsLabel(months int) string {
	if months == 1 {
		return "1 month"
	}
	return fmt.Sprintf("%d months", months)
}
