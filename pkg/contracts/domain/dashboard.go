package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ViewState tells the page whether chart payloads are present for this pass.
type ViewState string

const (
	// ViewStateOK means metrics and figures were computed.
	ViewStateOK ViewState = "ok"
	// ViewStateNoData means the selected range matched zero rows; the page
	// shows a warning and skips charts for this pass only.
	ViewStateNoData ViewState = "no_data"
)

// FilterState echoes the effective date range after clamping, plus the
// allowed span, so the page can initialize and bound its date pickers.
type FilterState struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	MinMonth time.Time `json:"min_month"`
	MaxMonth time.Time `json:"max_month"`
}

// MembershipMetrics is the scalar bundle derived from a filtered timeline.
// Current is the last row in range, Previous the second-to-last (or Current
// itself when only one row is in range, making the delta zero).
type MembershipMetrics struct {
	Current       MembershipRecord `json:"current"`
	Previous      MembershipRecord `json:"previous"`
	MemberDelta   int              `json:"member_delta"`
	DeltaLabel    string           `json:"delta_label,omitempty"`
	ClassicShare  float64          `json:"classic_share"`
	ChampionShare float64          `json:"champion_share"`
	HPICShare     float64          `json:"hpic_share"`
	PMPShare      float64          `json:"pmp_share"`
	Growth        GrowthInsights   `json:"growth"`
}

// GrowthInsights summarizes membership movement across the filtered range.
type GrowthInsights struct {
	TotalGrowth      int       `json:"total_growth"`
	AvgMonthlyGrowth float64   `json:"avg_monthly_growth"`
	PeakMembers      int       `json:"peak_members"`
	PeakMonth        time.Time `json:"peak_month"`
	SixMonthGrowth   int       `json:"six_month_growth"`
	Months           int       `json:"months"`
}

// MilestoneKind classifies how a milestone was derived.
type MilestoneKind string

const (
	// MilestoneThreshold marks the first month active membership reached a
	// round-number step (e.g. 150).
	MilestoneThreshold MilestoneKind = "threshold"
	// MilestoneCrossover marks the first month the current source system
	// overtook the legacy one.
	MilestoneCrossover MilestoneKind = "crossover"
)

// Milestone is a derived month-level event annotated on the timeline chart.
type Milestone struct {
	Month   time.Time     `json:"month"`
	Members int           `json:"members"`
	Label   string        `json:"label"`
	Kind    MilestoneKind `json:"kind"`
}

// RevenueSummary aggregates the full revenue table. Totals are decimal sums;
// shares are one-decimal percentages defined as 0 when the denominator is
// zero.
type RevenueSummary struct {
	TotalRevenue       decimal.Decimal   `json:"total_revenue"`
	GrantRevenue       decimal.Decimal   `json:"grant_revenue"`
	GrantShare         float64           `json:"grant_share"`
	NonGrant           []RevenueCategory `json:"non_grant"`
	TransactionCount   int               `json:"transaction_count"`
	AverageTransaction decimal.Decimal   `json:"average_transaction"`
	Contributors       int               `json:"contributors"`
}

// MetricTile is one headline number on the dashboard. Delta carries a signed
// change string ("+10") and is empty exactly when the change is zero; Share
// carries a percentage caption ("60.0% of total") where applicable.
type MetricTile struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Delta string `json:"delta,omitempty"`
	Share string `json:"share,omitempty"`
}

// InsightCard is one growth insight line ("Total Growth" / "+42 members").
type InsightCard struct {
	Label   string `json:"label"`
	Value   string `json:"value"`
	Caption string `json:"caption,omitempty"`
}

// RevenueRow is one formatted line of the revenue table. All fields are
// display strings; the raw values live in RevenueSummary.
type RevenueRow struct {
	Category       string `json:"category"`
	Label          string `json:"label"`
	TotalRevenue   string `json:"total_revenue"`
	Revenue2025    string `json:"revenue_2025"`
	Transactions   string `json:"transactions"`
	Contributors   string `json:"contributors"`
	ShareOfTotal   string `json:"share_of_total"`
	AvgTransaction string `json:"avg_transaction"`
}

// DashboardView is the complete view model for one rendering pass: the
// presentation layer consumes it without further data transformation.
type DashboardView struct {
	State          ViewState     `json:"view_state"`
	Warning        string        `json:"warning,omitempty"`
	Filter         FilterState   `json:"filter"`
	Tiles          []MetricTile  `json:"tiles,omitempty"`
	Insights       []InsightCard `json:"insights,omitempty"`
	Milestones     []Milestone   `json:"milestones,omitempty"`
	TimelineFigure *Figure       `json:"timeline_figure,omitempty"`
	RevenueFigure  *Figure       `json:"revenue_figure,omitempty"`
	RevenueRows    []RevenueRow  `json:"revenue_rows,omitempty"`
	RevenueTiles   []MetricTile  `json:"revenue_tiles,omitempty"`
	DataThrough    string        `json:"data_through"`
	GeneratedAt    time.Time     `json:"generated_at"`
}

// DatasetInfo describes one snapshot file for the info endpoint.
type DatasetInfo struct {
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	SizeBytes  int64     `json:"size_bytes"`
	ModifiedAt time.Time `json:"modified_at"`
	Rows       int       `json:"rows"`
	CachedAt   time.Time `json:"cached_at,omitempty"`
	ExpiresAt  time.Time `json:"expires_at,omitempty"`
}
