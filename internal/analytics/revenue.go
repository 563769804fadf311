package analytics

import (
	"github.com/shopspring/decimal"

	"hpicpulse/pkg/contracts/domain"
)

// SummarizeRevenue aggregates the full revenue table. The revenue snapshot
// is never filtered by the date range; it is a lifetime rollup.
//
// Contributors is the sum of per-category unique counts. Overlap across
// categories is not knowable from the snapshot, so the figure is an upper
// bound and is presented as "contributions" rather than "contributors" in
// the UI copy.
func SummarizeRevenue(categories []domain.RevenueCategory) domain.RevenueSummary {
	summary := domain.RevenueSummary{
		TotalRevenue: decimal.Zero,
		GrantRevenue: decimal.Zero,
	}

	for _, cat := range categories {
		summary.TotalRevenue = summary.TotalRevenue.Add(cat.TotalRevenue)
		summary.TransactionCount += cat.TransactionCount
		summary.Contributors += cat.UniqueContributors

		if cat.Category == domain.CategoryGrant {
			summary.GrantRevenue = summary.GrantRevenue.Add(cat.TotalRevenue)
		} else {
			summary.NonGrant = append(summary.NonGrant, cat)
		}
	}

	if !summary.TotalRevenue.IsZero() {
		ratio, _ := summary.GrantRevenue.Div(summary.TotalRevenue).Mul(decimal.NewFromInt(100)).Float64()
		summary.GrantShare = round1(ratio)
	}

	summary.AverageTransaction = decimal.Zero
	if summary.TransactionCount > 0 {
		summary.AverageTransaction = summary.TotalRevenue.
			Div(decimal.NewFromInt(int64(summary.TransactionCount))).
			Round(2)
	}

	return summary
}
