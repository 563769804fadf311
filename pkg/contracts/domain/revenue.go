package domain

import (
	"github.com/shopspring/decimal"
)

// RevenueCategory is one row of the revenue analysis snapshot: totals for a
// single income bucket. Monetary amounts are decimals, never floats.
// PercentageOfTotal is precomputed by the upstream export and reported
// verbatim; the aggregation layer does not recompute it.
type RevenueCategory struct {
	Category             string          `json:"category" csv:"category"`
	TotalRevenue         decimal.Decimal `json:"total_revenue" csv:"total_revenue"`
	Revenue2025          decimal.Decimal `json:"revenue_2025" csv:"revenue_2025"`
	TransactionCount     int             `json:"transaction_count" csv:"transaction_count"`
	UniqueContributors   int             `json:"unique_contributors" csv:"unique_contributors"`
	PercentageOfTotal    float64         `json:"percentage_of_total" csv:"percentage_of_total"`
	AvgTransactionAmount decimal.Decimal `json:"avg_transaction_amount" csv:"avg_transaction_amount"`
}

// Well-known category keys as they appear in the snapshot export. Unknown
// categories pass through untouched; these constants exist for the
// aggregation rules that treat grants specially.
const (
	CategoryMembership      = "membership"
	CategoryDonation        = "donation"
	CategoryGrant           = "grant"
	CategoryBuildingBooster = "building_booster"
	CategoryOther           = "other"
)
