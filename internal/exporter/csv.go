package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"hpicpulse/pkg/contracts/domain"
)

// utf8BOM prefixes every CSV export so Excel detects the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// monthLayout is the month_start cell format; exports round-trip through
// the loader unchanged.
const monthLayout = "2006-01-02"

// WriteMembershipCSV streams the filtered timeline in snapshot column
// order, one row per month.
func WriteMembershipCSV(w io.Writer, records []domain.MembershipRecord) error {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, membershipRow(rec))
	}
	return writeCSV(w, membershipHeaders(), rows)
}

// WriteRevenueCSV streams the revenue table in snapshot column order.
func WriteRevenueCSV(w io.Writer, categories []domain.RevenueCategory) error {
	rows := make([][]string, 0, len(categories))
	for _, cat := range categories {
		rows = append(rows, revenueRow(cat))
	}
	return writeCSV(w, revenueHeaders(), rows)
}

// WriteInsightsCSV writes the dashboard's headline numbers as a flat
// section/metric/value table, one row per tile or insight card.
func WriteInsightsCSV(w io.Writer, view *domain.DashboardView) error {
	rows := make([][]string, 0, len(view.Tiles)+len(view.Insights)+len(view.RevenueTiles))
	for _, tile := range view.Tiles {
		rows = append(rows, []string{"membership", tile.Label, tile.Value})
	}
	for _, card := range view.Insights {
		rows = append(rows, []string{"growth", card.Label, card.Value})
	}
	for _, tile := range view.RevenueTiles {
		rows = append(rows, []string{"revenue", tile.Label, tile.Value})
	}
	return writeCSV(w, []string{"section", "metric", "value"}, rows)
}

func writeCSV(w io.Writer, headers []string, rows [][]string) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func membershipHeaders() []string {
	return []string{
		"month_start", "active_members", "classic_members",
		"champion_members", "hpic_members", "pmp_members",
	}
}

func revenueHeaders() []string {
	return []string{
		"category", "total_revenue", "revenue_2025", "transaction_count",
		"unique_contributors", "percentage_of_total", "avg_transaction_amount",
	}
}

func membershipRow(rec domain.MembershipRecord) []string {
	return []string{
		rec.MonthStart.Format(monthLayout),
		formatInt(rec.ActiveMembers),
		formatInt(rec.ClassicMembers),
		formatInt(rec.ChampionMembers),
		formatInt(rec.HPICMembers),
		formatInt(rec.PMPMembers),
	}
}

func revenueRow(cat domain.RevenueCategory) []string {
	return []string{
		cat.Category,
		formatDecimal(cat.TotalRevenue),
		formatDecimal(cat.Revenue2025),
		formatInt(cat.TransactionCount),
		formatInt(cat.UniqueContributors),
		formatFloat(cat.PercentageOfTotal),
		formatDecimal(cat.AvgTransactionAmount),
	}
}
