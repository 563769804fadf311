package charts

import (
	"hpicpulse/internal/exporter"
	"hpicpulse/pkg/contracts/domain"
)

// RevenuePie assembles the category share pie from the non-grant rows.
// Values are raw dollar totals; the renderer derives the percentages, so
// slice shares always sum to 100 regardless of the verbatim
// percentage_of_total column.
func RevenuePie(nonGrant []domain.RevenueCategory) *domain.Figure {
	labels := make([]string, len(nonGrant))
	values := make([]float64, len(nonGrant))
	for i, cat := range nonGrant {
		labels[i] = exporter.CategoryLabel(cat.Category)
		values[i] = cat.TotalRevenue.InexactFloat64()
	}

	return &domain.Figure{
		Kind:  domain.FigurePie,
		Title: "Revenue by Category (Grants Excluded)",
		Pie: &domain.PieData{
			Labels: labels,
			Values: values,
		},
	}
}
