package analytics

import (
	"math"

	"hpicpulse/internal/config"
	"hpicpulse/pkg/contracts/domain"
)

// ComputeMetrics derives the scalar bundle from a filtered timeline. The
// records must be chronologically ordered and non-empty; the pipeline maps
// an empty filter result to a no_data view before reaching this stage.
func ComputeMetrics(filtered []domain.MembershipRecord) domain.MembershipMetrics {
	current := filtered[len(filtered)-1]
	previous := current
	if len(filtered) >= 2 {
		previous = filtered[len(filtered)-2]
	}

	return domain.MembershipMetrics{
		Current:       current,
		Previous:      previous,
		MemberDelta:   current.ActiveMembers - previous.ActiveMembers,
		ClassicShare:  share(current.ClassicMembers, current.ActiveMembers),
		ChampionShare: share(current.ChampionMembers, current.ActiveMembers),
		HPICShare:     share(current.HPICMembers, current.ActiveMembers),
		PMPShare:      share(current.PMPMembers, current.ActiveMembers),
		Growth:        ComputeGrowth(filtered),
	}
}

// ComputeGrowth summarizes membership movement across the filtered range.
func ComputeGrowth(filtered []domain.MembershipRecord) domain.GrowthInsights {
	if len(filtered) == 0 {
		return domain.GrowthInsights{}
	}

	first := filtered[0]
	last := filtered[len(filtered)-1]

	insights := domain.GrowthInsights{
		TotalGrowth: last.ActiveMembers - first.ActiveMembers,
		Months:      len(filtered),
	}
	insights.AvgMonthlyGrowth = round1(float64(insights.TotalGrowth) / float64(len(filtered)))

	peak := first
	for _, rec := range filtered[1:] {
		if rec.ActiveMembers > peak.ActiveMembers {
			peak = rec
		}
	}
	insights.PeakMembers = peak.ActiveMembers
	insights.PeakMonth = peak.MonthStart

	// Value six rows back, or the earliest available
	pastIndex := len(filtered) - 1 - config.GrowthWindowMonths
	if pastIndex < 0 {
		pastIndex = 0
	}
	insights.SixMonthGrowth = last.ActiveMembers - filtered[pastIndex].ActiveMembers

	return insights
}

// share computes value/total as a one-decimal percentage. A zero total
// yields 0 rather than a fault.
func share(value, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(value) / float64(total) * 100)
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
