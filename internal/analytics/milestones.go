package analytics

import (
	"fmt"
	"sort"

	"hpicpulse/internal/config"
	"hpicpulse/pkg/contracts/domain"
)

// Milestones derives month-level events from a filtered timeline:
//
//   - threshold: the first month active membership reaches each multiple of
//     step. Multiples already met by the first row are baseline, not events,
//     so a window opening at 130 members starts counting from the next
//     multiple.
//   - crossover: the month the current source system first overtakes the
//     legacy one (HPICMembers > PMPMembers), emitted only when the
//     transition itself is visible inside the window.
//
// Members on each milestone is the actual active count that month, which is
// where the chart annotation sits. Results are ordered by month.
func Milestones(filtered []domain.MembershipRecord, step int) []domain.Milestone {
	if len(filtered) == 0 {
		return nil
	}
	if step <= 0 {
		step = config.DefaultMilestoneStep
	}

	var milestones []domain.Milestone

	// Threshold events: next multiple above the window's starting level
	next := (filtered[0].ActiveMembers/step)*step + step
	for _, rec := range filtered[1:] {
		for next <= rec.ActiveMembers {
			milestones = append(milestones, domain.Milestone{
				Month:   rec.MonthStart,
				Members: rec.ActiveMembers,
				Label:   fmt.Sprintf("Reached %d members", next),
				Kind:    domain.MilestoneThreshold,
			})
			next += step
		}
	}

	// Crossover: requires the previous month on the other side
	for i := 1; i < len(filtered); i++ {
		prev, rec := filtered[i-1], filtered[i]
		if prev.HPICMembers <= prev.PMPMembers && rec.HPICMembers > rec.PMPMembers {
			milestones = append(milestones, domain.Milestone{
				Month:   rec.MonthStart,
				Members: rec.ActiveMembers,
				Label:   "HPIC overtakes PMP",
				Kind:    domain.MilestoneCrossover,
			})
			break
		}
	}

	sort.SliceStable(milestones, func(i, j int) bool {
		return milestones[i].Month.Before(milestones[j].Month)
	})

	return milestones
}
