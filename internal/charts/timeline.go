package charts

import (
	"hpicpulse/pkg/contracts/domain"
)

// Palette carried over from the published dashboard; panel-two colors
// extend it for the source-system traces.
const (
	colorTotal    = "#2E86AB"
	colorClassic  = "#A23B72"
	colorChampion = "#F18F01"
	colorHPIC     = "#C73E1D"
	colorPMP      = "#3B1F2B"
)

// monthKeyLayout is the x-axis key format; the hover template re-renders
// it as "January 2025".
const monthKeyLayout = "2006-01-02"

// MembershipTimeline assembles the dual-panel growth figure: tier series
// on panel one with milestone annotations, source-system series on panel
// two. Series share one x vector ordering, the filtered months ascending.
func MembershipTimeline(filtered []domain.MembershipRecord, milestones []domain.Milestone) *domain.Figure {
	months := make([]string, len(filtered))
	total := make([]int, len(filtered))
	classic := make([]int, len(filtered))
	champion := make([]int, len(filtered))
	hpic := make([]int, len(filtered))
	pmp := make([]int, len(filtered))
	for i, rec := range filtered {
		months[i] = rec.MonthStart.Format(monthKeyLayout)
		total[i] = rec.ActiveMembers
		classic[i] = rec.ClassicMembers
		champion[i] = rec.ChampionMembers
		hpic[i] = rec.HPICMembers
		pmp[i] = rec.PMPMembers
	}

	annotations := make([]domain.Annotation, 0, len(milestones))
	for _, m := range milestones {
		annotations = append(annotations, domain.Annotation{
			X:    m.Month.Format(monthKeyLayout),
			Y:    m.Members,
			Text: m.Label,
		})
	}

	return &domain.Figure{
		Kind:        domain.FigureLine,
		Title:       "Membership Growth Over Time",
		PanelTitles: []string{"Membership by Tier", "Source Systems"},
		HoverFormat: "%B %Y",
		Series: []domain.Series{
			{Name: "Total Members", Panel: 1, Color: colorTotal, Width: 3, X: months, Y: total},
			{Name: "Classic", Panel: 1, Color: colorClassic, Width: 2, X: months, Y: classic},
			{Name: "Champion", Panel: 1, Color: colorChampion, Width: 2, X: months, Y: champion},
			{Name: "HPIC (current CRM)", Panel: 2, Color: colorHPIC, Width: 2, X: months, Y: hpic},
			{Name: "PMP (legacy)", Panel: 2, Color: colorPMP, Width: 2, X: months, Y: pmp},
		},
		Annotations: annotations,
	}
}
