// Package domain contains the data types shared across HPIC Pulse:
// membership timeline records, revenue categories, computed metric bundles,
// and the dashboard view model handed to the presentation layer.
package domain

import (
	"time"
)

// MembershipRecord is one month of the membership timeline. Counts are
// pre-aggregated by the upstream export. ClassicMembers/ChampionMembers
// partition active members by pricing tier; HPICMembers/PMPMembers partition
// them by the source system the record originates from. Each partition is
// assumed to sum to ActiveMembers but is never enforced here.
type MembershipRecord struct {
	MonthStart      time.Time `json:"month_start" csv:"month_start"`
	ActiveMembers   int       `json:"active_members" csv:"active_members"`
	ClassicMembers  int       `json:"classic_members" csv:"classic_members"`
	ChampionMembers int       `json:"champion_members" csv:"champion_members"`
	HPICMembers     int       `json:"hpic_members" csv:"hpic_members"`
	PMPMembers      int       `json:"pmp_members" csv:"pmp_members"`
}

// MonthLabel formats the record's month for display, e.g. "January 2025".
func (r MembershipRecord) MonthLabel() string {
	return r.MonthStart.Format("January 2006")
}

// MonthKey formats the record's month as an ISO date for chart axes and
// export rows.
func (r MembershipRecord) MonthKey() string {
	return r.MonthStart.Format("2006-01-02")
}

// Tier identifies a membership pricing level.
type Tier string

const (
	TierClassic  Tier = "classic"
	TierChampion Tier = "champion"
)

// SourceSystem identifies which backend a member record originates from.
type SourceSystem string

const (
	// SourceHPIC is the current membership system.
	SourceHPIC SourceSystem = "hpic"
	// SourcePMP is the legacy system still holding unmigrated records.
	SourcePMP SourceSystem = "pmp"
)

// TimelineSpan reports the first and last months present in a timeline.
// Zero values mean the timeline is empty.
type TimelineSpan struct {
	MinMonth time.Time `json:"min_month"`
	MaxMonth time.Time `json:"max_month"`
}
