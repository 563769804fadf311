package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hpicpulse/pkg/contracts/domain"
)

func TestMilestones(t *testing.T) {
	t.Run("threshold crossing emits once", func(t *testing.T) {
		got := Milestones([]domain.MembershipRecord{
			rec("2025-01-01", 95, 0, 0, 10, 85),
			rec("2025-02-01", 98, 0, 0, 12, 86),
			rec("2025-03-01", 102, 0, 0, 14, 88),
		}, 25)

		require.Len(t, got, 1)
		assert.Equal(t, day("2025-03-01"), got[0].Month)
		assert.Equal(t, 102, got[0].Members)
		assert.Equal(t, "Reached 100 members", got[0].Label)
		assert.Equal(t, domain.MilestoneThreshold, got[0].Kind)
	})

	t.Run("a jump across several multiples emits each", func(t *testing.T) {
		got := Milestones([]domain.MembershipRecord{
			rec("2025-01-01", 90, 0, 0, 10, 80),
			rec("2025-02-01", 160, 0, 0, 20, 140),
		}, 25)

		require.Len(t, got, 3)
		assert.Equal(t, "Reached 100 members", got[0].Label)
		assert.Equal(t, "Reached 125 members", got[1].Label)
		assert.Equal(t, "Reached 150 members", got[2].Label)
		for _, m := range got {
			assert.Equal(t, day("2025-02-01"), m.Month)
			assert.Equal(t, 160, m.Members)
		}
	})

	t.Run("multiples met by the first row are baseline, not events", func(t *testing.T) {
		got := Milestones([]domain.MembershipRecord{
			rec("2025-01-01", 130, 0, 0, 10, 120),
			rec("2025-02-01", 149, 0, 0, 12, 120),
			rec("2025-03-01", 151, 0, 0, 14, 120),
		}, 25)

		require.Len(t, got, 1)
		assert.Equal(t, "Reached 150 members", got[0].Label)
	})

	t.Run("a dip and recross does not re-emit", func(t *testing.T) {
		got := Milestones([]domain.MembershipRecord{
			rec("2025-01-01", 95, 0, 0, 10, 85),
			rec("2025-02-01", 101, 0, 0, 12, 85),
			rec("2025-03-01", 97, 0, 0, 12, 85),
			rec("2025-04-01", 103, 0, 0, 12, 85),
		}, 25)

		require.Len(t, got, 1)
		assert.Equal(t, day("2025-02-01"), got[0].Month)
	})

	t.Run("crossover emitted when the transition is in the window", func(t *testing.T) {
		got := Milestones([]domain.MembershipRecord{
			rec("2025-01-01", 100, 0, 0, 45, 55),
			rec("2025-02-01", 101, 0, 0, 50, 51),
			rec("2025-03-01", 102, 0, 0, 56, 46),
			rec("2025-04-01", 103, 0, 0, 60, 43),
		}, 1000)

		require.Len(t, got, 1)
		assert.Equal(t, domain.MilestoneCrossover, got[0].Kind)
		assert.Equal(t, day("2025-03-01"), got[0].Month)
		assert.Equal(t, 102, got[0].Members)
		assert.Equal(t, "HPIC overtakes PMP", got[0].Label)
	})

	t.Run("no crossover when the window opens already crossed", func(t *testing.T) {
		got := Milestones([]domain.MembershipRecord{
			rec("2025-01-01", 100, 0, 0, 60, 40),
			rec("2025-02-01", 101, 0, 0, 62, 39),
		}, 1000)

		assert.Empty(t, got)
	})

	t.Run("ties do not count as overtaking", func(t *testing.T) {
		got := Milestones([]domain.MembershipRecord{
			rec("2025-01-01", 100, 0, 0, 50, 50),
			rec("2025-02-01", 100, 0, 0, 50, 50),
		}, 1000)

		assert.Empty(t, got)
	})

	t.Run("milestones are ordered by month", func(t *testing.T) {
		got := Milestones([]domain.MembershipRecord{
			rec("2025-01-01", 95, 0, 0, 40, 55),
			rec("2025-02-01", 101, 0, 0, 52, 49),
			rec("2025-03-01", 126, 0, 0, 70, 56),
		}, 25)

		require.Len(t, got, 3)
		assert.Equal(t, "Reached 100 members", got[0].Label)
		assert.Equal(t, "HPIC overtakes PMP", got[1].Label)
		assert.Equal(t, "Reached 125 members", got[2].Label)
	})

	t.Run("empty timeline yields none", func(t *testing.T) {
		assert.Nil(t, Milestones(nil, 25))
	})

	t.Run("non-positive step falls back to the default", func(t *testing.T) {
		got := Milestones([]domain.MembershipRecord{
			rec("2025-01-01", 95, 0, 0, 10, 85),
			rec("2025-02-01", 102, 0, 0, 12, 88),
		}, 0)

		require.Len(t, got, 1)
		assert.Equal(t, "Reached 100 members", got[0].Label)
	})
}
