package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/applytrack/applytrack-api/internal/model"
)

func day(offset int) time.Time {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

func appliedOn(offsets ...int) []model.ApplicationEvent {
	events := make([]model.ApplicationEvent, 0, len(offsets))
	for _, o := range offsets {
		events = append(events, model.ApplicationEvent{
			Outcome:    model.OutcomeApplied,
			OccurredAt: day(o).Add(9 * time.Hour),
		})
	}
	return events
}

func TestComputeRewards_EmptyHistory(t *testing.T) {
	state := ComputeRewards(nil, day(0))

	assert.Zero(t, state.Points)
	assert.Equal(t, 1, state.Level)
	assert.Zero(t, state.CurrentStreak)
	assert.Zero(t, state.LongestStreak)
	assert.Zero(t, state.Applications)
	require.Len(t, state.Badges, len(Catalog))
	for _, b := range state.Badges {
		assert.False(t, b.Earned)
		assert.Zero(t, b.Progress)
	}
	require.NotNil(t, state.NextGoal)
	assert.Equal(t, "first_step", state.NextGoal.ID)
}

func TestStreaks_ConsecutiveDays(t *testing.T) {
	days := []time.Time{day(0), day(1), day(2)}

	current, longest := Streaks(days, day(2))
	assert.Equal(t, 3, current)
	assert.Equal(t, 3, longest)
}

func TestStreaks_GracePeriodYesterday(t *testing.T) {
	days := []time.Time{day(0), day(1), day(2)}

	// nothing logged today yet, streak survives one day
	current, longest := Streaks(days, day(3))
	assert.Equal(t, 3, current)
	assert.Equal(t, 3, longest)

	// two quiet days break it
	current, longest = Streaks(days, day(4))
	assert.Zero(t, current)
	assert.Equal(t, 3, longest)
}

func TestStreaks_GapResetsCurrentNotLongest(t *testing.T) {
	days := []time.Time{day(0), day(1), day(2), day(10)}

	current, longest := Streaks(days, day(10))
	assert.Equal(t, 1, current)
	assert.Equal(t, 3, longest)
}

func TestStreaks_LongestNeverBelowCurrent(t *testing.T) {
	histories := [][]time.Time{
		nil,
		{day(0)},
		{day(0), day(1)},
		{day(0), day(2), day(3), day(4)},
		{day(0), day(1), day(5), day(6), day(7), day(8)},
	}
	for _, days := range histories {
		var today time.Time
		if len(days) > 0 {
			today = days[len(days)-1]
		} else {
			today = day(0)
		}
		current, longest := Streaks(days, today)
		assert.GreaterOrEqual(t, longest, current)
	}
}

func TestComputeRewards_PointsAndLevel(t *testing.T) {
	// 7 applications on 7 consecutive days:
	// 70 base points + first_step(10) + warming_up(25) + showing_up(15) + committed(40) = 160
	state := ComputeRewards(appliedOn(0, 1, 2, 3, 4, 5, 6), day(6))

	assert.Equal(t, 7, state.Applications)
	assert.Equal(t, 160, state.Points)
	assert.Equal(t, 3, state.Level) // thresholds 0, 50, 150 reached
	assert.Equal(t, 140, state.PointsToNextLevel)
	assert.Equal(t, 7, state.CurrentStreak)
	assert.Equal(t, 7, state.LongestStreak)
}

func TestComputeRewards_Deterministic(t *testing.T) {
	events := appliedOn(0, 0, 1, 3, 4, 4, 9)

	first := ComputeRewards(events, day(9))
	second := ComputeRewards(events, day(9))
	assert.Equal(t, first, second)
}

func TestComputeRewards_BadgeProgress(t *testing.T) {
	state := ComputeRewards(appliedOn(0, 0, 0, 1, 1, 2, 3), day(3))

	var doubleDigits model.BadgeState
	for _, b := range state.Badges {
		if b.ID == "double_digits" {
			doubleDigits = b
		}
	}
	assert.False(t, doubleDigits.Earned)
	assert.Equal(t, 7, doubleDigits.Progress)
	assert.Equal(t, 3, doubleDigits.Remaining)
	assert.InDelta(t, 70.0, doubleDigits.ProgressPercentage, 0.001)
}

func TestComputeRewards_EarnedAtStableWhenLogGrows(t *testing.T) {
	events := appliedOn(0, 1, 2, 3, 4)
	before := ComputeRewards(events, day(4))

	grown := append(events, appliedOn(20, 21)...)
	after := ComputeRewards(grown, day(21))

	beforeEarned := map[string]time.Time{}
	for _, b := range before.Badges {
		if b.Earned {
			beforeEarned[b.ID] = *b.EarnedAt
		}
	}
	require.NotEmpty(t, beforeEarned)

	for _, b := range after.Badges {
		if at, ok := beforeEarned[b.ID]; ok {
			require.True(t, b.Earned)
			assert.Equal(t, at, *b.EarnedAt, "earn date for %s moved", b.ID)
		}
	}
}

func TestComputeRewards_EarnedAtIsCrossingDate(t *testing.T) {
	// fifth application lands on day 4
	state := ComputeRewards(appliedOn(0, 1, 2, 3, 4), day(4))

	for _, b := range state.Badges {
		if b.ID == "warming_up" {
			require.True(t, b.Earned)
			assert.Equal(t, day(4), *b.EarnedAt)
		}
		if b.ID == "first_step" {
			require.True(t, b.Earned)
			assert.Equal(t, day(0), *b.EarnedAt)
		}
	}
}

func TestComputeRewards_NextGoalSmallestRemaining(t *testing.T) {
	// 4 applications in one day: warming_up needs 1 more application,
	// showing_up needs 2 more active days
	state := ComputeRewards(appliedOn(0, 0, 0, 0), day(0))

	require.NotNil(t, state.NextGoal)
	assert.Equal(t, "warming_up", state.NextGoal.ID)
	assert.Equal(t, 1, state.NextGoal.Remaining)
}

func TestComputeRewards_SavedEventsCountAsActivityOnly(t *testing.T) {
	events := []model.ApplicationEvent{
		{Outcome: model.OutcomeSaved, OccurredAt: day(0).Add(8 * time.Hour)},
		{Outcome: model.OutcomeApplied, OccurredAt: day(1).Add(8 * time.Hour)},
	}
	state := ComputeRewards(events, day(1))

	assert.Equal(t, 1, state.Applications)
	assert.Equal(t, 2, state.ActiveDays)
	assert.Equal(t, 2, state.CurrentStreak)
	assert.Equal(t, BasePointsPerApplication+10, state.Points) // base + first_step bonus
}

func TestComputeRewards_OrderInsensitive(t *testing.T) {
	shuffled := appliedOn(4, 0, 2, 1, 3)
	ordered := appliedOn(0, 1, 2, 3, 4)

	assert.Equal(t, ComputeRewards(ordered, day(4)), ComputeRewards(shuffled, day(4)))
}

func TestLevelTable(t *testing.T) {
	assert.Equal(t, 1, LevelForPoints(0))
	assert.Equal(t, 1, LevelForPoints(49))
	assert.Equal(t, 2, LevelForPoints(50))
	assert.Equal(t, 10, LevelForPoints(2250))
	assert.Equal(t, 10, LevelForPoints(99999))

	assert.Equal(t, 50, PointsToNextLevel(0))
	assert.Equal(t, 1, PointsToNextLevel(49))
	assert.Zero(t, PointsToNextLevel(99999))
}
