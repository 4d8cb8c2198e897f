package engine

import (
	"sort"
	"time"

	"github.com/applytrack/applytrack-api/internal/model"
)

// ComputeRewards derives the full rewards state from a user's event log.
// The only wall-clock input is today, passed explicitly so the current
// streak's grace period stays testable; everything else, including badge
// earn dates, is reconstructed from the log itself. Re-running on the same
// log with the same today yields an identical state, and appending a later
// event never moves an earn date that was already crossed.
func ComputeRewards(events []model.ApplicationEvent, today time.Time) model.RewardsState {
	ordered := make([]model.ApplicationEvent, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, k int) bool {
		return ordered[i].OccurredAt.Before(ordered[k].OccurredAt)
	})

	// Every outcome counts toward activity days; only "applied" earns points.
	var appliedDates []time.Time
	activeDays := distinctDays(ordered)

	for _, e := range ordered {
		if e.Outcome == model.OutcomeApplied {
			appliedDates = append(appliedDates, toDay(e.OccurredAt))
		}
	}

	applications := len(appliedDates)
	current, longest := Streaks(activeDays, toDay(today))

	badges := evaluateBadges(appliedDates, activeDays)

	points := applications * BasePointsPerApplication
	for _, b := range badges {
		if b.Earned {
			points += b.PointsAwarded
		}
	}

	state := model.RewardsState{
		Points:            points,
		Level:             LevelForPoints(points),
		PointsToNextLevel: PointsToNextLevel(points),
		CurrentStreak:     current,
		LongestStreak:     longest,
		Applications:      applications,
		ActiveDays:        len(activeDays),
		Badges:            badges,
		NextGoal:          nextGoal(badges),
		Countries:         CountByCountry(ordered),
	}
	return state
}

// Streaks computes the current and longest run over a sorted list of
// distinct calendar days. The current streak tolerates one missing day:
// a run ending yesterday still counts if nothing happened today yet.
func Streaks(days []time.Time, today time.Time) (current, longest int) {
	if len(days) == 0 {
		return 0, 0
	}

	run := 1
	longest = 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	last := days[len(days)-1]
	gap := today.Sub(last)
	if gap < 0 || gap > 24*time.Hour {
		return 0, longest
	}

	current = 1
	for i := len(days) - 1; i > 0; i-- {
		if days[i].Sub(days[i-1]) != 24*time.Hour {
			break
		}
		current++
	}
	return current, longest
}

// evaluateBadges walks the catalog in order and fixes each earn date to
// the day the threshold was first crossed
func evaluateBadges(appliedDates, activeDays []time.Time) []model.BadgeState {
	badges := make([]model.BadgeState, 0, len(Catalog))
	for _, def := range Catalog {
		var metricDates []time.Time
		switch def.Metric {
		case model.MetricDays:
			metricDates = activeDays
		default:
			metricDates = appliedDates
		}

		bs := model.BadgeState{Badge: def}
		count := len(metricDates)
		if count >= def.Threshold && def.Threshold > 0 {
			bs.Earned = true
			earned := metricDates[def.Threshold-1]
			bs.EarnedAt = &earned
			bs.Progress = def.Threshold
			bs.ProgressPercentage = 100
		} else {
			bs.Progress = count
			bs.Remaining = def.Threshold - count
			if def.Threshold > 0 {
				bs.ProgressPercentage = float64(count) / float64(def.Threshold) * 100
			}
			if bs.ProgressPercentage > 100 {
				bs.ProgressPercentage = 100
			}
		}
		badges = append(badges, bs)
	}
	return badges
}

// nextGoal picks the unearned badge with the fewest remaining steps,
// ties resolved by catalog order
func nextGoal(badges []model.BadgeState) *model.BadgeState {
	var goal *model.BadgeState
	for i := range badges {
		b := &badges[i]
		if b.Earned {
			continue
		}
		if goal == nil || b.Remaining < goal.Remaining {
			goal = b
		}
	}
	if goal == nil {
		return nil
	}
	out := *goal
	return &out
}

// distinctDays reduces an ordered event log to its distinct calendar days,
// ascending
func distinctDays(events []model.ApplicationEvent) []time.Time {
	var days []time.Time
	for _, e := range events {
		d := toDay(e.OccurredAt)
		if len(days) == 0 || !days[len(days)-1].Equal(d) {
			days = append(days, d)
		}
	}
	return days
}

// toDay truncates a timestamp to midnight UTC. Events are stored in the
// user's local day already, so this is a plain calendar truncation.
func toDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
