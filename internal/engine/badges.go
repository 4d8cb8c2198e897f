package engine

import "github.com/applytrack/applytrack-api/internal/model"

// BasePointsPerApplication is awarded for every "applied" event
const BasePointsPerApplication = 10

// levelThresholds[i] is the minimum cumulative points for level i+1.
// Levels are 1-based; level 1 starts at 0 points.
var levelThresholds = []int{0, 50, 150, 300, 500, 750, 1050, 1400, 1800, 2250}

// Catalog is the static badge table. Thresholds and bonus points are part
// of the determinism contract with the backend, so changing an entry is a
// breaking change: never reorder or edit existing entries, only append.
// Next-goal ties are broken by position in this slice.
var Catalog = []model.Badge{
	{ID: "first_step", Name: "First Step", Description: "Submit your first application", PointsAwarded: 10, Metric: model.MetricApplications, Threshold: 1, Category: model.BadgeCategoryVolume},
	{ID: "warming_up", Name: "Warming Up", Description: "Submit 5 applications", PointsAwarded: 25, Metric: model.MetricApplications, Threshold: 5, Category: model.BadgeCategoryVolume},
	{ID: "double_digits", Name: "Double Digits", Description: "Submit 10 applications", PointsAwarded: 50, Metric: model.MetricApplications, Threshold: 10, Category: model.BadgeCategoryVolume},
	{ID: "quarter_century", Name: "Quarter Century", Description: "Submit 25 applications", PointsAwarded: 100, Metric: model.MetricApplications, Threshold: 25, Category: model.BadgeCategoryVolume},
	{ID: "fifty_club", Name: "Fifty Club", Description: "Submit 50 applications", PointsAwarded: 200, Metric: model.MetricApplications, Threshold: 50, Category: model.BadgeCategoryVolume},
	{ID: "centurion", Name: "Centurion", Description: "Submit 100 applications", PointsAwarded: 500, Metric: model.MetricApplications, Threshold: 100, Category: model.BadgeCategoryVolume},
	{ID: "showing_up", Name: "Showing Up", Description: "Be active on 3 different days", PointsAwarded: 15, Metric: model.MetricDays, Threshold: 3, Category: model.BadgeCategoryStreak},
	{ID: "committed", Name: "Committed", Description: "Be active on 7 different days", PointsAwarded: 40, Metric: model.MetricDays, Threshold: 7, Category: model.BadgeCategoryStreak},
	{ID: "fortnight", Name: "Fortnight", Description: "Be active on 14 different days", PointsAwarded: 80, Metric: model.MetricDays, Threshold: 14, Category: model.BadgeCategoryStreak},
	{ID: "thirty_strong", Name: "Thirty Strong", Description: "Be active on 30 different days", PointsAwarded: 200, Metric: model.MetricDays, Threshold: 30, Category: model.BadgeCategoryStreak},
}

// MaxLevel is the highest reachable level
func MaxLevel() int {
	return len(levelThresholds)
}

// LevelForPoints returns the 1-based level for a points total
func LevelForPoints(points int) int {
	level := 1
	for i, min := range levelThresholds {
		if points >= min {
			level = i + 1
		}
	}
	return level
}

// PointsToNextLevel returns how many points are missing for the next
// level, 0 when already at the top
func PointsToNextLevel(points int) int {
	level := LevelForPoints(points)
	if level >= len(levelThresholds) {
		return 0
	}
	remaining := levelThresholds[level] - points
	if remaining < 0 {
		return 0
	}
	return remaining
}
