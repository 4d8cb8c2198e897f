package model

import (
	"time"

	"github.com/google/uuid"
)

// User represents an ApplyTrack account
type User struct {
	ID          uuid.UUID `json:"id"`
	FirebaseUID string    `json:"-"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Timezone    string    `json:"timezone"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Job is a tracked posting pulled from the scraper backend.
// PostedAt is the preferred structured timestamp; PostedDate carries the
// legacy free-text recency descriptor ("2 hours ago") for sources that
// still emit it.
type Job struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"userId"`
	ExternalID string     `json:"externalId"`
	Source     string     `json:"source"`
	Title      string     `json:"title"`
	Company    string     `json:"company"`
	Location   string     `json:"location"`
	Country    string     `json:"country,omitempty"`
	JobType    string     `json:"jobType,omitempty"`
	Category   string     `json:"category,omitempty"`
	ApplyURL   string     `json:"applyUrl,omitempty"`
	EasyApply  bool       `json:"easyApply"`
	PostedDate string     `json:"postedDate,omitempty"`
	PostedAt   *time.Time `json:"postedAt,omitempty"`
	Applied    bool       `json:"applied"`
	Rejected   bool       `json:"rejected"`
	IsNew      bool       `json:"isNew"`
	FeedOrder  int        `json:"-"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// CountryUnknown is substituted when the scraper could not classify a posting
const CountryUnknown = "Unknown"

// DisplayCountry returns the country filter value for a job
func (j Job) DisplayCountry() string {
	if j.Country == "" {
		return CountryUnknown
	}
	return j.Country
}

// Job category values assigned by the scraper
const (
	CategoryNew      = "new"
	CategoryLast24h  = "last_24h"
	CategoryExisting = "existing"
)

// SnapshotMeta describes a scraped job snapshot as a whole
type SnapshotMeta struct {
	Source    string    `json:"source"`
	ScrapedAt time.Time `json:"scrapedAt"`
	Total     int       `json:"total"`
}

// JobSnapshot is the typed envelope for a scraped collection. The legacy
// scraper mixed metadata into the job map under underscore-prefixed keys;
// the scraper client unpacks that into this shape so nothing downstream
// has to know about sentinel keys.
type JobSnapshot struct {
	Meta SnapshotMeta `json:"meta"`
	Jobs []Job        `json:"jobs"`
}

// ── Filtering ───────────────────────────────────────────

// Status filter values
const (
	StatusAll        = "all"
	StatusApplied    = "applied"
	StatusNotApplied = "not_applied"
	StatusNew        = "new"
	StatusRejected   = "rejected"
)

// Sort keys
const (
	SortNewest  = "newest"
	SortOldest  = "oldest"
	SortCompany = "company"
)

// FilterState is the immutable view configuration passed in per request
type FilterState struct {
	Status  string `json:"status"`
	Country string `json:"country"`
	JobType string `json:"jobType"`
	Sort    string `json:"sort"`
}

// DefaultFilterState returns the dashboard's initial view configuration
func DefaultFilterState() FilterState {
	return FilterState{
		Status:  StatusAll,
		Country: "all",
		JobType: "all",
		Sort:    SortNewest,
	}
}

func ValidStatus(s string) bool {
	switch s {
	case StatusAll, StatusApplied, StatusNotApplied, StatusNew, StatusRejected:
		return true
	}
	return false
}

func ValidSort(s string) bool {
	switch s {
	case SortNewest, SortOldest, SortCompany:
		return true
	}
	return false
}

// Summary holds the dashboard stat-card counts, computed over the full
// collection before any status filtering
type Summary struct {
	Total      int `json:"total"`
	New        int `json:"new"`
	Applied    int `json:"applied"`
	NotApplied int `json:"notApplied"`
}

// ── Activity log ────────────────────────────────────────

// ApplicationEvent outcomes
const (
	OutcomeApplied  = "applied"
	OutcomeRejected = "rejected"
	OutcomeSaved    = "saved"
)

func ValidOutcome(s string) bool {
	switch s {
	case OutcomeApplied, OutcomeRejected, OutcomeSaved:
		return true
	}
	return false
}

// ApplicationEvent is one entry in a user's chronological activity log.
// Country and JobType are denormalized from the job at event time so the
// log stays meaningful after bulk job removal.
type ApplicationEvent struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"userId"`
	JobID      *uuid.UUID `json:"jobId,omitempty"`
	Outcome    string     `json:"outcome"`
	Country    string     `json:"country,omitempty"`
	JobType    string     `json:"jobType,omitempty"`
	Reason     string     `json:"reason,omitempty"`
	OccurredAt time.Time  `json:"occurredAt"`
}

// ── Rewards ─────────────────────────────────────────────

// Badge metric kinds
const (
	MetricApplications = "applications"
	MetricDays         = "days"
)

// Badge categories
const (
	BadgeCategoryVolume = "volume"
	BadgeCategoryStreak = "streak"
)

// Badge is one entry of the static catalog
type Badge struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	PointsAwarded int    `json:"pointsAwarded"`
	Metric        string `json:"metric"`
	Threshold     int    `json:"threshold"`
	Category      string `json:"category"`
}

// BadgeState is a catalog entry plus the user's derived progress
type BadgeState struct {
	Badge
	Earned             bool       `json:"earned"`
	EarnedAt           *time.Time `json:"earnedAt,omitempty"`
	Progress           int        `json:"progress"`
	Remaining          int        `json:"remaining"`
	ProgressPercentage float64    `json:"progressPercentage"`
}

// RewardsState is derived from the event log on every read; the database
// rows are a persisted copy of what the engine computed, never an input
type RewardsState struct {
	Points            int            `json:"points"`
	Level             int            `json:"level"`
	PointsToNextLevel int            `json:"pointsToNextLevel"`
	CurrentStreak     int            `json:"currentStreak"`
	LongestStreak     int            `json:"longestStreak"`
	Applications      int            `json:"applications"`
	ActiveDays        int            `json:"activeDays"`
	Badges            []BadgeState   `json:"badges"`
	NextGoal          *BadgeState    `json:"nextGoal,omitempty"`
	Countries         map[string]int `json:"countries,omitempty"`
}
