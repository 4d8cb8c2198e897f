// Package engine holds the pure view-model computations behind the
// dashboard: job filtering/classification and the rewards (points, streaks,
// badges) derivation. Nothing in this package performs I/O or keeps state
// between calls; every function returns the same output for the same input.
package engine

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/applytrack/applytrack-api/internal/model"
)

// RecencyBucket classifies how fresh a posting is
type RecencyBucket int

const (
	RecencyUnknown RecencyBucket = iota
	RecencyWithin24h
	RecencyOlder
)

func (b RecencyBucket) String() string {
	switch b {
	case RecencyWithin24h:
		return "within24h"
	case RecencyOlder:
		return "older"
	}
	return "unknown"
}

var daysAgoRe = regexp.MustCompile(`(\d+)\s*day`)

// Classify buckets a job by recency. A structured PostedAt timestamp wins
// when the scraper supplies one; otherwise we fall back to matching the
// legacy free-text descriptor ("2 hours ago", "3 days ago"). The text path
// exists only for compatibility with old scraper payloads and anything it
// cannot parse is Unknown, which recency-sensitive views exclude but the
// default "all" view keeps.
func Classify(j model.Job, now time.Time) RecencyBucket {
	if j.PostedAt != nil {
		if now.Sub(*j.PostedAt) <= 24*time.Hour {
			return RecencyWithin24h
		}
		return RecencyOlder
	}

	s := strings.ToLower(strings.TrimSpace(j.PostedDate))
	if s == "" {
		return RecencyUnknown
	}

	hasAgo := strings.Contains(s, "ago")
	switch {
	case s == "today", s == "now", s == "just now", s == "just posted":
		return RecencyWithin24h
	case hasAgo && (strings.Contains(s, "hour") || strings.Contains(s, "minute") || strings.Contains(s, "second")):
		return RecencyWithin24h
	}

	if m := daysAgoRe.FindStringSubmatch(s); m != nil && hasAgo {
		// "1 day ago" is inclusive in the 24h bucket
		if m[1] == "1" || m[1] == "0" {
			return RecencyWithin24h
		}
		return RecencyOlder
	}

	if hasAgo && (strings.Contains(s, "week") || strings.Contains(s, "month") || strings.Contains(s, "year")) {
		return RecencyOlder
	}

	return RecencyUnknown
}

// Filter returns the subset of jobs matching the filter state. Predicates
// are AND-combined and the input slice is never mutated.
func Filter(jobs []model.Job, f model.FilterState) []model.Job {
	out := make([]model.Job, 0, len(jobs))
	for _, j := range jobs {
		if !matchesStatus(j, f.Status) {
			continue
		}
		if f.Country != "" && f.Country != "all" && j.DisplayCountry() != f.Country {
			continue
		}
		if f.JobType != "" && f.JobType != "all" && j.JobType != f.JobType {
			continue
		}
		out = append(out, j)
	}
	return out
}

func matchesStatus(j model.Job, status string) bool {
	switch status {
	case model.StatusApplied:
		return j.Applied
	case model.StatusNotApplied:
		return !j.Applied && !j.Rejected
	case model.StatusNew:
		return j.IsNew
	case model.StatusRejected:
		return j.Rejected
	default:
		// "all", empty and anything unrecognized pass everything
		return true
	}
}

// Sort returns a newly ordered copy of jobs. Exact timestamps are usually
// unavailable, so newest/oldest order by recency bucket with the original
// feed order as tie-break.
func Sort(jobs []model.Job, key string, now time.Time) []model.Job {
	out := make([]model.Job, len(jobs))
	copy(out, jobs)

	switch key {
	case model.SortCompany:
		sort.SliceStable(out, func(i, k int) bool {
			return strings.ToLower(out[i].Company) < strings.ToLower(out[k].Company)
		})
	case model.SortOldest:
		sort.SliceStable(out, func(i, k int) bool {
			return oldestRank(Classify(out[i], now)) < oldestRank(Classify(out[k], now))
		})
	default: // newest
		sort.SliceStable(out, func(i, k int) bool {
			return newestRank(Classify(out[i], now)) < newestRank(Classify(out[k], now))
		})
	}
	return out
}

func newestRank(b RecencyBucket) int {
	switch b {
	case RecencyWithin24h:
		return 0
	case RecencyOlder:
		return 1
	}
	return 2
}

func oldestRank(b RecencyBucket) int {
	switch b {
	case RecencyOlder:
		return 0
	case RecencyWithin24h:
		return 1
	}
	// unparseable dates stay at the bottom either way
	return 2
}

// Summarize computes the stat-card counts over the full collection, before
// any status filtering, so the numbers always agree with what Filter would
// return for the matching predicate.
func Summarize(jobs []model.Job) model.Summary {
	s := model.Summary{Total: len(jobs)}
	for _, j := range jobs {
		if j.IsNew {
			s.New++
		}
		if j.Applied {
			s.Applied++
		}
		if !j.Applied && !j.Rejected {
			s.NotApplied++
		}
	}
	return s
}

// CountByCountry aggregates applied events per country for the stats view
// and the user_countries table
func CountByCountry(events []model.ApplicationEvent) map[string]int {
	out := make(map[string]int)
	for _, e := range events {
		if e.Outcome != model.OutcomeApplied {
			continue
		}
		country := e.Country
		if country == "" {
			country = model.CountryUnknown
		}
		out[country]++
	}
	return out
}

// CountRejectionReasons aggregates rejection events by their free-text reason
func CountRejectionReasons(events []model.ApplicationEvent) map[string]int {
	out := make(map[string]int)
	for _, e := range events {
		if e.Outcome != model.OutcomeRejected {
			continue
		}
		reason := strings.TrimSpace(e.Reason)
		if reason == "" {
			reason = "unspecified"
		}
		out[reason]++
	}
	return out
}
