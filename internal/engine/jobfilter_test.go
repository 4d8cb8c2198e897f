package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/applytrack/applytrack-api/internal/model"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func jobWithPosted(posted string) model.Job {
	return model.Job{PostedDate: posted}
}

func TestClassify_TextDescriptors(t *testing.T) {
	tests := []struct {
		posted string
		want   RecencyBucket
	}{
		{"2 hours ago", RecencyWithin24h},
		{"1 hour ago", RecencyWithin24h},
		{"30 minutes ago", RecencyWithin24h},
		{"today", RecencyWithin24h},
		{"now", RecencyWithin24h},
		{"just now", RecencyWithin24h},
		{"1 day ago", RecencyWithin24h}, // boundary is inclusive
		{"2 days ago", RecencyOlder},
		{"3 days ago", RecencyOlder},
		{"14 days ago", RecencyOlder},
		{"2 weeks ago", RecencyOlder},
		{"1 month ago", RecencyOlder},
		{"", RecencyUnknown},
		{"soon", RecencyUnknown},
		{"garbage text", RecencyUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.posted, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(jobWithPosted(tt.posted), now))
		})
	}
}

func TestClassify_StructuredTimestampWins(t *testing.T) {
	recent := now.Add(-2 * time.Hour)
	old := now.Add(-72 * time.Hour)

	j := model.Job{PostedDate: "9 days ago", PostedAt: &recent}
	assert.Equal(t, RecencyWithin24h, Classify(j, now))

	j = model.Job{PostedDate: "1 hour ago", PostedAt: &old}
	assert.Equal(t, RecencyOlder, Classify(j, now))
}

func sampleJobs() []model.Job {
	return []model.Job{
		{ExternalID: "j1", Company: "Zalando", Country: "Ireland", IsNew: true, PostedDate: "2 hours ago"},
		{ExternalID: "j2", Company: "accenture", Country: "Spain", Applied: true, PostedDate: "3 days ago"},
		{ExternalID: "j3", Company: "Stripe", Country: "Ireland", JobType: "remote", Rejected: true, PostedDate: "1 day ago"},
		{ExternalID: "j4", Company: "Bolt", PostedDate: "weird"},
	}
}

func TestFilter_Status(t *testing.T) {
	jobs := sampleJobs()
	f := model.DefaultFilterState()

	assert.Len(t, Filter(jobs, f), 4)

	f.Status = model.StatusApplied
	got := Filter(jobs, f)
	require.Len(t, got, 1)
	assert.Equal(t, "j2", got[0].ExternalID)

	f.Status = model.StatusNotApplied
	got = Filter(jobs, f)
	require.Len(t, got, 2)
	assert.Equal(t, "j1", got[0].ExternalID)
	assert.Equal(t, "j4", got[1].ExternalID)

	f.Status = model.StatusRejected
	got = Filter(jobs, f)
	require.Len(t, got, 1)
	assert.Equal(t, "j3", got[0].ExternalID)

	f.Status = model.StatusNew
	got = Filter(jobs, f)
	require.Len(t, got, 1)
	assert.Equal(t, "j1", got[0].ExternalID)
}

func TestFilter_CountryAndJobTypeAreANDCombined(t *testing.T) {
	jobs := sampleJobs()
	got := Filter(jobs, model.FilterState{Status: model.StatusAll, Country: "Ireland", JobType: "remote"})
	require.Len(t, got, 1)
	assert.Equal(t, "j3", got[0].ExternalID)
}

func TestFilter_MissingCountryIsUnknown(t *testing.T) {
	jobs := sampleJobs()
	got := Filter(jobs, model.FilterState{Status: model.StatusAll, Country: model.CountryUnknown, JobType: "all"})
	require.Len(t, got, 1)
	assert.Equal(t, "j4", got[0].ExternalID)
}

func TestFilter_Idempotent(t *testing.T) {
	jobs := sampleJobs()
	f := model.FilterState{Status: model.StatusNotApplied, Country: "all", JobType: "all"}

	once := Filter(jobs, f)
	twice := Filter(once, f)
	assert.Equal(t, once, twice)
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	jobs := sampleJobs()
	snapshot := sampleJobs()

	Filter(jobs, model.FilterState{Status: model.StatusApplied, Country: "Spain", JobType: "all"})
	assert.Equal(t, snapshot, jobs)
}

func TestSummarize_MatchesFilterCounts(t *testing.T) {
	jobs := sampleJobs()
	s := Summarize(jobs)

	applied := Filter(jobs, model.FilterState{Status: model.StatusApplied, Country: "all", JobType: "all"})
	notApplied := Filter(jobs, model.FilterState{Status: model.StatusNotApplied, Country: "all", JobType: "all"})
	isNew := Filter(jobs, model.FilterState{Status: model.StatusNew, Country: "all", JobType: "all"})

	assert.Equal(t, len(jobs), s.Total)
	assert.Equal(t, len(applied), s.Applied)
	assert.Equal(t, len(notApplied), s.NotApplied)
	assert.Equal(t, len(isNew), s.New)
}

func TestFilterAndSummarize_EndToEnd(t *testing.T) {
	jobs := []model.Job{
		{ExternalID: "j1", Country: "Ireland", IsNew: true},
		{ExternalID: "j2", Country: "Spain", Applied: true},
	}

	got := Filter(jobs, model.FilterState{Status: model.StatusNew, Country: "all", JobType: "all"})
	require.Len(t, got, 1)
	assert.Equal(t, "j1", got[0].ExternalID)

	assert.Equal(t, model.Summary{Total: 2, New: 1, Applied: 1, NotApplied: 1}, Summarize(jobs))
}

func TestSort_NewestPutsFreshFirstAndKeepsFeedOrder(t *testing.T) {
	jobs := []model.Job{
		{ExternalID: "a", PostedDate: "3 days ago"},
		{ExternalID: "b", PostedDate: "1 hour ago"},
		{ExternalID: "c", PostedDate: "nonsense"},
		{ExternalID: "d", PostedDate: "today"},
	}

	got := Sort(jobs, model.SortNewest, now)
	ids := []string{got[0].ExternalID, got[1].ExternalID, got[2].ExternalID, got[3].ExternalID}
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids)

	got = Sort(jobs, model.SortOldest, now)
	ids = []string{got[0].ExternalID, got[1].ExternalID, got[2].ExternalID, got[3].ExternalID}
	assert.Equal(t, []string{"a", "b", "d", "c"}, ids)
}

func TestSort_CompanyIsCaseInsensitive(t *testing.T) {
	jobs := []model.Job{
		{ExternalID: "1", Company: "zeta"},
		{ExternalID: "2", Company: "Acme"},
		{ExternalID: "3", Company: "acorn"},
	}
	got := Sort(jobs, model.SortCompany, now)
	assert.Equal(t, "Acme", got[0].Company)
	assert.Equal(t, "acorn", got[1].Company)
	assert.Equal(t, "zeta", got[2].Company)
}

func TestCountRejectionReasons(t *testing.T) {
	events := []model.ApplicationEvent{
		{Outcome: model.OutcomeRejected, Reason: "no visa sponsorship"},
		{Outcome: model.OutcomeRejected, Reason: "no visa sponsorship"},
		{Outcome: model.OutcomeRejected},
		{Outcome: model.OutcomeApplied},
	}
	got := CountRejectionReasons(events)
	assert.Equal(t, map[string]int{"no visa sponsorship": 2, "unspecified": 1}, got)
}

func TestCountByCountry(t *testing.T) {
	events := []model.ApplicationEvent{
		{Outcome: model.OutcomeApplied, Country: "Ireland"},
		{Outcome: model.OutcomeApplied, Country: "Ireland"},
		{Outcome: model.OutcomeApplied},
		{Outcome: model.OutcomeRejected, Country: "Spain"},
	}
	got := CountByCountry(events)
	assert.Equal(t, map[string]int{"Ireland": 2, model.CountryUnknown: 1}, got)
}
