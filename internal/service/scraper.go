package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"

	"github.com/applytrack/applytrack-api/internal/model"
)

// ScraperClient wraps the scraping backend's job source API. The scraper
// is the source of truth for the posting collection; this service only
// reads from it.
type ScraperClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewScraperClient(baseURL, apiKey string) *ScraperClient {
	return &ScraperClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// scraperJob matches the scraper's wire format for a single posting
type scraperJob struct {
	Title      string `json:"title"`
	Company    string `json:"company"`
	Location   string `json:"location"`
	Country    string `json:"country"`
	JobType    string `json:"job_type"`
	Category   string `json:"category"`
	URL        string `json:"url"`
	EasyApply  bool   `json:"easy_apply"`
	PostedDate string `json:"posted_date"`
	PostedAt   string `json:"posted_at"`
}

// scraperMeta matches the metadata entry the legacy payload hides under
// the "_metadata" key
type scraperMeta struct {
	Source    string `json:"source"`
	ScrapedAt string `json:"scraped_at"`
}

// FetchSnapshot pulls the current job collection. The legacy payload is a
// single flat map keyed by job ID, with metadata smuggled in under keys
// starting with "_"; this client is the one place that knows about that
// convention and everything downstream gets a typed envelope instead.
func (c *ScraperClient) FetchSnapshot(ctx context.Context) (*model.JobSnapshot, error) {
	reqURL := c.baseURL + "/api/jobs"

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating scraper request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling scraper API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading scraper response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scraper API returned %d: %s",
			resp.StatusCode, string(body[:min(len(body), 500)]))
	}

	snap, err := ParseSnapshot(body)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("jobs", len(snap.Jobs)).
		Str("source", snap.Meta.Source).
		Msg("Fetched scraper snapshot")

	return snap, nil
}

// ParseSnapshot converts the legacy keyed-map payload into the typed
// envelope. Records that fail to decode are skipped, never fatal.
func ParseSnapshot(body []byte) (*model.JobSnapshot, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parsing scraper response: %w", err)
	}

	snap := &model.JobSnapshot{}

	// Sort keys for a deterministic feed order; the scraper emits IDs in
	// insertion order but JSON maps do not preserve it.
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if strings.HasPrefix(key, "_") {
			if key == "_metadata" {
				var meta scraperMeta
				if err := json.Unmarshal(raw[key], &meta); err == nil {
					snap.Meta.Source = meta.Source
					if t, err := time.Parse(time.RFC3339, meta.ScrapedAt); err == nil {
						snap.Meta.ScrapedAt = t
					}
				}
			}
			continue
		}

		var sj scraperJob
		if err := json.Unmarshal(raw[key], &sj); err != nil {
			log.Warn().Str("key", key).Err(err).Msg("Skipping undecodable job record")
			continue
		}
		snap.Jobs = append(snap.Jobs, convertScraperJob(key, sj))
	}

	snap.Meta.Total = len(snap.Jobs)
	return snap, nil
}

// convertScraperJob maps a wire record onto the Job model, with the
// defensive defaults the rest of the system relies on
func convertScraperJob(externalID string, sj scraperJob) model.Job {
	j := model.Job{
		ExternalID: externalID,
		Source:     "scraper",
		Title:      sj.Title,
		Company:    sj.Company,
		Location:   sj.Location,
		Country:    sj.Country,
		JobType:    sj.JobType,
		Category:   sj.Category,
		ApplyURL:   sj.URL,
		EasyApply:  sj.EasyApply,
		PostedDate: sj.PostedDate,
	}

	if sj.PostedAt != "" {
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, sj.PostedAt); err == nil {
				j.PostedAt = &t
				break
			}
		}
	}

	// Newer scraper versions only send the structured timestamp; keep the
	// dashboard's recency label populated either way.
	if j.PostedDate == "" && j.PostedAt != nil {
		j.PostedDate = humanize.Time(*j.PostedAt)
	}

	return j
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
