package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/applytrack/applytrack-api/internal/model"
	"github.com/applytrack/applytrack-api/internal/repository"
	"github.com/applytrack/applytrack-api/internal/store"
)

const snapshotCacheKey = "scraper:snapshot"

// Refresher keeps every user's job collection in sync with the scraper.
// It polls on a fixed interval and caches the last good snapshot so a
// scraper outage degrades to stale data instead of an empty dashboard.
type Refresher struct {
	scraper  *ScraperClient
	userRepo *repository.UserRepo
	jobRepo  *repository.JobRepo
	cache    store.Store
	interval time.Duration
}

func NewRefresher(scraper *ScraperClient, userRepo *repository.UserRepo, jobRepo *repository.JobRepo, cache store.Store, interval time.Duration) *Refresher {
	return &Refresher{
		scraper:  scraper,
		userRepo: userRepo,
		jobRepo:  jobRepo,
		cache:    cache,
		interval: interval,
	}
}

// Run polls until the context is cancelled. One refresh fires immediately
// on startup.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	if err := r.RefreshAll(ctx); err != nil {
		log.Error().Err(err).Msg("Initial feed refresh failed")
	}

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Feed refresher stopped")
			return
		case <-ticker.C:
			if err := r.RefreshAll(ctx); err != nil {
				log.Error().Err(err).Msg("Feed refresh failed")
			}
		}
	}
}

// RefreshAll fetches the current snapshot and merges it into every user's
// collection. On fetch failure the last cached snapshot is replayed so new
// users still get data (stale-while-revalidate).
func (r *Refresher) RefreshAll(ctx context.Context) error {
	snap, err := r.fetchWithFallback(ctx)
	if err != nil {
		return err
	}

	userIDs, err := r.userRepo.ListIDs(ctx)
	if err != nil {
		return err
	}

	total := 0
	for _, userID := range userIDs {
		inserted, err := r.jobRepo.UpsertSnapshot(ctx, userID, *snap)
		if err != nil {
			log.Error().Err(err).Str("userId", userID.String()).Msg("Snapshot merge failed for user")
			continue
		}
		total += inserted
	}

	log.Info().
		Int("users", len(userIDs)).
		Int("jobs", len(snap.Jobs)).
		Int("new", total).
		Msg("Feed refresh complete")
	return nil
}

// RefreshUser merges the current snapshot into one user's collection and
// reports (fetched, newly inserted)
func (r *Refresher) RefreshUser(ctx context.Context, userID uuid.UUID) (int, int, error) {
	snap, err := r.fetchWithFallback(ctx)
	if err != nil {
		return 0, 0, err
	}
	inserted, err := r.jobRepo.UpsertSnapshot(ctx, userID, *snap)
	if err != nil {
		return 0, 0, err
	}
	return len(snap.Jobs), inserted, nil
}

func (r *Refresher) fetchWithFallback(ctx context.Context) (*model.JobSnapshot, error) {
	snap, err := r.scraper.FetchSnapshot(ctx)
	if err == nil {
		if payload, mErr := json.Marshal(snap); mErr == nil {
			if cErr := r.cache.Save(ctx, snapshotCacheKey, payload); cErr != nil {
				log.Warn().Err(cErr).Msg("Failed to cache snapshot")
			}
		}
		return snap, nil
	}

	log.Warn().Err(err).Msg("Scraper fetch failed, trying cached snapshot")

	payload, cErr := r.cache.Load(ctx, snapshotCacheKey)
	if cErr != nil {
		return nil, err
	}
	var cached model.JobSnapshot
	if uErr := json.Unmarshal(payload, &cached); uErr != nil {
		return nil, err
	}
	log.Info().Int("jobs", len(cached.Jobs)).Msg("Serving stale snapshot from cache")
	return &cached, nil
}
