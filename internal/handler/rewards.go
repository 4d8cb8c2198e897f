package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/applytrack/applytrack-api/internal/engine"
	"github.com/applytrack/applytrack-api/internal/repository"
)

type RewardsHandler struct {
	eventRepo   *repository.EventRepo
	rewardsRepo *repository.RewardsRepo
}

func NewRewardsHandler(eventRepo *repository.EventRepo, rewardsRepo *repository.RewardsRepo) *RewardsHandler {
	return &RewardsHandler{eventRepo: eventRepo, rewardsRepo: rewardsRepo}
}

// GetRewards handles GET /rewards. The state is always recomputed from
// the activity log — the engine is the single source of truth — and the
// result is persisted so user_rewards/user_badges mirror what the client
// saw. Badge earn dates are write-once in the database.
func (h *RewardsHandler) GetRewards(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	events, err := h.eventRepo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load activity log")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load rewards"})
		return
	}

	state := engine.ComputeRewards(events, time.Now().UTC())

	// Earn dates recomputed from the log should match what was persisted
	// earlier; a mismatch means the log was edited out-of-band and is worth
	// surfacing for reconciliation.
	if persisted, err := h.rewardsRepo.EarnedBadges(c.Request.Context(), userID); err == nil {
		for _, b := range state.Badges {
			if !b.Earned {
				continue
			}
			if at, ok := persisted[b.ID]; ok && !at.Equal(*b.EarnedAt) {
				log.Warn().
					Str("badge", b.ID).
					Time("stored", at).
					Time("computed", *b.EarnedAt).
					Msg("Badge earn date drifted from stored value")
			}
		}
	}

	if err := h.rewardsRepo.SaveState(c.Request.Context(), userID, state); err != nil {
		// Persistence is a mirror, not the source; still serve the state
		log.Warn().Err(err).Msg("Failed to persist rewards state")
	}

	c.JSON(http.StatusOK, state)
}

// ListBadges handles GET /rewards/badges — the full catalog with the
// user's per-badge progress
func (h *RewardsHandler) ListBadges(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	events, err := h.eventRepo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load activity log")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load badges"})
		return
	}

	state := engine.ComputeRewards(events, time.Now().UTC())

	c.JSON(http.StatusOK, gin.H{
		"badges":   state.Badges,
		"nextGoal": state.NextGoal,
	})
}
