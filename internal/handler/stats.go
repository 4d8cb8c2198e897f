package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/applytrack/applytrack-api/internal/engine"
	"github.com/applytrack/applytrack-api/internal/repository"
)

type StatsHandler struct {
	jobRepo   *repository.JobRepo
	eventRepo *repository.EventRepo
}

func NewStatsHandler(jobRepo *repository.JobRepo, eventRepo *repository.EventRepo) *StatsHandler {
	return &StatsHandler{jobRepo: jobRepo, eventRepo: eventRepo}
}

// Summary handles GET /stats/summary — stat-card counts plus the country
// and rejection-reason breakdowns for the analytics view
func (h *StatsHandler) Summary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	jobs, err := h.jobRepo.List(c.Request.Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list jobs for stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}

	events, err := h.eventRepo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load activity log for stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"summary":          engine.Summarize(jobs),
		"countries":        engine.CountByCountry(events),
		"rejectionReasons": engine.CountRejectionReasons(events),
	})
}
