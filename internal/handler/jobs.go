package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/applytrack/applytrack-api/internal/engine"
	"github.com/applytrack/applytrack-api/internal/model"
	"github.com/applytrack/applytrack-api/internal/repository"
	"github.com/applytrack/applytrack-api/internal/service"
)

type JobHandler struct {
	jobRepo   *repository.JobRepo
	eventRepo *repository.EventRepo
	refresher *service.Refresher
}

func NewJobHandler(jobRepo *repository.JobRepo, eventRepo *repository.EventRepo, refresher *service.Refresher) *JobHandler {
	return &JobHandler{jobRepo: jobRepo, eventRepo: eventRepo, refresher: refresher}
}

// filterFromQuery builds the view configuration from query parameters,
// falling back to defaults for anything missing or unrecognized
func filterFromQuery(c *gin.Context) model.FilterState {
	f := model.DefaultFilterState()
	if s := c.Query("status"); model.ValidStatus(s) {
		f.Status = s
	}
	if country := c.Query("country"); country != "" {
		f.Country = country
	}
	if jt := c.Query("jobType"); jt != "" {
		f.JobType = jt
	}
	if s := c.Query("sort"); model.ValidSort(s) {
		f.Sort = s
	}
	return f
}

// ListJobs handles GET /jobs — the filtered, sorted dashboard view plus
// the stat-card summary computed over the unfiltered collection
func (h *JobHandler) ListJobs(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	all, err := h.jobRepo.List(c.Request.Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list jobs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list jobs"})
		return
	}

	f := filterFromQuery(c)
	now := time.Now().UTC()

	jobs := engine.Sort(engine.Filter(all, f), f.Sort, now)
	if jobs == nil {
		jobs = []model.Job{}
	}

	c.JSON(http.StatusOK, gin.H{
		"jobs":    jobs,
		"summary": engine.Summarize(all),
		"filter":  f,
	})
}

// Apply handles POST /jobs/:id/apply
func (h *JobHandler) Apply(c *gin.Context) {
	h.applyOutcome(c, model.OutcomeApplied)
}

// Reject handles POST /jobs/:id/reject. An optional body can carry the
// rejection reason for the stats view.
func (h *JobHandler) Reject(c *gin.Context) {
	h.applyOutcome(c, model.OutcomeRejected)
}

func (h *JobHandler) applyOutcome(c *gin.Context, outcome string) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job ID"})
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	c.ShouldBindJSON(&req)

	var job *model.Job
	if outcome == model.OutcomeApplied {
		job, err = h.jobRepo.SetApplied(c.Request.Context(), jobID, userID)
	} else {
		job, err = h.jobRepo.SetRejected(c.Request.Context(), jobID, userID)
	}
	if err != nil {
		log.Error().Err(err).Str("outcome", outcome).Msg("Failed to update job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update job"})
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}

	event := &model.ApplicationEvent{
		UserID:     userID,
		JobID:      &job.ID,
		Outcome:    outcome,
		Country:    job.DisplayCountry(),
		JobType:    job.JobType,
		Reason:     req.Reason,
		OccurredAt: time.Now().UTC(),
	}
	if _, err := h.eventRepo.Append(c.Request.Context(), event); err != nil {
		// The job flag is the source of truth; a missed log entry costs a
		// point, not correctness
		log.Warn().Err(err).Msg("Failed to append activity event")
	}

	c.JSON(http.StatusOK, job)
}

// Restore handles POST /jobs/:id/restore — rolls back an optimistic
// apply/reject the client abandoned. The matching activity event is
// retracted so recomputed rewards look as if the action never happened.
func (h *JobHandler) Restore(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job ID"})
		return
	}

	job, err := h.jobRepo.ClearFlags(c.Request.Context(), jobID, userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to restore job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to restore job"})
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}

	if err := h.eventRepo.DeleteForJob(c.Request.Context(), userID, jobID); err != nil {
		log.Warn().Err(err).Msg("Failed to retract activity event")
	}

	c.JSON(http.StatusOK, job)
}

// RemoveApplied handles DELETE /jobs/applied — the bulk cleanup action.
// Deletion only happens here, server-side confirmed; the activity log
// keeps its entries so rewards are unaffected.
func (h *JobHandler) RemoveApplied(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	removed, err := h.jobRepo.DeleteApplied(c.Request.Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to remove applied jobs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove applied jobs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// Refresh handles POST /jobs/refresh — pulls the scraper snapshot for
// this user right now instead of waiting for the next poll
func (h *JobHandler) Refresh(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	fetched, inserted, err := h.refresher.RefreshUser(c.Request.Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to refresh jobs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh jobs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"fetched": fetched,
		"new":     inserted,
		"message": "Jobs refreshed",
	})
}
