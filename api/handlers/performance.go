package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/agro-advisor/internal/scheduler"
	"github.com/OldStager01/agro-advisor/internal/tracker"
)

type PerformanceHandler struct {
	tracker   *tracker.Tracker
	scheduler *scheduler.Scheduler
}

func NewPerformanceHandler(t *tracker.Tracker, s *scheduler.Scheduler) *PerformanceHandler {
	return &PerformanceHandler{
		tracker:   t,
		scheduler: s,
	}
}

// GetModelPerformance returns the per-model running averages
func (h *PerformanceHandler) GetModelPerformance(c *gin.Context) {
	records := h.tracker.All()
	c.JSON(http.StatusOK, gin.H{
		"count":  len(records),
		"models": records,
	})
}

// GetSchedulerStatus reports the scheduler's last cycle and state
func (h *PerformanceHandler) GetSchedulerStatus(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusOK, gin.H{"enabled": false})
		return
	}

	resp := gin.H{
		"enabled":     true,
		"in_progress": h.scheduler.InProgress(),
		"locations":   h.scheduler.Locations(),
	}
	if lastRun, ok := h.scheduler.LastRun(); ok {
		resp["last_run"] = lastRun
	}
	c.JSON(http.StatusOK, resp)
}
