package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/agro-advisor/internal/alerting"
	"github.com/OldStager01/agro-advisor/pkg/database/queries"
)

type AlertHandler struct {
	store *alerting.Store
	repo  *queries.AlertRepository
}

func NewAlertHandler(store *alerting.Store, repo *queries.AlertRepository) *AlertHandler {
	return &AlertHandler{
		store: store,
		repo:  repo,
	}
}

// ListActive returns every currently active alert across locations
func (h *AlertHandler) ListActive(c *gin.Context) {
	alerts := h.store.Active()
	c.JSON(http.StatusOK, gin.H{
		"count":  len(alerts),
		"alerts": alerts,
	})
}

// ListByLocation returns the active alerts for one location
func (h *AlertHandler) ListByLocation(c *gin.Context) {
	locationID, ok := locationParam(c)
	if !ok {
		return
	}
	alerts := h.store.ActiveForLocation(locationID)
	c.JSON(http.StatusOK, gin.H{
		"location_id": locationID,
		"count":       len(alerts),
		"alerts":      alerts,
	})
}

// History returns persisted alerts for a location within a time range
func (h *AlertHandler) History(c *gin.Context) {
	locationID, ok := locationParam(c)
	if !ok {
		return
	}

	to := time.Now()
	from := to.Add(-24 * time.Hour)

	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'from' timestamp"})
			return
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'to' timestamp"})
			return
		}
		to = t
	}

	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	alerts, err := h.repo.GetHistory(ctx, locationID, from, to, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load alert history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"location_id": locationID,
		"from":        from,
		"to":          to,
		"count":       len(alerts),
		"alerts":      alerts,
	})
}
