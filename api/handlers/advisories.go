package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/agro-advisor/internal/orchestrator"
	"github.com/OldStager01/agro-advisor/pkg/config"
	"github.com/OldStager01/agro-advisor/pkg/database/queries"
	"github.com/OldStager01/agro-advisor/pkg/models"
	"github.com/OldStager01/agro-advisor/pkg/validation"
)

// locationParam validates the :id path parameter and writes the 400
// response itself when it is unusable.
func locationParam(c *gin.Context) (string, bool) {
	locationID := c.Param("id")
	if err := validation.ValidateLocationID(locationID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return locationID, true
}

// Analyzer runs one on-demand analysis. Satisfied by the orchestrator.
type Analyzer interface {
	RunAnalysis(ctx context.Context, req *models.AnalysisRequest) (*models.Advisory, error)
}

type AdvisoryHandler struct {
	repo     *queries.AdvisoryRepository
	analyzer Analyzer
	config   *config.APIConfig
}

func NewAdvisoryHandler(repo *queries.AdvisoryRepository, analyzer Analyzer, cfg *config.APIConfig) *AdvisoryHandler {
	return &AdvisoryHandler{
		repo:     repo,
		analyzer: analyzer,
		config:   cfg,
	}
}

type AnalyzeRequest struct {
	HorizonDays int      `json:"horizon_days"`
	Scope       []string `json:"scope"`
}

// Analyze runs an on-demand analysis for a location
func (h *AdvisoryHandler) Analyze(c *gin.Context) {
	locationID, ok := locationParam(c)
	if !ok {
		return
	}

	var body AnalyzeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}
	if err := validation.ValidateHorizonDays(body.HorizonDays); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req := &models.AnalysisRequest{
		LocationID:  locationID,
		HorizonDays: body.HorizonDays,
	}
	for _, s := range body.Scope {
		if s == models.ScopeFull {
			req.Scope = nil
			break
		}
		kind, err := models.ParseKind(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		req.Scope = append(req.Scope, kind)
	}

	advisory, err := h.analyzer.RunAnalysis(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, orchestrator.ErrNotInitialized):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analysis engine not ready"})
		case errors.Is(err, orchestrator.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
		}
		return
	}

	c.JSON(http.StatusOK, advisory)
}

// GetLatest returns the most recent stored advisory for a location
func (h *AdvisoryHandler) GetLatest(c *gin.Context) {
	locationID, ok := locationParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	advisory, err := h.repo.GetLatest(ctx, locationID)
	if err != nil {
		if errors.Is(err, queries.ErrAdvisoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no advisory for location"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load advisory"})
		return
	}

	c.JSON(http.StatusOK, advisory)
}

// GetRecent lists stored advisories for a location, newest first
func (h *AdvisoryHandler) GetRecent(c *gin.Context) {
	locationID, ok := locationParam(c)
	if !ok {
		return
	}
	limit := h.parseLimit(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	advisories, err := h.repo.GetRecent(ctx, locationID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load advisories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"location_id": locationID,
		"count":       len(advisories),
		"advisories":  advisories,
	})
}

func (h *AdvisoryHandler) parseLimit(c *gin.Context) int {
	defaultLimit := 20
	maxLimit := 100
	if h.config != nil {
		if h.config.DefaultLimit > 0 {
			defaultLimit = h.config.DefaultLimit
		}
		if h.config.MaxLimit > 0 {
			maxLimit = h.config.MaxLimit
		}
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
