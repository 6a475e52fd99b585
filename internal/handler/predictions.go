package handler

import (
	"context"
	"net/http"
	"strconv"

	"houseprice/internal/model"

	"github.com/gin-gonic/gin"
)

// PredictionLister reads persisted predictions
type PredictionLister interface {
	ListRecent(ctx context.Context, limit int) ([]model.PredictionLog, error)
}

// PredictionLogHandler handles prediction log HTTP requests
type PredictionLogHandler struct {
	lister       PredictionLister
	defaultLimit int
	maxLimit     int
}

// NewPredictionLogHandler creates a new prediction log handler
func NewPredictionLogHandler(lister PredictionLister, defaultLimit, maxLimit int) *PredictionLogHandler {
	return &PredictionLogHandler{
		lister:       lister,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// Recent handles GET /api/v1/predictions/recent
func (h *PredictionLogHandler) Recent(c *gin.Context) {
	limit := h.defaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = n
	}
	if limit > h.maxLimit {
		limit = h.maxLimit
	}

	logs, err := h.lister.ListRecent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list predictions: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, model.RecentPredictionsResponse{
		Predictions: logs,
		Count:       len(logs),
	})
}
