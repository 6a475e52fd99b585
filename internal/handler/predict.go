package handler

import (
	"errors"
	"net/http"

	"houseprice/internal/model"
	"houseprice/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PredictHandler handles prediction HTTP requests
type PredictHandler struct {
	predictionService *service.PredictionService
	logger            *zap.Logger
}

// NewPredictHandler creates a new predict handler
func NewPredictHandler(predictionService *service.PredictionService, logger *zap.Logger) *PredictHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PredictHandler{
		predictionService: predictionService,
		logger:            logger,
	}
}

// Predict handles POST /predict
func (h *PredictHandler) Predict(c *gin.Context) {
	var req model.HouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx := service.WithRequestID(c.Request.Context(), RequestID(c))
	result, err := h.predictionService.Predict(ctx, req.Record())
	if err != nil {
		h.logger.Error("prediction failed",
			zap.String("request_id", RequestID(c)),
			zap.Any("inputs", req.Record()),
			zap.Bool("model_error", errors.Is(err, service.ErrModelInvocation)),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "prediction failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ModelInfo handles GET /model
func (h *PredictHandler) ModelInfo(c *gin.Context) {
	c.JSON(http.StatusOK, h.predictionService.ModelInfo())
}
