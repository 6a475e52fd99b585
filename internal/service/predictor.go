package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"houseprice/internal/features"
	"houseprice/internal/model"
	"houseprice/internal/regressor"

	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

var (
	// ErrModelInvocation wraps every failure of the model call or of the
	// output transform
	ErrModelInvocation = errors.New("model invocation failed")
	// ErrFeatureOrder is returned when an artifact declares features in a
	// different order than the transform produces them
	ErrFeatureOrder = errors.New("model feature order does not match transform")
)

// PredictionLogger persists predictions
type PredictionLogger interface {
	LogPrediction(ctx context.Context, entry *model.PredictionLog) error
}

// PredictionService runs the feature transform and the model for one record
type PredictionService struct {
	regressor regressor.Regressor
	cache     *PredictionCache
	sink      PredictionLogger
	logger    *zap.Logger
	pending   sync.WaitGroup
}

// NewPredictionService creates a new prediction service.
// cache and sink may be nil.
func NewPredictionService(
	reg regressor.Regressor,
	cache *PredictionCache,
	sink PredictionLogger,
	logger *zap.Logger,
) *PredictionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PredictionService{
		regressor: reg,
		cache:     cache,
		sink:      sink,
		logger:    logger,
	}
}

// CheckModel verifies that a loaded model can consume the feature vector
func CheckModel(reg regressor.Regressor) error {
	info := reg.Info()
	if info.NumFeatures != model.FeatureCount {
		return fmt.Errorf("%w: model expects %d features, transform produces %d",
			regressor.ErrFeatureCount, info.NumFeatures, model.FeatureCount)
	}
	if !features.MatchesNames(info.FeatureNames) {
		return fmt.Errorf("%w: %v", ErrFeatureOrder, info.FeatureNames)
	}
	return nil
}

// ModelInfo describes the model served by this service
func (s *PredictionService) ModelInfo() model.ModelInfo {
	return s.regressor.Info()
}

// Predict estimates the price of a house
func (s *PredictionService) Predict(ctx context.Context, rec model.HouseRecord) (*model.PredictionResult, error) {
	startTime := time.Now()

	vector := features.Transform(rec)

	result, ok := s.cache.Get(rec)
	if !ok {
		log10Price, err := s.regressor.Predict(vector.Slice())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrModelInvocation, err)
		}

		price, err := Denormalize(log10Price)
		if err != nil {
			return nil, err
		}

		result = model.PredictionResult{
			PredictedPrice:    price,
			Log10Price:        log10Price,
			Note:              model.PredictionNote,
			RawInputs:         rec,
			TransformedInputs: features.Transformed(vector),
		}
		s.cache.Add(rec, result)
	}

	if s.sink != nil {
		s.logAsync(ctx, rec, vector, result, time.Since(startTime))
	}

	return &result, nil
}

// Denormalize converts a log10 price into a whole price.
// Ties round to even.
func Denormalize(log10Price float64) (int64, error) {
	if math.IsNaN(log10Price) || math.IsInf(log10Price, 0) {
		return 0, fmt.Errorf("%w: non-finite model output %v", ErrModelInvocation, log10Price)
	}
	rounded := math.RoundToEven(math.Pow(10, log10Price))
	if rounded >= float64(math.MaxInt64) {
		return 0, fmt.Errorf("%w: price 10^%v out of range", ErrModelInvocation, log10Price)
	}
	return int64(rounded), nil
}

// Close waits for pending prediction log writes
func (s *PredictionService) Close() {
	s.pending.Wait()
}

func (s *PredictionService) logAsync(ctx context.Context, rec model.HouseRecord, vector model.FeatureVector, result model.PredictionResult, took time.Duration) {
	values := make([]float32, len(vector))
	for i, v := range vector {
		values[i] = float32(v)
	}
	entry := &model.PredictionLog{
		RequestID:      RequestIDFromContext(ctx),
		HouseRecord:    rec,
		Features:       pgvector.NewVector(values),
		Log10Price:     result.Log10Price,
		PredictedPrice: result.PredictedPrice,
		ModelVersion:   s.regressor.Info().Version,
		LatencyMicros:  took.Microseconds(),
		CreatedAt:      time.Now().UTC(),
	}

	// Log prediction (non-blocking)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.sink.LogPrediction(context.Background(), entry); err != nil {
			s.logger.Warn("failed to log prediction",
				zap.String("request_id", entry.RequestID),
				zap.Error(err),
			)
		}
	}()
}
