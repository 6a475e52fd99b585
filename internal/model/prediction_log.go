package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// PredictionLog represents one persisted prediction
type PredictionLog struct {
	ID             int64           `json:"id" db:"id"`
	RequestID      string          `json:"request_id" db:"request_id"`
	HouseRecord                    // raw inputs
	Features       pgvector.Vector `json:"-" db:"features"`
	Log10Price     float64         `json:"log10_price" db:"log10_price"`
	PredictedPrice int64           `json:"predicted_price" db:"predicted_price"`
	ModelVersion   string          `json:"model_version" db:"model_version"`
	LatencyMicros  int64           `json:"latency_us" db:"latency_us"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// FeatureValues returns the stored feature vector as float64 values
func (p *PredictionLog) FeatureValues() []float64 {
	raw := p.Features.Slice()
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = float64(v)
	}
	return out
}

// RecentPredictionsResponse represents GET /api/v1/predictions/recent
type RecentPredictionsResponse struct {
	Predictions []PredictionLog `json:"predictions"`
	Count       int             `json:"count"`
}
