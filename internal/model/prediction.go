package model

import "time"

// PredictionNote is returned with every prediction
const PredictionNote = "Prediction based on log10 price model"

// TransformedInputs echoes the log1p-transformed features
type TransformedInputs struct {
	RoomCountLog     float64 `json:"room_count_log"`
	BathroomCountLog float64 `json:"bathroom_count_log"`
	SizeLog          float64 `json:"size_log"`
}

// PredictionResult represents the response of POST /predict
type PredictionResult struct {
	PredictedPrice    int64             `json:"predicted_price"`
	Log10Price        float64           `json:"log10_price"`
	Note              string            `json:"note"`
	RawInputs         HouseRecord       `json:"raw_inputs"`
	TransformedInputs TransformedInputs `json:"transformed_inputs"`
}

// ModelInfo describes the loaded model artifact
type ModelInfo struct {
	Type         string    `json:"type"`
	Version      string    `json:"version,omitempty"`
	NumFeatures  int       `json:"num_features"`
	FeatureNames []string  `json:"feature_names,omitempty"`
	Trees        int       `json:"trees,omitempty"`
	Source       string    `json:"source,omitempty"`
	LoadedAt     time.Time `json:"loaded_at"`
}
