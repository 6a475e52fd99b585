// Package features turns raw housing attributes into the positional
// feature vector the price model was trained on.
package features

import (
	"math"

	"houseprice/internal/model"
)

// Positions of the model inputs
const (
	IdxCategory = iota
	IdxType
	IdxCity
	IdxRegion
	IdxRoomCountLog
	IdxBathroomCountLog
	IdxSizeLog
)

// FeatureNames lists the model inputs in positional order
var FeatureNames = [model.FeatureCount]string{
	"category",
	"type",
	"city",
	"region",
	"room_count_log",
	"bathroom_count_log",
	"size_log",
}

// Transform builds the feature vector for a record.
// Counts and size are compressed with log1p (natural log of 1+x).
func Transform(rec model.HouseRecord) model.FeatureVector {
	var v model.FeatureVector
	v[IdxCategory] = float64(rec.Category)
	v[IdxType] = float64(rec.Type)
	v[IdxCity] = float64(rec.City)
	v[IdxRegion] = float64(rec.Region)
	v[IdxRoomCountLog] = math.Log1p(float64(rec.RoomCount))
	v[IdxBathroomCountLog] = math.Log1p(float64(rec.BathroomCount))
	v[IdxSizeLog] = math.Log1p(rec.Size)
	return v
}

// Transformed extracts the log-scaled entries of a feature vector
func Transformed(v model.FeatureVector) model.TransformedInputs {
	return model.TransformedInputs{
		RoomCountLog:     v[IdxRoomCountLog],
		BathroomCountLog: v[IdxBathroomCountLog],
		SizeLog:          v[IdxSizeLog],
	}
}

// MatchesNames reports whether declared artifact feature names follow
// the positional order of Transform. An empty list matches.
func MatchesNames(names []string) bool {
	if len(names) == 0 {
		return true
	}
	if len(names) != len(FeatureNames) {
		return false
	}
	for i, name := range names {
		if name != FeatureNames[i] {
			return false
		}
	}
	return true
}
