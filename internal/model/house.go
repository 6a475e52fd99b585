package model

// HouseRequest is the wire schema of POST /predict.
// Fields are pointers so a missing field is rejected instead of read as zero.
type HouseRequest struct {
	Category      *int     `json:"category" binding:"required"`
	Type          *int     `json:"type" binding:"required"`
	City          *int     `json:"city" binding:"required"`
	Region        *int     `json:"region" binding:"required"`
	RoomCount     *int     `json:"room_count" binding:"required,min=0"`
	BathroomCount *int     `json:"bathroom_count" binding:"required,min=0"`
	Size          *float64 `json:"size" binding:"required,min=0"` // 平方米
}

// Record converts a validated request into a HouseRecord.
// It must only be called after binding succeeded.
func (r *HouseRequest) Record() HouseRecord {
	return HouseRecord{
		Category:      *r.Category,
		Type:          *r.Type,
		City:          *r.City,
		Region:        *r.Region,
		RoomCount:     *r.RoomCount,
		BathroomCount: *r.BathroomCount,
		Size:          *r.Size,
	}
}

// HouseRecord represents the raw housing attributes of one prediction
type HouseRecord struct {
	Category      int     `json:"category" db:"category"`
	Type          int     `json:"type" db:"type"`
	City          int     `json:"city" db:"city"`
	Region        int     `json:"region" db:"region"`
	RoomCount     int     `json:"room_count" db:"room_count"`
	BathroomCount int     `json:"bathroom_count" db:"bathroom_count"`
	Size          float64 `json:"size" db:"size"`
}

// FeatureCount is the number of positional model inputs
const FeatureCount = 7

// FeatureVector is the positional model input:
// [category, type, city, region, log1p(room_count), log1p(bathroom_count), log1p(size)]
type FeatureVector [FeatureCount]float64

// Slice returns the vector as a slice for model consumption
func (v FeatureVector) Slice() []float64 {
	out := make([]float64, FeatureCount)
	copy(out, v[:])
	return out
}
