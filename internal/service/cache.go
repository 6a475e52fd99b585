package service

import (
	"houseprice/internal/model"

	lru "github.com/hashicorp/golang-lru/v2"
)

// PredictionCache memoizes results per record. A nil cache is disabled.
type PredictionCache struct {
	entries *lru.Cache[model.HouseRecord, model.PredictionResult]
}

// NewPredictionCache creates a cache holding up to size results.
// size 0 returns a nil (disabled) cache.
func NewPredictionCache(size int) (*PredictionCache, error) {
	if size == 0 {
		return nil, nil
	}
	entries, err := lru.New[model.HouseRecord, model.PredictionResult](size)
	if err != nil {
		return nil, err
	}
	return &PredictionCache{entries: entries}, nil
}

// Get returns the cached result for rec
func (c *PredictionCache) Get(rec model.HouseRecord) (model.PredictionResult, bool) {
	if c == nil {
		return model.PredictionResult{}, false
	}
	return c.entries.Get(rec)
}

// Add stores a result
func (c *PredictionCache) Add(rec model.HouseRecord, result model.PredictionResult) {
	if c == nil {
		return
	}
	c.entries.Add(rec, result)
}

// Len returns the number of cached results
func (c *PredictionCache) Len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}
