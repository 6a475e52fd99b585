// Package regressor loads pre-fit regression models from portable
// artifacts and evaluates them on single samples.
package regressor

import (
	"errors"

	"houseprice/internal/model"
)

var (
	// ErrFeatureCount is returned when a sample does not match the model width
	ErrFeatureCount = errors.New("feature count mismatch")
	// ErrUnsupportedModel is returned for unknown artifact types
	ErrUnsupportedModel = errors.New("unsupported model type")
	// ErrInvalidArtifact is returned when an artifact fails validation
	ErrInvalidArtifact = errors.New("invalid model artifact")
)

// Model types understood by Build
const (
	TypeLinear       = "linear"
	TypeTreeEnsemble = "tree_ensemble"
)

// Regressor is a read-only single-output regression model.
// Implementations must be safe for concurrent use.
type Regressor interface {
	// Predict evaluates one sample given in positional feature order
	Predict(features []float64) (float64, error)

	// Info describes the loaded artifact
	Info() model.ModelInfo
}
