package regressor

import (
	"fmt"

	"houseprice/internal/model"
)

// LinearModel computes intercept + Σ coef_i·x_i
type LinearModel struct {
	intercept    float64
	coefficients []float64
	info         model.ModelInfo
}

// NewLinearModel creates a linear model; coefficients are copied
func NewLinearModel(intercept float64, coefficients []float64) (*LinearModel, error) {
	if len(coefficients) == 0 {
		return nil, fmt.Errorf("%w: linear model has no coefficients", ErrInvalidArtifact)
	}
	coefs := append([]float64(nil), coefficients...)
	return &LinearModel{
		intercept:    intercept,
		coefficients: coefs,
		info: model.ModelInfo{
			Type:        TypeLinear,
			NumFeatures: len(coefs),
		},
	}, nil
}

// Predict implements Regressor
func (m *LinearModel) Predict(features []float64) (float64, error) {
	if len(features) != len(m.coefficients) {
		return 0, fmt.Errorf("%w: got %d, want %d", ErrFeatureCount, len(features), len(m.coefficients))
	}
	y := m.intercept
	for i, x := range features {
		y += m.coefficients[i] * x
	}
	return y, nil
}

// Info implements Regressor
func (m *LinearModel) Info() model.ModelInfo {
	return m.info
}
