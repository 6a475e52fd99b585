package regressor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"houseprice/internal/model"

	"gopkg.in/yaml.v2"
)

// Artifact is the portable on-disk form of a trained model
type Artifact struct {
	Type         string          `json:"type" yaml:"type"`
	Version      string          `json:"version" yaml:"version"`
	NumFeatures  int             `json:"num_features" yaml:"num_features"`
	FeatureNames []string        `json:"feature_names" yaml:"feature_names"`
	Linear       *LinearParams   `json:"linear,omitempty" yaml:"linear,omitempty"`
	Ensemble     *EnsembleParams `json:"ensemble,omitempty" yaml:"ensemble,omitempty"`
}

// LinearParams holds the parameters of a linear model
type LinearParams struct {
	Intercept    float64   `json:"intercept" yaml:"intercept"`
	Coefficients []float64 `json:"coefficients" yaml:"coefficients"`
}

// EnsembleParams holds the parameters of a tree ensemble
type EnsembleParams struct {
	Aggregation  string  `json:"aggregation" yaml:"aggregation"`
	BaseScore    float64 `json:"base_score" yaml:"base_score"`
	LearningRate float64 `json:"learning_rate" yaml:"learning_rate"`
	Trees        []Tree  `json:"trees" yaml:"trees"`
}

// Load reads a model artifact from path. The encoding is chosen by
// extension: .json, or .yaml/.yml.
func Load(path string) (Regressor, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}

	artifact, err := Decode(payload, filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	reg, err := Build(artifact, path)
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// Decode parses an artifact in the encoding named by ext
func Decode(payload []byte, ext string) (*Artifact, error) {
	var artifact Artifact
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(payload, &artifact); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(payload, &artifact); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown artifact extension %q", ErrInvalidArtifact, ext)
	}
	return &artifact, nil
}

// Build constructs the concrete model described by an artifact
func Build(a *Artifact, source string) (Regressor, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: nil artifact", ErrInvalidArtifact)
	}
	if len(a.FeatureNames) > 0 && a.NumFeatures > 0 && len(a.FeatureNames) != a.NumFeatures {
		return nil, fmt.Errorf("%w: %d feature names for %d features", ErrInvalidArtifact, len(a.FeatureNames), a.NumFeatures)
	}

	switch a.Type {
	case TypeLinear:
		if a.Linear == nil {
			return nil, fmt.Errorf("%w: linear section missing", ErrInvalidArtifact)
		}
		if a.NumFeatures > 0 && a.NumFeatures != len(a.Linear.Coefficients) {
			return nil, fmt.Errorf("%w: %d coefficients for %d features", ErrInvalidArtifact, len(a.Linear.Coefficients), a.NumFeatures)
		}
		m, err := NewLinearModel(a.Linear.Intercept, a.Linear.Coefficients)
		if err != nil {
			return nil, err
		}
		m.info = describe(m.info, a, source)
		return m, nil

	case TypeTreeEnsemble:
		if a.Ensemble == nil {
			return nil, fmt.Errorf("%w: ensemble section missing", ErrInvalidArtifact)
		}
		numFeatures := a.NumFeatures
		if numFeatures == 0 {
			numFeatures = len(a.FeatureNames)
		}
		e, err := NewTreeEnsemble(a.Ensemble.Trees, a.Ensemble.Aggregation, a.Ensemble.BaseScore, a.Ensemble.LearningRate, numFeatures)
		if err != nil {
			return nil, err
		}
		e.info = describe(e.info, a, source)
		return e, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedModel, a.Type)
	}
}

func describe(info model.ModelInfo, a *Artifact, source string) model.ModelInfo {
	info.Version = a.Version
	info.FeatureNames = append([]string(nil), a.FeatureNames...)
	info.Source = source
	info.LoadedAt = time.Now().UTC()
	return info
}
