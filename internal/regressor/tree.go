package regressor

import (
	"fmt"
	"math"

	"houseprice/internal/model"
)

// Aggregations of tree outputs
const (
	AggregateSum  = "sum"  // gradient boosting
	AggregateMean = "mean" // random forest
)

// TreeNode is one node of a flat-array regression tree.
// Samples go left when features[Feature] <= Threshold.
type TreeNode struct {
	Feature   int     `json:"feature" yaml:"feature"`
	Threshold float64 `json:"threshold" yaml:"threshold"`
	Left      int     `json:"left" yaml:"left"`
	Right     int     `json:"right" yaml:"right"`
	Value     float64 `json:"value" yaml:"value"`
	Leaf      bool    `json:"leaf" yaml:"leaf"`
}

// Tree is a regression tree rooted at Nodes[0]
type Tree struct {
	Nodes []TreeNode `json:"nodes" yaml:"nodes"`
}

// TreeEnsemble aggregates the outputs of several regression trees
type TreeEnsemble struct {
	trees        []Tree
	aggregation  string
	baseScore    float64
	learningRate float64
	numFeatures  int
	info         model.ModelInfo
}

// NewTreeEnsemble validates trees and builds an ensemble.
// For sum aggregation the output is baseScore + learningRate·Σ trees;
// for mean it is baseScore + mean(trees).
func NewTreeEnsemble(trees []Tree, aggregation string, baseScore, learningRate float64, numFeatures int) (*TreeEnsemble, error) {
	if len(trees) == 0 {
		return nil, fmt.Errorf("%w: ensemble has no trees", ErrInvalidArtifact)
	}
	if numFeatures <= 0 {
		return nil, fmt.Errorf("%w: num_features must be positive", ErrInvalidArtifact)
	}
	switch aggregation {
	case "":
		aggregation = AggregateSum
	case AggregateSum, AggregateMean:
	default:
		return nil, fmt.Errorf("%w: unknown aggregation %q", ErrInvalidArtifact, aggregation)
	}
	if learningRate == 0 {
		learningRate = 1
	}
	for i, tree := range trees {
		if err := validateTree(tree, numFeatures); err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
	}

	return &TreeEnsemble{
		trees:        trees,
		aggregation:  aggregation,
		baseScore:    baseScore,
		learningRate: learningRate,
		numFeatures:  numFeatures,
		info: model.ModelInfo{
			Type:        TypeTreeEnsemble,
			NumFeatures: numFeatures,
			Trees:       len(trees),
		},
	}, nil
}

// Predict implements Regressor
func (e *TreeEnsemble) Predict(features []float64) (float64, error) {
	if len(features) != e.numFeatures {
		return 0, fmt.Errorf("%w: got %d, want %d", ErrFeatureCount, len(features), e.numFeatures)
	}
	total := 0.0
	for _, tree := range e.trees {
		total += tree.eval(features)
	}
	if e.aggregation == AggregateMean {
		return e.baseScore + total/float64(len(e.trees)), nil
	}
	return e.baseScore + e.learningRate*total, nil
}

// Info implements Regressor
func (e *TreeEnsemble) Info() model.ModelInfo {
	return e.info
}

// eval walks a validated tree; children always point forward so it terminates
func (t Tree) eval(features []float64) float64 {
	idx := 0
	for {
		node := t.Nodes[idx]
		if node.Leaf {
			return node.Value
		}
		if features[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
}

func validateTree(t Tree, numFeatures int) error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("%w: empty tree", ErrInvalidArtifact)
	}
	for i, node := range t.Nodes {
		if node.Leaf {
			if math.IsNaN(node.Value) || math.IsInf(node.Value, 0) {
				return fmt.Errorf("%w: node %d has non-finite value", ErrInvalidArtifact, i)
			}
			continue
		}
		if node.Feature < 0 || node.Feature >= numFeatures {
			return fmt.Errorf("%w: node %d feature index %d out of range", ErrInvalidArtifact, i, node.Feature)
		}
		if node.Left <= i || node.Left >= len(t.Nodes) || node.Right <= i || node.Right >= len(t.Nodes) {
			return fmt.Errorf("%w: node %d has invalid children (%d, %d)", ErrInvalidArtifact, i, node.Left, node.Right)
		}
	}
	return nil
}
