// internal/scoring/forest.go
package scoring

import (
	"encoding/json"
	"sort"

	"github.com/pkg/errors"

	"github.com/churnsight/churnsight-backend/internal/model"
)

// TreeNode is one node of an exported decision tree. Internal nodes
// split on feature <= threshold (left when true); leaves carry the
// churn probability and have Feature = -1.
type TreeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

// ForestModel averages the votes of an exported tree ensemble.
type ForestModel struct {
	ModelName   string       `json:"name"`
	Features    []string     `json:"features"`
	Importances []float64    `json:"importances"`
	Trees       [][]TreeNode `json:"trees"`
}

func parseForest(raw []byte, path string) (*ForestModel, error) {
	var m ForestModel
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, errors.Wrapf(err, "fail to parse forest artifact %s", path)
	}
	if len(m.Features) == 0 || len(m.Trees) == 0 {
		return nil, errors.Errorf("forest artifact %s: missing features or trees", path)
	}
	if len(m.Importances) != len(m.Features) {
		return nil, errors.Errorf("forest artifact %s: importances/features lengths disagree", path)
	}
	for ti, tree := range m.Trees {
		for ni, node := range tree {
			if node.Feature >= len(m.Features) {
				return nil, errors.Errorf("forest artifact %s: tree %d node %d references feature %d", path, ti, ni, node.Feature)
			}
			if node.Feature >= 0 && (node.Left < 0 || node.Left >= len(tree) || node.Right < 0 || node.Right >= len(tree)) {
				return nil, errors.Errorf("forest artifact %s: tree %d node %d has dangling children", path, ti, ni)
			}
		}
	}
	return &m, nil
}

func (m *ForestModel) Name() string {
	return m.ModelName
}

func (m *ForestModel) PredictProba(c model.Customer) float64 {
	x := FeatureVector(c, m.Features)
	var sum float64
	for _, tree := range m.Trees {
		sum += evalTree(tree, x)
	}
	return sum / float64(len(m.Trees))
}

func evalTree(tree []TreeNode, x []float64) float64 {
	i := 0
	for {
		node := tree[i]
		if node.Feature < 0 {
			return node.Value
		}
		if x[node.Feature] <= node.Threshold {
			i = node.Left
		} else {
			i = node.Right
		}
	}
}

// Drivers returns the topN features by importance.
func (m *ForestModel) Drivers(topN int) []Driver {
	drivers := make([]Driver, len(m.Features))
	for i, f := range m.Features {
		drivers[i] = Driver{Feature: f, Weight: m.Importances[i]}
	}
	sort.SliceStable(drivers, func(i, j int) bool {
		return drivers[i].Weight > drivers[j].Weight
	})
	if topN > 0 && topN < len(drivers) {
		drivers = drivers[:topN]
	}
	return drivers
}
