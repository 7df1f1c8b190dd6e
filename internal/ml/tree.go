package ml

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Node is one node of a trained decision tree. Internal nodes carry a
// split on FeatureIndex/Threshold; leaves carry only Value. Internal
// nodes also carry Value — the node's expected output averaged over
// the training examples that reached it — so attribution can charge
// each split the change in expected output it caused.
type Node struct {
	Leaf         bool    `json:"leaf"`
	Value        float64 `json:"value"`
	FeatureIndex int     `json:"feature_index,omitempty"`
	Threshold    float64 `json:"threshold,omitempty"`
	Left         *Node   `json:"left,omitempty"`
	Right        *Node   `json:"right,omitempty"`
}

// Tree is a single boosting round.
type Tree struct {
	Root *Node `json:"root"`
}

// Ensemble is an additive gradient-boosted tree model: raw score is
// BaseScore plus the sum of every tree's leaf value, passed through a
// sigmoid to produce a probability.
type Ensemble struct {
	Trees     []Tree  `json:"trees"`
	BaseScore float64 `json:"base_score"`
}

// LoadEnsemble reads a hand-rolled tree-ensemble JSON artifact from
// <modelDir>/model.json.
func LoadEnsemble(modelDir string) (*Ensemble, error) {
	path := modelDir + "/model.json"
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ml: reading model: %w", err)
	}
	var e Ensemble
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("ml: parsing model: %w", err)
	}
	if len(e.Trees) == 0 {
		return nil, fmt.Errorf("ml: model has no trees")
	}
	return &e, nil
}

// path walks a tree to its leaf for the given feature vector, returning
// every node visited in order (root first, leaf last).
func path(root *Node, x []float64) []*Node {
	nodes := []*Node{root}
	n := root
	for !n.Leaf {
		if n.FeatureIndex < len(x) && x[n.FeatureIndex] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
		nodes = append(nodes, n)
	}
	return nodes
}

// Score returns the raw (pre-sigmoid) additive prediction for x.
func (e *Ensemble) Score(x []float64) float64 {
	total := e.BaseScore
	for i := range e.Trees {
		nodes := path(e.Trees[i].Root, x)
		total += nodes[len(nodes)-1].Value
	}
	return total
}

// Predict returns the sigmoid-calibrated probability for x.
func (e *Ensemble) Predict(x []float64) float64 {
	return sigmoid(e.Score(x))
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
