package ml

import (
	"sort"

	"urlsentry/internal/models"
)

const topK = 8

// AttributionEngine computes a per-prediction feature breakdown for an
// Ensemble: for every tree, it walks the decision path taken for a
// given input and charges each split the change in the tree's expected
// output that the split caused, then sums that charge across all trees
// per feature. This is an exact, single-pass decomposition — no
// sampling, no background dataset — chosen because the hand-rolled
// tree format here already stores expected output on internal nodes.
type AttributionEngine struct {
	ensemble     *Ensemble
	featureNames []string
}

func NewAttributionEngine(e *Ensemble, featureNames []string) *AttributionEngine {
	return &AttributionEngine{ensemble: e, featureNames: featureNames}
}

// baseValue is the ensemble's expected output before any feature is
// considered: the sum of every tree's root value plus the model's
// base score.
func (a *AttributionEngine) baseValue() float64 {
	total := a.ensemble.BaseScore
	for i := range a.ensemble.Trees {
		total += a.ensemble.Trees[i].Root.Value
	}
	return total
}

// Explain returns the top-k (by |contribution|) feature attributions
// for x, alongside the base value and the total shift from base to
// the final raw score.
func (a *AttributionEngine) Explain(x []float64) models.Explanation {
	contrib := make([]float64, len(a.featureNames))

	for i := range a.ensemble.Trees {
		nodes := path(a.ensemble.Trees[i].Root, x)
		for j := 1; j < len(nodes); j++ {
			splitNode := nodes[j-1]
			delta := nodes[j].Value - splitNode.Value
			if splitNode.FeatureIndex < len(contrib) {
				contrib[splitNode.FeatureIndex] += delta
			}
		}
	}

	base := a.baseValue()
	raw := a.ensemble.Score(x)

	type scored struct {
		idx   int
		value float64
	}
	ranked := make([]scored, len(contrib))
	for i, v := range contrib {
		ranked[i] = scored{i, v}
	}
	sort.Slice(ranked, func(i, j int) bool {
		return abs(ranked[i].value) > abs(ranked[j].value)
	})

	k := topK
	if k > len(ranked) {
		k = len(ranked)
	}

	contributions := make([]models.Contribution, 0, k)
	for _, r := range ranked[:k] {
		if r.value == 0 {
			continue
		}
		direction := "risk"
		if r.value < 0 {
			direction = "safe"
		}
		featureValue := 0.0
		if r.idx < len(x) {
			featureValue = x[r.idx]
		}
		contributions = append(contributions, models.Contribution{
			Feature:      a.featureNames[r.idx],
			SHAPValue:    r.value,
			FeatureValue: featureValue,
			Direction:    direction,
		})
	}

	return models.Explanation{
		BaseValue:       base,
		PredictionShift: raw - base,
		Contributions:   contributions,
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
