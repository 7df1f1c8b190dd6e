package ml

import "testing"

func leaf(v float64) *Node { return &Node{Leaf: true, Value: v} }

func TestEnsemble_ScoreSumsBaseAndLeafValues(t *testing.T) {
	e := &Ensemble{
		BaseScore: 0.1,
		Trees: []Tree{
			{Root: &Node{Value: 0.2, FeatureIndex: 0, Threshold: 0.5, Left: leaf(0.3), Right: leaf(-0.1)}},
		},
	}
	belowThreshold := e.Score([]float64{0.1})
	if belowThreshold != 0.1+0.3 {
		t.Errorf("expected left-branch leaf value to be added, got %v", belowThreshold)
	}
	aboveThreshold := e.Score([]float64{0.9})
	if aboveThreshold != 0.1-0.1 {
		t.Errorf("expected right-branch leaf value to be added, got %v", aboveThreshold)
	}
}

func TestEnsemble_PredictIsSigmoidOfScore(t *testing.T) {
	e := &Ensemble{BaseScore: 0, Trees: []Tree{{Root: leaf(0)}}}
	got := e.Predict([]float64{0})
	if got != 0.5 {
		t.Errorf("expected sigmoid(0) = 0.5, got %v", got)
	}
}

func TestEnsemble_PredictMonotonicInScore(t *testing.T) {
	low := &Ensemble{BaseScore: -5, Trees: []Tree{{Root: leaf(0)}}}
	high := &Ensemble{BaseScore: 5, Trees: []Tree{{Root: leaf(0)}}}
	if low.Predict(nil) >= high.Predict(nil) {
		t.Error("expected a higher raw score to yield a higher predicted probability")
	}
}

func TestPath_WalksLeftOnLessOrEqualThreshold(t *testing.T) {
	root := &Node{FeatureIndex: 0, Threshold: 10, Left: leaf(1), Right: leaf(2)}
	nodes := path(root, []float64{10})
	if len(nodes) != 2 || nodes[1].Value != 1 {
		t.Errorf("expected value at threshold to take the left branch, got %+v", nodes)
	}
	nodes = path(root, []float64{10.0001})
	if len(nodes) != 2 || nodes[1].Value != 2 {
		t.Errorf("expected value above threshold to take the right branch, got %+v", nodes)
	}
}
