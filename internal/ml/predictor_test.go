package ml

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"urlsentry/internal/features"
	"urlsentry/pkg/logger"
)

func TestNewPredictor_DegradesToNeutralScoreWithoutAModelArtifact(t *testing.T) {
	p, err := NewPredictor(logger.NewLogger(), t.TempDir(), 4)
	if err != nil {
		t.Fatalf("expected a missing artifact to degrade, not fail: %v", err)
	}
	if p.Loaded() {
		t.Fatal("expected Loaded() to be false with no model artifact present")
	}

	got := p.Predict(context.Background(), make([]float64, len(features.FeatureNames())))
	if got.MLScore != 0.5 {
		t.Errorf("expected neutral fallback score 0.5, got %v", got.MLScore)
	}
	if got.Explanation != nil {
		t.Error("expected no explanation in fallback mode")
	}
}

func TestNewPredictor_FeatureCountFallsBackToExtractorCount(t *testing.T) {
	p, err := NewPredictor(logger.NewLogger(), t.TempDir(), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.FeatureCount() != len(features.FeatureNames()) {
		t.Errorf("expected fallback feature count to match the live extractor, got %d vs %d", p.FeatureCount(), len(features.FeatureNames()))
	}
}

func writeModelArtifacts(t *testing.T, dir string) {
	t.Helper()
	names := features.FeatureNames()
	manifest, _ := json.Marshal(Manifest{FeatureNames: names})
	if err := os.WriteFile(filepath.Join(dir, "feature_manifest.json"), manifest, 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	ensemble := Ensemble{BaseScore: 0, Trees: []Tree{{Root: leaf(0.2)}}}
	model, _ := json.Marshal(ensemble)
	if err := os.WriteFile(filepath.Join(dir, "model.json"), model, 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}
}

func TestNewPredictor_LoadsRealModelWhenArtifactsPresent(t *testing.T) {
	dir := t.TempDir()
	writeModelArtifacts(t, dir)

	p, err := NewPredictor(logger.NewLogger(), dir, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Loaded() {
		t.Fatal("expected Loaded() to be true with valid model artifacts present")
	}

	got := p.Predict(context.Background(), make([]float64, len(features.FeatureNames())))
	if got.Explanation == nil {
		t.Error("expected an explanation once a real model is loaded")
	}
}

func TestNewPredictor_ManifestMismatchIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeModelArtifacts(t, dir)

	// Overwrite the manifest with a reordered copy: the model still
	// loads fine on its own, but the feature contract is broken.
	names := append([]string(nil), features.FeatureNames()...)
	names[0], names[1] = names[1], names[0]
	manifest, _ := json.Marshal(Manifest{FeatureNames: names})
	if err := os.WriteFile(filepath.Join(dir, "feature_manifest.json"), manifest, 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	_, err := NewPredictor(logger.NewLogger(), dir, 4)
	if !errors.Is(err, ErrManifestMismatch) {
		t.Fatalf("expected ErrManifestMismatch for a reordered manifest, got %v", err)
	}
}

func TestPredictor_PredictHonorsCancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeModelArtifacts(t, dir)
	p, err := NewPredictor(logger.NewLogger(), dir, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Saturate the single-slot semaphore so the next Predict call must
	// observe the already-cancelled context instead of acquiring a slot.
	p.semaphore <- struct{}{}
	defer func() { <-p.semaphore }()

	got := p.Predict(ctx, make([]float64, len(features.FeatureNames())))
	if got.MLScore != 0.5 {
		t.Errorf("expected neutral fallback score when the context is already done, got %v", got.MLScore)
	}
}
