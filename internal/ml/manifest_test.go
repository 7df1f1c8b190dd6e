package ml

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"urlsentry/internal/features"
)

func writeManifest(t *testing.T, dir string, names []string) {
	t.Helper()
	data, err := json.Marshal(Manifest{FeatureNames: names})
	if err != nil {
		t.Fatalf("marshal manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "feature_manifest.json"), data, 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
}

func TestLoadManifest_AcceptsMatchingFeatureOrder(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, features.FeatureNames())

	m, err := LoadManifest(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.FeatureNames) != len(features.FeatureNames()) {
		t.Errorf("expected manifest to carry every extractor feature")
	}
}

func TestLoadManifest_RejectsWrongFeatureCount(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, []string{"only_one_feature"})

	_, err := LoadManifest(dir)
	if !errors.Is(err, ErrManifestMismatch) {
		t.Fatalf("expected ErrManifestMismatch for a feature-count mismatch, got %v", err)
	}
}

func TestLoadManifest_RejectsReorderedFeatures(t *testing.T) {
	dir := t.TempDir()
	names := append([]string(nil), features.FeatureNames()...)
	names[0], names[1] = names[1], names[0]
	writeManifest(t, dir, names)

	_, err := LoadManifest(dir)
	if !errors.Is(err, ErrManifestMismatch) {
		t.Fatalf("expected ErrManifestMismatch for a reordered manifest, got %v", err)
	}
}

func TestLoadManifest_MissingFileIsNotAMismatch(t *testing.T) {
	_, err := LoadManifest(t.TempDir())
	if err == nil {
		t.Fatal("expected an error when feature_manifest.json is absent")
	}
	if errors.Is(err, ErrManifestMismatch) {
		t.Error("expected a missing manifest to be distinct from a mismatched one")
	}
}
