// Package ml implements the gradient-boosted-tree predictor and its
// per-prediction attribution engine, loading a trained model artifact
// from disk at startup.
package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"urlsentry/internal/features"
)

// ErrManifestMismatch marks a manifest whose feature count or order
// disagrees with the live extractor. Unlike a missing model artifact
// (a sanctioned soft fallback), a mismatch silently corrupts every
// prediction, so callers treat it as fatal misconfiguration.
var ErrManifestMismatch = errors.New("ml: manifest disagrees with extractor")

// Manifest pins the exact ordered feature names a model artifact was
// trained against. The predictor refuses to load a model whose
// manifest diverges from the live extractor's output, since a silent
// reorder would feed the model nonsense input.
type Manifest struct {
	FeatureNames []string `json:"feature_names"`
}

// LoadManifest reads <modelDir>/feature_manifest.json and validates it
// against the live feature extractor's canonical name order.
func LoadManifest(modelDir string) (*Manifest, error) {
	path := filepath.Join(modelDir, "feature_manifest.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ml: reading manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("ml: parsing manifest: %w", err)
	}
	if err := validateManifest(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

func validateManifest(m *Manifest) error {
	want := features.FeatureNames()
	if len(m.FeatureNames) != len(want) {
		return fmt.Errorf("%w: manifest has %d features, extractor produces %d", ErrManifestMismatch, len(m.FeatureNames), len(want))
	}
	for i, name := range want {
		if m.FeatureNames[i] != name {
			return fmt.Errorf("%w: feature order diverges at index %d: manifest=%q extractor=%q", ErrManifestMismatch, i, m.FeatureNames[i], name)
		}
	}
	return nil
}
