package ml

import (
	"context"
	"errors"

	"urlsentry/internal/features"
	"urlsentry/internal/models"
	"urlsentry/pkg/logger"
)

// Predictor serves ML scores and per-prediction attributions for the
// analysis orchestrator. It loads its model artifact once at startup;
// if no artifact is present it degrades to a neutral 0.5 score rather
// than failing requests.
type Predictor struct {
	log        *logger.Logger
	loaded     bool
	ensemble   *Ensemble
	attributor *AttributionEngine
	semaphore  chan struct{}
}

// NewPredictor loads the model artifact from modelDir, validating its
// feature manifest against the live extractor. A missing or unreadable
// artifact degrades to neutral scoring; a manifest that disagrees with
// the extractor is returned as ErrManifestMismatch and must abort
// startup, since serving against a reordered manifest would silently
// corrupt every prediction. maxConcurrent bounds how many predictions
// run at once, since tree traversal is CPU bound and unbounded fan-out
// would starve the rest of the process.
func NewPredictor(l *logger.Logger, modelDir string, maxConcurrent int) (*Predictor, error) {
	p := &Predictor{log: l, semaphore: make(chan struct{}, maxConcurrent)}

	manifest, err := LoadManifest(modelDir)
	if err != nil {
		if errors.Is(err, ErrManifestMismatch) {
			return nil, err
		}
		l.Warn("ml: no usable model manifest, falling back to neutral scoring: %v", err)
		return p, nil
	}
	ensemble, err := LoadEnsemble(modelDir)
	if err != nil {
		l.Warn("ml: no usable model artifact, falling back to neutral scoring: %v", err)
		return p, nil
	}

	p.ensemble = ensemble
	p.attributor = NewAttributionEngine(ensemble, manifest.FeatureNames)
	p.loaded = true
	return p, nil
}

// Loaded reports whether a real model is in use.
func (p *Predictor) Loaded() bool {
	return p.loaded
}

// FeatureCount reports how many features the loaded model expects, or
// the live extractor's count when running in fallback mode.
func (p *Predictor) FeatureCount() int {
	if p.loaded {
		return len(p.attributor.featureNames)
	}
	return len(features.FeatureNames())
}

// Predict scores an already-extracted feature vector. When no model is
// loaded it returns a neutral 0.5 score with no attribution. Taking
// the vector rather than a URL lets the caller reuse the same
// extraction the risk-factor generator already ran.
func (p *Predictor) Predict(ctx context.Context, values []float64) models.MLPrediction {
	if !p.loaded {
		return models.MLPrediction{MLScore: 0.5}
	}

	select {
	case p.semaphore <- struct{}{}:
		defer func() { <-p.semaphore }()
	case <-ctx.Done():
		return models.MLPrediction{MLScore: 0.5}
	}

	score := p.ensemble.Predict(values)
	explanation := p.attributor.Explain(values)

	return models.MLPrediction{MLScore: score, Explanation: &explanation}
}
