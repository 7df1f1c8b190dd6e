package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"urlsentry/internal/analyzer"
	"urlsentry/internal/cache"
	"urlsentry/internal/config"
	"urlsentry/internal/ml"
	"urlsentry/internal/models"
	"urlsentry/internal/network"
	"urlsentry/internal/normalize"
	"urlsentry/pkg/logger"
	"urlsentry/pkg/metrics"
)

func testServer(t *testing.T) (*Server, cache.AnalysisCache) {
	t.Helper()
	log := logger.NewLogger()
	cfg := &config.Config{
		RateLimitPerMinute: 1000,
		BackendCORSOrigins: []string{"*"},
	}
	predictor, err := ml.NewPredictor(log, t.TempDir(), 4)
	if err != nil {
		t.Fatalf("predictor: %v", err)
	}
	inspector := network.NewInspector(log, network.Config{NetworkTimeout: time.Second, WHOISTimeout: time.Second})
	orch := analyzer.NewOrchestrator(log, predictor, inspector, 2*time.Second)
	c := cache.NewMemoryCache(100, time.Minute)
	// promauto-backed NewRegistry() registers against the global
	// default registry; avoid that in repeated test runs by leaving
	// metrics nil, which every call site treats as optional.
	var reg *metrics.Registry
	return NewServer(cfg, log, orch, predictor, c, reg), c
}

func TestHandleHealth(t *testing.T) {
	srv, _ := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.handleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body healthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("expected status ok, got %s", body.Status)
	}
	if body.ML.Status != "degraded" {
		t.Errorf("expected degraded ml status with no model artifact, got %s", body.ML.Status)
	}
}

func TestHandleScan_RejectsEmptyURL(t *testing.T) {
	srv, _ := testServer(t)
	body, _ := json.Marshal(scanRequest{URL: ""})
	req := httptest.NewRequest(http.MethodPost, "/scan", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.handleScan(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHandleScan_RejectsMalformedJSON(t *testing.T) {
	srv, _ := testServer(t)
	req := httptest.NewRequest(http.MethodPost, "/scan", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	srv.handleScan(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHandleScan_RejectsWrongMethod(t *testing.T) {
	srv, _ := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/scan", nil)
	w := httptest.NewRecorder()
	srv.handleScan(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}

func TestHandleScan_ServesCachedResultWithoutHittingTheNetwork(t *testing.T) {
	srv, c := testServer(t)
	ctx := context.Background()

	n, err := normalize.Normalize("https://example.com/login")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	want := models.AnalysisResult{Status: models.StatusSafe, Message: "cached", RiskScore: 0.1}
	c.Set(ctx, n.CacheKey(), want)

	body, _ := json.Marshal(scanRequest{URL: "https://example.com/login"})
	req := httptest.NewRequest(http.MethodPost, "/scan", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.handleScan(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var got models.AnalysisResult
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Message != "cached" {
		t.Errorf("expected cached result to be served verbatim, got %+v", got)
	}
}

func TestHandleScan_InvalidURLSkipsCacheAndReturnsDanger(t *testing.T) {
	srv, _ := testServer(t)
	body, _ := json.Marshal(scanRequest{URL: "ftp://not-allowed.example"})
	req := httptest.NewRequest(http.MethodPost, "/scan", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.handleScan(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 (verdict in body, not transport error), got %d", w.Code)
	}
	var got models.AnalysisResult
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != models.StatusDanger {
		t.Errorf("expected danger verdict for unsupported scheme, got %s", got.Status)
	}
}
