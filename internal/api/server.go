// Package api wires the Analyzer Orchestrator to HTTP: POST /scan runs
// an analysis (through the TTL cache), GET /health reports liveness and
// ML model status, and GET /metrics exposes the Prometheus registry.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"urlsentry/internal/analyzer"
	"urlsentry/internal/cache"
	"urlsentry/internal/config"
	"urlsentry/internal/middleware"
	"urlsentry/internal/ml"
	"urlsentry/internal/models"
	"urlsentry/internal/normalize"
	"urlsentry/pkg/logger"
	"urlsentry/pkg/metrics"
)

// Server is the HTTP surface over the analysis pipeline.
type Server struct {
	httpServer   *http.Server
	log          *logger.Logger
	cfg          *config.Config
	orchestrator *analyzer.Orchestrator
	predictor    *ml.Predictor
	cache        cache.AnalysisCache
	metrics      *metrics.Registry
	rateLimiter  *middleware.RateLimiter
	startedAt    time.Time
}

// NewServer builds the HTTP server and wires its route table and
// middleware chain. The caller owns the cache and predictor lifetimes
// and is responsible for closing the cache on shutdown.
func NewServer(cfg *config.Config, log *logger.Logger, orchestrator *analyzer.Orchestrator, predictor *ml.Predictor, c cache.AnalysisCache, reg *metrics.Registry) *Server {
	s := &Server{
		log:          log,
		cfg:          cfg,
		orchestrator: orchestrator,
		predictor:    predictor,
		cache:        c,
		metrics:      reg,
		rateLimiter:  middleware.NewRateLimiter(cfg.RateLimitPerMinute, cfg.TrustedProxyCount),
		startedAt:    time.Now(),
	}

	// Auth and rate limiting apply only to /scan — /health and /metrics
	// stay open for uptime probes and scrapers.
	scanHandler := middleware.Chain(http.HandlerFunc(s.handleScan),
		s.rateLimiter.Middleware(),
		middleware.Auth(cfg.APIKey, log),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/scan", scanHandler)
	mux.Handle("/metrics", promhttp.Handler())

	handler := middleware.Chain(mux,
		middleware.RequestID(),
		middleware.ResponseTime(),
		middleware.Logging(log, cfg.TrustedProxyCount),
		middleware.Recovery(log),
		middleware.CORS(cfg.BackendCORSOrigins),
	)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.NetworkTimeout + 15*time.Second,
	}
	return s
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string { return s.httpServer.Addr }

// Run starts serving and blocks until ctx is cancelled, at which point
// it shuts the server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("urlsentry: listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

type scanRequest struct {
	URL string `json:"url"`
}

// handleScan implements the public scan(url) operation: normalize,
// check the TTL cache, run the pipeline on a miss, and cache the
// result under its canonical key.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		middleware.RespondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.metrics != nil {
		s.metrics.ScanRequests.WithLabelValues("received").Inc()
	}

	var req scanRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		middleware.RespondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		middleware.RespondError(w, http.StatusBadRequest, "url is required")
		return
	}

	result := s.analyze(r.Context(), req.URL)
	if s.metrics != nil {
		s.metrics.ScanVerdicts.WithLabelValues(string(result.Status)).Inc()
		s.metrics.AnalysisTimeMS.Observe(float64(result.Details.AnalysisTimeMS))
	}
	middleware.RespondJSON(w, http.StatusOK, result)
}

// analyze fronts the orchestrator with the TTL cache, keyed on the
// normalized URL's canonical form so equivalent URLs share a cache
// entry regardless of how the client wrote them.
func (s *Server) analyze(ctx context.Context, rawURL string) models.AnalysisResult {
	if n, err := normalize.Normalize(rawURL); err == nil {
		key := n.CacheKey()
		if cached, ok := s.cache.Get(ctx, key); ok {
			if s.metrics != nil {
				s.metrics.CacheHits.Inc()
			}
			return cached
		}
		if s.metrics != nil {
			s.metrics.CacheMisses.Inc()
		}
		result := s.orchestrator.Analyze(ctx, rawURL)
		s.cache.Set(ctx, key, result)
		return result
	}
	// Invalid input never reaches the cache — orchestrator.Analyze
	// re-validates and returns the appropriate danger verdict.
	return s.orchestrator.Analyze(ctx, rawURL)
}

type healthML struct {
	Status       string   `json:"status"`
	Components   []string `json:"components"`
	FeatureCount int      `json:"feature_count"`
}

type healthResponse struct {
	Status        string   `json:"status"`
	UptimeSeconds float64  `json:"uptime_seconds"`
	ML            healthML `json:"ml"`
}

// handleHealth reports liveness plus ML subsystem status, mirroring
// the shape a QR-scanner client polls at startup to decide whether to
// trust scan verdicts at all.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	mlStatus := "degraded"
	components := []string{"extractor", "risk_factors"}
	if s.predictor.Loaded() {
		mlStatus = "ready"
		components = append(components, "ensemble", "attribution")
	}

	middleware.RespondJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		UptimeSeconds: time.Since(s.startedAt).Seconds(),
		ML: healthML{
			Status:       mlStatus,
			Components:   components,
			FeatureCount: s.predictor.FeatureCount(),
		},
	})
}
