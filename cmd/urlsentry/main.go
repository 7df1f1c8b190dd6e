// Command urlsentry runs the URL-safety scoring HTTP service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"urlsentry/internal/analyzer"
	"urlsentry/internal/api"
	"urlsentry/internal/cache"
	"urlsentry/internal/config"
	"urlsentry/internal/ml"
	"urlsentry/internal/network"
	"urlsentry/internal/normalize"
	"urlsentry/pkg/logger"
	"urlsentry/pkg/metrics"
)

const maxConcurrentPredictions = 16

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	l := logger.NewLogger()
	l.SetJSON(cfg.LogFormat == "json")

	if cfg.MaxURLLength > 0 {
		normalize.MaxURLLength = cfg.MaxURLLength
	}
	if len(cfg.AllowedSchemes) > 0 {
		schemes := make(map[string]bool, len(cfg.AllowedSchemes))
		for _, s := range cfg.AllowedSchemes {
			schemes[strings.ToLower(s)] = true
		}
		normalize.AllowedSchemes = schemes
	}

	reg := metrics.NewRegistry()
	predictor, err := ml.NewPredictor(l, cfg.ModelDir, maxConcurrentPredictions)
	if err != nil {
		l.Error("urlsentry: refusing to start: %v", err)
		os.Exit(1)
	}
	inspector := network.NewInspector(l, network.Config{
		NetworkTimeout: cfg.NetworkTimeout,
		WHOISTimeout:   cfg.WHOISTimeout,
		Metrics:        reg,
	})
	orchestrator := analyzer.NewOrchestrator(l, predictor, inspector, cfg.NetworkTimeout+cfg.WHOISTimeout)

	analysisCache := cache.New(cfg.CacheRedisAddr, cfg.CacheMaxSize, cfg.CacheTTL)
	defer analysisCache.Close()

	server := api.NewServer(cfg, l, orchestrator, predictor, analysisCache, reg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		l.Info("urlsentry: shutting down")
		cancel()
	}()

	l.Info("urlsentry: starting in %s mode (model loaded: %v)", cfg.Environment, predictor.Loaded())
	if err := server.Run(ctx); err != nil {
		l.Error("urlsentry: server failed: %v", err)
		os.Exit(1)
	}
}
