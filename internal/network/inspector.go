package network

import (
	"context"
	"fmt"
	"sync"
	"time"

	"urlsentry/internal/models"
	"urlsentry/pkg/logger"
	"urlsentry/pkg/metrics"
)

// Inspector dispatches the DNS, SSL, HTTP, and WHOIS probes
// concurrently and joins their results into a single NetworkResult.
// Every probe failure is captured in that probe's own Error field;
// Inspect itself never returns an error for a probe fault.
type Inspector struct {
	dns     *DNSProbe
	ssl     *SSLProbe
	http    *HTTPProbe
	whois   *WHOISProbe
	log     *logger.Logger
	metrics *metrics.Registry
}

type Config struct {
	NetworkTimeout time.Duration
	WHOISTimeout   time.Duration
	Metrics        *metrics.Registry
}

func NewInspector(l *logger.Logger, cfg Config) *Inspector {
	return &Inspector{
		dns:     NewDNSProbe(l),
		ssl:     NewSSLProbe(l, cfg.NetworkTimeout),
		http:    NewHTTPProbe(l, cfg.NetworkTimeout),
		whois:   NewWHOISProbe(l, cfg.WHOISTimeout),
		log:     l,
		metrics: cfg.Metrics,
	}
}

// Inspect runs all four probes in parallel and joins their results.
// Every probe is deadline-bounded (the SSL probe by its dial timeout,
// which does not observe ctx; the others also honor ctx), so the join
// itself carries no extra timeout — returning before a probe finished
// would race its result write.
func (n *Inspector) Inspect(ctx context.Context, rawURL, hostname, registrableDomain string) models.NetworkResult {
	result := models.NetworkResult{}

	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		defer n.observe("dns", time.Now())
		defer func() {
			if r := recover(); r != nil {
				n.log.Error("network: dns probe panicked: %v", r)
				result.DNS = models.DNSResult{Error: probePanic(r)}
			}
		}()
		result.DNS = n.dns.Check(ctx, hostname, registrableDomain)
	}()
	go func() {
		defer wg.Done()
		defer n.observe("ssl", time.Now())
		defer func() {
			if r := recover(); r != nil {
				n.log.Error("network: ssl probe panicked: %v", r)
				result.SSL = models.SSLResult{Error: probePanic(r)}
			}
		}()
		result.SSL = n.ssl.Check(ctx, hostname)
	}()
	go func() {
		defer wg.Done()
		defer n.observe("http", time.Now())
		defer func() {
			if r := recover(); r != nil {
				n.log.Error("network: http probe panicked: %v", r)
				result.HTTP = models.HTTPResult{Error: probePanic(r)}
			}
		}()
		result.HTTP = n.http.Check(ctx, rawURL)
	}()
	go func() {
		defer wg.Done()
		defer n.observe("whois", time.Now())
		defer func() {
			if r := recover(); r != nil {
				n.log.Error("network: whois probe panicked: %v", r)
				result.WHOIS = models.WHOISResult{Error: probePanic(r)}
			}
		}()
		result.WHOIS = n.whois.Check(ctx, registrableDomain)
	}()

	wg.Wait()
	return result
}

// probePanic renders a recovered panic as the probe's error string, so
// an unexpected probe fault degrades that one signal instead of
// killing the process.
func probePanic(r interface{}) string {
	return fmt.Sprintf("probe panic: %v", r)
}

func (n *Inspector) observe(probe string, start time.Time) {
	n.metrics.ObserveProbe(probe, time.Since(start))
}
