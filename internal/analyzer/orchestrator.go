// Package analyzer implements the analysis orchestrator: the single
// entry point that normalizes a URL, fans out the ML
// predictor and network inspector concurrently, scores domain trust,
// combines every signal into a final risk score, and assembles the
// verdict returned to callers.
package analyzer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"urlsentry/internal/features"
	"urlsentry/internal/ml"
	"urlsentry/internal/models"
	"urlsentry/internal/network"
	"urlsentry/internal/normalize"
	"urlsentry/internal/trust"
	"urlsentry/pkg/logger"
)

const (
	dangerThreshold     = 0.70
	suspiciousThreshold = 0.40

	weightDampenedML  = 0.55
	weightNetworkRisk = 0.25
	weightHeuristic   = 0.20
)

var severityWeight = map[models.Severity]float64{
	models.SeverityCritical: 0.20,
	models.SeverityHigh:     0.12,
	models.SeverityMedium:   0.06,
	models.SeverityLow:      0.03,
}

// Orchestrator runs the end-to-end analysis pipeline for a single URL.
type Orchestrator struct {
	log       *logger.Logger
	predictor *ml.Predictor
	inspector *network.Inspector
	timeout   time.Duration
}

func NewOrchestrator(l *logger.Logger, predictor *ml.Predictor, inspector *network.Inspector, timeout time.Duration) *Orchestrator {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Orchestrator{log: l, predictor: predictor, inspector: inspector, timeout: timeout}
}

// Analyze runs the full normalize-extract-predict-inspect-score
// pipeline for a single URL. Cache lookup is the caller's
// responsibility — see internal/api, which fronts this with
// internal/cache keyed on normalize.Normalized.CacheKey().
func (o *Orchestrator) Analyze(ctx context.Context, rawURL string) models.AnalysisResult {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	n, err := normalize.Normalize(rawURL)
	if err != nil {
		return invalidInputResult(err, start)
	}

	extracted := features.Extract(n.CacheKey())
	riskFactors := features.GetRiskFactors(extracted)

	var (
		prediction models.MLPrediction
		netResult  models.NetworkResult
		wg         sync.WaitGroup
	)
	wg.Add(2)

	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				o.log.Error("analyzer: predictor panicked: %v", r)
				prediction = models.MLPrediction{MLScore: 0.5}
			}
		}()
		prediction = o.predictor.Predict(ctx, extracted.Values)
	}()
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				o.log.Error("analyzer: inspector panicked: %v", r)
				netResult = models.NetworkResult{
					HTTP: models.HTTPResult{Error: fmt.Sprintf("probe panic: %v", r)},
				}
			}
		}()
		netResult = o.inspector.Inspect(ctx, n.CacheKey(), n.Hostname, n.RegistrableDomain)
	}()

	// Both branches honor ctx's deadline, so the join is bounded;
	// returning any earlier would race their result writes.
	wg.Wait()
	if ctx.Err() != nil {
		o.log.Warn("analyzer: pipeline hit its deadline for %s", n.Hostname)
	}

	trustReport := trust.Score(netResult, n.RegistrableDomain, n.Subdomain, n.Path)
	dampenedML := prediction.MLScore * trustReport.DampeningFactor

	networkRisk := computeNetworkRisk(netResult, n.RegistrableDomain)
	networkFactors := networkRiskFactors(netResult, n.RegistrableDomain)
	allFactors := append(append([]models.RiskFactor{}, riskFactors...), networkFactors...)

	heuristicRisk := computeHeuristicRisk(allFactors)

	final := weightDampenedML*dampenedML + weightNetworkRisk*networkRisk + weightHeuristic*heuristicRisk
	final = models.Clamp01(final)

	status, message := decide(final, netResult, allFactors, trustReport)

	var contributions []models.Contribution
	if prediction.Explanation != nil {
		contributions = prediction.Explanation.Contributions
	}

	return models.AnalysisResult{
		Status:    status,
		Message:   message,
		RiskScore: final,
		Details: models.Details{
			ML: models.MLDetails{
				MLScore:       prediction.MLScore,
				DampenedScore: dampenedML,
				Contributions: contributions,
			},
			Domain: models.DomainDetails{
				RegistrableDomain: n.RegistrableDomain,
				FullDomain:        n.FullDomain,
				Tier:              trustReport.Tier,
				DampeningFactor:   trustReport.DampeningFactor,
				Description:       trustReport.Description,
				AgeDays:           netResult.WHOIS.AgeDays,
				Registrar:         netResult.WHOIS.Registrar,
			},
			Network: models.NetworkDetails{
				DNSResolved:     netResult.DNS.Resolved,
				DNSTTL:          netResult.DNS.TTLSeconds,
				DNSFlags:        netResult.DNS.Flags,
				SSLValid:        netResult.SSL.Valid,
				SSLIssuer:       netResult.SSL.Issuer,
				DaysUntilExpiry: netResult.SSL.DaysUntilExpiry,
				IsNewCert:       netResult.SSL.IsNewCert,
				HTTPStatus:      netResult.HTTP.StatusCode,
				RedirectCount:   netResult.HTTP.RedirectCount,
				FinalURL:        netResult.HTTP.FinalURL,
				ContentFlags:    netResult.HTTP.ContentFlags,
			},
			RiskFactors:    allFactors,
			AnalysisTimeMS: time.Since(start).Milliseconds(),
		},
	}
}

func invalidInputResult(err error, start time.Time) models.AnalysisResult {
	return models.AnalysisResult{
		Status:    models.StatusDanger,
		Message:   fmt.Sprintf("invalid or unsupported URL: %v", err),
		RiskScore: 1.0,
		Details: models.Details{
			AnalysisTimeMS: time.Since(start).Milliseconds(),
		},
	}
}

// computeNetworkRisk sums a fixed additive weight table over the
// completed NetworkResult.
func computeNetworkRisk(n models.NetworkResult, registrableDomain string) float64 {
	risk := 0.0

	for _, f := range n.DNS.Flags {
		switch f {
		case models.DNSFlagVeryLowTTL:
			risk += 0.10
		case models.DNSFlagNoMXRecords:
			risk += 0.02
		case models.DNSFlagSuspiciousNameserver:
			risk += 0.10
		}
	}

	if n.SSL.Error == models.SSLErrVerificationFailed {
		risk += 0.20
	}
	if n.SSL.IsNewCert != nil && *n.SSL.IsNewCert {
		risk += 0.10
	}
	if !n.SSL.Valid && n.SSL.Error != "" &&
		n.SSL.Error != models.SSLErrVerificationFailed && n.SSL.Error != models.SSLErrConnectionFailed {
		risk += 0.05
	}

	if n.HTTP.RedirectCount > 3 {
		risk += 0.10
	}
	if n.HTTP.RedirectDomainMismatch && !features.IsURLShortener(registrableDomain) {
		risk += 0.15
	}
	if n.HTTP.SchemeWarning {
		risk += 0.08
	}
	if n.HTTP.StatusCode != nil && *n.HTTP.StatusCode >= 400 && *n.HTTP.StatusCode < 500 {
		risk += 0.05
	}
	for _, f := range n.HTTP.ContentFlags {
		switch f {
		case models.ContentFlagPasswordField:
			risk += 0.10
		case models.ContentFlagBillingInfo:
			risk += 0.15
		case models.ContentFlagSensitiveID:
			risk += 0.15
		case models.ContentFlagGeolocation:
			risk += 0.10
		case models.ContentFlagObfuscatedJS:
			risk += 0.15
		case models.ContentFlagExcessiveIframes:
			risk += 0.10
		}
	}

	if n.WHOIS.IsNewDomain != nil && *n.WHOIS.IsNewDomain {
		risk += 0.15
	}

	if risk > 1.0 {
		risk = 1.0
	}
	return risk
}

// networkRiskFactors surfaces a subset of the network-derived signals
// above as user-facing risk factors so the top-N messages in decide()
// can cite them alongside URL-derived factors. Missing MX records,
// redirect count, 4xx status, geolocation and iframe flags add to the
// network risk score but produce no factor here.
func networkRiskFactors(n models.NetworkResult, registrableDomain string) []models.RiskFactor {
	var out []models.RiskFactor
	for _, f := range n.DNS.Flags {
		switch f {
		case models.DNSFlagVeryLowTTL:
			out = append(out, models.RiskFactor{Code: "very_low_dns_ttl", Message: "DNS TTL unusually low (fast-flux indicator)", Severity: models.SeverityMedium})
		case models.DNSFlagSuspiciousNameserver:
			out = append(out, models.RiskFactor{Code: "suspicious_nameserver", Message: "Hosted on a nameserver associated with abuse", Severity: models.SeverityMedium})
		}
	}
	if n.SSL.Error == models.SSLErrVerificationFailed {
		out = append(out, models.RiskFactor{Code: "ssl_verification_failed", Message: "TLS certificate failed verification", Severity: models.SeverityHigh})
	}
	if n.SSL.IsNewCert != nil && *n.SSL.IsNewCert {
		out = append(out, models.RiskFactor{Code: "new_certificate", Message: "TLS certificate issued very recently", Severity: models.SeverityMedium})
	}
	if n.HTTP.RedirectDomainMismatch && !features.IsURLShortener(registrableDomain) {
		out = append(out, models.RiskFactor{Code: "redirect_domain_mismatch", Message: "Redirects to an unrelated domain", Severity: models.SeverityHigh})
	}
	if n.HTTP.SchemeWarning {
		out = append(out, models.RiskFactor{Code: "no_https", Message: "Final destination does not use HTTPS", Severity: models.SeverityMedium})
	}
	for _, f := range n.HTTP.ContentFlags {
		switch f {
		case models.ContentFlagPasswordField:
			out = append(out, models.RiskFactor{Code: "password_field_present", Message: "Page presents a password field", Severity: models.SeverityMedium})
		case models.ContentFlagBillingInfo:
			out = append(out, models.RiskFactor{Code: "billing_info_requested", Message: "Page requests billing/payment details", Severity: models.SeverityHigh})
		case models.ContentFlagSensitiveID:
			out = append(out, models.RiskFactor{Code: "sensitive_id_requested", Message: "Page requests a government ID or SSN", Severity: models.SeverityHigh})
		case models.ContentFlagObfuscatedJS:
			out = append(out, models.RiskFactor{Code: "obfuscated_javascript", Message: "Page contains obfuscated script", Severity: models.SeverityHigh})
		}
	}
	if n.WHOIS.IsNewDomain != nil && *n.WHOIS.IsNewDomain {
		out = append(out, models.RiskFactor{Code: "newly_registered_domain", Message: "Domain was registered very recently", Severity: models.SeverityMedium})
	}
	return out
}

// computeHeuristicRisk sums fixed severity weights across the risk
// factors produced this run. Each factor already carries an explicit
// severity, which is the more direct signal to key off than re-pattern
// matching factor text.
func computeHeuristicRisk(factors []models.RiskFactor) float64 {
	total := 0.0
	for _, f := range factors {
		total += severityWeight[f.Severity]
	}
	return models.Clamp01(total)
}

// decide applies the hard overrides first, then the threshold-based
// verdict. Overrides win regardless of the computed score.
func decide(final float64, n models.NetworkResult, factors []models.RiskFactor, tr models.TrustReport) (models.Status, string) {
	if n.DNS.Error == models.DNSErrDomainNotFound {
		return models.StatusDanger, "domain does not exist"
	}
	if n.HTTP.Error == models.HTTPErrSSRFBlocked || n.HTTP.Error == models.HTTPErrSSRFCheckFailed {
		return models.StatusDanger, "SSRF attempt blocked: destination points at an internal or reserved network address"
	}
	if n.HTTP.StatusCode != nil && *n.HTTP.StatusCode >= 500 && *n.HTTP.StatusCode < 600 {
		return models.StatusDanger, "destination server returned an error"
	}
	unreachable := n.HTTP.Error == models.HTTPErrSiteUnreachable || n.HTTP.Error == models.HTTPErrTimeout
	if unreachable && !n.DNS.Resolved {
		return models.StatusDanger, "destination is unreachable and does not resolve"
	}

	switch {
	case final >= dangerThreshold:
		return models.StatusDanger, fmt.Sprintf("high risk detected (%.0f%%): %s",
			final*100, topFactorMessage(factors, 3, "multiple high-risk signals"))
	case final >= suspiciousThreshold:
		return models.StatusSuspicious, topFactorMessage(factors, 2, "some risk signals detected")
	default:
		return models.StatusSafe, safeMessage(tr)
	}
}

func topFactorMessage(factors []models.RiskFactor, n int, fallback string) string {
	if len(factors) == 0 {
		return fallback
	}
	sorted := append([]models.RiskFactor{}, factors...)
	sort.Slice(sorted, func(i, j int) bool {
		return severityWeight[sorted[i].Severity] > severityWeight[sorted[j].Severity]
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	msgs := make([]string, 0, n)
	for _, f := range sorted[:n] {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

func safeMessage(tr models.TrustReport) string {
	switch tr.Tier {
	case models.TierTrusted:
		return "no significant risk detected; domain is well established"
	case models.TierModerate:
		return "no significant risk detected"
	case models.TierNeutral:
		return "no significant risk detected; limited trust history available"
	default:
		return "no significant risk detected, though domain trust signal is weak"
	}
}
