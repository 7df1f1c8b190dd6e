// Package trust implements the domain-trust scorer: a computed trust
// value from WHOIS age, SSL posture, DNS health, and
// hostname structure, used to dampen the ML predictor's raw score
// rather than gate on a static domain whitelist.
package trust

import (
	"math"
	"strings"

	"urlsentry/internal/features"
	"urlsentry/internal/models"
)

// authBaitTokens are URL-path tokens associated with credential or
// payment harvesting; their presence discounts trust even on an
// otherwise healthy domain.
var authBaitTokens = []string{
	"login", "signin", "verify", "confirm", "account", "password",
	"oauth", "authorize", "secure", "security", "billing", "suspend",
}

// Score computes a TrustReport from the network inspection results and
// the URL's path.
func Score(net models.NetworkResult, registrableDomain, subdomain, path string) models.TrustReport {
	wWhois := whoisWeight(net.WHOIS)
	wSSL := sslWeight(net.SSL)
	wDNS := dnsWeight(net.DNS)
	wStruct := structWeight(registrableDomain, subdomain)

	trust := 0.30*wWhois + 0.25*wSSL + 0.25*wDNS + 0.20*wStruct - authBaitPenalty(path)
	trust = models.Clamp01(trust)

	dampening := 1.0 - trust
	tier := tierOf(dampening)

	return models.TrustReport{
		Tier:            tier,
		DampeningFactor: dampening,
		Description:     tierDescription(tier),
	}
}

func whoisWeight(w models.WHOISResult) float64 {
	if w.Error != "" || w.AgeDays == nil {
		return 0.30
	}
	age := *w.AgeDays
	if age < 0 {
		return 0.05
	}
	// Logistic curve centered at 180 days, slope 0.015.
	return 1.0 / (1.0 + math.Exp(-0.015*(float64(age)-180)))
}

func sslWeight(s models.SSLResult) float64 {
	if s.Error == models.SSLErrVerificationFailed {
		return 0
	}
	if !s.Valid {
		return 0.20
	}

	w := 0.50
	if s.CertAgeDays != nil {
		ageFactor := float64(*s.CertAgeDays) / 365.0
		if ageFactor > 1.0 {
			ageFactor = 1.0
		}
		w += ageFactor * 0.30
	}
	if s.DaysUntilExpiry != nil {
		if *s.DaysUntilExpiry > 90 {
			w += 0.20
		} else if *s.DaysUntilExpiry > 30 {
			w += 0.10
		}
	}
	return w
}

func dnsWeight(d models.DNSResult) float64 {
	if !d.Resolved {
		return 0
	}

	w := 0.0
	hasVeryLowTTL := false
	for _, f := range d.Flags {
		if f == models.DNSFlagVeryLowTTL {
			hasVeryLowTTL = true
			break
		}
	}
	if d.TTLSeconds != nil && !hasVeryLowTTL {
		ttlFactor := float64(*d.TTLSeconds) / 3600.0
		if ttlFactor > 1.0 {
			ttlFactor = 1.0
		}
		w += 0.40 + ttlFactor*0.30
	}

	if len(d.Flags) == 0 {
		w += 0.30
	} else {
		w -= 0.10 * float64(len(d.Flags))
	}

	return models.Clamp01(w)
}

func structWeight(registrableDomain, subdomain string) float64 {
	if features.IsURLShortener(registrableDomain) {
		return 0
	}

	w := 0.80
	if subdomain != "" {
		labels := strings.Split(subdomain, ".")
		extra := len(labels) - 1
		if extra > 0 {
			deduction := 0.15 * float64(extra)
			if deduction > 0.30 {
				deduction = 0.30
			}
			w -= deduction
		}
	}
	return models.Clamp01(w)
}

func authBaitPenalty(path string) float64 {
	lower := strings.ToLower(path)
	penalty := 0.0
	for _, tok := range authBaitTokens {
		if strings.Contains(lower, tok) {
			penalty += 0.10
		}
	}
	if penalty > 0.30 {
		penalty = 0.30
	}
	return penalty
}

func tierOf(dampening float64) models.TrustTier {
	switch {
	case dampening <= 0.35:
		return models.TierTrusted
	case dampening <= 0.60:
		return models.TierModerate
	case dampening <= 0.80:
		return models.TierNeutral
	default:
		return models.TierUntrusted
	}
}

func tierDescription(tier models.TrustTier) string {
	switch tier {
	case models.TierTrusted:
		return "established domain with healthy network posture"
	case models.TierModerate:
		return "moderately established domain"
	case models.TierNeutral:
		return "limited trust signal available"
	default:
		return "little to no trust signal; treat network/ML risk at face value"
	}
}
