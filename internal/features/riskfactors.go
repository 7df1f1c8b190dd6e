package features

import (
	"fmt"
	"strings"

	"urlsentry/internal/homograph"
	"urlsentry/internal/models"
)

func rf(code, message string, severity models.Severity, evidence string) models.RiskFactor {
	return models.RiskFactor{Code: code, Message: message, Severity: severity, Evidence: evidence}
}

// GetRiskFactors derives the URL-level risk factors from an already
// extracted feature set. Brand-related factors use the boundary-aware
// matcher, never the substring matching the ML features use for
// training parity — substring matching would flag pineapple.com for
// "apple".
func GetRiskFactors(e Extracted) []models.RiskFactor {
	var factors []models.RiskFactor
	f := e.ByName

	isOfficialBrandDomain := homograph.IsOfficialBrandDomain(e.RegistrableDomain)
	boundaryBrandInDomain := false
	for brand := range homograph.BrandDomains {
		if homograph.BrandInLabel(e.SLD, brand) {
			boundaryBrandInDomain = true
			break
		}
	}
	boundaryBrandInSubdomain := false
	if e.Subdomain != "" {
		for brand := range homograph.BrandDomains {
			if homograph.HostnameHasBrand(e.Subdomain, brand) {
				boundaryBrandInSubdomain = true
				break
			}
		}
	}

	if f["has_ip_address"] != 0 {
		factors = append(factors, rf("ip_literal_url", "Uses IP address instead of domain name", models.SeverityHigh, ""))
	}
	if f["has_at_symbol"] != 0 {
		factors = append(factors, rf("credential_injection", "Contains @ symbol (credential injection risk)", models.SeverityHigh, ""))
	}
	if f["has_double_slash_in_path"] != 0 {
		factors = append(factors, rf("redirect_pattern", "Contains redirect pattern in path", models.SeverityMedium, ""))
	}
	if f["domain_entropy"] > 4.0 {
		factors = append(factors, rf("high_domain_entropy", "Domain appears randomly generated", models.SeverityHigh,
			fmt.Sprintf("entropy=%.2f", f["domain_entropy"])))
	}
	if f["is_suspicious_tld"] != 0 {
		factors = append(factors, rf("suspicious_tld", "Uses suspicious TLD", models.SeverityMedium, ""))
	}
	if f["subdomain_count"] > 3 {
		n := int(f["subdomain_count"])
		factors = append(factors, rf("excessive_subdomains", fmt.Sprintf("Excessive subdomains (%d)", n), models.SeverityMedium, fmt.Sprintf("%d", n)))
	}
	if f["url_length"] > 200 {
		factors = append(factors, rf("long_url", "Unusually long URL", models.SeverityLow, fmt.Sprintf("%d", int(f["url_length"]))))
	}
	if f["has_port"] != 0 {
		factors = append(factors, rf("non_standard_port", "Uses non-standard port", models.SeverityMedium, ""))
	}
	if f["has_punycode"] != 0 {
		factors = append(factors, rf("punycode_domain", "Contains punycode (internationalized domain)", models.SeverityMedium, ""))
	}
	if boundaryBrandInDomain && !isOfficialBrandDomain {
		factors = append(factors, rf("brand_in_unofficial_domain", "Brand keyword in non-official domain", models.SeverityHigh, ""))
	}
	if boundaryBrandInSubdomain {
		factors = append(factors, rf("brand_in_subdomain", "Brand name used in subdomain", models.SeverityMedium, ""))
	}
	if f["phishing_keyword_count"] >= 2 {
		factors = append(factors, rf("phishing_keywords", "Multiple phishing keywords detected", models.SeverityMedium,
			fmt.Sprintf("%d", int(f["phishing_keyword_count"]))))
	}
	if f["has_dangerous_ext"] != 0 {
		factors = append(factors, rf("dangerous_filetype", "Links to potentially dangerous file type", models.SeverityHigh, ""))
	}
	if f["has_embedded_url"] != 0 {
		factors = append(factors, rf("embedded_url", "URL embedded within path", models.SeverityMedium, ""))
	}
	if f["has_hex_encoding"] != 0 {
		factors = append(factors, rf("hex_encoding", "Contains hex-encoded characters", models.SeverityLow, ""))
	}
	if f["is_url_shortener"] != 0 {
		factors = append(factors, rf("url_shortener", "URL shortener — destination hidden", models.SeverityMedium, ""))
	}
	if f["has_data_uri"] != 0 {
		factors = append(factors, rf("data_uri", "Data URI — may contain embedded content", models.SeverityHigh, ""))
	}
	if f["has_javascript"] != 0 {
		factors = append(factors, rf("javascript_protocol", "Contains javascript: protocol", models.SeverityCritical, ""))
	}

	// Homograph / typosquatting
	if f["homograph_has_mixed_scripts"] != 0 {
		factors = append(factors, rf("mixed_scripts", "Domain mixes scripts (IDN homograph attack indicator)", models.SeverityHigh, ""))
	}
	if f["homograph_confusable_chars"] > 0 {
		factors = append(factors, rf("confusable_chars", "Domain contains visually confusable characters", models.SeverityHigh, ""))
	}
	if f["homograph_has_char_sub"] != 0 {
		factors = append(factors, rf("char_substitution", "Character substitution detected (e.g., g00gle, paypa1)", models.SeverityHigh, ""))
	}
	if f["homograph_is_exact_brand"] != 0 {
		factors = append(factors, rf("brand_impersonation", "Domain impersonates a known brand", models.SeverityCritical, ""))
	}

	minDist := int(f["homograph_min_brand_distance"])
	hasExtraSuspicion := f["homograph_confusable_chars"] > 0 || f["homograph_has_char_sub"] != 0 ||
		f["has_punycode"] != 0 || f["phishing_keyword_count"] > 0
	if (minDist <= 1 || (minDist == 2 && hasExtraSuspicion)) && !isOfficialBrandDomain && !boundaryBrandInDomain {
		factors = append(factors, rf("brand_lookalike", "Domain is suspiciously similar to a known brand", models.SeverityHigh, ""))
	}

	if f["domain_bigram_score"] < 0.10 {
		factors = append(factors, rf("random_domain_bigram", "Domain name appears randomly generated", models.SeverityHigh,
			fmt.Sprintf("bigram_score=%.3f", f["domain_bigram_score"])))
	}

	for kw := range SuspiciousDomainKeywords {
		if strings.Contains(e.SLD, kw) {
			factors = append(factors, rf("suspicious_domain_keyword", fmt.Sprintf("Suspicious keyword in domain name: '%s'", kw), models.SeverityHigh, kw))
			break
		}
	}

	return factors
}
