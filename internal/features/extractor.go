package features

import (
	"math"
	"net"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"urlsentry/internal/homograph"
	"urlsentry/internal/normalize"
)

// vector accumulates (name, value) pairs in call order, giving the
// extractor a stable, reproducible feature order without relying on
// Go's randomized map iteration.
type vector struct {
	names  []string
	values []float64
}

func (v *vector) add(name string, value float64) {
	v.names = append(v.names, name)
	v.values = append(v.values, value)
}

func boolf(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func calcEntropy(text string) float64 {
	if text == "" {
		return 0
	}
	freq := map[rune]int{}
	lower := strings.ToLower(text)
	n := 0
	for _, r := range lower {
		freq[r]++
		n++
	}
	if n == 0 {
		return 0
	}
	var h float64
	for _, c := range freq {
		p := float64(c) / float64(n)
		if p > 0 {
			h -= p * math.Log2(p)
		}
	}
	return h
}

func maxRun(text string, cond func(rune) bool) int {
	best, cur := 0, 0
	for _, r := range text {
		if cond(r) {
			cur++
			if cur > best {
				best = cur
			}
		} else {
			cur = 0
		}
	}
	return best
}

var bigramLetters = regexp.MustCompile(`[a-z]`)

// BigramScore is the fraction of character bigrams in text that appear
// in CommonBigrams — a cheap randomness proxy (real words score 0.4-0.8;
// random strings score below 0.2).
func BigramScore(text string) float64 {
	lower := strings.ToLower(text)
	var letters []rune
	for _, r := range lower {
		if unicode.IsLetter(r) && r < unicode.MaxASCII {
			letters = append(letters, r)
		}
	}
	if len(letters) < 2 {
		return 0
	}
	total := len(letters) - 1
	common := 0
	for i := 0; i < total; i++ {
		bg := string(letters[i : i+2])
		if CommonBigrams[bg] {
			common++
		}
	}
	return float64(common) / float64(total)
}

var hexEncodedRe = regexp.MustCompile(`%[0-9a-fA-F]{2}`)
var hexIPRe = regexp.MustCompile(`^(0x[0-9a-f]+\.){3}0x[0-9a-f]+$`)
var base64Re = regexp.MustCompile(`[A-Za-z0-9+/]{20,}={0,2}`)

// hasAdjacentRepeat reports whether s contains two consecutive identical
// runes, equivalent to the backreference regexp `(.)\1` which Go's RE2
// engine cannot express.
func hasAdjacentRepeat(s string) bool {
	prev := rune(-1)
	for _, r := range s {
		if r == prev {
			return true
		}
		prev = r
	}
	return false
}

// Extracted bundles the ordered feature vector with a few intermediate
// values the risk-factor generator also needs, so both consumers parse
// the URL exactly once.
type Extracted struct {
	Names             []string
	Values            []float64
	ByName            map[string]float64
	Hostname          string
	RegistrableDomain string
	SLD               string
	Subdomain         string
	Homograph         homograph.Features
}

// Extract produces the 95-element feature vector for a URL plus the
// parsed intermediates used by GetRiskFactors. On any parse failure it
// returns an all-zero vector over the canonical feature names, mirroring
// the reference extractor's fail-safe behaviour.
func Extract(rawURL string) Extracted {
	u := strings.TrimSpace(rawURL)
	parseTarget := u
	if !strings.Contains(u, "://") {
		parseTarget = "http://" + u
	}
	parsed, err := url.Parse(parseTarget)
	if err != nil {
		return zeroVector()
	}

	scheme := strings.ToLower(parsed.Scheme)
	path := parsed.Path
	query := parsed.RawQuery
	fragment := parsed.Fragment
	domain := strings.ToLower(parsed.Hostname())
	_, hasPortErr := strconv.Atoi(parsed.Port())
	hasPort := parsed.Port() != "" && hasPortErr == nil

	parts := []string{}
	if domain != "" {
		parts = strings.Split(domain, ".")
	}
	pathParts := nonEmptyParts(path)

	sub, registrable, suffix := normalize.SplitHostname(domain)
	sld := sld(registrable, suffix)

	urlLower := strings.ToLower(u)
	pathLower := strings.ToLower(path)

	v := &vector{}

	// LENGTH
	v.add("url_length", float64(len(u)))
	v.add("domain_length", float64(len(domain)))
	v.add("path_length", float64(len(path)))
	v.add("query_length", float64(len(query)))
	v.add("fragment_length", float64(len(fragment)))
	v.add("subdomain_length", float64(len(sub)))
	v.add("tld_length", float64(len(suffix)))
	v.add("longest_domain_part", float64(longest(parts)))
	v.add("avg_domain_part_len", avgLen(parts))
	v.add("longest_path_part", float64(longest(pathParts)))
	v.add("avg_path_part_len", avgLen(pathParts))

	// COUNTS
	for _, p := range []struct{ ch, name string }{
		{".", "dot"}, {"-", "hyphen"}, {"_", "underscore"}, {"/", "slash"},
		{"?", "question"}, {"=", "equals"}, {"&", "amp"}, {"@", "at"},
		{"%", "percent"}, {"~", "tilde"}, {"#", "hash"}, {":", "colon"},
		{";", "semicolon"},
	} {
		v.add(p.name+"_count", float64(strings.Count(u, p.ch)))
	}

	v.add("domain_dot_count", float64(strings.Count(domain, ".")))
	v.add("domain_hyphen_count", float64(strings.Count(domain, "-")))
	v.add("domain_digit_count", float64(countFunc(domain, unicode.IsDigit)))
	subdomainCount := 0.0
	if sub != "" {
		subdomainCount = float64(strings.Count(sub, ".") + 1)
	}
	v.add("subdomain_count", subdomainCount)
	v.add("path_depth", float64(len(pathParts)))
	digitCount := countFunc(u, unicode.IsDigit)
	letterCount := countFunc(u, unicode.IsLetter)
	upperCount := countFunc(u, unicode.IsUpper)
	specialCount := countFunc(u, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })
	v.add("digit_count", float64(digitCount))
	v.add("letter_count", float64(letterCount))
	v.add("uppercase_count", float64(upperCount))
	v.add("special_char_count", float64(specialCount))

	qp, _ := url.ParseQuery(query)
	queryValTotalLen := 0
	for _, vals := range qp {
		for _, val := range vals {
			queryValTotalLen += len(val)
		}
	}
	v.add("query_param_count", float64(len(qp)))
	v.add("query_value_total_len", float64(queryValTotalLen))

	// RATIOS
	ul := float64(max(len(u), 1))
	dl := float64(max(len(domain), 1))
	v.add("digit_ratio", float64(digitCount)/ul)
	v.add("letter_ratio", float64(letterCount)/ul)
	v.add("special_char_ratio", float64(specialCount)/ul)
	v.add("uppercase_ratio", float64(upperCount)/float64(max(letterCount, 1)))
	domainDigitCount := countFunc(domain, unicode.IsDigit)
	domainHyphenCount := strings.Count(domain, "-")
	v.add("domain_digit_ratio", float64(domainDigitCount)/dl)
	v.add("domain_hyphen_ratio", float64(domainHyphenCount)/dl)
	v.add("path_url_ratio", float64(len(path))/ul)
	v.add("query_url_ratio", float64(len(query))/ul)
	v.add("domain_url_ratio", float64(len(domain))/ul)

	// ENTROPY
	v.add("url_entropy", calcEntropy(u))
	v.add("domain_entropy", calcEntropy(strings.ReplaceAll(domain, ".", "")))
	v.add("path_entropy", calcEntropy(path))
	v.add("query_entropy", calcEntropy(query))
	v.add("subdomain_entropy", calcEntropy(sub))

	// BOOLEAN
	v.add("is_https", boolf(scheme == "https"))
	v.add("is_http", boolf(scheme == "http"))
	v.add("has_www", boolf(strings.HasPrefix(domain, "www.")))
	v.add("has_port", boolf(hasPort))
	v.add("has_at_symbol", boolf(strings.Contains(u, "@")))
	v.add("has_double_slash_in_path", boolf(strings.Contains(path, "//")))
	decoded, decErr := url.QueryUnescape(u)
	v.add("has_hex_encoding", boolf(decErr == nil && decoded != u))
	v.add("has_punycode", boolf(strings.Contains(domain, "xn--")))
	hasIP := net.ParseIP(domain) != nil
	v.add("has_ip_address", boolf(hasIP))
	v.add("has_hex_ip", boolf(hexIPRe.MatchString(domain)))
	v.add("has_ip_like", boolf(isAllDigitsAndDots(domain) && len(domain) > 6))

	// TLD
	v.add("is_suspicious_tld", boolf(SuspiciousTLDs[suffix]))
	v.add("is_trusted_tld", boolf(TrustedTLDs[suffix]))
	v.add("is_com", boolf(suffix == "com"))
	v.add("is_org", boolf(suffix == "org"))
	v.add("is_net", boolf(suffix == "net"))
	v.add("is_country_tld", boolf(len(suffix) == 2 && isAllAlpha(suffix)))

	// CHARACTER DISTRIBUTION
	v.add("max_consec_digits", float64(maxRun(u, unicode.IsDigit)))
	v.add("max_consec_letters", float64(maxRun(u, unicode.IsLetter)))
	v.add("max_consec_special", float64(maxRun(u, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })))
	domLetters := 0
	domVowels := 0
	for _, r := range domain {
		if unicode.IsLetter(r) {
			domLetters++
			if strings.ContainsRune("aeiou", r) {
				domVowels++
			}
		}
	}
	v.add("domain_vowel_ratio", float64(domVowels)/float64(max(domLetters, 1)))

	// KEYWORDS
	brandKeywordCount := 0
	for b := range BrandKeywords {
		if strings.Contains(urlLower, b) {
			brandKeywordCount++
		}
	}
	v.add("brand_keyword_count", float64(brandKeywordCount))
	hasBrandInSubdomain := false
	subLower := strings.ToLower(sub)
	for b := range BrandKeywords {
		if strings.Contains(subLower, b) {
			hasBrandInSubdomain = true
			break
		}
	}
	v.add("has_brand_in_subdomain", boolf(hasBrandInSubdomain))
	phishingCount := 0
	for k := range PhishingKeywords {
		if strings.Contains(urlLower, k) {
			phishingCount++
		}
	}
	v.add("phishing_keyword_count", float64(phishingCount))
	malwareCount := 0
	for k := range MalwareKeywords {
		if strings.Contains(urlLower, k) {
			malwareCount++
		}
	}
	v.add("malware_keyword_count", float64(malwareCount))
	v.add("is_url_shortener", boolf(URLShorteners[registrable]))
	hasDangerousExt := false
	for _, e := range DangerousExtensions {
		if strings.HasSuffix(pathLower, e) {
			hasDangerousExt = true
			break
		}
	}
	v.add("has_dangerous_ext", boolf(hasDangerousExt))
	v.add("has_exe", boolf(strings.HasSuffix(pathLower, ".exe")))
	v.add("has_php", boolf(strings.Contains(pathLower, ".php")))

	// STRUCTURAL
	v.add("has_double_letters", boolf(hasAdjacentRepeat(domain)))
	v.add("has_long_subdomain", boolf(len(sub) > 20))
	v.add("has_deep_path", boolf(len(pathParts) > 5))
	v.add("has_embedded_url", boolf(strings.Contains(pathLower, "http") || strings.Contains(pathLower, "www")))
	v.add("has_data_uri", boolf(strings.HasPrefix(urlLower, "data:")))
	v.add("has_javascript", boolf(strings.Contains(urlLower, "javascript:")))
	v.add("has_base64", boolf(base64Re.MatchString(u)))
	brandInDomain := false
	for b := range BrandKeywords {
		if strings.Contains(domain, b) {
			brandInDomain = true
			break
		}
	}
	v.add("brand_in_domain", boolf(brandInDomain))
	v.add("brand_not_registered", boolf(brandInDomain && !homograph.IsOfficialBrandDomain(registrable)))

	// HOMOGRAPH
	hf := homograph.Extract(domain, registrable, sld)
	v.add("homograph_has_mixed_scripts", boolf(hf.HasMixedScripts))
	v.add("homograph_confusable_chars", float64(hf.ConfusableChars))
	v.add("homograph_min_brand_distance", float64(hf.MinBrandDistance))
	v.add("homograph_has_char_sub", boolf(hf.HasCharSub))
	v.add("homograph_is_exact_brand", boolf(hf.IsExactBrand))

	// N-GRAM
	domainNameOnly := sld
	if domainNameOnly == "" {
		domainNameOnly = domain
	}
	v.add("domain_bigram_score", BigramScore(domainNameOnly))
	subBigram := 0.0
	if sub != "" {
		subBigram = BigramScore(sub)
	}
	v.add("subdomain_bigram_score", subBigram)
	pathBigram := 0.0
	if len(pathParts) > 0 {
		pathBigram = BigramScore(strings.Join(pathParts, ""))
	}
	v.add("path_bigram_score", pathBigram)

	byName := make(map[string]float64, len(v.names))
	for i, n := range v.names {
		byName[n] = v.values[i]
	}

	return Extracted{
		Names:             v.names,
		Values:            v.values,
		ByName:            byName,
		Hostname:          domain,
		RegistrableDomain: registrable,
		SLD:               sld,
		Subdomain:         sub,
		Homograph:         hf,
	}
}

func sld(registrable, suffix string) string {
	if suffix == "" {
		return registrable
	}
	return strings.TrimSuffix(registrable, "."+suffix)
}

func nonEmptyParts(path string) []string {
	raw := strings.Split(path, "/")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func longest(parts []string) int {
	best := 0
	for _, p := range parts {
		if len(p) > best {
			best = len(p)
		}
	}
	return best
}

func avgLen(parts []string) float64 {
	if len(parts) == 0 {
		return 0
	}
	total := 0
	for _, p := range parts {
		total += len(p)
	}
	return float64(total) / float64(len(parts))
}

func countFunc(s string, cond func(rune) bool) int {
	n := 0
	for _, r := range s {
		if cond(r) {
			n++
		}
	}
	return n
}

func isAllDigitsAndDots(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != '.' && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func isAllAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

var zeroVectorOnce sync.Once
var zeroNames []string

func zeroVector() Extracted {
	zeroVectorOnce.Do(func() {
		canon := Extract("https://www.example.com/path?q=1")
		zeroNames = canon.Names
	})
	values := make([]float64, len(zeroNames))
	byName := make(map[string]float64, len(zeroNames))
	for _, n := range zeroNames {
		byName[n] = 0
	}
	return Extracted{Names: zeroNames, Values: values, ByName: byName}
}

// FeatureNames returns the canonical, stable feature name order this
// extractor produces — the manifest's expected content.
func FeatureNames() []string {
	return Extract("https://www.example.com/path?q=1").Names
}

// SortedFeatureNames is a convenience for startup diagnostics: the
// manifest comparison itself must use the exact order, but a sorted
// view is friendlier in error messages about missing/extra names.
func SortedFeatureNames() []string {
	names := append([]string(nil), FeatureNames()...)
	sort.Strings(names)
	return names
}
