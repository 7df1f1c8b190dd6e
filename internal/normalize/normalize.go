// Package normalize implements URL canonicalisation: scheme
// allow-listing, lowercasing, length limits, and Public-Suffix-List
// hostname splitting into (subdomain, registrable domain, suffix).
package normalize

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// MaxURLLength caps accepted input. Overridable from configuration at
// startup; immutable once the service is serving.
var MaxURLLength = 2048

// ErrKind enumerates the validation failures the orchestrator maps to
// a danger verdict instead of running the pipeline.
type ErrKind string

const (
	ErrUnsupportedScheme ErrKind = "unsupported_scheme"
	ErrURLTooLong        ErrKind = "url_too_long"
	ErrInvalidHostname   ErrKind = "invalid_hostname"
)

// Error wraps an ErrKind so callers can type-switch without parsing
// strings.
type Error struct {
	Kind ErrKind
}

func (e *Error) Error() string { return string(e.Kind) }

// AllowedSchemes is the scheme allow-list; configurable via
// internal/config but defaulting to exactly this set.
var AllowedSchemes = map[string]bool{"http": true, "https": true}

// compoundSuffixes is the fallback heuristic list used when the public
// suffix table can't make a determination — carried from the wider
// reference pack's known-two-level-TLD approach.
var compoundSuffixes = map[string]bool{
	"co.uk": true, "co.in": true, "com.au": true, "com.br": true,
	"co.nz": true, "org.uk": true, "net.au": true, "org.au": true,
	"ac.uk": true, "gov.uk": true, "co.za": true, "co.jp": true,
	"com.cn": true, "edu.au": true, "gov.au": true,
}

// Normalized is the canonical breakdown of a validated URL.
type Normalized struct {
	Scheme            string
	Hostname          string
	Path              string
	Query             string
	Fragment          string
	RegistrableDomain string
	FullDomain        string
	Subdomain         string
	Suffix            string
}

// Normalize implements the public `normalize(input)` operation.
func Normalize(input string) (*Normalized, error) {
	trimmed := strings.TrimSpace(input)
	if len(trimmed) > MaxURLLength {
		return nil, &Error{Kind: ErrURLTooLong}
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, &Error{Kind: ErrInvalidHostname}
	}

	scheme := strings.ToLower(parsed.Scheme)
	if !AllowedSchemes[scheme] {
		return nil, &Error{Kind: ErrUnsupportedScheme}
	}

	hostname := strings.ToLower(parsed.Hostname())
	if hostname == "" {
		return nil, &Error{Kind: ErrInvalidHostname}
	}

	sub, reg, suffix := SplitHostname(hostname)
	full := hostname

	return &Normalized{
		Scheme:            scheme,
		Hostname:          hostname,
		Path:              parsed.Path,
		Query:             parsed.RawQuery,
		Fragment:          parsed.Fragment,
		RegistrableDomain: reg,
		FullDomain:        full,
		Subdomain:         sub,
		Suffix:            suffix,
	}, nil
}

// CacheKey returns the canonical string the Analyzer Orchestrator
// re-extracts features from and internal/api keys the TTL cache on, so
// a cache hit and the underlying feature extraction always agree on
// what URL they represent.
func (n *Normalized) CacheKey() string {
	u := n.Scheme + "://" + n.Hostname + n.Path
	if n.Query != "" {
		u += "?" + n.Query
	}
	if n.Fragment != "" {
		u += "#" + n.Fragment
	}
	return u
}

// SplitHostname splits a hostname (already stripped of userinfo/port)
// into (subdomain, registrable domain, suffix) using the public suffix
// list, falling back to a small compound-TLD heuristic when the PSL
// lookup returns an error (e.g. a hostname that is itself a public
// suffix, or one with an empty label). An IP literal is returned
// unsplit as the registrable domain, with no suffix.
func SplitHostname(hostname string) (subdomain, registrable, suffix string) {
	hostname = strings.TrimSuffix(hostname, ".")
	if ip := net.ParseIP(hostname); ip != nil {
		return "", hostname, ""
	}

	if reg, err := publicsuffix.EffectiveTLDPlusOne(hostname); err == nil {
		suf, _ := publicsuffix.PublicSuffix(hostname)
		sub := strings.TrimSuffix(hostname, "."+reg)
		if sub == hostname {
			sub = ""
		}
		return sub, reg, suf
	}

	// Fallback: compound-TLD heuristic over a fixed list.
	parts := strings.Split(hostname, ".")
	if len(parts) < 2 {
		return "", hostname, ""
	}
	if len(parts) >= 3 {
		lastTwo := strings.Join(parts[len(parts)-2:], ".")
		if compoundSuffixes[lastTwo] {
			reg := strings.Join(parts[len(parts)-3:], ".")
			sub := strings.Join(parts[:len(parts)-3], ".")
			return sub, reg, lastTwo
		}
	}
	reg := strings.Join(parts[len(parts)-2:], ".")
	sub := strings.Join(parts[:len(parts)-2], ".")
	return sub, reg, parts[len(parts)-1]
}
