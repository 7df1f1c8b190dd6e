package normalize

import "testing"

func TestNormalize_AddsDefaultScheme(t *testing.T) {
	n, err := Normalize("example.com/path")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Scheme != "https" {
		t.Errorf("expected default scheme https, got %s", n.Scheme)
	}
	if n.Hostname != "example.com" {
		t.Errorf("expected hostname example.com, got %s", n.Hostname)
	}
}

func TestNormalize_LowercasesSchemeAndHost(t *testing.T) {
	n, err := Normalize("HTTPS://Example.COM/Path")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Scheme != "https" || n.Hostname != "example.com" {
		t.Errorf("expected lowercased scheme/hostname, got %s / %s", n.Scheme, n.Hostname)
	}
	if n.Path != "/Path" {
		t.Errorf("expected path case preserved, got %s", n.Path)
	}
}

func TestNormalize_RejectsUnsupportedScheme(t *testing.T) {
	_, err := Normalize("ftp://example.com")
	if err == nil {
		t.Fatal("expected an error for an unsupported scheme")
	}
	if e, ok := err.(*Error); !ok || e.Kind != ErrUnsupportedScheme {
		t.Errorf("expected ErrUnsupportedScheme, got %v", err)
	}
}

func TestNormalize_RejectsOverlongURL(t *testing.T) {
	long := "https://example.com/"
	for len(long) <= MaxURLLength {
		long += "a"
	}
	_, err := Normalize(long)
	if err == nil {
		t.Fatal("expected an error for an overlong URL")
	}
	if e, ok := err.(*Error); !ok || e.Kind != ErrURLTooLong {
		t.Errorf("expected ErrURLTooLong, got %v", err)
	}
}

func TestNormalize_RejectsEmptyHostname(t *testing.T) {
	_, err := Normalize("https:///path")
	if err == nil {
		t.Fatal("expected an error for a missing hostname")
	}
}

func TestSplitHostname_RegistrableDomainAndSubdomain(t *testing.T) {
	sub, reg, suffix := SplitHostname("login.accounts.example.com")
	if reg != "example.com" {
		t.Errorf("expected registrable domain example.com, got %s", reg)
	}
	if sub != "login.accounts" {
		t.Errorf("expected subdomain login.accounts, got %s", sub)
	}
	if suffix != "com" {
		t.Errorf("expected suffix com, got %s", suffix)
	}
}

func TestSplitHostname_MultiLabelSuffix(t *testing.T) {
	_, reg, suffix := SplitHostname("shop.example.co.uk")
	if reg != "example.co.uk" {
		t.Errorf("expected registrable domain example.co.uk, got %s", reg)
	}
	if suffix != "co.uk" {
		t.Errorf("expected suffix co.uk, got %s", suffix)
	}
}

func TestSplitHostname_IPLiteralHasNoSuffix(t *testing.T) {
	sub, reg, suffix := SplitHostname("192.0.2.1")
	if reg != "192.0.2.1" || sub != "" || suffix != "" {
		t.Errorf("expected an IP literal to pass through as the registrable domain, got sub=%q reg=%q suffix=%q", sub, reg, suffix)
	}
}

func TestNormalized_CacheKeyRoundTripsURLParts(t *testing.T) {
	n, err := Normalize("https://example.com/path?x=1#frag")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "https://example.com/path?x=1#frag"
	if got := n.CacheKey(); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestNormalized_CacheKeyOmitsEmptyQueryAndFragment(t *testing.T) {
	n, err := Normalize("https://example.com/path")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "https://example.com/path"
	if got := n.CacheKey(); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}
