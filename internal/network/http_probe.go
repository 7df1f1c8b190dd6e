package network

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"urlsentry/internal/models"
	"urlsentry/pkg/logger"
)

const (
	maxRedirects = 10
	maxBodyBytes = 50 * 1024
	userAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	acceptHeader = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	acceptLang   = "en-US,en;q=0.9"
)

var (
	obfuscatedJSRe = regexp.MustCompile(`(?i)eval\s*\(\s*(atob|unescape)\s*\(`)
	// A password input is flagged by type or by name: phishing kits
	// often use type="text" with name="password" to defeat browser
	// warnings.
	passwordFieldRe = regexp.MustCompile(`(?i)<input[^>]+(type|name)=["']?password`)
)

var contentKeywordFlags = []struct {
	flag     string
	patterns []string
}{
	{models.ContentFlagBillingInfo, []string{"credit card", "card number", "cvv", "billing address", "expiration date"}},
	{models.ContentFlagSensitiveID, []string{"social security", "ssn", "passport number", "driver's license", "national id"}},
	{models.ContentFlagGeolocation, []string{"navigator.geolocation", "getcurrentposition"}},
}

// HTTPProbe performs a single-hop-at-a-time, SSRF-guarded fetch of a
// URL, manually following redirects instead of delegating to the HTTP
// client's built-in policy, so every hop's resolved address can be
// checked against the blocklist before it is dialed.
type HTTPProbe struct {
	log      *logger.Logger
	timeout  time.Duration
	resolver Resolver
}

func NewHTTPProbe(l *logger.Logger, timeout time.Duration) *HTTPProbe {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &HTTPProbe{log: l, timeout: timeout, resolver: defaultResolver}
}

func (p *HTTPProbe) client() *http.Client {
	dialer := &net.Dialer{}
	return &http.Client{
		Timeout: p.timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
		Transport: &http.Transport{
			DialContext: dialer.DialContext,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}

// Check fetches rawURL, guarding every hop (including the first)
// against SSRF targets, capping the body at 50KB, and scanning the
// response for sensitive-content indicators.
func (p *HTTPProbe) Check(ctx context.Context, rawURL string) models.HTTPResult {
	result := models.HTTPResult{}

	current, err := url.Parse(rawURL)
	if err != nil {
		result.Error = models.HTTPErrInvalidURL
		return result
	}
	originalHost := current.Hostname()
	originalRegistrable := registrableOf(originalHost)

	client := p.client()
	redirectCount := 0

	for {
		// A redirect into a blocked range is not counted as a
		// completed redirect: the block happens before the hop's GET.
		host := current.Hostname()
		blocked, err := IsBlocked(ctx, host, p.resolver)
		if err != nil {
			result.Error = models.HTTPErrSSRFCheckFailed
			result.RedirectCount = completedRedirects(redirectCount)
			return result
		}
		if blocked {
			result.Error = models.HTTPErrSSRFBlocked
			result.RedirectCount = completedRedirects(redirectCount)
			return result
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, current.String(), nil)
		if err != nil {
			result.Error = models.HTTPErrInvalidURL
			return result
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", acceptHeader)
		req.Header.Set("Accept-Language", acceptLang)

		resp, err := client.Do(req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				result.Error = models.HTTPErrTimeout
			} else if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
				result.Error = models.HTTPErrTimeout
			} else if isTLSError(err) {
				result.Error = models.HTTPErrSSLVerifyFailed
			} else {
				result.Error = models.HTTPErrSiteUnreachable
			}
			return result
		}

		if loc := resp.Header.Get("Location"); isRedirectStatus(resp.StatusCode) && loc != "" {
			resp.Body.Close()
			redirectCount++
			if redirectCount > maxRedirects {
				result.Error = models.HTTPErrTooManyRedirects
				return result
			}
			next, err := current.Parse(loc)
			if err != nil {
				result.Error = models.HTTPErrInvalidURL
				return result
			}
			current = next
			continue
		}

		// Terminal response.
		status := resp.StatusCode
		result.StatusCode = &status
		result.FinalURL = current.String()
		result.RedirectCount = redirectCount
		result.Server = resp.Header.Get("Server")
		result.SchemeWarning = current.Scheme != "https"

		finalRegistrable := registrableOf(current.Hostname())
		if redirectCount > 0 && finalRegistrable != originalRegistrable && !isShortenerHost(originalHost) {
			result.RedirectDomainMismatch = true
		}

		if status == 200 && strings.Contains(strings.ToLower(resp.Header.Get("Content-Type")), "text/html") {
			body := readCapped(resp.Body, maxBodyBytes)
			result.ContentFlags = scanContent(body)
		}
		resp.Body.Close()
		return result
	}
}

func isRedirectStatus(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

func completedRedirects(count int) int {
	if count > 0 {
		return count - 1
	}
	return 0
}

func isTLSError(err error) bool {
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return true
	}
	return strings.Contains(err.Error(), "certificate")
}

func readCapped(r io.Reader, limit int64) []byte {
	b, _ := io.ReadAll(io.LimitReader(r, limit))
	return b
}

func scanContent(body []byte) []string {
	text := string(body)
	lower := strings.ToLower(text)
	var flags []string

	if passwordFieldRe.Match(body) {
		flags = append(flags, models.ContentFlagPasswordField)
	}
	if obfuscatedJSRe.Match(body) {
		flags = append(flags, models.ContentFlagObfuscatedJS)
	}
	if strings.Count(lower, "<iframe") > 3 {
		flags = append(flags, models.ContentFlagExcessiveIframes)
	}
	for _, group := range contentKeywordFlags {
		for _, kw := range group.patterns {
			if strings.Contains(lower, kw) {
				flags = append(flags, group.flag)
				break
			}
		}
	}
	return flags
}

// registrableOf and isShortenerHost are small local helpers that keep
// this package independent of the normalize/features packages.
// registrableOf takes the last two labels and does not consult the
// public suffix list; the orchestrator passes the already-normalized
// registrable domain to the probes that accept one.
func registrableOf(host string) string {
	host = strings.ToLower(host)
	parts := strings.Split(host, ".")
	if len(parts) <= 2 {
		return host
	}
	return strings.Join(parts[len(parts)-2:], ".")
}

func isShortenerHost(host string) bool {
	switch registrableOf(host) {
	case "bit.ly", "goo.gl", "tinyurl.com", "ow.ly", "t.co", "is.gd",
		"buff.ly", "adf.ly", "j.mp", "rb.gy", "cutt.ly", "tiny.cc":
		return true
	}
	return false
}
