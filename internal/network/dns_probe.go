package network

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/miekg/dns"

	"urlsentry/internal/models"
	"urlsentry/pkg/logger"
)

// suspiciousNameserverProviders is the small substring blacklist used
// to flag free/anonymous DNS hosting commonly abused by fast-flux
// phishing infrastructure.
var suspiciousNameserverProviders = []string{"freedns", "afraid.org", "cloudns", "he.net"}

// DNSProbe resolves A/MX/NS records for the DNS leg of the network
// inspector.
type DNSProbe struct {
	log     *logger.Logger
	client  *dns.Client
	servers []string
}

// NewDNSProbe builds a DNS probe using the system resolver
// configuration (/etc/resolv.conf), falling back to a public resolver
// if none is configured.
func NewDNSProbe(l *logger.Logger) *DNSProbe {
	servers := []string{"8.8.8.8:53"}
	if cfg, err := dns.ClientConfigFromFile("/etc/resolv.conf"); err == nil && len(cfg.Servers) > 0 {
		servers = nil
		for _, s := range cfg.Servers {
			servers = append(servers, fmt.Sprintf("%s:%s", s, cfg.Port))
		}
	}
	return &DNSProbe{
		log:     l,
		client:  &dns.Client{Timeout: 5 * time.Second},
		servers: servers,
	}
}

func (p *DNSProbe) query(ctx context.Context, qname string, qtype uint16) (*dns.Msg, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(qname), qtype)
	m.RecursionDesired = true

	var lastErr error
	for _, server := range p.servers {
		resp, _, err := p.client.ExchangeContext(ctx, m, server)
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// Check resolves A, MX, and NS records for domain. The TTL recorded is
// whatever the resolver cache reports — usually the remaining TTL, not
// the authoritative one, which is why the very-low-TTL threshold is so
// tight.
func (p *DNSProbe) Check(ctx context.Context, domain, registrableDomain string) models.DNSResult {
	result := models.DNSResult{}

	aResp, err := p.query(ctx, domain, dns.TypeA)
	if err != nil {
		result.Error = models.DNSErrNoNameservers
		return result
	}
	switch aResp.Rcode {
	case dns.RcodeNameError:
		result.Error = models.DNSErrDomainNotFound
		return result
	case dns.RcodeServerFailure, dns.RcodeRefused:
		result.Error = models.DNSErrNoNameservers
		return result
	}

	var minTTL *uint32
	for _, rr := range aResp.Answer {
		if a, ok := rr.(*dns.A); ok {
			ttl := a.Hdr.Ttl
			if minTTL == nil || ttl < *minTTL {
				minTTL = &ttl
			}
		}
	}
	if minTTL != nil {
		result.Resolved = true
		ttlSeconds := int(*minTTL)
		result.TTLSeconds = &ttlSeconds
		if ttlSeconds < 5 {
			result.Flags = append(result.Flags, models.DNSFlagVeryLowTTL)
		}
	} else {
		result.Flags = append(result.Flags, models.DNSFlagNoARecord)
	}

	// MX — resolved on the registrable domain, not the sub-domain.
	mxResp, err := p.query(ctx, registrableDomain, dns.TypeMX)
	if err != nil || len(filterMX(mxResp)) == 0 {
		result.Flags = append(result.Flags, models.DNSFlagNoMXRecords)
	}

	// NS
	nsResp, err := p.query(ctx, registrableDomain, dns.TypeNS)
	if err == nil {
		var names []string
		for _, rr := range nsResp.Answer {
			if ns, ok := rr.(*dns.NS); ok {
				names = append(names, strings.ToLower(ns.Ns))
			}
		}
		joined := strings.Join(names, " ")
		for _, s := range suspiciousNameserverProviders {
			if strings.Contains(joined, s) {
				result.Flags = append(result.Flags, models.DNSFlagSuspiciousNameserver)
				break
			}
		}
	}

	return result
}

func filterMX(m *dns.Msg) []*dns.MX {
	if m == nil {
		return nil
	}
	var out []*dns.MX
	for _, rr := range m.Answer {
		if mx, ok := rr.(*dns.MX); ok {
			out = append(out, mx)
		}
	}
	return out
}
