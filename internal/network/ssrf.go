// Package network implements the four concurrent probes of the network
// inspector (DNS, SSL, HTTP, WHOIS) plus the SSRF guard the HTTP probe
// consults before every hop.
package network

import (
	"context"
	"net"
)

// blockedRanges is the fixed SSRF blocklist: loopback, RFC 1918,
// link-local, CGNAT, benchmarking, documentation, multicast, and
// reserved ranges. Immutable at runtime, never mutated after init.
var blockedRanges = mustParseCIDRs([]string{
	"0.0.0.0/8",
	"10.0.0.0/8",
	"100.64.0.0/10",
	"127.0.0.0/8",
	"169.254.0.0/16", // includes AWS metadata 169.254.169.254
	"172.16.0.0/12",
	"192.0.0.0/24",
	"192.0.2.0/24",
	"192.168.0.0/16",
	"198.18.0.0/15",
	"198.51.100.0/24",
	"203.0.113.0/24",
	"224.0.0.0/4",
	"240.0.0.0/4",
	"255.255.255.255/32",
	"::1/128",
	"fc00::/7",
	"fe80::/10",
})

func mustParseCIDRs(cidrs []string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		_, n, err := net.ParseCIDR(c)
		if err != nil {
			panic("ssrf: invalid blocklist entry " + c)
		}
		nets = append(nets, n)
	}
	return nets
}

// Resolver abstracts DNS resolution so the SSRF guard is testable
// without real sockets. The DNS probe does not use it; it queries
// through its own DNS client.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

var defaultResolver Resolver = net.DefaultResolver

func ipBlocked(ip net.IP) bool {
	for _, n := range blockedRanges {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// IsBlocked implements is_blocked(host): literal IPs are checked
// directly; hostnames are resolved to all A/AAAA addresses and blocked
// if any resolved address lies in a blocked range. A resolution
// failure is reported as an error, never treated as "not blocked".
func IsBlocked(ctx context.Context, host string, resolver Resolver) (bool, error) {
	if resolver == nil {
		resolver = defaultResolver
	}
	if ip := net.ParseIP(host); ip != nil {
		return ipBlocked(ip), nil
	}

	addrs, err := resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return false, err
	}
	for _, a := range addrs {
		if ipBlocked(a.IP) {
			return true, nil
		}
	}
	return false, nil
}
