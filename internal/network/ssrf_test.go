package network

import (
	"context"
	"errors"
	"net"
	"testing"
)

type fakeResolver struct {
	addrs []net.IPAddr
	err   error
}

func (f fakeResolver) LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error) {
	return f.addrs, f.err
}

func TestIsBlocked_LiteralPrivateIPIsBlocked(t *testing.T) {
	blocked, err := IsBlocked(context.Background(), "10.0.0.5", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !blocked {
		t.Error("expected a private 10.0.0.0/8 address to be blocked")
	}
}

func TestIsBlocked_LiteralLinkLocalMetadataIsBlocked(t *testing.T) {
	blocked, err := IsBlocked(context.Background(), "169.254.169.254", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !blocked {
		t.Error("expected the link-local metadata address to be blocked")
	}
}

func TestIsBlocked_LiteralPublicIPIsNotBlocked(t *testing.T) {
	blocked, err := IsBlocked(context.Background(), "93.184.216.34", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if blocked {
		t.Error("expected a public IP to not be blocked")
	}
}

func TestIsBlocked_HostnameResolvingToPrivateAddressIsBlocked(t *testing.T) {
	r := fakeResolver{addrs: []net.IPAddr{{IP: net.ParseIP("127.0.0.1")}}}
	blocked, err := IsBlocked(context.Background(), "internal.example", r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !blocked {
		t.Error("expected a hostname resolving to a loopback address to be blocked")
	}
}

func TestIsBlocked_HostnameResolvingToPublicAddressIsNotBlocked(t *testing.T) {
	r := fakeResolver{addrs: []net.IPAddr{{IP: net.ParseIP("93.184.216.34")}}}
	blocked, err := IsBlocked(context.Background(), "example.com", r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if blocked {
		t.Error("expected a hostname resolving to a public address to not be blocked")
	}
}

func TestIsBlocked_ResolutionFailureIsReportedNotSwallowed(t *testing.T) {
	r := fakeResolver{err: errors.New("no such host")}
	_, err := IsBlocked(context.Background(), "nonexistent.invalid", r)
	if err == nil {
		t.Error("expected a resolution failure to be surfaced as an error, not treated as not-blocked")
	}
}

func TestIsBlocked_IPv6LoopbackIsBlocked(t *testing.T) {
	blocked, err := IsBlocked(context.Background(), "::1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !blocked {
		t.Error("expected the IPv6 loopback address to be blocked")
	}
}
