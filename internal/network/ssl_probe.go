package network

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"time"

	"urlsentry/internal/models"
	"urlsentry/pkg/logger"
)

// SSLProbe inspects the TLS certificate presented on port 443 for the
// SSL leg of the network inspector.
type SSLProbe struct {
	log     *logger.Logger
	timeout time.Duration
}

func NewSSLProbe(l *logger.Logger, timeout time.Duration) *SSLProbe {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SSLProbe{log: l, timeout: timeout}
}

// Check dials hostname:443 with full certificate verification and
// reports issuer, validity window, and certificate age.
func (p *SSLProbe) Check(ctx context.Context, hostname string) models.SSLResult {
	result := models.SSLResult{}

	dialer := &net.Dialer{Timeout: p.timeout}
	conn, err := tls.DialWithDialer(dialer, "tcp", net.JoinHostPort(hostname, "443"), &tls.Config{
		ServerName: hostname,
		MinVersion: tls.VersionTLS12,
	})
	if err != nil {
		var certErr *tls.CertificateVerificationError
		if errors.As(err, &certErr) {
			result.Error = models.SSLErrVerificationFailed
		} else {
			result.Error = models.SSLErrConnectionFailed
		}
		return result
	}
	defer conn.Close()

	certs := conn.ConnectionState().PeerCertificates
	if len(certs) == 0 {
		result.Error = models.SSLErrEmptyCert
		return result
	}
	leaf := certs[0]

	result.Valid = true
	if len(leaf.Issuer.Organization) > 0 {
		result.Issuer = leaf.Issuer.Organization[0]
	} else {
		result.Issuer = leaf.Issuer.CommonName
	}

	now := time.Now()
	daysUntilExpiry := int(leaf.NotAfter.Sub(now).Hours() / 24)
	result.DaysUntilExpiry = &daysUntilExpiry

	certAgeDays := int(now.Sub(leaf.NotBefore).Hours() / 24)
	result.CertAgeDays = &certAgeDays

	isNew := certAgeDays < 7
	result.IsNewCert = &isNew

	return result
}
