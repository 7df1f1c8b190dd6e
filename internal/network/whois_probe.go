package network

import (
	"context"
	"time"

	whoisparser "github.com/likexian/whois-parser"

	"github.com/likexian/whois"

	"urlsentry/internal/models"
	"urlsentry/pkg/logger"
)

// WHOISProbe queries domain registration data for the WHOIS leg of the
// network inspector.
type WHOISProbe struct {
	log     *logger.Logger
	client  *whois.Client
	timeout time.Duration
}

func NewWHOISProbe(l *logger.Logger, timeout time.Duration) *WHOISProbe {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WHOISProbe{log: l, client: whois.NewClient(), timeout: timeout}
}

// Check looks up registration data for the registrable domain and
// reports age and registrar. WHOIS parsing is brittle, so every lookup
// failure is soft: the result carries an error and trust scoring falls
// back to neutral.
func (p *WHOISProbe) Check(ctx context.Context, registrableDomain string) models.WHOISResult {
	result := models.WHOISResult{}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	done := make(chan struct {
		raw string
		err error
	}, 1)

	go func() {
		raw, err := p.client.Whois(registrableDomain)
		done <- struct {
			raw string
			err error
		}{raw, err}
	}()

	select {
	case <-ctx.Done():
		if ctx.Err() == context.Canceled {
			result.Error = models.WHOISErrCancelled
		} else {
			result.Error = models.WHOISErrTimeout
		}
		return result
	case r := <-done:
		if r.err != nil {
			result.Error = models.WHOISErrTimeout
			return result
		}
		parsed, err := whoisparser.Parse(r.raw)
		if err != nil {
			result.Error = models.WHOISErrTimeout
			return result
		}
		if parsed.Domain == nil || parsed.Domain.CreatedDate == "" {
			result.Error = models.WHOISErrTimeout
			return result
		}
		result.CreationDate = parsed.Domain.CreatedDate
		if parsed.Registrar != nil {
			result.Registrar = parsed.Registrar.Name
		}

		created, err := parseWHOISTime(parsed.Domain.CreatedDate)
		if err != nil {
			return result
		}
		ageDays := int(time.Since(created).Hours() / 24)
		result.AgeDays = &ageDays
		isNew := ageDays >= 0 && ageDays < 30
		result.IsNewDomain = &isNew
		return result
	}
}

func parseWHOISTime(s string) (time.Time, error) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	var lastErr error
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, lastErr
}
