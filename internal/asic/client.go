// Package asic talks to the regulator's short-selling report pages and downloads.
package asic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/epeers/shortpositions/internal/metrics"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout   = 20 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// Client is an HTTP client for the regulator's landing page and CSV downloads
type Client struct {
	landingURL     string
	httpClient     *http.Client
	limiter        *rate.Limiter
	maxReportBytes int64
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithTimeout sets the per-request HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRateLimit sets the outbound request rate
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithHTTPClient replaces the underlying HTTP client (for testing)
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for the given landing page. Report URLs are
// passed in whole, so the client does not need the download host.
func NewClient(landingURL string, opts ...ClientOption) *Client {
	c := &Client{
		landingURL: landingURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter:        rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		maxReportBytes: MaxReportBytes,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FetchLandingPage downloads the listing page that links to the latest reports
func (c *Client) FetchLandingPage(ctx context.Context) ([]byte, error) {
	start := time.Now()
	resp, err := c.doRequest(ctx, http.MethodGet, c.landingURL, "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if err != nil {
		metrics.ObserveUpstream("landing", "error", start)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ObserveUpstream("landing", "error", start)
		return nil, &FetchError{URL: c.landingURL, StatusCode: resp.StatusCode, Reason: fmt.Sprintf("failed to read response: %v", err)}
	}

	metrics.ObserveUpstream("landing", "ok", start)
	log.Debugf("Landing page fetched, %d bytes", len(body))
	return body, nil
}

// FetchCSV downloads a report. Bodies smaller than MinReportBytes or larger
// than MaxReportBytes are rejected.
func (c *Client) FetchCSV(ctx context.Context, csvURL string) (string, error) {
	start := time.Now()
	resp, err := c.doRequest(ctx, http.MethodGet, csvURL, "text/csv,text/plain,*/*")
	if err != nil {
		metrics.ObserveUpstream("csv", "error", start)
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxReportBytes+1))
	if err != nil {
		metrics.ObserveUpstream("csv", "error", start)
		return "", &FetchError{URL: csvURL, StatusCode: resp.StatusCode, Reason: fmt.Sprintf("failed to read response: %v", err)}
	}

	if int64(len(body)) > c.maxReportBytes {
		metrics.ObserveUpstream("csv", "oversized", start)
		return "", &FetchError{URL: csvURL, StatusCode: resp.StatusCode, Reason: fmt.Sprintf("CSV file exceeds %d bytes", c.maxReportBytes)}
	}

	if len(body) < MinReportBytes {
		metrics.ObserveUpstream("csv", "undersized", start)
		return "", &FetchError{URL: csvURL, StatusCode: resp.StatusCode, Reason: "CSV file appears to be empty or too small"}
	}

	metrics.ObserveUpstream("csv", "ok", start)
	log.Debugf("CSV downloaded from %s, %d bytes", csvURL, len(body))
	return string(body), nil
}

// Exists reports whether csvURL answers a HEAD request successfully.
// A non-success status is (false, nil); only transport failures return an error.
func (c *Client) Exists(ctx context.Context, csvURL string) (bool, error) {
	start := time.Now()
	resp, err := c.doRequest(ctx, http.MethodHead, csvURL, "*/*")
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) && fe.StatusCode != 0 {
			metrics.ObserveUpstream("probe", "missing", start)
			return false, nil
		}
		metrics.ObserveUpstream("probe", "error", start)
		return false, err
	}
	resp.Body.Close()

	metrics.ObserveUpstream("probe", "ok", start)
	return true, nil
}

func (c *Client) doRequest(ctx context.Context, method, reqURL, accept string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{URL: reqURL, Reason: fmt.Sprintf("rate limit wait: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return nil, &FetchError{URL: reqURL, Reason: fmt.Sprintf("failed to create request: %v", err)}
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: reqURL, Reason: fmt.Sprintf("request failed: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &FetchError{URL: reqURL, StatusCode: resp.StatusCode, Reason: http.StatusText(resp.StatusCode)}
	}

	return resp, nil
}
