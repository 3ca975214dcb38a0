// Package provider implements the remote pricing service client that fetches raw exchange rates.
package provider

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// TransferWise API endpoints.
const (
	ServiceHost        = "api.transferwise.com"
	SandboxServiceHost = "api.sandbox.transferwise.tech"
	ServicePath        = "/v1/rates"
)

var _ RatesFetcher = (*TransferwiseFetcher)(nil)

// TransferwiseOptions configures a TransferwiseFetcher.
type TransferwiseOptions struct {
	AccessKey      string
	Source         string
	UseSandbox     bool
	BaseURL        string // Replaces scheme and host of the live/sandbox endpoint when set.
	TLSVersion     uint16
	RaiseOnFailure bool
	Timeout        time.Duration
}

// TransferwiseFetcher fetches all rates for a source currency from the TransferWise API.
type TransferwiseFetcher struct {
	opts   TransferwiseOptions
	client *http.Client
	log    *zap.SugaredLogger
}

// NewTransferwiseFetcher creates a new TransferwiseFetcher with the given configuration.
func NewTransferwiseFetcher(opts TransferwiseOptions, logger *zap.SugaredLogger) *TransferwiseFetcher {
	if opts.TLSVersion == 0 {
		opts.TLSVersion = tls.VersionTLS12
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{MinVersion: opts.TLSVersion}

	return &TransferwiseFetcher{
		opts: opts,
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		log: logger,
	}
}

// ServiceHost returns the API host selected by the sandbox option.
func (f *TransferwiseFetcher) ServiceHost() string {
	if f.opts.UseSandbox {
		return SandboxServiceHost
	}
	return ServiceHost
}

// SourceURL builds the rates URL for the configured source currency.
func (f *TransferwiseFetcher) SourceURL() (string, error) {
	if f.opts.AccessKey == "" {
		return "", ErrMissingCredential
	}
	u := url.URL{
		Scheme:   "https",
		Host:     f.ServiceHost(),
		Path:     ServicePath,
		RawQuery: url.Values{"source": {f.opts.Source}}.Encode(),
	}
	if f.opts.BaseURL != "" {
		base, err := url.Parse(f.opts.BaseURL)
		if err != nil {
			return "", fmt.Errorf("invalid base url %q: %w", f.opts.BaseURL, err)
		}
		u.Scheme = base.Scheme
		u.Host = base.Host
	}
	return u.String(), nil
}

// FetchRates performs one authenticated GET and returns the response body unparsed.
// Transport failures are returned wrapped in ErrTransport when RaiseOnFailure is set,
// otherwise the EmptyDataset placeholder is returned.
func (f *TransferwiseFetcher) FetchRates(ctx context.Context) ([]byte, error) {
	reqURL, err := f.SourceURL()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("rates API request creation failed: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+f.opts.AccessKey)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return f.transportFailure(err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return f.transportFailure(err)
	}

	// The body of an error response is still handed back: it fails dataset
	// validation and sends the caller down the cache fallback.
	if resp.StatusCode != http.StatusOK {
		f.log.Warnw("Rates API returned non-OK status",
			"status", resp.StatusCode,
			"host", req.URL.Host,
			"body", truncate(string(body), 256))
	}

	return body, nil
}

func (f *TransferwiseFetcher) transportFailure(cause error) ([]byte, error) {
	if f.opts.RaiseOnFailure {
		return nil, fmt.Errorf("%w: %w", ErrTransport, cause)
	}
	f.log.Warnw("Rates API unreachable, continuing without rates", "error", cause)
	placeholder := make([]byte, len(EmptyDataset))
	copy(placeholder, EmptyDataset)
	return placeholder, nil
}

// ParseTLSVersion maps a configured TLS version name to its crypto/tls constant.
func ParseTLSVersion(name string) (uint16, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "TLS1.2", "TLSV1_2":
		return tls.VersionTLS12, nil
	case "TLS1.3", "TLSV1_3":
		return tls.VersionTLS13, nil
	default:
		return 0, fmt.Errorf("unsupported TLS version %q", name)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
