package prefix

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Lookup resolves a namespace URI to a prefix through an external service.
// An empty prefix with a nil error means the service knows no prefix for the
// namespace; that outcome is cached like any other.
type Lookup interface {
	ReversePrefix(ctx context.Context, namespace string) (string, error)
}

// DefaultLookupURL is the prefix.cc reverse lookup endpoint.
const DefaultLookupURL = "https://prefix.cc/reverse"

// maxLookupBodyBytes bounds how much of a lookup response is read.
const maxLookupBodyBytes = 64 << 10

// HTTPLookup queries a prefix.cc-compatible reverse lookup service. The
// service answers `GET <base>?uri=<namespace>&format=json` with a one-entry
// JSON object mapping prefix to namespace.
type HTTPLookup struct {
	baseURL string
	client  *http.Client
}

// LookupOption configures an HTTPLookup.
type LookupOption func(*HTTPLookup)

// WithLookupURL overrides the lookup service base URL.
func WithLookupURL(base string) LookupOption {
	return func(l *HTTPLookup) {
		l.baseURL = base
	}
}

// WithLookupClient overrides the HTTP client.
func WithLookupClient(client *http.Client) LookupOption {
	return func(l *HTTPLookup) {
		l.client = client
	}
}

// NewHTTPLookup creates a reverse lookup against prefix.cc or a compatible
// service.
func NewHTTPLookup(options ...LookupOption) *HTTPLookup {
	l := &HTTPLookup{
		baseURL: DefaultLookupURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

// ReversePrefix implements Lookup. A 404 from the service means the
// namespace has no registered prefix and returns "" without error.
func (l *HTTPLookup) ReversePrefix(ctx context.Context, namespace string) (string, error) {
	query := url.Values{"uri": {namespace}, "format": {"json"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build lookup request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("lookup request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("lookup returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxLookupBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read lookup response: %w", err)
	}

	var entries map[string]string
	if err := json.Unmarshal(body, &entries); err != nil {
		return "", fmt.Errorf("decode lookup response: %w", err)
	}

	for prefix, ns := range entries {
		if ns == namespace {
			return prefix, nil
		}
	}
	// The service answered with unrelated namespaces; treat as unknown.
	return "", nil
}
