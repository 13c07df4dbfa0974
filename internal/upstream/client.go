// Package upstream talks to the business API that owns the raw data. The
// gateway never persists that data; it fetches, normalizes, and serves.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/registrack/backoffice-gateway/internal/config"
	"github.com/registrack/backoffice-gateway/internal/domain"
	"github.com/registrack/backoffice-gateway/internal/observability"
)

// maxResponseBytes caps how much of an upstream body we will buffer. The
// business API returns list payloads, not bulk exports.
const maxResponseBytes = 8 << 20

// kindPaths maps each record family to the business-API route that serves
// its raw payload.
var kindPaths = map[domain.RecordKind]string{
	domain.KindServiceSummary:  "/api/ordenes-servicio",
	domain.KindInactiveService: "/api/servicios/inactivos",
	domain.KindRenewal:         "/api/renovaciones",
	domain.KindPayment:         "/api/pagos",
	domain.KindIncomeSummary:   "/api/reportes/ingresos",
}

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s returned status %d", e.Endpoint, e.StatusCode)
}

// Client fetches raw payloads from the business API. Responses are decoded
// loosely into any; shape interpretation belongs to the normalize package.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	authHeader string
}

func NewClient(cfg *config.Config) (*Client, error) {
	base, err := url.Parse(cfg.UpstreamBaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse upstream base url: %w", err)
	}
	return &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout:   cfg.UpstreamTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

// FetchRaw retrieves the raw payload for a record kind. The caller's bearer
// token is forwarded so the business API applies its own authorization.
func (c *Client) FetchRaw(ctx context.Context, kind domain.RecordKind, bearerToken string) (any, error) {
	path, ok := kindPaths[kind]
	if !ok {
		return nil, fmt.Errorf("no upstream route for record kind %q", kind)
	}

	endpoint := c.baseURL.JoinPath(path).String()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+bearerToken)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		observability.RecordUpstreamRequestDuration(ctx, path, "error", time.Since(start))
		return nil, fmt.Errorf("upstream request %s: %w", path, err)
	}
	defer resp.Body.Close()
	observability.RecordUpstreamRequestDuration(ctx, path, strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, &StatusError{Endpoint: path, StatusCode: resp.StatusCode}
	}

	var payload any
	dec := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode upstream payload %s: %w", path, err)
	}
	return payload, nil
}
