package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/microshop/orders-service/internal/domain"
	apperrors "github.com/microshop/orders-service/pkg/errors"
	"github.com/microshop/orders-service/pkg/httpclient"
)

const serviceName = "catalog"

// Client validates product identifiers against the remote catalog service.
type Client interface {
	// ValidateProducts returns the subset of the requested products that
	// exist in the catalog. Missing ids are simply absent from the result;
	// detecting and reacting to gaps is the caller's responsibility.
	ValidateProducts(ctx context.Context, ids []string) ([]domain.Product, error)
}

// HTTPClient is the HTTP implementation of the catalog Client, calling the
// catalog service through a circuit breaker. Each call is single-shot with a
// bounded timeout; there is no retry at this layer.
type HTTPClient struct {
	client  *httpclient.CircuitBreakerClient
	baseURL string
	timeout time.Duration
	logger  *slog.Logger
}

// NewHTTPClient creates a catalog client against the given base URL.
func NewHTTPClient(client *httpclient.CircuitBreakerClient, baseURL string, timeout time.Duration, logger *slog.Logger) *HTTPClient {
	return &HTTPClient{
		client:  client,
		baseURL: baseURL,
		timeout: timeout,
		logger:  logger,
	}
}

type validateRequest struct {
	IDs []string `json:"ids"`
}

type validateResponse struct {
	Data []domain.Product `json:"data"`
}

// ValidateProducts sends a batch lookup to the catalog service. Any failure to
// complete the round trip (unreachable, timeout, non-200 status, malformed
// response) surfaces as an UpstreamError so callers can tell "product does
// not exist" apart from "could not check". An open circuit surfaces as
// ServiceUnavailable instead, signaling callers to back off.
func (c *HTTPClient) ValidateProducts(ctx context.Context, ids []string) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(validateRequest{IDs: ids})
	if err != nil {
		return nil, fmt.Errorf("marshal validate request: %w", err)
	}

	resp, err := c.client.Post(ctx, c.baseURL+"/api/v1/products/validate", "application/json", bytes.NewReader(body))
	if err != nil {
		c.logger.WarnContext(ctx, "catalog request failed",
			slog.Int("product_count", len(ids)),
			slog.String("error", err.Error()),
		)
		if errors.Is(err, httpclient.ErrCircuitOpen) {
			return nil, apperrors.ServiceUnavailable("catalog service temporarily unavailable")
		}
		return nil, apperrors.Upstream(serviceName, err)
	}
	defer func() { _ = resp.Body.Close() }()

	// The validate endpoint has exactly one success shape. A non-200 status
	// means the lookup could not be completed, whatever the body says; the
	// downstream's own error codes must not leak through as NotFound or
	// InvalidInput here.
	if resp.StatusCode != http.StatusOK {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, apperrors.Upstream(serviceName,
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(excerpt)))
	}

	var out validateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, apperrors.Upstream(serviceName, fmt.Errorf("decode validate response: %w", err))
	}

	return out.Data, nil
}
