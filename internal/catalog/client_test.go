package catalog

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/microshop/orders-service/pkg/errors"
	"github.com/microshop/orders-service/pkg/httpclient"
)

func newTestClient(t *testing.T, baseURL string, timeout time.Duration) *HTTPClient {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	base := httpclient.New(httpclient.Config{
		Timeout:         timeout,
		MaxRetries:      0,
		MaxConnsPerHost: 10,
	})
	cb := httpclient.NewCircuitBreakerClient(base, httpclient.DefaultCircuitBreakerConfig("test-catalog"), logger)
	return NewHTTPClient(cb, baseURL, timeout, logger)
}

func TestValidateProducts_ReturnsConfirmedSubset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/products/validate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req struct {
			IDs []string `json:"ids"`
		}
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, []string{"prod-1", "prod-2"}, req.IDs)

		// Only prod-1 exists; prod-2 is silently absent.
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"prod-1","name":"Keyboard","price":1000}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 2*time.Second)

	products, err := client.ValidateProducts(context.Background(), []string{"prod-1", "prod-2"})
	require.NoError(t, err)

	require.Len(t, products, 1)
	assert.Equal(t, "prod-1", products[0].ID)
	assert.Equal(t, "Keyboard", products[0].Name)
	assert.Equal(t, int64(1000), products[0].Price)
}

func TestValidateProducts_EmptyCatalogResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 2*time.Second)

	products, err := client.ValidateProducts(context.Background(), []string{"prod-404"})
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestValidateProducts_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 2*time.Second)

	_, err := client.ValidateProducts(context.Background(), []string{"prod-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
}

func TestValidateProducts_StructuredNotFoundBodyIsUpstream(t *testing.T) {
	// A misrouted catalog answering 404 with a well-formed error envelope is
	// still a failed check, never "product does not exist".
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"NOT_FOUND","message":"route not found"}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 2*time.Second)

	_, err := client.ValidateProducts(context.Background(), []string{"prod-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, http.StatusBadGateway, apperrors.HTTPStatus(err))
}

func TestValidateProducts_StructuredBadRequestBodyIsUpstream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"INVALID_INPUT","message":"bad ids"}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 2*time.Second)

	_, err := client.ValidateProducts(context.Background(), []string{"prod-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
	assert.NotErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestValidateProducts_OpenCircuitIsServiceUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	base := httpclient.New(httpclient.Config{
		Timeout:         time.Second,
		MaxRetries:      0,
		MaxConnsPerHost: 10,
	})
	cbCfg := httpclient.DefaultCircuitBreakerConfig("test-catalog-open")
	cbCfg.MinRequests = 2
	cbCfg.Timeout = time.Minute
	cb := httpclient.NewCircuitBreakerClient(base, cbCfg, logger)
	client := NewHTTPClient(cb, server.URL, time.Second, logger)

	// Two server errors trip the breaker.
	for i := 0; i < 2; i++ {
		_, err := client.ValidateProducts(context.Background(), []string{"prod-1"})
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrUpstream)
	}

	_, err := client.ValidateProducts(context.Background(), []string{"prod-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
	assert.NotErrorIs(t, err, apperrors.ErrUpstream)
	assert.Equal(t, http.StatusServiceUnavailable, apperrors.HTTPStatus(err))
}

func TestValidateProducts_Unreachable(t *testing.T) {
	// Nothing is listening here.
	client := newTestClient(t, "http://127.0.0.1:1", 500*time.Millisecond)

	_, err := client.ValidateProducts(context.Background(), []string{"prod-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
}

func TestValidateProducts_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 50*time.Millisecond)

	_, err := client.ValidateProducts(context.Background(), []string{"prod-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
}

func TestValidateProducts_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": [{`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 2*time.Second)

	_, err := client.ValidateProducts(context.Background(), []string{"prod-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
}
