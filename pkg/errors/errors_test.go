package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFound(t *testing.T) {
	err := NotFound("order", "abc-123")

	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.Contains(t, err.Message, "order")
	assert.Contains(t, err.Message, "abc-123")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNotFoundMsg(t *testing.T) {
	err := NotFoundMsg("product p-1 unavailable")

	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Equal(t, "product p-1 unavailable", err.Message)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInvalidInput(t *testing.T) {
	err := InvalidInput("order must contain at least one item")

	assert.Equal(t, "INVALID_INPUT", err.Code)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpstream(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Upstream("catalog", cause)

	assert.Equal(t, "UPSTREAM_ERROR", err.Code)
	assert.Equal(t, http.StatusBadGateway, err.Status)
	assert.ErrorIs(t, err, ErrUpstream)
	// The original cause stays reachable through the wrap chain.
	assert.ErrorIs(t, err, cause)
	// Upstream must never satisfy NotFound checks.
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestError_FormatsWithAndWithoutCause(t *testing.T) {
	withCause := Internal(errors.New("boom"))
	assert.Contains(t, withCause.Error(), "boom")

	noCause := &AppError{Code: "X", Message: "y"}
	assert.Equal(t, "X: y", noCause.Error())
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"app error", NotFound("order", "1"), http.StatusNotFound},
		{"wrapped app error", fmt.Errorf("ctx: %w", InvalidInput("bad")), http.StatusBadRequest},
		{"sentinel not found", ErrNotFound, http.StatusNotFound},
		{"sentinel invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"sentinel upstream", ErrUpstream, http.StatusBadGateway},
		{"sentinel unavailable", ErrServiceUnavail, http.StatusServiceUnavailable},
		{"unknown error", errors.New("mystery"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}
