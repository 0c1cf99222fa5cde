package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/helixml/compset/domain/errs"
	"github.com/helixml/compset/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError(t *testing.T) {
	err := NewAPIError(http.StatusNotFound, "property not found", nil)

	assert.Equal(t, http.StatusNotFound, err.Code())
	assert.Equal(t, "property not found", err.Message())
	assert.Equal(t, "api error 404: property not found", err.Error())

	cause := errors.New("underlying")
	wrapped := NewAPIError(http.StatusInternalServerError, "internal", cause)
	assert.Equal(t, "api error 500: internal: underlying", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)
}

func TestAuthenticationError(t *testing.T) {
	err := fmt.Errorf("request: %w", NewAuthenticationError("missing caller identity"))

	assert.ErrorIs(t, err, ErrAuthentication)
	var target *AuthenticationError
	assert.ErrorAs(t, err, &target)
}

func TestServerError(t *testing.T) {
	err := NewServerError(http.StatusServiceUnavailable, "database unavailable")

	assert.Equal(t, http.StatusServiceUnavailable, err.StatusCode())
	assert.Equal(t, "server error 503: database unavailable", err.Error())
	assert.ErrorIs(t, err, ErrServer)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", fmt.Errorf("%w: bad date", errs.ErrValidation), http.StatusBadRequest},
		{"not found", fmt.Errorf("get property: %w", database.ErrNotFound), http.StatusNotFound},
		{"conflict", errs.ErrConflict, http.StatusConflict},
		{"auth", NewAuthenticationError("x"), http.StatusUnauthorized},
		{"api", NewAPIError(http.StatusAccepted, "x", nil), http.StatusAccepted},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := StatusFor(tt.err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteError_CarriesCorrelationID(t *testing.T) {
	handler := CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, fmt.Errorf("%w: missing date", errs.ErrValidation), nil)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(CorrelationIDHeader, "corr-123")
	w := serve(handler, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "corr-123", w.Header().Get(CorrelationIDHeader))

	var body JSONAPIErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "corr-123", body.Errors[0].ID)
	assert.Equal(t, "Validation Error", body.Errors[0].Title)
	assert.Contains(t, body.Errors[0].Detail, "missing date")
}

func TestCorrelationID_Generated(t *testing.T) {
	var seen string
	handler := CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetCorrelationID(r.Context())
	}))

	w := serve(handler, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(CorrelationIDHeader))
}
