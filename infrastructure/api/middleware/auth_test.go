package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestWriteProtect_SafeMethodsPassWithoutKey(t *testing.T) {
	handler := WriteProtect(NewAuthConfigWithKeys([]string{"secret"}))(okHandler())

	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		w := serve(handler, httptest.NewRequest(method, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code, method)
	}
}

func TestWriteProtect_MutatingMethodsRequireKey(t *testing.T) {
	handler := WriteProtect(NewAuthConfigWithKeys([]string{"secret"}))(okHandler())

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		w := serve(handler, httptest.NewRequest(method, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, method)
		assert.Equal(t, "application/vnd.api+json", w.Header().Get("Content-Type"))

		req := httptest.NewRequest(method, "/", nil)
		req.Header.Set(APIKeyHeader, "secret")
		w = serve(handler, req)
		assert.Equal(t, http.StatusOK, w.Code, method)
	}
}

func TestWriteProtect_InvalidKeyRejected(t *testing.T) {
	handler := WriteProtect(NewAuthConfigWithKeys([]string{"secret"}))(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(APIKeyHeader, "wrong")
	w := serve(handler, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWriteProtect_DisabledWithoutKeys(t *testing.T) {
	config := NewAuthConfigWithKeys([]string{"", "  "})
	require.False(t, config.Enabled())
	handler := WriteProtect(config)(okHandler())

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete} {
		w := serve(handler, httptest.NewRequest(method, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code, method)
	}
}

func TestIdentity(t *testing.T) {
	var seen string
	capture := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	t.Run("required and missing", func(t *testing.T) {
		w := serve(Identity(true)(capture), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("required and present", func(t *testing.T) {
		seen = ""
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(UserIDHeader, "owner-1")
		w := serve(Identity(true)(capture), req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "owner-1", seen)
	})

	t.Run("optional and missing", func(t *testing.T) {
		seen = "stale"
		w := serve(Identity(false)(capture), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, seen)
	})
}
