package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/helixml/compset"
	"github.com/helixml/compset/domain/geo"
	"github.com/helixml/compset/domain/property"
	"github.com/helixml/compset/infrastructure/api"
	"github.com/stretchr/testify/require"
)

const testVersion = "1.0.0"

func newTestClient(t *testing.T, opts ...compset.Option) *compset.Client {
	t.Helper()
	tmpDir := t.TempDir()
	opts = append([]compset.Option{
		compset.WithSQLite(filepath.Join(tmpDir, "test.db")),
		compset.WithDataDir(tmpDir),
		compset.WithoutBackground(),
	}, opts...)
	client, err := compset.New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func newTestHandler(t *testing.T, opts ...compset.Option) (*compset.Client, http.Handler) {
	t.Helper()
	client := newTestClient(t, opts...)
	return client, api.NewAPIServer(client, testVersion).Handler()
}

func seedProperty(t *testing.T, client *compset.Client, owner string, lat, lon float64) property.Property {
	t.Helper()
	loc, err := geo.NewLocation(lat, lon)
	require.NoError(t, err)
	stars := 4.0
	p, err := client.Properties.Save(context.Background(), property.NewProperty(owner, "Subject", &loc, property.Attributes{
		StarRating: &stars,
		Amenities:  []string{"wifi", "breakfast"},
	}))
	require.NoError(t, err)
	return p
}

func do(t *testing.T, handler http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), "body: %s", w.Body.String())
}
