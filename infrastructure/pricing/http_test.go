package pricing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)

func priceServer(t *testing.T, prices map[string]float64) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "2026-10-14", r.URL.Query().Get("date"))
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 3 || parts[0] != "hotels" || parts[2] != "price" {
			http.Error(w, "bad path", http.StatusBadRequest)
			return
		}
		switch price, ok := prices[parts[1]]; {
		case parts[1] == "500":
			http.Error(w, "boom", http.StatusInternalServerError)
		case !ok:
			http.NotFound(w, r)
		default:
			_ = json.NewEncoder(w).Encode(priceResponse{Date: "2026-10-14", Price: price})
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestHTTPSource_FetchesEachHotel(t *testing.T) {
	srv, calls := priceServer(t, map[string]float64{"1": 80, "2": 110})
	src := NewHTTPSource(srv.URL+"/", WithMaxConcurrency(2))

	prices, err := src.CompetitorPrices(context.Background(), []int64{1, 2, 3, 500}, day)
	require.NoError(t, err)

	assert.Equal(t, map[int64]float64{1: 80, 2: 110}, prices)
	assert.Equal(t, int32(4), calls.Load())
}

func TestHTTPSource_AllFailedIsUnavailable(t *testing.T) {
	srv, _ := priceServer(t, nil)
	src := NewHTTPSource(srv.URL)

	_, err := src.CompetitorPrices(context.Background(), []int64{500}, day)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestHTTPSource_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	src := NewHTTPSource(srv.URL, WithTimeout(50*time.Millisecond))
	start := time.Now()
	_, err := src.CompetitorPrices(context.Background(), []int64{1, 2}, day)

	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.Less(t, time.Since(start), time.Second)
}

func TestHTTPSource_Empty(t *testing.T) {
	src := NewHTTPSource("http://127.0.0.1:1")
	prices, err := src.CompetitorPrices(context.Background(), nil, day)
	require.NoError(t, err)
	assert.Empty(t, prices)
}
