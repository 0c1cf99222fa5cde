package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/helixml/compset/domain/calendar"
	"github.com/helixml/compset/domain/pricing"
	"golang.org/x/sync/errgroup"
)

// ErrSourceUnavailable indicates the remote pricing service answered no
// request successfully.
var ErrSourceUnavailable = errors.New("pricing source unavailable")

// Default HTTP source settings.
const (
	DefaultTimeout        = 2 * time.Second
	DefaultMaxConcurrency = 8
)

// HTTPSource fetches competitor prices from a remote pricing service, one
// request per hotel: GET {endpoint}/hotels/{id}/price?date=YYYY-MM-DD.
// A 404 means the service knows no price for that hotel.
type HTTPSource struct {
	endpoint       string
	client         *http.Client
	timeout        time.Duration
	maxConcurrency int
	logger         *slog.Logger
}

var _ pricing.Source = (*HTTPSource)(nil)

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		if c != nil {
			s.client = c
		}
	}
}

// WithTimeout bounds a whole CompetitorPrices call.
func WithTimeout(d time.Duration) HTTPOption {
	return func(s *HTTPSource) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithMaxConcurrency caps in-flight requests.
func WithMaxConcurrency(n int) HTTPOption {
	return func(s *HTTPSource) {
		if n > 0 {
			s.maxConcurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) HTTPOption {
	return func(s *HTTPSource) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewHTTPSource creates an HTTPSource for endpoint.
func NewHTTPSource(endpoint string, opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{
		endpoint:       strings.TrimRight(endpoint, "/"),
		client:         http.DefaultClient,
		timeout:        DefaultTimeout,
		maxConcurrency: DefaultMaxConcurrency,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type priceResponse struct {
	HotelID int64   `json:"hotel_id"`
	Date    string  `json:"date"`
	Price   float64 `json:"price"`
}

// CompetitorPrices fetches prices concurrently. Hotels whose request fails
// are left out; the call errors only when no request succeeded.
func (s *HTTPSource) CompetitorPrices(ctx context.Context, hotelIDs []int64, date time.Time) (map[int64]float64, error) {
	prices := make(map[int64]float64, len(hotelIDs))
	if len(hotelIDs) == 0 {
		return prices, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		mu       sync.Mutex
		answered int
		lastErr  error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrency)
	for _, id := range hotelIDs {
		g.Go(func() error {
			price, ok, err := s.fetch(gctx, id, date)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				lastErr = err
				s.logger.Debug("competitor price fetch failed", slog.Int64("hotel_id", id), slog.String("error", err.Error()))
				return nil
			}
			answered++
			if ok {
				prices[id] = price
			}
			return nil
		})
	}
	_ = g.Wait()

	if answered == 0 {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, lastErr)
	}
	return prices, nil
}

func (s *HTTPSource) fetch(ctx context.Context, hotelID int64, date time.Time) (float64, bool, error) {
	u := fmt.Sprintf("%s/hotels/%d/price?date=%s", s.endpoint, hotelID, url.QueryEscape(calendar.Format(date)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, false, fmt.Errorf("get price: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return 0, false, nil
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, false, fmt.Errorf("get price: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var pr priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return 0, false, fmt.Errorf("decode price: %w", err)
	}
	if pr.Price <= 0 {
		return 0, false, nil
	}
	return pr.Price, true, nil
}
