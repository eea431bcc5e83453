// Package universalis provides a client for the Universalis market board API.
package universalis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client defines the Universalis market board operations.
type Client interface {
	// MarketBoard fetches aggregated market data for an item on a world.
	MarketBoard(ctx context.Context, worldID, itemID uint32) (*MarketBoard, error)
	// Close releases idle connections.
	Close()
}

// MarketBoard is the parsed market board response. Every numeric field is
// optional: a missing or null field stays nil.
type MarketBoard struct {
	ItemID                uint32    `json:"itemID"`
	WorldID               uint32    `json:"worldID"`
	LastUploadTime        *float64  `json:"lastUploadTime"`
	AveragePriceNQ        *float64  `json:"averagePriceNQ"`
	AveragePriceHQ        *float64  `json:"averagePriceHQ"`
	CurrentAveragePriceNQ *float64  `json:"currentAveragePriceNQ"`
	CurrentAveragePriceHQ *float64  `json:"currentAveragePriceHQ"`
	MinPriceNQ            *float64  `json:"minPriceNQ"`
	MinPriceHQ            *float64  `json:"minPriceHQ"`
	MaxPriceNQ            *float64  `json:"maxPriceNQ"`
	MaxPriceHQ            *float64  `json:"maxPriceHQ"`
	Listings              []Listing `json:"listings"`
}

// Listing is a single active listing.
type Listing struct {
	PricePerUnit *float64 `json:"pricePerUnit"`
	Quantity     *int     `json:"quantity"`
	HQ           bool     `json:"hq"`
}

// CurrentMinimumPrice returns the first listing's unit price. Listings are
// sorted cheapest first by the API.
func (m *MarketBoard) CurrentMinimumPrice() *float64 {
	if len(m.Listings) == 0 {
		return nil
	}
	return m.Listings[0].PricePerUnit
}

// Option configures the Universalis client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *httpClient) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithRateLimit sets the client-side request rate. A non-positive limit
// disables limiting.
func WithRateLimit(limit float64, burst int) Option {
	return func(c *httpClient) {
		if limit <= 0 {
			c.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(limit), burst)
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	baseURL   string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
}

// NewClient creates a new Universalis client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL:   "https://universalis.app/api",
		userAgent: "price-check/1.0",
		http: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(20, 20),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) MarketBoard(ctx context.Context, worldID, itemID uint32) (*MarketBoard, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "universalis: rate limiter wait")
		}
	}

	reqURL := fmt.Sprintf("%s/%d/%d", c.baseURL, worldID, itemID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "universalis: create request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "universalis: request item %d world %d", itemID, worldID)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "universalis: read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, ItemID: itemID, WorldID: worldID}
	}

	var result MarketBoard
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "universalis: unmarshal response")
	}

	return &result, nil
}

func (c *httpClient) Close() {
	c.http.CloseIdleConnections()
}

// StatusError is returned for any non-200 response.
type StatusError struct {
	StatusCode int
	ItemID     uint32
	WorldID    uint32
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("universalis: unexpected status %d for item %d world %d", e.StatusCode, e.ItemID, e.WorldID)
}

// HTTPStatus returns the response status code.
func (e *StatusError) HTTPStatus() int {
	return e.StatusCode
}
