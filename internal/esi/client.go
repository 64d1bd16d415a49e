// Package esi fetches regional market orders from the EVE Swagger Interface
// and keeps the quote store populated.
package esi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/mselser95/eve-trade-arb/pkg/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public ESI endpoint.
	DefaultBaseURL = "https://esi.evetech.net/latest"

	// DefaultUserAgent identifies the loader to CCP.
	DefaultUserAgent = "eve-trade-arb/1.0"

	// DefaultRateLimit is requests per second across all regions.
	DefaultRateLimit = 20

	// pageConcurrency bounds parallel page downloads within one region.
	pageConcurrency = 4

	maxErrorBody = 512
)

// DecodeError is a response body that could not be parsed. It is not retried.
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Client is a rate-limited HTTP client for the ESI market endpoints.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	backoff    *Backoff
	logger     *zap.Logger
}

// ClientConfig holds ESI client configuration.
type ClientConfig struct {
	BaseURL   string
	UserAgent string
	RateLimit float64 // requests per second
	Timeout   time.Duration
	Backoff   BackoffConfig
	Logger    *zap.Logger
}

// NewClient creates a new ESI client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	rps := cfg.RateLimit
	if rps <= 0 {
		rps = DefaultRateLimit
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	backoffCfg := cfg.Backoff
	if backoffCfg.MaxAttempts == 0 {
		backoffCfg = DefaultBackoffConfig()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(rps), max(1, int(rps))),
		backoff: NewBackoff(backoffCfg, logger),
		logger:  logger,
	}
}

// FetchRegionOrders downloads every market order in a region, following the
// X-Pages header. Any page failing after retries fails the whole region.
func (c *Client) FetchRegionOrders(ctx context.Context, regionID int32) ([]types.MarketOrder, error) {
	start := time.Now()

	first, pages, err := c.fetchPageWithRetry(ctx, regionID, 1)
	if err != nil {
		return nil, fmt.Errorf("fetch region %d page 1: %w", regionID, err)
	}

	if pages <= 1 {
		c.logRegionFetched(regionID, 1, len(first), start)
		return first, nil
	}

	// Pages are collected into slots so the result keeps page order.
	slots := make([][]types.MarketOrder, pages)
	slots[0] = first

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pageConcurrency)

	for page := 2; page <= pages; page++ {
		g.Go(func() error {
			orders, _, err := c.fetchPageWithRetry(gctx, regionID, page)
			if err != nil {
				return fmt.Errorf("fetch region %d page %d: %w", regionID, page, err)
			}
			slots[page-1] = orders
			return nil
		})
	}

	err = g.Wait()
	if err != nil {
		return nil, err
	}

	total := 0
	for _, s := range slots {
		total += len(s)
	}

	orders := make([]types.MarketOrder, 0, total)
	for _, s := range slots {
		orders = append(orders, s...)
	}

	c.logRegionFetched(regionID, pages, len(orders), start)
	return orders, nil
}

func (c *Client) logRegionFetched(regionID int32, pages int, orders int, start time.Time) {
	c.logger.Debug("region-orders-fetched",
		zap.Int32("region-id", regionID),
		zap.Int("pages", pages),
		zap.Int("orders", orders),
		zap.Duration("duration", time.Since(start)))
}

func (c *Client) fetchPageWithRetry(ctx context.Context, regionID int32, page int) ([]types.MarketOrder, int, error) {
	var (
		orders []types.MarketOrder
		pages  int
	)

	err := c.backoff.Retry(ctx, func(ctx context.Context) error {
		var err error
		orders, pages, err = c.fetchPage(ctx, regionID, page)
		return err
	})

	return orders, pages, err
}

// fetchPage fetches one page and returns its orders and the total page count.
func (c *Client) fetchPage(ctx context.Context, regionID int32, page int) ([]types.MarketOrder, int, error) {
	err := c.limiter.Wait(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, 0, ctxErr
		}
		// The wait would outlast the deadline.
		return nil, 0, fmt.Errorf("rate limit wait: %w", context.DeadlineExceeded)
	}

	endpoint := fmt.Sprintf("%s/markets/%d/orders/", c.baseURL, regionID)

	params := url.Values{}
	params.Add("datasource", "tranquility")
	params.Add("order_type", "all")
	params.Add("page", strconv.Itoa(page))

	requestURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	RequestDurationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		RequestsTotal.WithLabelValues("transport_error").Inc()
		return nil, 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	RequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, 0, &types.APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   endpoint,
			Body:       string(body),
		}
	}

	var orders []types.MarketOrder
	err = json.NewDecoder(resp.Body).Decode(&orders)
	if err != nil {
		return nil, 0, &DecodeError{Endpoint: endpoint, Err: err}
	}

	pages := 1
	if p := resp.Header.Get("X-Pages"); p != "" {
		n, err := strconv.Atoi(p)
		if err == nil && n > 0 {
			pages = n
		}
	}

	return orders, pages, nil
}
