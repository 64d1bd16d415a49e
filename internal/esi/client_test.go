package esi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/mselser95/eve-trade-arb/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fastBackoff() BackoffConfig {
	return BackoffConfig{
		InitialDelay:      time.Millisecond,
		MaxDelay:          5 * time.Millisecond,
		BackoffMultiplier: 2,
		JitterPercent:     0.1,
		MaxAttempts:       3,
	}
}

func newTestClient(baseURL string) *Client {
	return NewClient(ClientConfig{
		BaseURL:   baseURL,
		UserAgent: "eve-trade-arb-test",
		RateLimit: 1000,
		Backoff:   fastBackoff(),
		Logger:    zap.NewNop(),
	})
}

func pageOrders(page int, n int) []types.MarketOrder {
	orders := make([]types.MarketOrder, n)
	for i := range orders {
		orders[i] = types.MarketOrder{
			OrderID:      int64(page*1000 + i),
			TypeID:       34,
			Price:        float64(page) + float64(i)/100,
			VolumeRemain: 10,
			IsBuyOrder:   i%2 == 0,
		}
	}
	return orders
}

func TestClient_FetchRegionOrders_Pagination(t *testing.T) {
	var requests atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)

		assert.Equal(t, "/markets/10000002/orders/", r.URL.Path)
		assert.Equal(t, "all", r.URL.Query().Get("order_type"))
		assert.Equal(t, "eve-trade-arb-test", r.Header.Get("User-Agent"))

		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		assert.NoError(t, err)

		w.Header().Set("X-Pages", "3")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(pageOrders(page, 4))
	}))
	defer server.Close()

	orders, err := newTestClient(server.URL).FetchRegionOrders(context.Background(), 10000002)
	require.NoError(t, err)

	assert.Len(t, orders, 12)
	assert.Equal(t, int64(3), requests.Load())
	assert.Equal(t, int64(1000), orders[0].OrderID, "pages keep their order")
	assert.Equal(t, int64(3003), orders[11].OrderID)
}

func TestClient_FetchRegionOrders_SinglePageWithoutHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(pageOrders(1, 2))
	}))
	defer server.Close()

	orders, err := newTestClient(server.URL).FetchRegionOrders(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var requests atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprint(w, `{"error":"bad gateway"}`)
			return
		}
		_ = json.NewEncoder(w).Encode(pageOrders(1, 1))
	}))
	defer server.Close()

	orders, err := newTestClient(server.URL).FetchRegionOrders(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, int64(3), requests.Load())
}

func TestClient_GivesUpAfterMaxAttempts(t *testing.T) {
	var requests atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(420)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchRegionOrders(context.Background(), 1)
	require.Error(t, err)

	var apiErr *types.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 420, apiErr.StatusCode)
	assert.Equal(t, int64(3), requests.Load())
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var requests atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"Requested page does not exist!"}`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchRegionOrders(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
	assert.Equal(t, int64(1), requests.Load())
}

func TestClient_DoesNotRetryMalformedBody(t *testing.T) {
	var requests atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		fmt.Fprint(w, `[{"order_id": "x"`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchRegionOrders(context.Background(), 1)
	require.Error(t, err)

	var decodeErr *DecodeError
	assert.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, int64(1), requests.Load())
}

func TestClient_FailedLaterPageFailsRegion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Pages", "2")
		if r.URL.Query().Get("page") == "2" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_ = json.NewEncoder(w).Encode(pageOrders(1, 1))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchRegionOrders(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 2")
}

func TestBackoff_Retry(t *testing.T) {
	t.Run("stops on success", func(t *testing.T) {
		b := NewBackoff(fastBackoff(), zap.NewNop())
		calls := 0

		err := b.Retry(context.Background(), func(context.Context) error {
			calls++
			if calls < 2 {
				return &types.APIError{StatusCode: 503}
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("stops on context cancellation", func(t *testing.T) {
		cfg := fastBackoff()
		cfg.InitialDelay = time.Hour
		b := NewBackoff(cfg, zap.NewNop())

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		err := b.Retry(ctx, func(context.Context) error {
			return &types.APIError{StatusCode: 500}
		})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestBackoff_NextIsCapped(t *testing.T) {
	b := NewBackoff(BackoffConfig{
		InitialDelay:      time.Second,
		MaxDelay:          3 * time.Second,
		BackoffMultiplier: 2,
		MaxAttempts:       5,
	}, zap.NewNop())

	assert.Equal(t, 2*time.Second, b.next(time.Second))
	assert.Equal(t, 3*time.Second, b.next(2*time.Second))

	jittered := b.withJitter(time.Second)
	assert.Equal(t, time.Second, jittered, "zero jitter leaves delay unchanged")
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"server error", &types.APIError{StatusCode: 503}, true},
		{"error limit", fmt.Errorf("wrapped: %w", &types.APIError{StatusCode: 420}), true},
		{"not found", &types.APIError{StatusCode: 404}, false},
		{"decode", &DecodeError{Err: errors.New("eof")}, false},
		{"transport", errors.New("connection reset by peer"), true},
		{"cancelled", context.Canceled, false},
		{"deadline", fmt.Errorf("do request: %w", context.DeadlineExceeded), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}
