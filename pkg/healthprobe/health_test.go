package healthprobe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func probe(t *testing.T, handler http.HandlerFunc, path string) (int, HealthResponse) {
	t.Helper()

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, path, nil))

	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	return w.Code, resp
}

func TestHealth_AlwaysOK(t *testing.T) {
	hc := New()

	for _, ready := range []bool{false, true} {
		hc.SetReady(ready)
		hc.AddCheck("redis", func(context.Context) error { return errors.New("down") })

		status, resp := probe(t, hc.Health(), "/health")
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "healthy", resp.Status)
		assert.NotEmpty(t, resp.Uptime)
		assert.Empty(t, resp.Checks, "liveness never runs readiness checks")
	}
}

func TestHealth_UptimeIncreases(t *testing.T) {
	hc := New()

	_, first := probe(t, hc.Health(), "/health")
	time.Sleep(20 * time.Millisecond)
	_, second := probe(t, hc.Health(), "/health")

	d1, err := time.ParseDuration(first.Uptime)
	require.NoError(t, err)
	d2, err := time.ParseDuration(second.Uptime)
	require.NoError(t, err)
	assert.Greater(t, d2, d1)
}

func TestReady_Flag(t *testing.T) {
	tests := []struct {
		name       string
		sequence   []bool
		wantStatus int
		wantBody   string
	}{
		{name: "initially_not_ready", wantStatus: http.StatusServiceUnavailable, wantBody: "not_ready"},
		{name: "ready_after_set", sequence: []bool{true}, wantStatus: http.StatusOK, wantBody: "ready"},
		{name: "unset_on_shutdown", sequence: []bool{true, false}, wantStatus: http.StatusServiceUnavailable, wantBody: "not_ready"},
		{name: "ready_again", sequence: []bool{true, false, true}, wantStatus: http.StatusOK, wantBody: "ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := New()
			for _, ready := range tt.sequence {
				hc.SetReady(ready)
			}

			status, resp := probe(t, hc.Ready(), "/ready")
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantBody, resp.Status)
			if status != http.StatusOK {
				assert.Equal(t, "application is starting", resp.Message)
			}
		})
	}
}

func TestReady_Checks(t *testing.T) {
	hc := New()
	hc.SetReady(true)

	var redisErr error
	hc.AddCheck("reference-data", func(context.Context) error { return nil })
	hc.AddCheck("redis", func(context.Context) error { return redisErr })

	status, resp := probe(t, hc.Ready(), "/ready")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]string{"reference-data": "ok", "redis": "ok"}, resp.Checks)

	redisErr = errors.New("connection refused")

	status, resp = probe(t, hc.Ready(), "/ready")
	require.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "connection refused", resp.Checks["redis"])
	assert.Equal(t, "ok", resp.Checks["reference-data"])
	assert.Equal(t, "failing checks: redis", resp.Message)
}

func TestReady_FailingChecksSorted(t *testing.T) {
	hc := New()
	hc.SetReady(true)
	hc.AddCheck("redis", func(context.Context) error { return errors.New("down") })
	hc.AddCheck("reference-data", func(context.Context) error { return errors.New("empty") })

	status, resp := probe(t, hc.Ready(), "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "failing checks: redis, reference-data", resp.Message)
}

func TestReady_AddCheckReplaces(t *testing.T) {
	hc := New()
	hc.SetReady(true)
	hc.AddCheck("redis", func(context.Context) error { return errors.New("down") })
	hc.AddCheck("redis", func(context.Context) error { return nil })

	status, _ := probe(t, hc.Ready(), "/ready")
	assert.Equal(t, http.StatusOK, status)
}

func TestReady_ChecksSkippedWhileStarting(t *testing.T) {
	hc := New()

	var calls atomic.Int32
	hc.AddCheck("redis", func(context.Context) error {
		calls.Add(1)
		return nil
	})

	status, _ := probe(t, hc.Ready(), "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Zero(t, calls.Load())
}

func TestReady_CheckReceivesDeadline(t *testing.T) {
	hc := New()
	hc.SetReady(true)

	var hadDeadline bool
	hc.AddCheck("redis", func(ctx context.Context) error {
		_, hadDeadline = ctx.Deadline()
		return nil
	})

	probe(t, hc.Ready(), "/ready")
	assert.True(t, hadDeadline)
}

func TestHealthChecker_ConcurrentAccess(t *testing.T) {
	hc := New()
	hc.AddCheck("redis", func(context.Context) error { return nil })

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(3)
		go func() {
			defer wg.Done()
			hc.SetReady(i%2 == 0)
		}()
		go func() {
			defer wg.Done()
			w := httptest.NewRecorder()
			hc.Ready()(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
		}()
		go func() {
			defer wg.Done()
			hc.AddCheck("reference-data", func(context.Context) error { return nil })
		}()
	}
	wg.Wait()
}
