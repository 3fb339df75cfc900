package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Arcano33sa/suitea33-sub002/internal/dashboard"
	"github.com/Arcano33sa/suitea33-sub002/internal/store"
	"github.com/Arcano33sa/suitea33-sub002/pkg/config"
	"github.com/Arcano33sa/suitea33-sub002/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.NewDashboardMetrics(reg)
	svc := dashboard.New(dashboard.Deps{
		Accessor: store.New(nil, store.Options{Metrics: m}),
		Config:   config.Defaults(),
		Metrics:  m,
		Clock:    func() time.Time { return time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC) },
	})
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}
	return NewRouter(cfg, nil, stubPinger{}, nil, reg, svc)
}

func TestRouterHealthAndMetrics(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, rec.Code)
		}
		if rec.Header().Get("X-Request-Id") == "" {
			t.Fatalf("%s: expected request id header", path)
		}
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200 got %d", rec.Code)
	}
}

func TestRouterDashboardWithoutDatabase(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/events", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("events: expected 200 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"available":false`) {
		t.Fatalf("events: expected unavailable section, got %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/events/1/snapshot", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("snapshot: expected 503 got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/dashboard/sync", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("sync: expected 503 got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/overview", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("overview: expected 200 got %d", rec.Code)
	}
}
