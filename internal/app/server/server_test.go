package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"staffclock/internal/platform/config"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := config.New()
	cfg.DatabaseURL = "postgres://localhost/staffclock"
	cfg.JWTSecret = "test-secret"
	app, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return app
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected healthz response %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected a request id header")
	}

	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "staffclock_http_requests_total") {
		t.Fatalf("expected request metrics, got %d", rec.Code)
	}
}

func TestProtectedRoutesRequireIdentity(t *testing.T) {
	app := newTestApp(t)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/timesheet/record"},
		{http.MethodGet, "/api/v1/timesheet/summary"},
		{http.MethodGet, "/api/v1/payments"},
		{http.MethodPut, "/api/v1/payrate"},
		{http.MethodPost, "/api/v1/payout"},
		{http.MethodGet, "/api/v1/inquiries"},
		{http.MethodGet, "/api/v1/audit/events"},
	} {
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, strings.NewReader(`{}`)))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestMetricsCanBeDisabled(t *testing.T) {
	cfg := config.New()
	cfg.MetricsEnabled = false
	app, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 with metrics disabled, got %d", rec.Code)
	}
}

func TestAmountsEncodeAsNumbers(t *testing.T) {
	newTestApp(t)

	out, err := json.Marshal(map[string]decimal.Decimal{"payAmount": decimal.RequireFromString("150.50")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"payAmount":150.5}` {
		t.Fatalf("expected a bare number, got %s", out)
	}
}
