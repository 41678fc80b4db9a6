package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorCountsDomainEvents(t *testing.T) {
	c := New()
	c.ClockEvent("TIME_IN")
	c.ClockEvent("TIME_IN")
	c.ClockEvent("TIME_OUT")
	c.RejectedTransition()
	c.Import("success", 4)
	c.Import("rejected", 0)
	c.MarkedPaid(3)
	c.MarkedPaid(0)

	if got := testutil.ToFloat64(c.clockEvents.WithLabelValues("TIME_IN")); got != 2 {
		t.Fatalf("expected 2 TIME_IN events, got %v", got)
	}
	if got := testutil.ToFloat64(c.rejectedTransitions); got != 1 {
		t.Fatalf("expected 1 rejected transition, got %v", got)
	}
	if got := testutil.ToFloat64(c.importedEvents); got != 4 {
		t.Fatalf("expected 4 imported events, got %v", got)
	}
	if got := testutil.ToFloat64(c.recordsMarkedPaid); got != 3 {
		t.Fatalf("expected 3 records marked paid, got %v", got)
	}
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	c.Record(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	c.ClockEvent("BREAK")
	c.Payout("Manual", "")
	c.Materialized(2)
}

func TestHandlerServesRequestMetrics(t *testing.T) {
	c := New()
	c.Record(http.MethodPost, "/api/v1/timesheet/record", http.StatusCreated, 20*time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "staffclock_http_requests_total") {
		t.Fatal("expected request counter in exposition")
	}
}

func TestGathererCountsPayoutSeries(t *testing.T) {
	c := New()
	c.Payout("Automatic", "Monthly")
	c.Payout("Automatic", "Monthly")
	c.Payout("Manual", "")

	n, err := testutil.GatherAndCount(c.Gatherer(), "staffclock_payout_computations_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 payout series, got %d", n)
	}
}
