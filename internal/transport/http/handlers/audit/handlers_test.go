package audithandler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"

	"staffclock/internal/domain/audit"
	"staffclock/internal/domain/auth"
	"staffclock/internal/transport/http/middleware"
)

type stubService struct {
	filter audit.Filter
	events []audit.Event
}

func (s *stubService) Count(_ context.Context, filter audit.Filter) (int, error) {
	s.filter = filter
	return len(s.events), nil
}

func (s *stubService) List(_ context.Context, filter audit.Filter, _ bool, _, _ int) ([]audit.Event, error) {
	s.filter = filter
	return s.events, nil
}

func serve(svc *stubService, path, role string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	NewHandler(svc).RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req = req.WithContext(middleware.WithUser(req.Context(), auth.UserContext{UserID: "u1", Role: role}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func sample() *stubService {
	return &stubService{events: []audit.Event{{
		ID:         1,
		ActorID:    "u1",
		Action:     audit.ActionMarkPaid,
		EntityType: "employee",
		EntityID:   "e1",
		CreatedAt:  time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC),
	}}}
}

func TestListEventsFilters(t *testing.T) {
	svc := sample()
	rec := serve(svc, "/audit/events?action=payout.mark_paid&actorId=u1", auth.RoleAdmin)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Total-Count") != "1" {
		t.Fatalf("unexpected total %q", rec.Header().Get("X-Total-Count"))
	}
	if svc.filter.Action != audit.ActionMarkPaid || svc.filter.ActorID != "u1" || svc.filter.EntityType != "" {
		t.Fatalf("unexpected filter %+v", svc.filter)
	}
}

func TestListEventsRequiresAuditPermission(t *testing.T) {
	rec := serve(sample(), "/audit/events", auth.RoleEmployee)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestExportEvents(t *testing.T) {
	rec := serve(sample(), "/audit/events/export", auth.RoleAdmin)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(exportSheet)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 2 || rows[1][2] != audit.ActionMarkPaid || rows[1][7] != "2024-03-15T08:00:00Z" {
		t.Fatalf("unexpected rows %v", rows)
	}
}
