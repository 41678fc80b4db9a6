package shared

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParsePage(t *testing.T) {
	cases := []struct {
		query string
		want  Page
	}{
		{"", Page{Page: 1, Limit: 10}},
		{"page=3&limit=5", Page{Page: 3, Limit: 5}},
		{"page=0&limit=-2", Page{Page: 1, Limit: 10}},
		{"page=abc&limit=500", Page{Page: 1, Limit: 100}},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/?"+tc.query, nil)
		if got := ParsePage(r, 10, 100); got != tc.want {
			t.Fatalf("%q: expected %+v, got %+v", tc.query, tc.want, got)
		}
	}
}

func TestParsePagination(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?limit=900&offset=40", nil)
	got := ParsePagination(r, 20, 100)
	if got.Limit != 100 || got.Offset != 40 {
		t.Fatalf("unexpected pagination %+v", got)
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.7:5050"
	if got := ClientIP(r); got != "192.0.2.7" {
		t.Fatalf("expected socket address, got %q", got)
	}
	r.Header.Set("X-Forwarded-For", " 203.0.113.9 , 10.0.0.1")
	if got := ClientIP(r); got != "203.0.113.9" {
		t.Fatalf("expected first forwarded hop, got %q", got)
	}
}

func TestValidatorReject(t *testing.T) {
	v := NewValidator()
	v.Required("payRate", " ", "is required")
	v.Enum("payRateSchedule", "weekly", []string{"Hourly", "Daily"}, "must be Hourly or Daily")
	start, _ := v.Date("dateRange.startDate", "2024-02-01")
	end, _ := v.Date("dateRange.endDate", "2024-01-01")
	v.DateOrder("dateRange.startDate", start, "dateRange.endDate", end)

	rec := httptest.NewRecorder()
	if !v.Reject(rec, "req-1") {
		t.Fatal("expected rejection")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				Fields []ValidationIssue `json:"fields"`
			} `json:"details"`
		} `json:"error"`
		RequestID string `json:"requestId"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "validation_error" || body.RequestID != "req-1" {
		t.Fatalf("unexpected envelope %+v", body)
	}
	if len(body.Error.Details.Fields) != 4 || body.Error.Details.Fields[0].Field != "dateRange.endDate" {
		t.Fatalf("unexpected fields %+v", body.Error.Details.Fields)
	}
}
