package payouthandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"staffclock/internal/domain/audit"
	"staffclock/internal/domain/auth"
	"staffclock/internal/domain/core"
	"staffclock/internal/domain/payout"
	"staffclock/internal/transport/http/api"
	"staffclock/internal/transport/http/middleware"
	"staffclock/internal/transport/http/shared"
)

const markPaidEndpoint = "payout.mark_paid"

type Service interface {
	ComputePayout(ctx context.Context, employeeID string, req payout.Request) (payout.Result, error)
	MarkPaid(ctx context.Context, employeeID string, ids []int64) (int64, error)
}

type Auditor interface {
	Record(ctx context.Context, actorID, action, entityType, entityID, requestID, ip string, before, after any) error
}

type Handler struct {
	Service     Service
	Employees   middleware.EmployeeDirectory
	Audit       Auditor
	Idempotency *middleware.IdempotencyStore
	Now         func() time.Time
}

func NewHandler(service Service, employees middleware.EmployeeDirectory, auditor Auditor, idem *middleware.IdempotencyStore) *Handler {
	return &Handler{Service: service, Employees: employees, Audit: auditor, Idempotency: idem, Now: time.Now}
}

type markPaidPayload struct {
	Records []int64 `json:"records"`
}

type markPaidResponse struct {
	Updated int64 `json:"updated"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	run := r.With(middleware.RequirePermission(auth.PermPayoutRun), middleware.RequireEmployee(h.Employees))

	run.Post("/payout", h.handleCompute)
	run.Post("/payout/mark-paid", h.handleMarkPaid)
	run.Post("/payout/statement", h.handleStatement)
}

func (h *Handler) handleCompute(w http.ResponseWriter, r *http.Request) {
	employee, _ := middleware.GetEmployee(r.Context())

	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	result, err := h.Service.ComputePayout(r.Context(), employee.ID, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	employee, _ := middleware.GetEmployee(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "unable to read request body", requestID)
		return
	}
	var payload markPaidPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid JSON payload", requestID)
		return
	}

	idemKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	requestHash := middleware.RequestHash(raw)
	if idemKey != "" {
		stored, found, err := h.Idempotency.Check(r.Context(), employee.ID, markPaidEndpoint, idemKey, requestHash)
		if err != nil {
			if errors.Is(err, middleware.ErrIdempotencyConflict) {
				api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key reused with different payload", requestID)
				return
			}
			h.fail(w, r, err)
			return
		}
		if found {
			var replay markPaidResponse
			if err := json.Unmarshal(stored, &replay); err == nil {
				api.Success(w, replay, requestID)
				return
			}
			slog.Warn("idempotency replay unreadable", "endpoint", markPaidEndpoint, "requestId", requestID)
		}
	}

	updated, err := h.Service.MarkPaid(r.Context(), employee.ID, payload.Records)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response := markPaidResponse{Updated: updated}

	if idemKey != "" {
		if encoded, err := json.Marshal(response); err == nil {
			if err := h.Idempotency.Save(r.Context(), employee.ID, markPaidEndpoint, idemKey, requestHash, encoded); err != nil {
				slog.Warn("idempotency save failed", "err", err, "requestId", requestID)
			}
		}
	}
	if h.Audit != nil {
		if err := h.Audit.Record(r.Context(), employee.ID, audit.ActionMarkPaid, "employee", employee.ID, requestID, shared.ClientIP(r), payload, response); err != nil {
			slog.Warn("audit payout.mark_paid failed", "err", err, "requestId", requestID)
		}
	}
	api.Success(w, response, requestID)
}

func (h *Handler) handleStatement(w http.ResponseWriter, r *http.Request) {
	employee, _ := middleware.GetEmployee(r.Context())

	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	result, err := h.Service.ComputePayout(r.Context(), employee.ID, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := payout.RenderStatement(&buf, employee, req, result, h.Now()); err != nil {
		h.fail(w, r, err)
		return
	}
	api.Attachment(w, "application/pdf", statementName(employee, h.Now()), buf.Bytes())
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (payout.Request, bool) {
	requestID := middleware.GetRequestID(r.Context())
	var req payout.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid JSON payload", requestID)
		return payout.Request{}, false
	}

	if req.Method == payout.MethodManual && req.DateRange != nil {
		v := shared.NewValidator()
		start, startOK := v.Date("dateRange.startDate", req.DateRange.StartDate)
		end, endOK := v.Date("dateRange.endDate", req.DateRange.EndDate)
		if startOK && endOK {
			v.DateOrder("dateRange.startDate", start, "dateRange.endDate", end)
		}
		if v.Reject(w, requestID) {
			return payout.Request{}, false
		}
	}
	return req, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, payout.ErrInvalidRequest):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), requestID)
	case errors.Is(err, payout.ErrNoRecords):
		api.Fail(w, http.StatusBadRequest, "no_records", "no payment records selected", requestID)
	default:
		slog.Error("payout request failed", "err", err, "requestId", requestID, "path", r.URL.Path)
		api.Fail(w, http.StatusInternalServerError, "payout_failed", "internal error", requestID)
	}
}

func statementName(employee core.Employee, at time.Time) string {
	name := employee.EmployeeNo
	if name == "" {
		name = employee.ID
	}
	return "payout-" + name + "-" + at.Format("20060102") + ".pdf"
}
