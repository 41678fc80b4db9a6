package paymentshandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"staffclock/internal/domain/audit"
	"staffclock/internal/domain/auth"
	"staffclock/internal/domain/payments"
	"staffclock/internal/transport/http/api"
	"staffclock/internal/transport/http/middleware"
	"staffclock/internal/transport/http/shared"
)

type Service interface {
	GetPayRate(ctx context.Context, employeeID string) (*payments.PayRate, error)
	SetPayRate(ctx context.Context, rate payments.PayRate) (payments.PayRate, int64, error)
	Materialize(ctx context.Context, employeeID string) (int64, error)
	Grouped(ctx context.Context, employeeID, filter string) (payments.GroupedView, error)
}

type Auditor interface {
	Record(ctx context.Context, actorID, action, entityType, entityID, requestID, ip string, before, after any) error
}

type Handler struct {
	Service   Service
	Employees middleware.EmployeeDirectory
	Audit     Auditor
}

func NewHandler(service Service, employees middleware.EmployeeDirectory, auditor Auditor) *Handler {
	return &Handler{Service: service, Employees: employees, Audit: auditor}
}

type payRatePayload struct {
	PayRate         *decimal.Decimal `json:"payRate"`
	PayRateSchedule string           `json:"payRateSchedule"`
	EffectiveDate   string           `json:"effectiveDate"`
}

type payRateResponse struct {
	PayRate      payments.PayRate `json:"payRate"`
	Materialized int64            `json:"materialized"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := r.With(middleware.RequirePermission(auth.PermPaymentsRead), middleware.RequireEmployee(h.Employees))
	write := r.With(middleware.RequirePermission(auth.PermPayRateWrite), middleware.RequireEmployee(h.Employees))

	read.Get("/payments", h.handleGrouped)
	read.Get("/payrate", h.handleGetPayRate)
	write.Put("/payrate", h.handleSetPayRate)
	write.Post("/payrate/calculate", h.handleCalculate)
}

func (h *Handler) handleGrouped(w http.ResponseWriter, r *http.Request) {
	employee, _ := middleware.GetEmployee(r.Context())

	view, err := h.Service.Grouped(r.Context(), employee.ID, r.URL.Query().Get("filter"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, view, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetPayRate(w http.ResponseWriter, r *http.Request) {
	employee, _ := middleware.GetEmployee(r.Context())

	rate, err := h.Service.GetPayRate(r.Context(), employee.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if rate == nil {
		api.Fail(w, http.StatusNotFound, "pay_rate_missing", "pay rate not set", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, rate, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSetPayRate(w http.ResponseWriter, r *http.Request) {
	employee, _ := middleware.GetEmployee(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	var payload payRatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid JSON payload", requestID)
		return
	}

	v := shared.NewValidator()
	if payload.PayRate == nil {
		v.Add("payRate", "is required")
	} else if !payload.PayRate.IsPositive() {
		v.Add("payRate", "must be greater than zero")
	}
	v.Required("payRateSchedule", payload.PayRateSchedule, "is required")
	v.Enum("payRateSchedule", payload.PayRateSchedule, []string{string(payments.ScheduleHourly), string(payments.ScheduleDaily)}, "must be Hourly or Daily")
	effective, _ := v.Date("effectiveDate", payload.EffectiveDate)
	if v.Reject(w, requestID) {
		return
	}

	before, err := h.Service.GetPayRate(r.Context(), employee.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rate, changed, err := h.Service.SetPayRate(r.Context(), payments.PayRate{
		EmployeeID:      employee.ID,
		PayRate:         *payload.PayRate,
		PayRateSchedule: schedule(payload.PayRateSchedule),
		EffectiveDate:   effective,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if h.Audit != nil {
		if err := h.Audit.Record(r.Context(), employee.ID, audit.ActionPayRateUpdate, "pay_rate", employee.ID, requestID, shared.ClientIP(r), before, rate); err != nil {
			slog.Warn("audit payrate.update failed", "err", err, "requestId", requestID)
		}
	}
	api.Success(w, payRateResponse{PayRate: rate, Materialized: changed}, requestID)
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	employee, _ := middleware.GetEmployee(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	changed, err := h.Service.Materialize(r.Context(), employee.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if h.Audit != nil {
		if err := h.Audit.Record(r.Context(), employee.ID, audit.ActionMaterialize, "employee", employee.ID, requestID, shared.ClientIP(r), nil, map[string]int64{"materialized": changed}); err != nil {
			slog.Warn("audit payments.materialize failed", "err", err, "requestId", requestID)
		}
	}
	api.Success(w, map[string]int64{"materialized": changed}, requestID)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, payments.ErrInvalidPayRate):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), requestID)
	case errors.Is(err, payments.ErrNoPayRate):
		api.Fail(w, http.StatusBadRequest, "pay_rate_missing", "set a pay rate before calculating payments", requestID)
	default:
		slog.Error("payments request failed", "err", err, "requestId", requestID, "path", r.URL.Path)
		api.Fail(w, http.StatusInternalServerError, "payments_failed", "internal error", requestID)
	}
}

// schedule maps the case-insensitive spellings onto the stored enumeration.
func schedule(value string) payments.Schedule {
	if strings.EqualFold(strings.TrimSpace(value), string(payments.ScheduleDaily)) {
		return payments.ScheduleDaily
	}
	return payments.ScheduleHourly
}
