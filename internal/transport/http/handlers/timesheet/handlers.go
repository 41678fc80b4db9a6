package timesheethandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"staffclock/internal/domain/audit"
	"staffclock/internal/domain/auth"
	"staffclock/internal/domain/core"
	"staffclock/internal/domain/logimport"
	"staffclock/internal/domain/timesheet"
	"staffclock/internal/transport/http/api"
	"staffclock/internal/transport/http/middleware"
	"staffclock/internal/transport/http/shared"
)

const (
	endpointImport     = "timesheet.import"
	endpointImportXLSX = "timesheet.import.xlsx"
	xlsxContentType    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type Service interface {
	RecordEvent(ctx context.Context, employeeID string, action timesheet.Action, at time.Time) (timesheet.ClockEvent, error)
	ImportLogs(ctx context.Context, employeeID string, entries []logimport.Entry) (timesheet.ImportResult, error)
	ListSummaries(ctx context.Context, employeeID string, page, limit int) (timesheet.SummaryPage, error)
	TodayView(ctx context.Context, employeeID string) (timesheet.TodayView, error)
	ExportSummaries(ctx context.Context, employeeID string, w io.Writer) error
}

type Auditor interface {
	Record(ctx context.Context, actorID, action, entityType, entityID, requestID, ip string, before, after any) error
}

type Config struct {
	DefaultPageSize int
	MaxPageSize     int
	MaxUploadBytes  int64
}

type Handler struct {
	Service     Service
	Normalizer  *logimport.Normalizer
	Employees   middleware.EmployeeDirectory
	Audit       Auditor
	Idempotency *middleware.IdempotencyStore
	Config      Config
	Now         func() time.Time
}

func NewHandler(service Service, normalizer *logimport.Normalizer, employees middleware.EmployeeDirectory, auditor Auditor, idem *middleware.IdempotencyStore, cfg Config) *Handler {
	return &Handler{
		Service:     service,
		Normalizer:  normalizer,
		Employees:   employees,
		Audit:       auditor,
		Idempotency: idem,
		Config:      cfg,
		Now:         time.Now,
	}
}

type recordPayload struct {
	Action string `json:"action"`
}

type importPayload struct {
	Logs []logimport.RawLog `json:"logs"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/timesheet", func(r chi.Router) {
		read := r.With(middleware.RequirePermission(auth.PermTimesheetRead), middleware.RequireEmployee(h.Employees))
		write := r.With(middleware.RequirePermission(auth.PermTimesheetWrite), middleware.RequireEmployee(h.Employees))

		write.Post("/record", h.handleRecord)
		write.Post("/import", h.handleImport)
		write.Post("/import/xlsx", h.handleImportXLSX)
		read.Get("/summary", h.handleSummary)
		read.Get("/today", h.handleToday)
		read.Get("/export", h.handleExport)
	})
}

func (h *Handler) handleRecord(w http.ResponseWriter, r *http.Request) {
	employee, _ := middleware.GetEmployee(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	var payload recordPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		failDecode(w, err, requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("action", payload.Action, "is required")
	action, err := timesheet.ParseAction(payload.Action)
	if payload.Action != "" && err != nil {
		v.Add("action", "must be one of TIME_IN, BREAK, TIME_OUT")
	}
	if v.Reject(w, requestID) {
		return
	}

	evt, err := h.Service.RecordEvent(r.Context(), employee.ID, action, h.Now())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Created(w, evt, requestID)
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	employee, _ := middleware.GetEmployee(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	body, err := io.ReadAll(r.Body)
	if err != nil {
		failDecode(w, err, requestID)
		return
	}

	idempotencyKey := r.Header.Get("Idempotency-Key")
	requestHash := middleware.RequestHash(body)
	if h.replay(w, r, employee.ID, endpointImport, idempotencyKey, requestHash) {
		return
	}

	var payload importPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid JSON payload", requestID)
		return
	}
	h.importRows(w, r, employee, payload.Logs, endpointImport, idempotencyKey, requestHash)
}

func (h *Handler) handleImportXLSX(w http.ResponseWriter, r *http.Request) {
	employee, _ := middleware.GetEmployee(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	if h.Config.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.Config.MaxUploadBytes)
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "workbook exceeds the upload limit", requestID)
			return
		}
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "file", Reason: "an .xlsx file is required"}})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		failDecode(w, err, requestID)
		return
	}

	idempotencyKey := r.Header.Get("Idempotency-Key")
	requestHash := middleware.RequestHash(content)
	if h.replay(w, r, employee.ID, endpointImportXLSX, idempotencyKey, requestHash) {
		return
	}

	logs, err := logimport.ReadWorkbook(bytes.NewReader(content))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.importRows(w, r, employee, logs, endpointImportXLSX, idempotencyKey, requestHash)
}

func (h *Handler) importRows(w http.ResponseWriter, r *http.Request, employee core.Employee, logs []logimport.RawLog, endpoint, idempotencyKey, requestHash string) {
	requestID := middleware.GetRequestID(r.Context())

	entries, err := h.Normalizer.Normalize(logs)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	result, err := h.Service.ImportLogs(r.Context(), employee.ID, entries)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if h.Audit != nil {
		if err := h.Audit.Record(r.Context(), employee.ID, audit.ActionTimesheetImport, "employee", employee.ID, requestID, shared.ClientIP(r), nil, result); err != nil {
			slog.Warn("audit timesheet.import failed", "err", err, "requestId", requestID)
		}
	}
	if idempotencyKey != "" {
		encoded, err := json.Marshal(result)
		if err != nil {
			slog.Warn("idempotency response marshal failed", "err", err)
		} else if err := h.Idempotency.Save(r.Context(), employee.ID, endpoint, idempotencyKey, requestHash, encoded); err != nil {
			slog.Warn("idempotency save failed", "err", err, "requestId", requestID)
		}
	}
	api.Created(w, result, requestID)
}

// replay answers a repeated Idempotency-Key with the stored response.
func (h *Handler) replay(w http.ResponseWriter, r *http.Request, actorID, endpoint, key, requestHash string) bool {
	if key == "" {
		return false
	}
	requestID := middleware.GetRequestID(r.Context())
	stored, found, err := h.Idempotency.Check(r.Context(), actorID, endpoint, key, requestHash)
	if errors.Is(err, middleware.ErrIdempotencyConflict) {
		api.Fail(w, http.StatusConflict, "idempotency_conflict", err.Error(), requestID)
		return true
	}
	if err != nil {
		slog.Warn("idempotency check failed", "err", err, "requestId", requestID)
	}
	if found {
		api.Created(w, json.RawMessage(stored), requestID)
		return true
	}
	return false
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	employee, _ := middleware.GetEmployee(r.Context())
	page := shared.ParsePage(r, h.Config.DefaultPageSize, h.Config.MaxPageSize)

	result, err := h.Service.ListSummaries(r.Context(), employee.ID, page.Page, page.Limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleToday(w http.ResponseWriter, r *http.Request) {
	employee, _ := middleware.GetEmployee(r.Context())

	view, err := h.Service.TodayView(r.Context(), employee.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, view, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	employee, _ := middleware.GetEmployee(r.Context())

	var buf bytes.Buffer
	if err := h.Service.ExportSummaries(r.Context(), employee.ID, &buf); err != nil {
		h.fail(w, r, err)
		return
	}
	api.Attachment(w, xlsxContentType, "timesheet.xlsx", buf.Bytes())
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	var transition *timesheet.TransitionError
	var logErr *timesheet.LogError

	switch {
	case errors.As(err, &transition):
		api.FailWithDetails(w, http.StatusBadRequest, "invalid_transition", err.Error(),
			map[string]string{"state": transition.From.String(), "action": transition.Action.String()}, requestID)
	case errors.Is(err, timesheet.ErrEventOutOfOrder):
		api.Fail(w, http.StatusBadRequest, "event_out_of_order", err.Error(), requestID)
	case errors.Is(err, timesheet.ErrDuplicateDay):
		api.Fail(w, http.StatusBadRequest, "duplicate_day", err.Error(), requestID)
	case errors.Is(err, timesheet.ErrTooManyLogs):
		api.Fail(w, http.StatusBadRequest, "too_many_logs", err.Error(), requestID)
	case errors.As(err, &logErr) && logErr.Date != "":
		api.FailWithDetails(w, http.StatusBadRequest, "validation_error", err.Error(), map[string]string{"date": logErr.Date}, requestID)
	case errors.Is(err, timesheet.ErrInvalidLog), errors.Is(err, timesheet.ErrInvalidAction), errors.Is(err, logimport.ErrAmbiguousDate):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), requestID)
	case errors.Is(err, logimport.ErrMissingColumn), errors.Is(err, logimport.ErrEmptyWorkbook):
		api.Fail(w, http.StatusBadRequest, "invalid_workbook", err.Error(), requestID)
	case errors.Is(err, core.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
	default:
		slog.Error("timesheet request failed", "err", err, "requestId", requestID, "path", r.URL.Path)
		api.Fail(w, http.StatusInternalServerError, "timesheet_failed", "internal error", requestID)
	}
}

func failDecode(w http.ResponseWriter, err error, requestID string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", requestID)
		return
	}
	api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid JSON payload", requestID)
}
