/*
handlers.go - HTTP handlers for the leave engine

PURPOSE:
  Exposes the lifecycle engine, balance ledger and projections via REST.
  Handles HTTP request/response, JSON serialization and input validation,
  and delegates everything else to the domain packages.

REQUEST FLOW:
  1. Decode and validate the body (go-playground/validator)
  2. Parse date strings
  3. Call the engine / projections
  4. Map the domain error taxonomy to HTTP status codes

ERROR HANDLING:
  400: validation errors, invalid RL dates
  404: unknown leave / employee / settings year
  409: insufficient balance, invalid state transition
  500: storage failures
  The error payload carries the kind and its parameters verbatim so the
  operator can correct the input.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/surajpratapsingh112/signal-office-management-sub000/calendar"
	"github.com/surajpratapsingh112/signal-office-management-sub000/leave"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine      *leave.Engine
	Projections *leave.Projections
	Calendar    *calendar.Calendar
	Directory   leave.Directory

	validate *validator.Validate
}

// NewHandler creates a new handler with the given dependencies.
func NewHandler(engine *leave.Engine, projections *leave.Projections, cal *calendar.Calendar, dir leave.Directory) *Handler {
	return &Handler{
		Engine:      engine,
		Projections: projections,
		Calendar:    cal,
		Directory:   dir,
		validate:    validator.New(),
	}
}

// =============================================================================
// LEAVE LIFECYCLE
// =============================================================================

// CreateLeave creates a new leave period.
// POST /api/leaves
func (h *Handler) CreateLeave(w http.ResponseWriter, r *http.Request) {
	var req CreateLeaveRequest
	if !h.decode(w, r, &req) {
		return
	}

	start, end, ok := h.parseSpan(w, req.StartDate, req.EndDate)
	if !ok {
		return
	}
	var perms []leave.Date
	for _, s := range req.PermissionDates {
		d, err := leave.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid permission date (use YYYY-MM-DD)", err)
			return
		}
		perms = append(perms, d)
	}

	rec, err := h.Engine.CreateLeave(r.Context(), leave.CreateLeaveInput{
		EmployeeID:      leave.EmployeeID(req.EmployeeID),
		Type:            leave.LeaveType(req.LeaveType),
		StartDate:       start,
		EndDate:         end,
		PermissionDates: perms,
		Remarks:         req.Remarks,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLeaveDTO(rec))
}

// GetLeave returns a single leave record.
// GET /api/leaves/{id}
func (h *Handler) GetLeave(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Engine.Leave(r.Context(), leave.LeaveID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTO(rec))
}

// ExtendLeave extends a casual-leave record.
// POST /api/leaves/{id}/extend
func (h *Handler) ExtendLeave(w http.ResponseWriter, r *http.Request) {
	var req ExtendLeaveRequest
	if !h.decode(w, r, &req) {
		return
	}

	rec, err := h.Engine.ExtendCL(r.Context(), leave.LeaveID(chi.URLParam(r, "id")), req.ExtendedDays, req.Reason)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTO(rec))
}

// AddMedicalRest attaches a medical-rest overlay to a CL record.
// POST /api/leaves/{id}/medical
func (h *Handler) AddMedicalRest(w http.ResponseWriter, r *http.Request) {
	var req AddMedicalRestRequest
	if !h.decode(w, r, &req) {
		return
	}
	asOf, err := leave.ParseDate(req.AsOf)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of date (use YYYY-MM-DD)", err)
		return
	}

	rec, err := h.Engine.AddMedicalRest(r.Context(), leave.LeaveID(chi.URLParam(r, "id")), req.MedicalDays, req.Reason, asOf)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTO(rec))
}

// ExtendMedical lengthens a pending medical rest.
// POST /api/leaves/{id}/medical/extend
func (h *Handler) ExtendMedical(w http.ResponseWriter, r *http.Request) {
	var req ExtendMedicalRequest
	if !h.decode(w, r, &req) {
		return
	}

	rec, err := h.Engine.ExtendMedical(r.Context(), leave.LeaveID(chi.URLParam(r, "id")), req.AdditionalDays, req.Reason)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTO(rec))
}

// ApproveMedical is the CRK approval step.
// POST /api/leaves/{id}/medical/approve
func (h *Handler) ApproveMedical(w http.ResponseWriter, r *http.Request) {
	var req ApproveMedicalRequest
	if !h.decode(w, r, &req) {
		return
	}

	rec, err := h.Engine.ApproveMedical(r.Context(), leave.LeaveID(chi.URLParam(r, "id")), leave.LeaveType(req.ConvertTo), req.Remarks)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTO(rec))
}

// MarkReturned closes a leave record.
// POST /api/leaves/{id}/return
func (h *Handler) MarkReturned(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Engine.MarkReturned(r.Context(), leave.LeaveID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTO(rec))
}

// UpdateDates corrects a record's span.
// PUT /api/leaves/{id}/dates
func (h *Handler) UpdateDates(w http.ResponseWriter, r *http.Request) {
	var req UpdateDatesRequest
	if !h.decode(w, r, &req) {
		return
	}
	start, end, ok := h.parseSpan(w, req.StartDate, req.EndDate)
	if !ok {
		return
	}

	rec, err := h.Engine.UpdateDates(r.Context(), leave.LeaveID(chi.URLParam(r, "id")), start, end, req.Remarks)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTO(rec))
}

// DeleteLeave removes a record and restores its balance debits.
// DELETE /api/leaves/{id}
func (h *Handler) DeleteLeave(w http.ResponseWriter, r *http.Request) {
	if err := h.Engine.DeleteLeave(r.Context(), leave.LeaveID(chi.URLParam(r, "id"))); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// BALANCES & SETTINGS
// =============================================================================

// GetBalance returns the balance for an employee and year.
// GET /api/employees/{id}/balance?year=2025
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid or missing year parameter", err)
		return
	}

	balance, err := h.Engine.GetBalance(r.Context(), leave.EmployeeID(chi.URLParam(r, "id")), year)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(balance))
}

// UpdateSettings upserts the annual entitlements for a year.
// PUT /api/settings/{year}
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	var req UpdateSettingsRequest
	if !h.decode(w, r, &req) {
		return
	}

	settings := leave.LeaveSettings{
		Year:                  year,
		CasualLeaveAnnual:     req.CasualLeaveAnnual,
		PermissionsAnnual:     req.PermissionsAnnual,
		RestrictedLeaveAnnual: req.RestrictedLeaveAnnual,
	}
	if err := h.Engine.UpdateSettings(r.Context(), settings); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// =============================================================================
// PROJECTIONS
// =============================================================================

// ListOnLeave lists employees currently away.
// GET /api/reports/on-leave?as_of=2025-01-12
func (h *Handler) ListOnLeave(w http.ResponseWriter, r *http.Request) {
	asOf := leave.Today()
	if s := r.URL.Query().Get("as_of"); s != "" {
		var err error
		if asOf, err = leave.ParseDate(s); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid as_of date (use YYYY-MM-DD)", err)
			return
		}
	}

	views, err := h.Projections.CurrentlyOnLeave(r.Context(), asOf)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toViewDTOs(views))
}

// ListArrivals lists expected arrivals in a window.
// GET /api/reports/arrivals?from=2025-01-10&to=2025-01-20
func (h *Handler) ListArrivals(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.parseSpan(w, r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if !ok {
		return
	}

	views, err := h.Projections.Arrivals(r.Context(), from, to)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toViewDTOs(views))
}

// ListPendingMedical lists medical rests awaiting CRK approval.
// GET /api/reports/pending-medical
func (h *Handler) ListPendingMedical(w http.ResponseWriter, r *http.Request) {
	views, err := h.Projections.PendingMedicalApprovals(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toViewDTOs(views))
}

// =============================================================================
// COLLABORATOR SURFACES (display data)
// =============================================================================

// ListEmployees returns the directory.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Directory.Employees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}
	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = *toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListHolidays returns a year's holiday calendar.
// GET /api/holidays?year=2025
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid or missing year parameter", err)
		return
	}
	holidays, err := h.Calendar.Holidays(r.Context(), year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list holidays", err)
		return
	}
	writeJSON(w, http.StatusOK, toHolidayDTOs(holidays))
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Request validation failed", err)
		return false
	}
	return true
}

func (h *Handler) parseSpan(w http.ResponseWriter, startStr, endStr string) (start, end leave.Date, ok bool) {
	var err error
	if start, err = leave.ParseDate(startStr); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start date (use YYYY-MM-DD)", err)
		return start, end, false
	}
	if end, err = leave.ParseDate(endStr); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end date (use YYYY-MM-DD)", err)
		return start, end, false
	}
	return start, end, true
}

// writeDomainError maps the engine's error taxonomy to HTTP responses,
// preserving the parameters structured errors carry.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: err.Error()}

	var insufficient *leave.InsufficientBalanceError
	var rlDates *leave.RLDateError
	var transition *leave.StateTransitionError

	switch {
	case errors.As(err, &insufficient):
		resp.Kind = "insufficient_balance"
		resp.Details = map[string]any{
			"category":  string(insufficient.Category),
			"required":  insufficient.Required.String(),
			"available": insufficient.Available.String(),
		}
		writeJSON(w, http.StatusConflict, resp)
	case errors.As(err, &rlDates):
		resp.Kind = "invalid_rl_date"
		dates := make([]string, len(rlDates.Offending))
		for i, d := range rlDates.Offending {
			dates[i] = d.String()
		}
		resp.Details = map[string]any{"offending_dates": dates}
		writeJSON(w, http.StatusBadRequest, resp)
	case errors.As(err, &transition):
		resp.Kind = "invalid_state_transition"
		resp.Details = map[string]any{
			"operation": transition.Operation,
			"reason":    transition.Reason,
		}
		writeJSON(w, http.StatusConflict, resp)
	case errors.Is(err, leave.ErrValidation):
		resp.Kind = "validation"
		writeJSON(w, http.StatusBadRequest, resp)
	case leave.IsNotFound(err):
		resp.Kind = "not_found"
		writeJSON(w, http.StatusNotFound, resp)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = map[string]any{"cause": err.Error()}
	}
	writeJSON(w, status, resp)
}
