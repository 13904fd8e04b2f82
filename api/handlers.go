/*
handlers.go - HTTP API handlers for the payroll engine

PURPOSE:
  Exposes the attendance and payroll engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to store, payrun and
  report.

ENDPOINTS:
  Employees:
    GET    /api/employees                        List (?status=Regular&q=garcia)
    POST   /api/employees                        Create employee (409 if the id exists)
    GET    /api/employees/{id}                   Get employee
    PUT    /api/employees/{id}                   Replace employee
    DELETE /api/employees/{id}                   Delete employee with attendance and payroll

  Attendance:
    POST   /api/employees/{id}/attendance        Record days (upsert per date)
    GET    /api/employees/{id}/attendance        Evaluations + summary (?start=&end=)
    GET    /api/employees/{id}/attendance.xlsx   Same, as a spreadsheet
    POST   /api/attendance/import                XLSX upload (multipart "file" or raw body)
    POST   /api/evaluate                         Evaluate one day without storing it

  Payroll:
    POST   /api/employees/{id}/payroll           Compute + persist one period
    GET    /api/employees/{id}/payroll           Payroll history
    POST   /api/payroll/run                      Compute + persist for many employees
    GET    /api/payroll                          Records + totals for a period (?start=&end=)
    GET    /api/payroll/register.xlsx            Payroll register (?start=&end=)

  Policy:
    GET    /api/policy                           Active shift + deduction rules
    PUT    /api/policy                           Replace the active policy

ARCHITECTURE:
  Handler holds the store and the active policy. Each payroll request builds
  a payrun.Runner from the policy in force at that moment, so PUT /api/policy
  never affects a run already in flight.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors (engine client errors, invalid employee, bad sheet)
  - 404: Employee not found
  - 409: Employee id already taken
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo data loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/motorph/payroll-engine/deductions"
	"github.com/motorph/payroll-engine/engine"
	"github.com/motorph/payroll-engine/factory"
	"github.com/motorph/payroll-engine/payrun"
	"github.com/motorph/payroll-engine/report"
	"github.com/motorph/payroll-engine/store"
	"github.com/xuri/excelize/v2"
)

// maxUpload bounds attendance spreadsheet uploads.
const maxUpload = 10 << 20

var (
	errDuplicate = errors.New("employee already exists")
	errInvalidID = errors.New("invalid employee id")
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store         store.Store
	PolicyFactory *factory.PolicyFactory
	Workers       int

	mu     sync.RWMutex
	policy *factory.Policy

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a handler. A nil policy selects the standard MotorPH
// policy: 08:00-17:00 shift with statutory deductions.
func NewHandler(st store.Store, policy *factory.Policy) *Handler {
	if policy == nil {
		policy = &factory.Policy{
			Name:  "standard",
			Shift: engine.DefaultShift(),
			Scale: engine.DefaultScale,
			Rules: deductions.Standard(),
		}
	}
	return &Handler{
		Store:         st,
		PolicyFactory: factory.NewPolicyFactory(),
		policy:        policy,
	}
}

// Policy returns the active policy.
func (h *Handler) Policy() *factory.Policy {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.policy
}

// SetPolicy replaces the active policy.
func (h *Handler) SetPolicy(p *factory.Policy) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.policy = p
}

// Runner builds a pay-run runner for the active policy. It does not record;
// handlers persist through RecordPayroll to return stored ids.
func (h *Handler) Runner() *payrun.Runner {
	p := h.Policy()
	return &payrun.Runner{
		Directory:  h.Store,
		Attendance: h.Store,
		Evaluator:  p.Evaluator(),
		Computer:   p.Computer(),
		Rules:      p.Rules,
		Workers:    h.Workers,
	}
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns employees, optionally filtered by status and name.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	employees, err := h.Store.ListEmployees(r.Context(), store.EmployeeFilter{
		Status: q.Get("status"),
		Query:  q.Get("q"),
	})
	if err != nil {
		fail(w, "Failed to list employees", err)
		return
	}
	if employees == nil {
		employees = []store.Employee{}
	}
	writeJSON(w, http.StatusOK, employees)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := employeeID(r)
	if err != nil {
		fail(w, "Invalid employee id", err)
		return
	}
	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		fail(w, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, emp)
}

// CreateEmployee creates a new employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req EmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	emp, err := req.toEmployee()
	if err != nil {
		fail(w, "Invalid employee", err)
		return
	}

	ctx := r.Context()
	if _, err := h.Store.GetEmployee(ctx, emp.ID); err == nil {
		fail(w, "Employee already exists", fmt.Errorf("%w: %d", errDuplicate, emp.ID))
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		fail(w, "Failed to check employee", err)
		return
	}

	if err := h.Store.SaveEmployee(ctx, emp); err != nil {
		fail(w, "Failed to create employee", err)
		return
	}
	saved, err := h.Store.GetEmployee(ctx, emp.ID)
	if err != nil {
		fail(w, "Failed to load employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// UpdateEmployee replaces an existing employee. The path id wins over the body.
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := employeeID(r)
	if err != nil {
		fail(w, "Invalid employee id", err)
		return
	}
	var req EmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.ID = id
	emp, err := req.toEmployee()
	if err != nil {
		fail(w, "Invalid employee", err)
		return
	}

	ctx := r.Context()
	if _, err := h.Store.GetEmployee(ctx, id); err != nil {
		fail(w, "Failed to get employee", err)
		return
	}
	if err := h.Store.SaveEmployee(ctx, emp); err != nil {
		fail(w, "Failed to update employee", err)
		return
	}
	saved, err := h.Store.GetEmployee(ctx, id)
	if err != nil {
		fail(w, "Failed to load employee", err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// DeleteEmployee removes an employee and everything recorded for them.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := employeeID(r)
	if err != nil {
		fail(w, "Invalid employee id", err)
		return
	}
	if err := h.Store.DeleteEmployee(r.Context(), id); err != nil {
		fail(w, "Failed to delete employee", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

// SaveAttendance records one or more days for an employee in one batch.
func (h *Handler) SaveAttendance(w http.ResponseWriter, r *http.Request) {
	id, err := employeeID(r)
	if err != nil {
		fail(w, "Invalid employee id", err)
		return
	}
	var req SaveAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(req.Entries) == 0 {
		writeError(w, http.StatusBadRequest, "No attendance entries", nil)
		return
	}

	entries := make([]engine.AttendanceEntry, len(req.Entries))
	for i, er := range req.Entries {
		entry, err := er.toEntry(id)
		if err != nil {
			fail(w, fmt.Sprintf("Invalid entry %d", i), err)
			return
		}
		entries[i] = entry
	}

	if err := h.Store.SaveAttendanceBatch(r.Context(), entries); err != nil {
		fail(w, "Failed to save attendance", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"saved": len(entries)})
}

// GetAttendance evaluates the employee's attendance over ?start=&end=.
func (h *Handler) GetAttendance(w http.ResponseWriter, r *http.Request) {
	agg, ok := h.summarize(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toAttendanceResponse(agg))
}

// GetAttendanceSheet is GetAttendance as an XLSX download.
func (h *Handler) GetAttendanceSheet(w http.ResponseWriter, r *http.Request) {
	agg, ok := h.summarize(w, r)
	if !ok {
		return
	}
	f, err := report.AttendanceSheet(agg)
	if err != nil {
		fail(w, "Failed to build attendance sheet", err)
		return
	}
	writeXLSX(w, f, fmt.Sprintf("attendance-%d-%s_%s.xlsx", agg.EmployeeID, agg.Period.Start, agg.Period.End))
}

func (h *Handler) summarize(w http.ResponseWriter, r *http.Request) (engine.PeriodAggregate, bool) {
	id, err := employeeID(r)
	if err != nil {
		fail(w, "Invalid employee id", err)
		return engine.PeriodAggregate{}, false
	}
	period, err := periodFromQuery(r)
	if err != nil {
		fail(w, "Invalid period", err)
		return engine.PeriodAggregate{}, false
	}
	ctx := r.Context()
	if _, err := h.Store.GetEmployee(ctx, id); err != nil {
		fail(w, "Failed to get employee", err)
		return engine.PeriodAggregate{}, false
	}
	agg, err := h.Runner().Summarize(ctx, id, period)
	if err != nil {
		fail(w, "Failed to evaluate attendance", err)
		return engine.PeriodAggregate{}, false
	}
	return agg, true
}

// ImportAttendance stores every row of an uploaded attendance workbook, all
// or nothing.
func (h *Handler) ImportAttendance(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)

	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		file, _, err := r.FormFile("file")
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				fail(w, "Upload too large", err)
				return
			}
			writeError(w, http.StatusBadRequest, "Missing file upload", err)
			return
		}
		defer file.Close()
		src = file
	}

	entries, err := report.ReadAttendance(src)
	if err != nil {
		fail(w, "Failed to read attendance sheet", err)
		return
	}
	if err := h.Store.SaveAttendanceBatch(r.Context(), entries); err != nil {
		fail(w, "Failed to save attendance", err)
		return
	}

	seen := make(map[engine.EmployeeID]bool)
	ids := []engine.EmployeeID{}
	for _, e := range entries {
		if !seen[e.EmployeeID] {
			seen[e.EmployeeID] = true
			ids = append(ids, e.EmployeeID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	writeJSON(w, http.StatusCreated, ImportResponse{Imported: len(entries), Employees: ids})
}

// Evaluate runs the daily evaluator on one entry without touching the store.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	entry, err := req.toEntry(req.EmployeeID)
	if err != nil {
		fail(w, "Invalid entry", err)
		return
	}

	evaluator := h.Policy().Evaluator()
	if req.ShiftStart != "" || req.ShiftEnd != "" {
		custom, err := h.PolicyFactory.FromJSON(factory.PolicyJSON{
			Shift: &factory.ShiftJSON{Start: req.ShiftStart, End: req.ShiftEnd},
		})
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid shift", err)
			return
		}
		evaluator = custom.Evaluator()
	}

	day, err := evaluator.Evaluate(entry)
	if err != nil {
		fail(w, "Failed to evaluate", err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

// =============================================================================
// PAYROLL HANDLERS
// =============================================================================

// RunEmployeePayroll computes and persists one employee's payroll.
func (h *Handler) RunEmployeePayroll(w http.ResponseWriter, r *http.Request) {
	id, err := employeeID(r)
	if err != nil {
		fail(w, "Invalid employee id", err)
		return
	}
	var req PeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	period, err := req.toPeriod()
	if err != nil {
		fail(w, "Invalid period", err)
		return
	}

	ctx := r.Context()
	rec, err := h.Runner().Run(ctx, id, period)
	if err != nil {
		fail(w, "Failed to compute payroll", err)
		return
	}
	entry, err := h.Store.RecordPayroll(ctx, rec)
	if err != nil {
		fail(w, "Failed to save payroll", err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// ListEmployeePayroll returns an employee's payroll history.
func (h *Handler) ListEmployeePayroll(w http.ResponseWriter, r *http.Request) {
	id, err := employeeID(r)
	if err != nil {
		fail(w, "Invalid employee id", err)
		return
	}
	ctx := r.Context()
	if _, err := h.Store.GetEmployee(ctx, id); err != nil {
		fail(w, "Failed to get employee", err)
		return
	}
	entries, err := h.Store.ListPayroll(ctx, id)
	if err != nil {
		fail(w, "Failed to list payroll", err)
		return
	}
	if entries == nil {
		entries = []store.PayrollEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// RunPayroll computes and persists a period for many employees in parallel.
func (h *Handler) RunPayroll(w http.ResponseWriter, r *http.Request) {
	var req RunPayrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	period, err := req.toPeriod()
	if err != nil {
		fail(w, "Invalid period", err)
		return
	}

	ctx := r.Context()
	ids := req.EmployeeIDs
	if len(ids) == 0 {
		employees, err := h.Store.ListEmployees(ctx, store.EmployeeFilter{Status: req.Status})
		if err != nil {
			fail(w, "Failed to list employees", err)
			return
		}
		for _, e := range employees {
			ids = append(ids, e.ID)
		}
	}

	records, err := h.Runner().RunAll(ctx, ids, period)
	if err != nil {
		fail(w, "Failed to run payroll", err)
		return
	}

	entries := make([]store.PayrollEntry, 0, len(records))
	for _, rec := range records {
		entry, err := h.Store.RecordPayroll(ctx, rec)
		if err != nil {
			fail(w, "Failed to save payroll", err)
			return
		}
		entries = append(entries, entry)
	}
	writeJSON(w, http.StatusCreated, runResponse(period, entries))
}

// GetPayroll returns every stored record for ?start=&end= with totals.
func (h *Handler) GetPayroll(w http.ResponseWriter, r *http.Request) {
	period, err := periodFromQuery(r)
	if err != nil {
		fail(w, "Invalid period", err)
		return
	}
	entries, err := h.Store.PayrollForPeriod(r.Context(), period)
	if err != nil {
		fail(w, "Failed to load payroll", err)
		return
	}
	writeJSON(w, http.StatusOK, runResponse(period, entries))
}

// GetPayrollRegister exports the stored records for ?start=&end= as XLSX.
func (h *Handler) GetPayrollRegister(w http.ResponseWriter, r *http.Request) {
	period, err := periodFromQuery(r)
	if err != nil {
		fail(w, "Invalid period", err)
		return
	}
	ctx := r.Context()
	entries, err := h.Store.PayrollForPeriod(ctx, period)
	if err != nil {
		fail(w, "Failed to load payroll", err)
		return
	}
	employees, err := h.Store.ListEmployees(ctx, store.EmployeeFilter{})
	if err != nil {
		fail(w, "Failed to list employees", err)
		return
	}
	names := make(map[engine.EmployeeID]string, len(employees))
	for _, e := range employees {
		names[e.ID] = e.LastName + ", " + e.FirstName
	}

	f, err := report.PayrollRegister(payrollRecords(entries), names)
	if err != nil {
		fail(w, "Failed to build payroll register", err)
		return
	}
	writeXLSX(w, f, fmt.Sprintf("payroll-register-%s_%s.xlsx", period.Start, period.End))
}

func runResponse(period engine.PayPeriod, entries []store.PayrollEntry) PayrollRunResponse {
	if entries == nil {
		entries = []store.PayrollEntry{}
	}
	return PayrollRunResponse{Period: period, Records: entries, Summary: payrun.Totals(payrollRecords(entries))}
}

func payrollRecords(entries []store.PayrollEntry) []engine.PayrollRecord {
	out := make([]engine.PayrollRecord, len(entries))
	for i, e := range entries {
		out[i] = e.PayrollRecord
	}
	return out
}

// =============================================================================
// POLICY HANDLERS
// =============================================================================

// GetPolicy returns the active policy as JSON.
func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.PolicyFactory.ToJSON(h.Policy()))
}

// UpdatePolicy parses and activates a new policy document.
func (h *Handler) UpdatePolicy(w http.ResponseWriter, r *http.Request) {
	var pj factory.PolicyJSON
	if err := json.NewDecoder(r.Body).Decode(&pj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	policy, err := h.PolicyFactory.FromJSON(pj)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid policy", err)
		return
	}
	h.SetPolicy(policy)
	writeJSON(w, http.StatusOK, h.PolicyFactory.ToJSON(policy))
}

// =============================================================================
// HELPERS
// =============================================================================

func employeeID(r *http.Request) (engine.EmployeeID, error) {
	raw := chi.URLParam(r, "id")
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", errInvalidID, raw)
	}
	return engine.EmployeeID(n), nil
}

func periodFromQuery(r *http.Request) (engine.PayPeriod, error) {
	q := r.URL.Query()
	return PeriodRequest{Start: q.Get("start"), End: q.Get("end")}.toPeriod()
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errDuplicate):
		return http.StatusConflict
	case errors.Is(err, errInvalidID),
		errors.Is(err, store.ErrInvalidEmployee),
		errors.Is(err, report.ErrMalformedSheet),
		engine.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func fail(w http.ResponseWriter, message string, err error) {
	writeError(w, statusFor(err), message, err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func writeXLSX(w http.ResponseWriter, f *excelize.File, filename string) {
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to write spreadsheet", err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
