/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with realistic
	MotorPH data for demos. Each scenario creates employees and a month of
	attendance that exercise specific engine behavior.

AVAILABLE SCENARIOS:

	motorph-roster:      Executive roster, June 2024, mostly full days
	late-and-undertime:  One employee showing every daily status
	probationary-hires:  New hires with partial months of attendance

HOW SCENARIOS WORK:
 1. Reset the store (clear all data)
 2. Create employees
 3. Record attendance for June 2024

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "motorph-roster"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx)
 3. Add it to the loaders map

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: payroll endpoints to run against the loaded data
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/motorph/payroll-engine/engine"
	"github.com/motorph/payroll-engine/store"
	"github.com/shopspring/decimal"
)

// ScenarioPeriod is the month every scenario records attendance for.
var ScenarioPeriod = engine.MonthPeriod(2024, time.June)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "motorph-roster",
		Name:        "MotorPH Roster",
		Description: "Five regular employees with a month of mostly on-time attendance",
	},
	{
		ID:          "late-and-undertime",
		Name:        "Late and Undertime",
		Description: "One employee with late, undertime, incomplete and absent days",
	},
	{
		ID:          "probationary-hires",
		Name:        "Probationary Hires",
		Description: "Two probationary employees hired mid-month",
	},
}

func (h *Handler) loaders() map[string]func(context.Context) error {
	return map[string]func(context.Context) error{
		"motorph-roster":     h.loadRosterScenario,
		"late-and-undertime": h.loadLateAndUndertimeScenario,
		"probationary-hires": h.loadProbationaryScenario,
	}
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	current := h.currentScenario
	h.mu.RUnlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the store and loads the requested scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	load, ok := h.loaders()[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", fmt.Errorf("scenario %q", req.ScenarioID))
		return
	}

	ctx := r.Context()
	if err := h.reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
		return
	}
	if err := load(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.mu.Lock()
	h.currentScenario = req.ScenarioID
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "scenario_id": req.ScenarioID})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) reset(ctx context.Context) error {
	rs, ok := h.Store.(store.Resetter)
	if !ok {
		return fmt.Errorf("store %T cannot be reset", h.Store)
	}
	if err := rs.Reset(ctx); err != nil {
		return err
	}
	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()
	return nil
}

// =============================================================================
// LOADERS
// =============================================================================

func executiveAllowances() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		engine.AllowanceRice:     decimal.NewFromInt(1500),
		engine.AllowancePhone:    decimal.NewFromInt(2000),
		engine.AllowanceClothing: decimal.NewFromInt(1000),
	}
}

func staffAllowances() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		engine.AllowanceRice:     decimal.NewFromInt(1500),
		engine.AllowancePhone:    decimal.NewFromInt(1000),
		engine.AllowanceClothing: decimal.NewFromInt(800),
	}
}

// loadRosterScenario: everyone works every weekday; a few late and short days.
func (h *Handler) loadRosterScenario(ctx context.Context) error {
	roster := []store.Employee{
		{ID: 10001, FirstName: "Manuel III", LastName: "Garcia", Position: "Chief Executive Officer", BasicSalary: decimal.NewFromInt(90000), Allowances: executiveAllowances()},
		{ID: 10002, FirstName: "Antonio", LastName: "Lim", Position: "Chief Operating Officer", BasicSalary: decimal.NewFromInt(60000), Allowances: executiveAllowances()},
		{ID: 10003, FirstName: "Bianca Sofia", LastName: "Aquino", Position: "Chief Finance Officer", BasicSalary: decimal.NewFromInt(60000), Allowances: executiveAllowances()},
		{ID: 10004, FirstName: "Isabella", LastName: "Reyes", Position: "Chief Marketing Officer", BasicSalary: decimal.NewFromInt(60000), Allowances: executiveAllowances()},
		{ID: 10005, FirstName: "Eduard", LastName: "Hernandez", Position: "IT Operations and Systems", BasicSalary: decimal.NewFromInt(52670), Allowances: staffAllowances()},
	}

	var entries []engine.AttendanceEntry
	for i, emp := range roster {
		emp.Status = store.StatusRegular
		emp.Birthday = engine.NewDate(1980+i*3, time.Month(i+1), 10+i)
		if err := h.Store.SaveEmployee(ctx, emp); err != nil {
			return fmt.Errorf("employee %d: %w", emp.ID, err)
		}
		for _, d := range ScenarioPeriod.Days() {
			if !d.IsWeekday() {
				continue
			}
			in, out := engine.MustClock(8, 0), engine.MustClock(17, 0)
			if (d.Day()+i)%7 == 0 {
				in = engine.MustClock(8, 15)
			}
			if (d.Day()+i)%11 == 0 {
				out = engine.MustClock(16, 30)
			}
			entries = append(entries, engine.AttendanceEntry{EmployeeID: emp.ID, Date: d, LogIn: &in, LogOut: &out})
		}
	}
	return h.Store.SaveAttendanceBatch(ctx, entries)
}

// loadLateAndUndertimeScenario: the first week shows every status.
func (h *Handler) loadLateAndUndertimeScenario(ctx context.Context) error {
	emp := store.Employee{
		ID: 10008, FirstName: "Alice", LastName: "Romualdez", Position: "HR Rank and File",
		Status: store.StatusRegular, BasicSalary: decimal.NewFromInt(22500), Allowances: staffAllowances(),
	}
	if err := h.Store.SaveEmployee(ctx, emp); err != nil {
		return err
	}

	clock := func(hour, minute int) *engine.Clock { return engine.ClockPtr(engine.MustClock(hour, minute)) }
	day := func(d int) engine.Date { return engine.NewDate(2024, time.June, d) }
	entries := []engine.AttendanceEntry{
		{EmployeeID: emp.ID, Date: day(3), LogIn: clock(8, 0), LogOut: clock(17, 0)},   // present
		{EmployeeID: emp.ID, Date: day(4), LogIn: clock(8, 45), LogOut: clock(17, 0)},  // late
		{EmployeeID: emp.ID, Date: day(5), LogIn: clock(8, 0), LogOut: clock(15, 30)},  // undertime
		{EmployeeID: emp.ID, Date: day(6), LogIn: clock(9, 10), LogOut: clock(16, 0)},  // both
		{EmployeeID: emp.ID, Date: day(7), LogIn: clock(8, 5)},                         // incomplete
		{EmployeeID: emp.ID, Date: day(10)},                                            // absent
		{EmployeeID: emp.ID, Date: day(11), LogIn: clock(7, 50), LogOut: clock(18, 0)}, // overtime is not paid
	}
	return h.Store.SaveAttendanceBatch(ctx, entries)
}

// loadProbationaryScenario: two hires starting on the 17th.
func (h *Handler) loadProbationaryScenario(ctx context.Context) error {
	hires := []store.Employee{
		{ID: 10031, FirstName: "Mark", LastName: "Bautista", Position: "Customer Service and Relations", BasicSalary: decimal.NewFromInt(23250)},
		{ID: 10032, FirstName: "Darlene", LastName: "Lazaro", Position: "Sales & Marketing", BasicSalary: decimal.NewFromInt(24000)},
	}
	start := engine.NewDate(2024, time.June, 17)

	var entries []engine.AttendanceEntry
	for _, emp := range hires {
		emp.Status = store.StatusProbationary
		emp.Allowances = staffAllowances()
		if err := h.Store.SaveEmployee(ctx, emp); err != nil {
			return fmt.Errorf("employee %d: %w", emp.ID, err)
		}
		for _, d := range ScenarioPeriod.Days() {
			if !d.IsWeekday() || d.Before(start) {
				continue
			}
			in, out := engine.MustClock(8, 0), engine.MustClock(17, 0)
			entries = append(entries, engine.AttendanceEntry{EmployeeID: emp.ID, Date: d, LogIn: &in, LogOut: &out})
		}
	}
	return h.Store.SaveAttendanceBatch(ctx, entries)
}
