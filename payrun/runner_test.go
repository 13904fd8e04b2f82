package payrun_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/motorph/payroll-engine/deductions"
	"github.com/motorph/payroll-engine/engine"
	"github.com/motorph/payroll-engine/payrun"
	"github.com/motorph/payroll-engine/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return engine.MustParseDecimal(s) }

func june2024() engine.PayPeriod { return engine.MonthPeriod(2024, time.June) }

// seed creates an employee with salary and logs 08:00-17:00 on the given June days.
func seed(t *testing.T, st *store.Memory, id engine.EmployeeID, salary string, days ...int) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, st.SaveEmployee(ctx, store.Employee{
		ID: id, FirstName: "First", LastName: "Last", Status: store.StatusRegular,
		BasicSalary: dec(salary),
		Allowances: map[string]decimal.Decimal{
			engine.AllowanceRice:     dec("1500"),
			engine.AllowancePhone:    dec("1000"),
			engine.AllowanceClothing: dec("800"),
		},
	}))
	var entries []engine.AttendanceEntry
	for _, d := range days {
		in, out := engine.MustClock(8, 0), engine.MustClock(17, 0)
		entries = append(entries, engine.AttendanceEntry{
			EmployeeID: id, Date: engine.NewDate(2024, time.June, d), LogIn: &in, LogOut: &out,
		})
	}
	require.NoError(t, st.SaveAttendanceBatch(ctx, entries))
}

func juneWeekdays() []int {
	var days []int
	for _, d := range june2024().Days() {
		if d.IsWeekday() {
			days = append(days, d.Day())
		}
	}
	return days
}

func runner(st *store.Memory) *payrun.Runner {
	return &payrun.Runner{Directory: st, Attendance: st, Recorder: st, Rules: deductions.Standard()}
}

// =============================================================================
// SINGLE EMPLOYEE
// =============================================================================

func TestRun_FullMonth(t *testing.T) {
	// GIVEN: an employee with every June weekday logged
	// WHEN: running payroll for June
	// THEN: the record matches the engine and is persisted
	ctx := context.Background()
	st := store.NewMemory()
	seed(t, st, 10001, "50000", juneWeekdays()...)

	rec, err := runner(st).Run(ctx, 10001, june2024())
	require.NoError(t, err)

	assert.Equal(t, 20, rec.DaysWorked)
	assert.True(t, rec.GrossPay.Equal(dec("53300")))
	assert.True(t, rec.NetPay.Equal(dec("45851.60")), "got %s", rec.NetPay)

	saved, err := st.ListPayroll(ctx, 10001)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.True(t, saved[0].NetPay.Equal(rec.NetPay))
}

func TestRun_WithoutRecorder(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	seed(t, st, 10001, "50000", 3, 4)

	r := &payrun.Runner{Directory: st, Attendance: st}
	rec, err := r.Run(ctx, 10001, june2024())
	require.NoError(t, err)
	assert.Empty(t, rec.Deductions)

	saved, err := st.ListPayroll(ctx, 10001)
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestRun_CustomShiftChangesLateness(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	seed(t, st, 10001, "50000", 3)

	shift, err := engine.NewShift(engine.MustClock(7, 30), engine.MustClock(16, 30))
	require.NoError(t, err)
	r := &payrun.Runner{Directory: st, Attendance: st, Evaluator: engine.NewEvaluator(shift)}

	agg, err := r.Summarize(ctx, 10001, june2024())
	require.NoError(t, err)
	assert.Equal(t, 30, agg.TotalLateMinutes)
	assert.Equal(t, 1, agg.LateDays)
}

func TestRun_UnknownEmployee(t *testing.T) {
	_, err := runner(store.NewMemory()).Run(context.Background(), 424242, june2024())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRun_InvalidPeriod(t *testing.T) {
	st := store.NewMemory()
	seed(t, st, 10001, "50000")
	bad := engine.PayPeriod{Start: engine.NewDate(2024, time.June, 30), End: engine.NewDate(2024, time.June, 1)}

	_, err := runner(st).Run(context.Background(), 10001, bad)
	assert.ErrorIs(t, err, engine.ErrInvalidPeriod)
}

func TestRun_CancelledContext(t *testing.T) {
	st := store.NewMemory()
	seed(t, st, 10001, "50000")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner(st).Run(ctx, 10001, june2024())
	assert.ErrorIs(t, err, context.Canceled)
}

// =============================================================================
// WHOLE ROSTER
// =============================================================================

func TestRunAll_InputOrder(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	ids := []engine.EmployeeID{10005, 10001, 10003, 10002, 10004}
	for i, id := range ids {
		seed(t, st, id, "30000", juneWeekdays()[:10+i]...)
	}

	r := runner(st)
	r.Workers = 2
	records, err := r.RunAll(ctx, ids, june2024())
	require.NoError(t, err)

	require.Len(t, records, len(ids))
	for i, rec := range records {
		assert.Equal(t, ids[i], rec.EmployeeID)
		assert.Equal(t, 10+i, rec.DaysWorked)
	}

	saved, err := st.PayrollForPeriod(ctx, june2024())
	require.NoError(t, err)
	assert.Len(t, saved, len(ids))
}

func TestRunAll_FirstErrorWins(t *testing.T) {
	st := store.NewMemory()
	seed(t, st, 10001, "30000", 3)

	_, err := runner(st).RunAll(context.Background(), []engine.EmployeeID{10001, 99999}, june2024())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRunAll_InvalidPeriodRejectedUpFront(t *testing.T) {
	calls := &countingDirectory{}
	r := &payrun.Runner{Directory: calls, Attendance: store.NewMemory()}

	_, err := r.RunAll(context.Background(), []engine.EmployeeID{1, 2}, engine.PayPeriod{})
	assert.ErrorIs(t, err, engine.ErrInvalidPeriod)
	assert.Zero(t, calls.n.Load())
}

func TestRunAll_RespectsWorkerLimit(t *testing.T) {
	dir := &countingDirectory{delay: 5 * time.Millisecond}
	r := &payrun.Runner{Directory: dir, Attendance: store.NewMemory(), Workers: 3}
	ids := make([]engine.EmployeeID, 12)
	for i := range ids {
		ids[i] = engine.EmployeeID(i + 1)
	}

	records, err := r.RunAll(context.Background(), ids, june2024())
	require.NoError(t, err)
	assert.Len(t, records, 12)
	assert.LessOrEqual(t, dir.peak.Load(), int32(3))
	assert.Equal(t, int32(12), dir.n.Load())
}

func TestRunAll_Empty(t *testing.T) {
	records, err := runner(store.NewMemory()).RunAll(context.Background(), nil, june2024())
	require.NoError(t, err)
	assert.Empty(t, records)
}

// countingDirectory returns a zero-salary profile for any id and tracks concurrency.
type countingDirectory struct {
	n, active, peak atomic.Int32
	delay           time.Duration
}

func (c *countingDirectory) Profile(_ context.Context, id engine.EmployeeID) (engine.CompensationProfile, error) {
	c.n.Add(1)
	now := c.active.Add(1)
	defer c.active.Add(-1)
	for {
		peak := c.peak.Load()
		if now <= peak || c.peak.CompareAndSwap(peak, now) {
			break
		}
	}
	time.Sleep(c.delay)
	if !id.Valid() {
		return engine.CompensationProfile{}, errors.New("bad id")
	}
	return engine.CompensationProfile{EmployeeID: id, BasicSalary: decimal.Zero}, nil
}

// =============================================================================
// TOTALS
// =============================================================================

func TestTotals(t *testing.T) {
	records := []engine.PayrollRecord{
		{GrossPay: dec("100"), TotalDeductions: dec("10"), NetPay: dec("90"),
			Deductions: []engine.Deduction{{Name: "sss", Amount: dec("6")}, {Name: "tax", Amount: dec("4")}}},
		{GrossPay: dec("200"), TotalDeductions: dec("25"), NetPay: dec("175"),
			Deductions: []engine.Deduction{{Name: "loan", Amount: dec("5")}, {Name: "sss", Amount: dec("20")}}},
	}

	s := payrun.Totals(records)
	assert.Equal(t, 2, s.Employees)
	assert.True(t, s.GrossPay.Equal(dec("300")))
	assert.True(t, s.NetPay.Equal(dec("265")))
	assert.True(t, s.ByDeduction["sss"].Equal(dec("26")))

	assert.Equal(t, []string{"sss", "tax", "loan"}, payrun.DeductionNames(records))
}
