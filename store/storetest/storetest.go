// Package storetest holds behaviour tests shared by every store.Store implementation.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/motorph/payroll-engine/engine"
	"github.com/motorph/payroll-engine/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Garcia returns employee 10001 with the standard allowances.
func Garcia() store.Employee {
	return store.Employee{
		ID:          10001,
		FirstName:   "Manuel III",
		LastName:    "Garcia",
		Birthday:    engine.NewDate(1983, time.October, 11),
		Position:    "Chief Executive Officer",
		Status:      store.StatusRegular,
		SSSNumber:   "44-4506057-3",
		BasicSalary: engine.MustParseDecimal("90000"),
		Allowances: map[string]decimal.Decimal{
			engine.AllowanceRice:     engine.MustParseDecimal("1500"),
			engine.AllowancePhone:    engine.MustParseDecimal("2000"),
			engine.AllowanceClothing: engine.MustParseDecimal("1000"),
		},
	}
}

// Lim returns probationary employee 10002 without allowances.
func Lim() store.Employee {
	return store.Employee{
		ID:          10002,
		FirstName:   "Antonio",
		LastName:    "Lim",
		Position:    "Chief Operating Officer",
		Status:      store.StatusProbationary,
		BasicSalary: engine.MustParseDecimal("60000"),
	}
}

func june(day int) engine.Date { return engine.NewDate(2024, time.June, day) }

func clock(h, m int) *engine.Clock { return engine.ClockPtr(engine.MustClock(h, m)) }

// Run exercises the store.Store contract against stores produced by newStore.
// Each subtest gets a fresh store.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	ctx := context.Background()
	junePeriod := engine.MonthPeriod(2024, time.June)

	t.Run("SaveAndGetEmployee", func(t *testing.T) {
		st := newStore(t)
		require.NoError(t, st.SaveEmployee(ctx, Garcia()))

		got, err := st.GetEmployee(ctx, 10001)
		require.NoError(t, err)
		assert.Equal(t, "Manuel III Garcia", got.FullName())
		assert.Equal(t, "1983-10-11", got.Birthday.String())
		assert.True(t, got.BasicSalary.Equal(engine.MustParseDecimal("90000")))
		assert.Len(t, got.Allowances, 3)
		assert.True(t, got.Allowances[engine.AllowancePhone].Equal(engine.MustParseDecimal("2000")))
		assert.False(t, got.CreatedAt.IsZero())
	})

	t.Run("UpdateEmployeeReplacesAllowances", func(t *testing.T) {
		st := newStore(t)
		emp := Garcia()
		require.NoError(t, st.SaveEmployee(ctx, emp))

		emp.Position = "Chairman"
		emp.Allowances = map[string]decimal.Decimal{engine.AllowanceRice: engine.MustParseDecimal("1800")}
		require.NoError(t, st.SaveEmployee(ctx, emp))

		got, err := st.GetEmployee(ctx, 10001)
		require.NoError(t, err)
		assert.Equal(t, "Chairman", got.Position)
		assert.Len(t, got.Allowances, 1)
	})

	t.Run("GetMissingEmployee", func(t *testing.T) {
		st := newStore(t)
		_, err := st.GetEmployee(ctx, 99999)
		assert.ErrorIs(t, err, store.ErrNotFound)

		_, err = st.Profile(ctx, 99999)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("RejectsInvalidEmployee", func(t *testing.T) {
		st := newStore(t)
		for name, mutate := range map[string]func(*store.Employee){
			"id":         func(e *store.Employee) { e.ID = -1 },
			"first name": func(e *store.Employee) { e.FirstName = "  " },
			"last name":  func(e *store.Employee) { e.LastName = "" },
			"salary":     func(e *store.Employee) { e.BasicSalary = engine.MustParseDecimal("-1") },
			"allowance":  func(e *store.Employee) { e.Allowances["bonus"] = engine.MustParseDecimal("-5") },
		} {
			emp := Garcia()
			mutate(&emp)
			assert.ErrorIs(t, st.SaveEmployee(ctx, emp), store.ErrInvalidEmployee, name)
		}
	})

	t.Run("ListEmployeesFilters", func(t *testing.T) {
		st := newStore(t)
		require.NoError(t, st.SaveEmployee(ctx, Lim()))
		require.NoError(t, st.SaveEmployee(ctx, Garcia()))

		late := Lim()
		late.ID = 10000
		late.FirstName, late.LastName = "Zed", "Zamora"
		require.NoError(t, st.SaveEmployee(ctx, late))

		all, err := st.ListEmployees(ctx, store.EmployeeFilter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, engine.EmployeeID(10000), all[0].ID, "sorted by employee number, not name")
		assert.Equal(t, "Garcia", all[1].LastName)

		regular, err := st.ListEmployees(ctx, store.EmployeeFilter{Status: store.StatusRegular})
		require.NoError(t, err)
		require.Len(t, regular, 1)
		assert.Equal(t, engine.EmployeeID(10001), regular[0].ID)

		found, err := st.ListEmployees(ctx, store.EmployeeFilter{Query: "anton"})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "Lim", found[0].LastName)
	})

	t.Run("ProfileFromEmployee", func(t *testing.T) {
		st := newStore(t)
		require.NoError(t, st.SaveEmployee(ctx, Garcia()))

		p, err := st.Profile(ctx, 10001)
		require.NoError(t, err)
		assert.True(t, p.TotalAllowances().Equal(engine.MustParseDecimal("4500")))
	})

	t.Run("AttendanceUpsertLatestWins", func(t *testing.T) {
		st := newStore(t)
		require.NoError(t, st.SaveEmployee(ctx, Garcia()))

		require.NoError(t, st.SaveAttendance(ctx, engine.AttendanceEntry{EmployeeID: 10001, Date: june(4), LogIn: clock(8, 0), LogOut: clock(17, 0)}))
		require.NoError(t, st.SaveAttendance(ctx, engine.AttendanceEntry{EmployeeID: 10001, Date: june(3), LogIn: clock(8, 0), LogOut: clock(17, 0)}))
		require.NoError(t, st.SaveAttendance(ctx, engine.AttendanceEntry{EmployeeID: 10001, Date: june(3), LogIn: clock(8, 30)}))

		entries, err := st.Attendance(ctx, 10001, junePeriod)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, june(3), entries[0].Date, "ordered by date")
		assert.Equal(t, "08:30", entries[0].LogIn.String())
		assert.Nil(t, entries[0].LogOut)
	})

	t.Run("AttendanceRangeIsInclusive", func(t *testing.T) {
		st := newStore(t)
		require.NoError(t, st.SaveEmployee(ctx, Garcia()))
		require.NoError(t, st.SaveAttendanceBatch(ctx, []engine.AttendanceEntry{
			{EmployeeID: 10001, Date: engine.NewDate(2024, time.May, 31), LogIn: clock(8, 0), LogOut: clock(17, 0)},
			{EmployeeID: 10001, Date: june(1), LogIn: clock(8, 0), LogOut: clock(17, 0)},
			{EmployeeID: 10001, Date: june(30), LogIn: clock(8, 0), LogOut: clock(17, 0)},
			{EmployeeID: 10001, Date: engine.NewDate(2024, time.July, 1), LogIn: clock(8, 0), LogOut: clock(17, 0)},
		}))

		entries, err := st.Attendance(ctx, 10001, junePeriod)
		require.NoError(t, err)
		assert.Len(t, entries, 2)

		_, err = st.Attendance(ctx, 10001, engine.PayPeriod{Start: june(30), End: june(1)})
		assert.ErrorIs(t, err, engine.ErrInvalidPeriod)
	})

	t.Run("AttendanceBatchIsAtomic", func(t *testing.T) {
		st := newStore(t)
		require.NoError(t, st.SaveEmployee(ctx, Garcia()))

		err := st.SaveAttendanceBatch(ctx, []engine.AttendanceEntry{
			{EmployeeID: 10001, Date: june(3), LogIn: clock(8, 0), LogOut: clock(17, 0)},
			{EmployeeID: 10001, Date: june(4), LogIn: clock(17, 0), LogOut: clock(8, 0)},
		})
		assert.ErrorIs(t, err, engine.ErrInvalidAttendance)

		err = st.SaveAttendanceBatch(ctx, []engine.AttendanceEntry{
			{EmployeeID: 10001, Date: june(3), LogIn: clock(8, 0), LogOut: clock(17, 0)},
			{EmployeeID: 99999, Date: june(4), LogIn: clock(8, 0), LogOut: clock(17, 0)},
		})
		assert.ErrorIs(t, err, store.ErrNotFound)

		entries, err := st.Attendance(ctx, 10001, junePeriod)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("PayrollUpsertKeepsID", func(t *testing.T) {
		st := newStore(t)
		require.NoError(t, st.SaveEmployee(ctx, Garcia()))
		rec := engine.PayrollRecord{
			EmployeeID:  10001,
			Period:      junePeriod,
			PeriodLabel: junePeriod.Label(),
			DaysWorked:  20,
			WorkingDays: 20,
			BasicPay:    engine.MustParseDecimal("90000"),
			Allowances:  engine.MustParseDecimal("4500"),
			GrossPay:    engine.MustParseDecimal("94500"),
			Deductions: []engine.Deduction{
				{Name: "sss", Amount: engine.MustParseDecimal("1350")},
				{Name: "philhealth", Amount: engine.MustParseDecimal("2250")},
			},
			TotalDeductions: engine.MustParseDecimal("3600"),
			NetPay:          engine.MustParseDecimal("90900"),
		}

		first, err := st.RecordPayroll(ctx, rec)
		require.NoError(t, err)
		assert.NotEmpty(t, first.ID)

		rec.DaysWorked = 19
		second, err := st.RecordPayroll(ctx, rec)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		history, err := st.ListPayroll(ctx, 10001)
		require.NoError(t, err)
		require.Len(t, history, 1)
		got := history[0]
		assert.Equal(t, 19, got.DaysWorked)
		assert.Equal(t, junePeriod, got.Period)
		assert.Equal(t, "2024-06-01 to 2024-06-30", got.PeriodLabel)
		require.Len(t, got.Deductions, 2)
		assert.Equal(t, "sss", got.Deductions[0].Name)
		assert.True(t, got.NetPay.Equal(engine.MustParseDecimal("90900")))
	})

	t.Run("PayrollForPeriod", func(t *testing.T) {
		st := newStore(t)
		require.NoError(t, st.SaveEmployee(ctx, Garcia()))
		require.NoError(t, st.SaveEmployee(ctx, Lim()))
		july := engine.MonthPeriod(2024, time.July)

		for _, r := range []engine.PayrollRecord{
			{EmployeeID: 10002, Period: junePeriod},
			{EmployeeID: 10001, Period: junePeriod},
			{EmployeeID: 10001, Period: july},
		} {
			require.NoError(t, st.SavePayroll(ctx, r))
		}

		records, err := st.PayrollForPeriod(ctx, junePeriod)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, engine.EmployeeID(10001), records[0].EmployeeID)

		history, err := st.ListPayroll(ctx, 10001)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, junePeriod, history[0].Period, "oldest period first")
	})

	t.Run("PayrollForUnknownEmployee", func(t *testing.T) {
		st := newStore(t)
		err := st.SavePayroll(ctx, engine.PayrollRecord{EmployeeID: 99999, Period: junePeriod})
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("DeleteEmployeeCascades", func(t *testing.T) {
		st := newStore(t)
		require.NoError(t, st.SaveEmployee(ctx, Garcia()))
		require.NoError(t, st.SaveAttendance(ctx, engine.AttendanceEntry{EmployeeID: 10001, Date: june(3), LogIn: clock(8, 0)}))
		require.NoError(t, st.SavePayroll(ctx, engine.PayrollRecord{EmployeeID: 10001, Period: junePeriod}))

		require.NoError(t, st.DeleteEmployee(ctx, 10001))
		assert.ErrorIs(t, st.DeleteEmployee(ctx, 10001), store.ErrNotFound)

		entries, err := st.Attendance(ctx, 10001, junePeriod)
		require.NoError(t, err)
		assert.Empty(t, entries)
		history, err := st.ListPayroll(ctx, 10001)
		require.NoError(t, err)
		assert.Empty(t, history)
	})

	t.Run("ResetClearsEverything", func(t *testing.T) {
		st := newStore(t)
		resetter, ok := st.(store.Resetter)
		if !ok {
			t.Skip("store does not support Reset")
		}
		require.NoError(t, st.SaveEmployee(ctx, Garcia()))
		require.NoError(t, st.SaveAttendance(ctx, engine.AttendanceEntry{EmployeeID: 10001, Date: june(3), LogIn: clock(8, 0)}))

		require.NoError(t, resetter.Reset(ctx))

		employees, err := st.ListEmployees(ctx, store.EmployeeFilter{})
		require.NoError(t, err)
		assert.Empty(t, employees)

		// usable again after reset
		require.NoError(t, st.SaveEmployee(ctx, Garcia()))
	})
}
