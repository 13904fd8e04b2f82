package engine_test

import (
	"errors"
	"testing"
	"time"

	"github.com/motorph/payroll-engine/engine"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func clock(h, m int) *engine.Clock {
	return engine.ClockPtr(engine.MustClock(h, m))
}

func june(day int) engine.Date {
	return engine.NewDate(2024, time.June, day)
}

func entry(id engine.EmployeeID, date engine.Date, in, out *engine.Clock) engine.AttendanceEntry {
	return engine.AttendanceEntry{EmployeeID: id, Date: date, LogIn: in, LogOut: out}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, engine.MustParseDecimal(want).Equal(got), "want %s, got %s", want, got)
}

// =============================================================================
// DAILY EVALUATION
// =============================================================================

func TestEvaluate_FullDay_OnTime(t *testing.T) {
	ev := engine.NewEvaluator(engine.DefaultShift())

	day, err := ev.Evaluate(entry(10001, june(3), clock(8, 0), clock(17, 0)))
	require.NoError(t, err)

	assert.True(t, day.Present)
	assert.False(t, day.Late, "log-in exactly at shift start is not late")
	assert.Equal(t, 0, day.LateMinutes)
	assert.False(t, day.Undertime)
	assert.True(t, day.FullDay)
	assert.Equal(t, engine.StatusPresent, day.Status)
	assertDecimal(t, "9", day.WorkedHours)
}

func TestEvaluate_WorkedHours_DecimalHours(t *testing.T) {
	// GIVEN: 08:00-17:30
	// THEN: exactly 9.5 hours
	day, err := engine.EvaluateDay(entry(10001, june(3), clock(8, 0), clock(17, 30)),
		engine.MustClock(8, 0), engine.MustClock(17, 0))
	require.NoError(t, err)

	assert.True(t, day.WorkedHours.Equal(engine.MustParseDecimal("9.5")), "got %s", day.WorkedHours)
	assert.False(t, day.Undertime)
}

func TestEvaluate_LateArrival(t *testing.T) {
	ev := &engine.Evaluator{}

	day, err := ev.Evaluate(entry(10001, june(3), clock(8, 30), clock(17, 0)))
	require.NoError(t, err)

	assert.True(t, day.Late)
	assert.Equal(t, 30, day.LateMinutes)
	assert.False(t, day.FullDay)
	assert.Equal(t, engine.StatusLate, day.Status)
}

func TestEvaluate_Undertime(t *testing.T) {
	ev := &engine.Evaluator{}

	day, err := ev.Evaluate(entry(10001, june(3), clock(8, 0), clock(16, 30)))
	require.NoError(t, err)

	assert.True(t, day.Undertime)
	assert.Equal(t, 30, day.UndertimeMinutes)
	assert.Equal(t, engine.StatusUndertime, day.Status)
	assert.True(t, day.WorkedHours.Equal(engine.MustParseDecimal("8.5")))
}

func TestEvaluate_LateAndUndertime_ComposesStatus(t *testing.T) {
	ev := &engine.Evaluator{}

	day, err := ev.Evaluate(entry(10001, june(3), clock(9, 15), clock(16, 0)))
	require.NoError(t, err)

	assert.Equal(t, 75, day.LateMinutes)
	assert.Equal(t, 60, day.UndertimeMinutes)
	assert.Equal(t, engine.StatusLateAndUndertime, day.Status)
	assert.True(t, day.Status.HasFlag(engine.StatusLate))
	assert.True(t, day.Status.HasFlag(engine.StatusUndertime))
}

func TestEvaluate_MissingLogOut_PresentWithZeroHours(t *testing.T) {
	// GIVEN: log-in recorded, log-out missing
	// THEN: present, zero hours, incomplete, no undertime
	ev := &engine.Evaluator{}

	for _, in := range []*engine.Clock{clock(8, 0), clock(7, 45)} {
		day, err := ev.Evaluate(entry(10001, june(3), in, nil))
		require.NoError(t, err)

		assert.True(t, day.Present)
		assert.True(t, day.WorkedHours.IsZero())
		assert.True(t, day.Incomplete)
		assert.False(t, day.Undertime)
		assert.False(t, day.FullDay)
		assert.Equal(t, engine.StatusPresent, day.Status)
	}
}

func TestEvaluate_MissingLogOut_LateStillJudgedFromLogIn(t *testing.T) {
	ev := &engine.Evaluator{}

	day, err := ev.Evaluate(entry(10001, june(3), clock(8, 20), nil))
	require.NoError(t, err)

	assert.True(t, day.Late)
	assert.Equal(t, 20, day.LateMinutes)
	assert.Equal(t, engine.StatusLate, day.Status)
}

func TestEvaluate_MissingLogIn_Absent(t *testing.T) {
	ev := &engine.Evaluator{}

	day, err := ev.Evaluate(entry(10001, june(3), nil, nil))
	require.NoError(t, err)

	assert.False(t, day.Present)
	assert.True(t, day.WorkedHours.IsZero())
	assert.False(t, day.Late)
	assert.False(t, day.Undertime)
	assert.Equal(t, engine.StatusAbsent, day.Status)
}

func TestEvaluate_CustomShift(t *testing.T) {
	shift, err := engine.NewShift(engine.MustClock(9, 0), engine.MustClock(18, 0))
	require.NoError(t, err)
	ev := engine.NewEvaluator(shift)

	day, err := ev.Evaluate(entry(10001, june(3), clock(8, 30), clock(17, 30)))
	require.NoError(t, err)

	assert.False(t, day.Late)
	assert.Equal(t, 30, day.UndertimeMinutes)
}

func TestEvaluate_PartialMinutesTruncate(t *testing.T) {
	in, err := engine.ParseClock("08:00:59")
	require.NoError(t, err)

	day, err := (&engine.Evaluator{}).Evaluate(entry(10001, june(3), &in, clock(17, 0)))
	require.NoError(t, err)

	assert.True(t, day.Late, "one second past start is late")
	assert.Equal(t, 0, day.LateMinutes)
}

// =============================================================================
// INVALID INPUT
// =============================================================================

func TestEvaluate_LogOutBeforeLogIn_Rejected(t *testing.T) {
	_, err := (&engine.Evaluator{}).Evaluate(entry(10001, june(3), clock(17, 0), clock(8, 0)))

	require.Error(t, err)
	assert.True(t, errors.Is(err, engine.ErrInvalidAttendance))
	var attErr *engine.InvalidAttendanceError
	require.ErrorAs(t, err, &attErr)
	assert.Equal(t, engine.EmployeeID(10001), attErr.EmployeeID)
}

func TestEvaluateDay_InvalidShift_Rejected(t *testing.T) {
	// GIVEN: a valid entry and shift bounds that do not form a shift
	// WHEN: evaluating with those bounds
	// THEN: the call fails instead of falling back to 08:00-17:00
	e := entry(10001, june(3), clock(0, 30), clock(10, 0))

	for name, bounds := range map[string][2]engine.Clock{
		"zero":     {engine.MustClock(0, 0), engine.MustClock(0, 0)},
		"inverted": {engine.MustClock(17, 0), engine.MustClock(8, 0)},
	} {
		_, err := engine.EvaluateDay(e, bounds[0], bounds[1])
		var attErr *engine.InvalidAttendanceError
		require.ErrorAs(t, err, &attErr, name)
		assert.ErrorIs(t, err, engine.ErrInvalidAttendance, name)
		assert.Equal(t, engine.EmployeeID(10001), attErr.EmployeeID)
	}
}

func TestEvaluator_InvertedShift_Rejected(t *testing.T) {
	ev := engine.NewEvaluator(engine.Shift{Start: engine.MustClock(17, 0), End: engine.MustClock(8, 0)})
	_, err := ev.Evaluate(entry(10001, june(3), clock(8, 0), clock(17, 0)))
	assert.ErrorIs(t, err, engine.ErrInvalidAttendance)
}

func TestEvaluator_ZeroValue_UsesDefaultShift(t *testing.T) {
	day, err := (&engine.Evaluator{}).Evaluate(entry(10001, june(3), clock(8, 15), clock(16, 30)))
	require.NoError(t, err)
	assert.Equal(t, 15, day.LateMinutes)
	assert.Equal(t, 30, day.UndertimeMinutes)
}

func TestEvaluate_NonPositiveEmployee_Rejected(t *testing.T) {
	for _, id := range []engine.EmployeeID{0, -1} {
		_, err := (&engine.Evaluator{}).Evaluate(entry(id, june(3), clock(8, 0), clock(17, 0)))
		assert.ErrorIs(t, err, engine.ErrInvalidAttendance, "id %d", id)
	}
}

func TestEvaluate_ZeroEntry_Rejected(t *testing.T) {
	_, err := (&engine.Evaluator{}).Evaluate(engine.AttendanceEntry{})
	assert.ErrorIs(t, err, engine.ErrInvalidAttendance)
}

func TestNewAttendanceEntry_CopiesClocks(t *testing.T) {
	in := engine.MustClock(8, 0)
	e, err := engine.NewAttendanceEntry(10001, june(3), &in, nil)
	require.NoError(t, err)

	in = engine.MustClock(10, 0)
	assert.Equal(t, "08:00", e.LogIn.String())
	assert.Nil(t, e.LogOut)
}

func TestNewShift_EndNotAfterStart_Rejected(t *testing.T) {
	_, err := engine.NewShift(engine.MustClock(17, 0), engine.MustClock(8, 0))
	assert.Error(t, err)
}

func TestParseClock(t *testing.T) {
	c, err := engine.ParseClock("17:30")
	require.NoError(t, err)
	assert.Equal(t, 17, c.Hour())
	assert.Equal(t, 30, c.Minute())

	_, err = engine.ParseClock("25:00")
	assert.Error(t, err)
	_, err = engine.ParseClock("noon")
	assert.Error(t, err)
}
