package report

import (
	"github.com/motorph/payroll-engine/engine"
	"github.com/xuri/excelize/v2"
)

var attendanceColumns = []string{
	"Date", "Day", "Log In", "Log Out", "Hours", "Status", "Late (min)", "Undertime (min)",
}

// AttendanceSheet lists every evaluated day of agg followed by a summary
// block two rows below the last day.
func AttendanceSheet(agg engine.PeriodAggregate) (*excelize.File, error) {
	f, st, err := newBook(SheetAttendance)
	if err != nil {
		return nil, err
	}
	if err := fillAttendance(f, st, agg); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func fillAttendance(f *excelize.File, st styles, agg engine.PeriodAggregate) error {
	const sheet = SheetAttendance
	header := make([]any, len(attendanceColumns))
	for i, h := range attendanceColumns {
		header[i] = h
	}
	if err := writeRow(f, sheet, 1, header); err != nil {
		return err
	}
	if err := styleRange(f, sheet, 1, 1, len(header), st.header); err != nil {
		return err
	}

	for i, day := range agg.Days {
		row := []any{
			day.Date.String(),
			day.Date.Weekday().String()[:3],
			clockText(day.LogIn),
			clockText(day.LogOut),
			money(day.WorkedHours),
			string(day.Status),
			day.LateMinutes,
			day.UndertimeMinutes,
		}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	r := len(agg.Days) + 3
	summary := [][]any{
		{"Employee ID", int64(agg.EmployeeID)},
		{"Period", agg.Period.Label()},
		{"Working Days", agg.WorkingDays},
		{"Days Worked", agg.DaysWorked},
		{"Absent Days", agg.AbsentDays},
		{"Total Hours", money(agg.TotalHours)},
		{"Average Hours", money(agg.AverageHours().Round(2))},
		{"Attendance Rate", agg.AttendanceRate().Round(4).InexactFloat64()},
		{"Late Days", agg.LateDays},
		{"Late Minutes", agg.TotalLateMinutes},
		{"Undertime Days", agg.UndertimeDays},
		{"Undertime Minutes", agg.TotalUndertimeMinutes},
	}
	for i, line := range summary {
		if err := writeRow(f, sheet, r+i, line); err != nil {
			return err
		}
		if err := styleRange(f, sheet, r+i, 1, 1, st.header); err != nil {
			return err
		}
	}
	rateCell, err := excelize.CoordinatesToCellName(2, r+7)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, rateCell, rateCell, st.percent); err != nil {
		return err
	}

	if err := f.SetColWidth(sheet, "A", "A", 18); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "F", "F", 16); err != nil {
		return err
	}
	return freezeHeader(f, sheet)
}

func clockText(c *engine.Clock) string {
	if c == nil {
		return ""
	}
	return c.String()
}
