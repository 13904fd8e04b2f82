package report_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/motorph/payroll-engine/engine"
	"github.com/motorph/payroll-engine/report"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func dec(s string) decimal.Decimal { return engine.MustParseDecimal(s) }

// reopen writes f to memory and opens the bytes again, like a client would.
func reopen(t *testing.T, f *excelize.File) *excelize.File {
	t.Helper()
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	out, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	t.Cleanup(func() { out.Close() })
	return out
}

func raw(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return v
}

// =============================================================================
// PAYROLL REGISTER
// =============================================================================

func registerRecords() []engine.PayrollRecord {
	period := engine.MonthPeriod(2024, time.June)
	return []engine.PayrollRecord{
		{
			EmployeeID: 10001, Period: period, PeriodLabel: period.Label(),
			DaysWorked: 20, WorkingDays: 20,
			BasicPay: dec("50000"), Allowances: dec("3300"), GrossPay: dec("53300"),
			Deductions: []engine.Deduction{
				{Name: "sss", Amount: dec("1350")},
				{Name: "withholding_tax", Amount: dec("4648.40")},
			},
			TotalDeductions: dec("5998.40"), NetPay: dec("47301.60"),
		},
		{
			EmployeeID: 10002, Period: period, PeriodLabel: period.Label(),
			DaysWorked: 10, WorkingDays: 20,
			BasicPay: dec("15000"), Allowances: dec("0"), GrossPay: dec("15000"),
			Deductions: []engine.Deduction{
				{Name: "sss", Amount: dec("675")},
				{Name: "loan", Amount: dec("500")},
			},
			TotalDeductions: dec("1175"), NetPay: dec("13825"),
		},
	}
}

func TestPayrollRegister_Layout(t *testing.T) {
	// GIVEN: two records with overlapping deduction names
	// WHEN: building the register
	// THEN: deduction columns follow first-seen order and a TOTAL row closes the sheet
	f, err := report.PayrollRegister(registerRecords(), map[engine.EmployeeID]string{10001: "Garcia, Manuel"})
	require.NoError(t, err)
	book := reopen(t, f)

	assert.Equal(t, []string{report.SheetRegister}, book.GetSheetList())

	rows, err := book.GetRows(report.SheetRegister)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{
		"Employee ID", "Name", "Period", "Days Worked", "Working Days",
		"Basic Pay", "Allowances", "Gross Pay",
		"sss", "withholding_tax", "loan",
		"Total Deductions", "Net Pay",
	}, rows[0])

	assert.Equal(t, "10001", raw(t, book, report.SheetRegister, "A2"))
	assert.Equal(t, "Garcia, Manuel", raw(t, book, report.SheetRegister, "B2"))
	assert.Equal(t, "2024-06-01 to 2024-06-30", raw(t, book, report.SheetRegister, "C2"))
	assert.Equal(t, "53300", raw(t, book, report.SheetRegister, "H2"))
	assert.Equal(t, "4648.4", raw(t, book, report.SheetRegister, "J2"))
	assert.Equal(t, "47301.6", raw(t, book, report.SheetRegister, "M2"))
}

func TestPayrollRegister_MissingDeductionIsZero(t *testing.T) {
	f, err := report.PayrollRegister(registerRecords(), nil)
	require.NoError(t, err)
	book := reopen(t, f)

	assert.Equal(t, "", raw(t, book, report.SheetRegister, "B3"))
	assert.Equal(t, "0", raw(t, book, report.SheetRegister, "J3"), "withholding_tax absent for 10002")
	assert.Equal(t, "500", raw(t, book, report.SheetRegister, "K3"))
}

func TestPayrollRegister_Totals(t *testing.T) {
	f, err := report.PayrollRegister(registerRecords(), nil)
	require.NoError(t, err)
	book := reopen(t, f)

	assert.Equal(t, "TOTAL", raw(t, book, report.SheetRegister, "A4"))
	assert.Equal(t, "2 employees", raw(t, book, report.SheetRegister, "B4"))
	assert.Equal(t, "68300", raw(t, book, report.SheetRegister, "H4"))
	assert.Equal(t, "2025", raw(t, book, report.SheetRegister, "I4"))
	assert.Equal(t, "61126.6", raw(t, book, report.SheetRegister, "M4"))
}

func TestPayrollRegister_Empty(t *testing.T) {
	f, err := report.PayrollRegister(nil, nil)
	require.NoError(t, err)
	book := reopen(t, f)

	rows, err := book.GetRows(report.SheetRegister)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Net Pay", rows[0][len(rows[0])-1])
	assert.Equal(t, "0 employees", raw(t, book, report.SheetRegister, "B2"))
}

// =============================================================================
// ATTENDANCE SHEET
// =============================================================================

func TestAttendanceSheet(t *testing.T) {
	// GIVEN: one late day, one full day and one absence
	// WHEN: exporting the aggregate
	// THEN: each day is a row and the summary sits below the days
	in1, out1 := engine.MustClock(8, 15), engine.MustClock(17, 0)
	in2, out2 := engine.MustClock(8, 0), engine.MustClock(17, 0)
	entries := []engine.AttendanceEntry{
		{EmployeeID: 10001, Date: engine.NewDate(2024, time.June, 4), LogIn: &in2, LogOut: &out2},
		{EmployeeID: 10001, Date: engine.NewDate(2024, time.June, 3), LogIn: &in1, LogOut: &out1},
		{EmployeeID: 10001, Date: engine.NewDate(2024, time.June, 5)},
	}
	agg, err := engine.Aggregate(10001, engine.MonthPeriod(2024, time.June), entries, nil)
	require.NoError(t, err)

	f, err := report.AttendanceSheet(agg)
	require.NoError(t, err)
	book := reopen(t, f)
	const sheet = report.SheetAttendance

	assert.Equal(t, "2024-06-03", raw(t, book, sheet, "A2"))
	assert.Equal(t, "Mon", raw(t, book, sheet, "B2"))
	assert.Equal(t, "08:15", raw(t, book, sheet, "C2"))
	assert.Equal(t, "8.75", raw(t, book, sheet, "E2"))
	assert.Equal(t, "Late", raw(t, book, sheet, "F2"))
	assert.Equal(t, "15", raw(t, book, sheet, "G2"))

	assert.Equal(t, "Present", raw(t, book, sheet, "F3"))
	assert.Equal(t, "Absent", raw(t, book, sheet, "F4"))
	assert.Equal(t, "", raw(t, book, sheet, "C4"))

	// 3 days -> summary starts at row 6
	assert.Equal(t, "Employee ID", raw(t, book, sheet, "A6"))
	assert.Equal(t, "10001", raw(t, book, sheet, "B6"))
	assert.Equal(t, "Days Worked", raw(t, book, sheet, "A9"))
	assert.Equal(t, "2", raw(t, book, sheet, "B9"))
	assert.Equal(t, "Total Hours", raw(t, book, sheet, "A11"))
	assert.Equal(t, "17.75", raw(t, book, sheet, "B11"))
	assert.Equal(t, "Attendance Rate", raw(t, book, sheet, "A13"))
	assert.Equal(t, "0.1", raw(t, book, sheet, "B13"))
	assert.Equal(t, "15", raw(t, book, sheet, "B15"))
}

// =============================================================================
// ATTENDANCE IMPORT
// =============================================================================

func workbook(t *testing.T, rows ...[]any) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	header := []any{"Employee #", "Date", "Log In", "Log Out"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func TestReadAttendance_TextCells(t *testing.T) {
	r := workbook(t,
		[]any{"10001", "2024-06-03", "08:00", "17:00"},
		[]any{10001, "06/04/2024", "8:30", "16:45:30"},
		[]any{10002, "2024-06-03"},
	)

	entries, err := report.ReadAttendance(r)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, engine.EmployeeID(10001), entries[0].EmployeeID)
	assert.Equal(t, "2024-06-03", entries[0].Date.String())
	assert.Equal(t, "08:00", entries[0].LogIn.String())

	assert.Equal(t, "2024-06-04", entries[1].Date.String())
	assert.Equal(t, "08:30", entries[1].LogIn.String())
	assert.Equal(t, "16:45:30", entries[1].LogOut.String())

	assert.Nil(t, entries[2].LogIn, "missing log-in is absent")
	assert.Nil(t, entries[2].LogOut)
}

func TestReadAttendance_DateCells(t *testing.T) {
	// GIVEN: real date/time cells, as a spreadsheet export would store them
	r := workbook(t,
		[]any{10001, time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC), 8.5 / 24, 17.0 / 24},
	)

	entries, err := report.ReadAttendance(r)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "2024-06-03", entries[0].Date.String())
	assert.Equal(t, "08:30", entries[0].LogIn.String())
	assert.Equal(t, "17:00", entries[0].LogOut.String())
}

func TestReadAttendance_SkipsBlankRows(t *testing.T) {
	r := workbook(t,
		[]any{10001, "2024-06-03", "08:00", "17:00"},
		[]any{"", "", "", ""},
		[]any{10001, "2024-06-04", "08:00", "17:00"},
	)

	entries, err := report.ReadAttendance(r)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestReadAttendance_Errors(t *testing.T) {
	tests := []struct {
		name    string
		row     []any
		wantErr error
		wantMsg string
	}{
		{"bad id", []any{"abc", "2024-06-03"}, report.ErrMalformedSheet, "row 2"},
		{"bad date", []any{10001, "June third"}, report.ErrMalformedSheet, "invalid date"},
		{"bad time", []any{10001, "2024-06-03", "25:00"}, report.ErrMalformedSheet, "invalid clock"},
		{"missing date", []any{10001}, report.ErrMalformedSheet, "expected employee #"},
		{"log-out before log-in", []any{10001, "2024-06-03", "17:00", "08:00"}, engine.ErrInvalidAttendance, "precedes"},
		{"non-positive id", []any{0, "2024-06-03"}, engine.ErrInvalidAttendance, "positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := report.ReadAttendance(workbook(t, tt.row))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestReadAttendance_NotAWorkbook(t *testing.T) {
	_, err := report.ReadAttendance(bytes.NewReader([]byte("employee,date\n10001,2024-06-03\n")))
	assert.ErrorIs(t, err, report.ErrMalformedSheet)
}

func TestReadAttendance_RoundTripsThroughAggregate(t *testing.T) {
	r := workbook(t,
		[]any{10001, "2024-06-03", "08:00", "17:00"},
		[]any{10001, "2024-06-04", "08:10", "17:00"},
	)
	entries, err := report.ReadAttendance(r)
	require.NoError(t, err)

	agg, err := engine.Aggregate(10001, engine.MonthPeriod(2024, time.June), entries, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, agg.DaysWorked)
	assert.Equal(t, 10, agg.TotalLateMinutes)
}
