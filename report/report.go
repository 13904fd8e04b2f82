/*
Package report reads and writes payroll spreadsheets.

PURPOSE:
  Payroll staff live in spreadsheets. This package exports payroll registers
  and attendance sheets as XLSX and imports attendance logs from XLSX, using
  github.com/xuri/excelize/v2.

EXPORTS:
  PayrollRegister: one row per employee for a period, one column per deduction
  AttendanceSheet: one row per evaluated day plus a summary block

IMPORTS:
  ReadAttendance: first sheet, header row, then
                  Employee # | Date | Log In | Log Out

SEE ALSO:
  - api/: GET /api/payroll/register.xlsx, POST /api/attendance/import
*/
package report

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Sheet names.
const (
	SheetRegister   = "Payroll Register"
	SheetAttendance = "Attendance"
)

// excelize built-in number formats
const (
	numFmtMoney   = 4  // #,##0.00
	numFmtPercent = 10 // 0.00%
)

type styles struct {
	header  int
	money   int
	percent int
	total   int
}

func newStyles(f *excelize.File) (styles, error) {
	var s styles
	var err error
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return s, err
	}
	if s.money, err = f.NewStyle(&excelize.Style{NumFmt: numFmtMoney}); err != nil {
		return s, err
	}
	if s.percent, err = f.NewStyle(&excelize.Style{NumFmt: numFmtPercent}); err != nil {
		return s, err
	}
	if s.total, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, NumFmt: numFmtMoney}); err != nil {
		return s, err
	}
	return s, nil
}

// newBook creates a workbook whose only sheet is called name.
func newBook(name string) (*excelize.File, styles, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", name); err != nil {
		f.Close()
		return nil, styles{}, err
	}
	st, err := newStyles(f)
	if err != nil {
		f.Close()
		return nil, styles{}, err
	}
	return f, st, nil
}

// writeRow writes values starting at column 1 of row.
func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// styleRange applies style to columns [fromCol, toCol] of row.
func styleRange(f *excelize.File, sheet string, row, fromCol, toCol, style int) error {
	from, err := excelize.CoordinatesToCellName(fromCol, row)
	if err != nil {
		return err
	}
	to, err := excelize.CoordinatesToCellName(toCol, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, from, to, style)
}

func freezeHeader(f *excelize.File, sheet string) error {
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func money(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func columnName(col int) string {
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		panic(fmt.Sprintf("report: column %d: %v", col, err))
	}
	return name
}
