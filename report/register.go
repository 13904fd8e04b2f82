package report

import (
	"strconv"

	"github.com/motorph/payroll-engine/engine"
	"github.com/motorph/payroll-engine/payrun"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// registerFixedColumns precede the per-deduction columns.
var registerFixedColumns = []string{
	"Employee ID", "Name", "Period", "Days Worked", "Working Days",
	"Basic Pay", "Allowances", "Gross Pay",
}

// PayrollRegister builds the payroll register for records. names maps
// employee ids to display names; missing names are left blank.
//
// Columns: the fixed columns, one per deduction name (first-seen order across
// records), then Total Deductions and Net Pay. A bold TOTAL row closes the sheet.
func PayrollRegister(records []engine.PayrollRecord, names map[engine.EmployeeID]string) (*excelize.File, error) {
	f, st, err := newBook(SheetRegister)
	if err != nil {
		return nil, err
	}

	deductionNames := payrun.DeductionNames(records)
	header := make([]any, 0, len(registerFixedColumns)+len(deductionNames)+2)
	for _, h := range registerFixedColumns {
		header = append(header, h)
	}
	for _, n := range deductionNames {
		header = append(header, n)
	}
	header = append(header, "Total Deductions", "Net Pay")
	lastCol := len(header)
	firstMoneyCol := 6

	if err := writeRow(f, SheetRegister, 1, header); err != nil {
		f.Close()
		return nil, err
	}
	if err := styleRange(f, SheetRegister, 1, 1, lastCol, st.header); err != nil {
		f.Close()
		return nil, err
	}

	totals := make([]decimal.Decimal, lastCol+1)
	for i, rec := range records {
		row := i + 2
		itemized := rec.Itemized()
		amounts := []decimal.Decimal{rec.BasicPay, rec.Allowances, rec.GrossPay}
		for _, n := range deductionNames {
			amounts = append(amounts, itemized[n])
		}
		amounts = append(amounts, rec.TotalDeductions, rec.NetPay)

		values := []any{int64(rec.EmployeeID), names[rec.EmployeeID], rec.PeriodLabel, rec.DaysWorked, rec.WorkingDays}
		for j, a := range amounts {
			values = append(values, money(a))
			totals[firstMoneyCol+j] = totals[firstMoneyCol+j].Add(a)
		}
		if err := writeRow(f, SheetRegister, row, values); err != nil {
			f.Close()
			return nil, err
		}
		if err := styleRange(f, SheetRegister, row, firstMoneyCol, lastCol, st.money); err != nil {
			f.Close()
			return nil, err
		}
	}

	totalRow := len(records) + 2
	values := []any{"TOTAL", strconv.Itoa(len(records)) + " employees", nil, nil, nil}
	for col := firstMoneyCol; col <= lastCol; col++ {
		values = append(values, money(totals[col]))
	}
	if err := writeRow(f, SheetRegister, totalRow, values); err != nil {
		f.Close()
		return nil, err
	}
	if err := styleRange(f, SheetRegister, totalRow, 1, lastCol, st.total); err != nil {
		f.Close()
		return nil, err
	}

	if err := f.SetColWidth(SheetRegister, "B", "C", 26); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetColWidth(SheetRegister, columnName(firstMoneyCol), columnName(lastCol), 16); err != nil {
		f.Close()
		return nil, err
	}
	if err := freezeHeader(f, SheetRegister); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}
