package report

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/motorph/payroll-engine/engine"
	"github.com/xuri/excelize/v2"
)

// ErrMalformedSheet is returned when an attendance workbook cannot be read.
var ErrMalformedSheet = errors.New("malformed attendance sheet")

// Accepted text date layouts, tried in order after Excel serial numbers.
var dateLayouts = []string{"2006-01-02", "01/02/2006", "1/2/2006"}

// ReadAttendance reads attendance entries from the first sheet of an XLSX
// workbook. The first row is a header. Blank rows are skipped. Dates and times
// may be real Excel date/time cells or text ("2024-06-03", "08:00").
//
// Every entry is validated; the first bad row fails the whole import with an
// error naming the row and matching engine.ErrInvalidAttendance or
// ErrMalformedSheet.
func ReadAttendance(r io.Reader) ([]engine.AttendanceEntry, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %w", ErrMalformedSheet, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: no sheets found", ErrMalformedSheet)
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: read rows: %v", ErrMalformedSheet, err)
	}

	var entries []engine.AttendanceEntry
	for i, row := range rows {
		if i == 0 || blank(row) {
			continue
		}
		entry, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseRow(row []string) (engine.AttendanceEntry, error) {
	if len(row) < 2 {
		return engine.AttendanceEntry{}, fmt.Errorf("%w: expected employee # and date", ErrMalformedSheet)
	}
	id, err := parseEmployeeID(cell(row, 0))
	if err != nil {
		return engine.AttendanceEntry{}, err
	}
	date, err := parseDate(cell(row, 1))
	if err != nil {
		return engine.AttendanceEntry{}, err
	}
	logIn, err := parseClock(cell(row, 2))
	if err != nil {
		return engine.AttendanceEntry{}, err
	}
	logOut, err := parseClock(cell(row, 3))
	if err != nil {
		return engine.AttendanceEntry{}, err
	}
	return engine.NewAttendanceEntry(id, date, logIn, logOut)
}

func parseEmployeeID(s string) (engine.EmployeeID, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return engine.EmployeeID(n), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) {
		return engine.EmployeeID(f), nil
	}
	return 0, fmt.Errorf("%w: invalid employee # %q", ErrMalformedSheet, s)
}

func parseDate(s string) (engine.Date, error) {
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return engine.Date{}, fmt.Errorf("%w: invalid date %q: %v", ErrMalformedSheet, s, err)
		}
		return engine.DateOf(t), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return engine.DateOf(t), nil
		}
	}
	return engine.Date{}, fmt.Errorf("%w: invalid date %q", ErrMalformedSheet, s)
}

// parseClock returns nil for an empty cell. Numeric cells are Excel day
// fractions.
func parseClock(s string) (*engine.Clock, error) {
	if s == "" {
		return nil, nil
	}
	if frac, err := strconv.ParseFloat(s, 64); err == nil {
		secs := int(math.Round((frac - math.Floor(frac)) * 86400))
		c, err := engine.NewClock(secs/3600, secs%3600/60, secs%60)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid time %q: %v", ErrMalformedSheet, s, err)
		}
		return &c, nil
	}
	c, err := engine.ParseClock(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSheet, err)
	}
	return &c, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
