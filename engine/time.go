package engine

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Civil calendar date (attendance and period boundaries)
// =============================================================================

// Date is a calendar date normalized to UTC midnight.
// The zero value means "missing".
type Date struct {
	t time.Time
}

const dateLayout = "2006-01-02"

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return Date{t: t}, nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// Properties
func (d Date) Year() int              { return d.t.Year() }
func (d Date) Month() time.Month      { return d.t.Month() }
func (d Date) Day() int               { return d.t.Day() }
func (d Date) Weekday() time.Weekday  { return d.t.Weekday() }
func (d Date) IsZero() bool           { return d.t.IsZero() }
func (d Date) Time() time.Time        { return d.t }
func (d Date) IsWeekday() bool        { wd := d.Weekday(); return wd != time.Saturday && wd != time.Sunday }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(dateLayout)
}

// MarshalText renders the date as YYYY-MM-DD.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// CLOCK - Time of day (log-in / log-out / shift boundaries)
// =============================================================================

// Clock is a time of day with second precision, stored as seconds since midnight.
type Clock struct {
	sec int
}

func NewClock(hour, minute, second int) (Clock, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return Clock{}, fmt.Errorf("invalid clock time %02d:%02d:%02d", hour, minute, second)
	}
	return Clock{sec: hour*3600 + minute*60 + second}, nil
}

// MustClock is NewClock for literals known to be valid. Panics otherwise.
func MustClock(hour, minute int) Clock {
	c, err := NewClock(hour, minute, 0)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseClock accepts "15:04" or "15:04:05".
func ParseClock(s string) (Clock, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return NewClock(t.Hour(), t.Minute(), t.Second())
		}
	}
	return Clock{}, fmt.Errorf("invalid clock time %q (use HH:MM or HH:MM:SS)", s)
}

func (c Clock) Hour() int   { return c.sec / 3600 }
func (c Clock) Minute() int { return c.sec % 3600 / 60 }
func (c Clock) Second() int { return c.sec % 60 }

func (c Clock) Before(other Clock) bool { return c.sec < other.sec }
func (c Clock) After(other Clock) bool  { return c.sec > other.sec }
func (c Clock) Equal(other Clock) bool  { return c.sec == other.sec }

// Sub returns c - other.
func (c Clock) Sub(other Clock) time.Duration {
	return time.Duration(c.sec-other.sec) * time.Second
}

func (c Clock) String() string {
	if c.Second() != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", c.Hour(), c.Minute(), c.Second())
	}
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Clock) UnmarshalText(b []byte) error {
	parsed, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ClockPtr is a convenience for optional log-in/log-out fields.
func ClockPtr(c Clock) *Clock { return &c }

// =============================================================================
// SHIFT - Standard working hours for lateness/undertime
// =============================================================================

// Shift defines the standard start and end of a working day.
type Shift struct {
	Start Clock
	End   Clock
}

// DefaultShift is 08:00-17:00.
func DefaultShift() Shift {
	return Shift{Start: MustClock(8, 0), End: MustClock(17, 0)}
}

// NewShift fails when end does not come after start.
func NewShift(start, end Clock) (Shift, error) {
	if !end.After(start) {
		return Shift{}, fmt.Errorf("invalid shift %s-%s: end must be after start", start, end)
	}
	return Shift{Start: start, End: end}, nil
}

func (s Shift) String() string { return s.Start.String() + "-" + s.End.String() }
