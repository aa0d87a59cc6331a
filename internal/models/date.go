package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date is a calendar day as used by ASIC reports. It is comparable and can be
// used as a map key. The text form is DD/MM/YYYY.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const (
	dateLayout        = "02/01/2006"
	compactDateLayout = "20060102"
)

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a DD/MM/YYYY label. Single-digit day and month are accepted.
func ParseDate(s string) (Date, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("invalid date %q: expected DD/MM/YYYY", s)
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return Date{}, fmt.Errorf("invalid day in %q: %w", s, err)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return Date{}, fmt.Errorf("invalid month in %q: %w", s, err)
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return Date{}, fmt.Errorf("invalid year in %q: %w", s, err)
	}

	d := Date{Year: year, Month: time.Month(month), Day: day}
	if !d.valid() {
		return Date{}, fmt.Errorf("invalid date %q: out of range", s)
	}
	return d, nil
}

// ParseCompactDate parses an 8-digit YYYYMMDD report date.
func ParseCompactDate(s string) (Date, error) {
	t, err := time.Parse(compactDateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid report date %q: expected YYYYMMDD", s)
	}
	return DateOf(t), nil
}

// valid reports whether the fields survive a round trip through time.Date,
// which normalizes values like 31/02.
func (d Date) valid() bool {
	if d.Month < time.January || d.Month > time.December || d.Day < 1 {
		return false
	}
	return DateOf(d.Time()) == d
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Before reports whether d is an earlier day than o.
func (d Date) Before(o Date) bool {
	return d.Time().Before(o.Time())
}

// After reports whether d is a later day than o.
func (d Date) After(o Date) bool {
	return d.Time().After(o.Time())
}

// String returns DD/MM/YYYY.
func (d Date) String() string {
	return d.Time().Format(dateLayout)
}

// Compact returns YYYYMMDD.
func (d Date) Compact() string {
	return d.Time().Format(compactDateLayout)
}

// Display returns a human label like 17-Aug-2025.
func (d Date) Display() string {
	return d.Time().Format("02-Jan-2006")
}

// MarshalText implements encoding.TextMarshaler so Date can key JSON objects.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (d *Date) UnmarshalJSON(b []byte) error {
	return d.UnmarshalText([]byte(strings.Trim(string(b), `"`)))
}

// FormatReportDate converts a YYYYMMDD report date to DD/MM/YYYY.
// Anything that is not an 8-digit date is returned as "Unknown".
func FormatReportDate(reportDate string) string {
	d, err := ParseCompactDate(reportDate)
	if err != nil {
		return UnknownReportDate
	}
	return d.String()
}
