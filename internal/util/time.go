package util

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultReportTimezone is where ASIC publishes its daily reports.
const DefaultReportTimezone = "Australia/Sydney"

// LoadReportLocation loads the named timezone, falling back to UTC.
func LoadReportLocation(name string) *time.Location {
	if name == "" {
		name = DefaultReportTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Errorf("Failed to load location '%s': %v. Falling back to UTC.", name, err)
		return time.UTC
	}
	return loc
}

// IsWeekend reports whether t falls on a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}

// RecentBusinessDays walks back over the last `days` calendar days starting at
// input (inclusive) and returns the weekdays, most recent first.
// It does not know about public holidays.
func RecentBusinessDays(input time.Time, loc *time.Location, days int) []time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := input.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	var out []time.Time
	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, -i)
		if IsWeekend(d) {
			continue
		}
		out = append(out, d)
	}
	return out
}
