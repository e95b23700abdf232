package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/tartampluch/go-quickevent/internal/config"
)

// monthNames maps lower-cased month names and abbreviations to 0-indexed months.
var monthNames = map[string]int{
	"january":   0,
	"jan":       0,
	"february":  1,
	"feb":       1,
	"march":     2,
	"mar":       2,
	"april":     3,
	"apr":       3,
	"may":       4,
	"june":      5,
	"jun":       5,
	"july":      6,
	"jul":       6,
	"august":    7,
	"aug":       7,
	"september": 8,
	"sep":       8,
	"sept":      8,
	"october":   9,
	"oct":       9,
	"november":  10,
	"nov":       10,
	"december":  11,
	"dec":       11,
}

// weekdayNames maps lower-cased weekday names to an offset from Monday.
var weekdayNames = map[string]int{
	"monday":    0,
	"mon":       0,
	"tuesday":   1,
	"tue":       1,
	"tues":      1,
	"wednesday": 2,
	"wed":       2,
	"thursday":  3,
	"thu":       3,
	"thurs":     3,
	"friday":    4,
	"fri":       4,
	"saturday":  5,
	"sat":       5,
	"sunday":    6,
	"sun":       6,
}

// lookupAll returns the table value of every word present in table, in order.
// Unknown words are skipped.
func lookupAll(words []string, table map[string]int) []int {
	var out []int
	for _, w := range words {
		if v, ok := table[strings.ToLower(w)]; ok {
			out = append(out, v)
		}
	}
	return out
}

// startOfDay truncates t to midnight in its own location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// mondayIndex returns the weekday of t with Monday = 0.
func mondayIndex(t time.Time) int {
	return (int(t.Weekday()) + config.DaysPerWeek - 1) % config.DaysPerWeek
}

// daysIn returns the number of days of the month containing t.
func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// addMonths moves t by n calendar months, clamping the day to the end of the
// target month (Jan 31 + 1 month = Feb 28/29) instead of overflowing.
func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(first.Year(), first.Month(), t.Location()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func addYears(t time.Time, n int) time.Time {
	return addMonths(t, 12*n)
}

// civilDate builds a midnight date and rejects days the month does not have.
func civilDate(year int, month time.Month, day int, loc *time.Location) (time.Time, error) {
	if month < time.January || month > time.December || day < 1 || day > daysIn(year, month, loc) {
		return time.Time{}, invalid(config.ErrBadCalendarDate, fmt.Sprintf("%04d-%02d-%02d", year, int(month), day))
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc), nil
}

// daysBetween counts calendar days from a to b, ignoring the clock.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
