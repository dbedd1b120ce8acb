// Package tzexpand turns the day and year specifications used by tzdata rule
// and zone lines into concrete calendar dates.
package tzexpand

import (
	"fmt"
	"time"

	"github.com/zonemap/tzdb/internal/unixtime"
	"github.com/zonemap/tzdb/tzdata"
)

// MinYear and MaxYear bound the range of calendar years this package will
// resolve a tzdata.MinYear/tzdata.MaxYear sentinel to. The 32-bit time_t
// range runs from 1901-12-13 to 2038-01-19; these are the first and last
// whole years inside it;
// a rule or era spanning "minimum"/"maximum" is materialized only within this
// window since there is no way to represent instants outside it without a
// host clock to anchor "now."
const (
	MinYear = 1902
	MaxYear = 2037
)

// ClampYear resolves a tzdata.Year, which may hold tzdata.MinYear or
// tzdata.MaxYear as a sentinel for the indefinite past or future, to a
// concrete calendar year within [MinYear, MaxYear].
func ClampYear(y tzdata.Year) int {
	switch y {
	case tzdata.MinYear:
		return MinYear
	case tzdata.MaxYear:
		return MaxYear
	default:
		return int(y)
	}
}

// ValidDayNum reports whether num is a valid day of the given month and
// year, for resolving a tzdata.Day in DayFormDayNum form.
func ValidDayNum(year int, month time.Month, num int) bool {
	return num >= 1 && num <= daysInMonth(int(month), year)
}

// DayOfMonth resolves a tzdata.Day specification for the given year and
// month to a concrete (year, month, day), accounting for DayFormAfter and
// DayFormBefore possibly overflowing into a neighboring month or year.
func DayOfMonth(year int, month time.Month, d tzdata.Day) (y int, m time.Month, day int) {
	switch d.Form {
	case tzdata.DayFormDayNum:
		return year, month, d.Num
	case tzdata.DayFormLast:
		return year, month, lastWeekdayOfMonth(year, int(month), int(d.Day))
	case tzdata.DayFormAfter:
		y, m, day := nextWeekday(year, int(month), d.Num, int(d.Day))
		return y, time.Month(m), day
	case tzdata.DayFormBefore:
		y, m, day := lastWeekday(year, int(month), d.Num, int(d.Day))
		return y, time.Month(m), day
	default:
		panic(fmt.Sprintf("tzexpand: invalid DayForm %v", d.Form))
	}
}

// Seconds converts a Time's time.Duration into whole seconds past midnight,
// rounding toward zero. tzdata allows fractional seconds in source files but
// materialization, like zic, operates at one-second resolution.
func Seconds(t tzdata.Time) int64 {
	return int64(t.Duration / time.Second)
}

// Midnight returns the Unix timestamp of 00:00:00 on the given calendar
// date. Callers add a (possibly negative, possibly >86400) seconds-past-
// midnight offset to the result themselves, rather than asking this function
// to reconstruct hours/minutes/seconds, since AT/SAVE/UNTIL times are not
// bounded to a single day.
func Midnight(year int, month time.Month, day int) int64 {
	return unixtime.FromDateTime(year, int(month), day, 0, 0, 0)
}
