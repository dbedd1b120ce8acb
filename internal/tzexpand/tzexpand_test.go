package tzexpand

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/zonemap/tzdb/tzdata"
)

func TestDayOfMonth(t *testing.T) {
	type in struct {
		Year  int
		Month time.Month
		Day   tzdata.Day
	}
	type want struct {
		Year  int
		Month time.Month
		Day   int
	}
	cases := []struct {
		in   in
		want want
	}{
		{in{2021, time.March, tzdata.Day{Form: tzdata.DayFormDayNum, Num: 23}}, want{2021, time.March, 23}},
		{in{2021, time.March, tzdata.Day{Form: tzdata.DayFormLast, Day: time.Sunday}}, want{2021, time.March, 28}},

		// Leap day.
		{in{2020, time.February, tzdata.Day{Form: tzdata.DayFormAfter, Day: time.Saturday, Num: 28}}, want{2020, time.February, 29}},
		{in{2020, time.February, tzdata.Day{Form: tzdata.DayFormLast, Day: time.Saturday}}, want{2020, time.February, 29}},
		// Same "day>=28" but in a non-leap year rolls into March.
		{in{2021, time.February, tzdata.Day{Form: tzdata.DayFormAfter, Day: time.Saturday, Num: 28}}, want{2021, time.March, 6}},

		// Day of week is on the exact day of month.
		{in{2021, time.March, tzdata.Day{Form: tzdata.DayFormAfter, Day: time.Sunday, Num: 28}}, want{2021, time.March, 28}},
		// Day of week is later in the same month.
		{in{2021, time.March, tzdata.Day{Form: tzdata.DayFormAfter, Day: time.Sunday, Num: 15}}, want{2021, time.March, 21}},
		// Day of week rolls into next month.
		{in{2021, time.March, tzdata.Day{Form: tzdata.DayFormAfter, Day: time.Sunday, Num: 30}}, want{2021, time.April, 4}},
		// Day of week rolls into next year.
		{in{2021, time.December, tzdata.Day{Form: tzdata.DayFormAfter, Day: time.Sunday, Num: 30}}, want{2022, time.January, 2}},

		// Day of week is on the exact day of month.
		{in{2021, time.March, tzdata.Day{Form: tzdata.DayFormBefore, Day: time.Sunday, Num: 28}}, want{2021, time.March, 28}},
		// Day of week is earlier in the same month.
		{in{2021, time.March, tzdata.Day{Form: tzdata.DayFormBefore, Day: time.Sunday, Num: 15}}, want{2021, time.March, 14}},
		// Day of week rolls into last month.
		{in{2021, time.March, tzdata.Day{Form: tzdata.DayFormBefore, Day: time.Sunday, Num: 5}}, want{2021, time.February, 28}},
		// Day of week rolls into last year.
		{in{2021, time.January, tzdata.Day{Form: tzdata.DayFormBefore, Day: time.Sunday, Num: 2}}, want{2020, time.December, 27}},
	}

	for _, c := range cases {
		y, m, d := DayOfMonth(c.in.Year, c.in.Month, c.in.Day)
		got := want{y, m, d}
		if diff := cmp.Diff(c.want, got); diff != "" {
			t.Errorf("DayOfMonth(%+v) mismatch (-want +got):\n%s", c.in, diff)
		}
	}
}

func TestClampYear(t *testing.T) {
	cases := []struct {
		in   tzdata.Year
		want int
	}{
		{tzdata.MinYear, MinYear},
		{tzdata.MaxYear, MaxYear},
		{1981, 1981},
	}
	for _, c := range cases {
		if got := ClampYear(c.in); got != c.want {
			t.Errorf("ClampYear(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestMidnight(t *testing.T) {
	// 1970-01-01 00:00:00 UTC is Unix second zero.
	if got := Midnight(1970, time.January, 1); got != 0 {
		t.Errorf("Midnight(1970-01-01) = %d, want 0", got)
	}
	// One day later is 86400 seconds in.
	if got := Midnight(1970, time.January, 2); got != 86400 {
		t.Errorf("Midnight(1970-01-02) = %d, want 86400", got)
	}
}
