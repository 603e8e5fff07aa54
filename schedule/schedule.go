// Package schedule implements cron expression parsing and fire-time
// computation. A Schedule is the parsed, immutable representation of a cron
// expression; it is safe for concurrent use and may be shared across any
// number of job loops.
package schedule

import (
	"sort"
	"time"
)

// Schedule is the parsed form of a cron expression. The zero value is not
// usable; construct one via Parse or MustParse.
type Schedule struct {
	source string

	seconds fieldSet
	minutes fieldSet
	hours   fieldSet
	dom     fieldSet
	month   fieldSet
	dow     fieldSet
	year    fieldSet
}

// String returns the expression the schedule was parsed from.
func (s *Schedule) String() string {
	return s.source
}

// fieldSet holds the constraint for a single cron field: a wildcard, a set of
// allowed integers, or (day fields only) calendar-relative special markers.
type fieldSet struct {
	wildcard bool
	values   []int // sorted ascending, deduplicated

	// day-of-month specials
	lastDay        bool  // L
	lastWeekday    bool  // LW
	nearestWeekday []int // NW, day numbers

	// day-of-week specials
	lastOfWeekday []int    // NL, weekday values
	nth           [][2]int // N#K, {weekday, occurrence}
}

func wildcardField() fieldSet {
	return fieldSet{wildcard: true}
}

// contains reports whether v satisfies the plain (non-special) constraint.
func (f *fieldSet) contains(v int) bool {
	if f.wildcard {
		return true
	}
	i := sort.SearchInts(f.values, v)
	return i < len(f.values) && f.values[i] == v
}

// restricted reports whether the field constrains anything at all.
func (f *fieldSet) restricted() bool {
	return !f.wildcard
}

func (f *fieldSet) addValue(v int) {
	i := sort.SearchInts(f.values, v)
	if i < len(f.values) && f.values[i] == v {
		return
	}
	f.values = append(f.values, 0)
	copy(f.values[i+1:], f.values[i:])
	f.values[i] = v
}

func (f *fieldSet) addRange(lo, hi, step int) {
	for v := lo; v <= hi; v += step {
		f.addValue(v)
	}
}

// daysInMonth returns the number of days in the given month.
func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// lastWeekdayOfMonth returns the day number of the last Monday-to-Friday day
// of the given month.
func lastWeekdayOfMonth(year int, month time.Month) int {
	d := daysInMonth(year, month)
	for {
		switch time.Date(year, month, d, 0, 0, 0, 0, time.UTC).Weekday() {
		case time.Saturday, time.Sunday:
			d--
		default:
			return d
		}
	}
}

// nearestWeekdayTo returns the Monday-to-Friday day nearest to day n of the
// given month, clamped so that it never leaves the month.
func nearestWeekdayTo(year int, month time.Month, n int) int {
	last := daysInMonth(year, month)
	if n > last {
		n = last
	}
	switch time.Date(year, month, n, 0, 0, 0, 0, time.UTC).Weekday() {
	case time.Saturday:
		if n == 1 {
			return 3 // Monday the 3rd
		}
		return n - 1
	case time.Sunday:
		if n == last {
			return n - 2
		}
		return n + 1
	default:
		return n
	}
}

// domMatches reports whether t's day-of-month satisfies the day-of-month
// constraint, including the L, LW and NW markers.
func (s *Schedule) domMatches(t time.Time) bool {
	f := &s.dom
	if f.wildcard {
		return true
	}
	d := t.Day()
	if f.contains(d) {
		return true
	}
	if f.lastDay && d == daysInMonth(t.Year(), t.Month()) {
		return true
	}
	if f.lastWeekday && d == lastWeekdayOfMonth(t.Year(), t.Month()) {
		return true
	}
	for _, n := range f.nearestWeekday {
		if d == nearestWeekdayTo(t.Year(), t.Month(), n) {
			return true
		}
	}
	return false
}

// dowMatches reports whether t's weekday satisfies the day-of-week
// constraint, including the NL and N#K markers.
func (s *Schedule) dowMatches(t time.Time) bool {
	f := &s.dow
	if f.wildcard {
		return true
	}
	w := int(t.Weekday())
	if f.contains(w) {
		return true
	}
	for _, n := range f.lastOfWeekday {
		// Last occurrence: no same weekday remains later in the month.
		if w == n && t.Day()+7 > daysInMonth(t.Year(), t.Month()) {
			return true
		}
	}
	for _, nk := range f.nth {
		if w == nk[0] && (t.Day()-1)/7+1 == nk[1] {
			return true
		}
	}
	return false
}

// dayMatches combines the day-of-month and day-of-week constraints. Both must
// hold when both are restricted; a wildcard field matches every day.
func (s *Schedule) dayMatches(t time.Time) bool {
	return s.domMatches(t) && s.dowMatches(t)
}
