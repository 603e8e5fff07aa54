package schedule

import "time"

// maxSearchYears bounds the forward search. An expression that cannot fire
// within this many years of the query (for example "0 0 0 30 2 * *") is
// treated as having no fire time.
const maxSearchYears = 5

// Next returns the first time satisfying the schedule strictly after the
// given instant, evaluated in that instant's location. The boolean is false
// when no such time exists within the search bound.
//
// The search advances a candidate field by field from the coarsest
// constraint down to seconds. Whenever a coarser field is bumped, all finer
// fields reset to their minimum, and the whole chain is re-checked from the
// top so carries propagate through month and year boundaries correctly.
func (s *Schedule) Next(after time.Time) (time.Time, bool) {
	loc := after.Location()
	t := after.Truncate(time.Second).Add(time.Second)
	limit := after.Year() + maxSearchYears

WRAP:
	if t.Year() > limit {
		return time.Time{}, false
	}

	for !s.year.contains(t.Year()) {
		t = time.Date(t.Year()+1, time.January, 1, 0, 0, 0, 0, loc)
		if t.Year() > limit {
			return time.Time{}, false
		}
	}

	for !s.month.contains(int(t.Month())) {
		t = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, 1, 0)
		if t.Month() == time.January {
			goto WRAP
		}
	}

	for !s.dayMatches(t) {
		day := t.Day()
		t = time.Date(t.Year(), t.Month(), day, 0, 0, 0, 0, loc).AddDate(0, 0, 1)
		if t.Day() < day {
			goto WRAP // rolled into the next month
		}
	}

	for !s.hours.contains(t.Hour()) {
		hour := t.Hour()
		t = time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, loc).Add(time.Hour)
		if t.Hour() < hour {
			goto WRAP
		}
	}

	for !s.minutes.contains(t.Minute()) {
		minute := t.Minute()
		t = t.Truncate(time.Minute).Add(time.Minute)
		if t.Minute() < minute {
			goto WRAP
		}
	}

	for !s.seconds.contains(t.Second()) {
		second := t.Second()
		t = t.Add(time.Second)
		if t.Second() < second {
			goto WRAP
		}
	}

	return t, true
}
