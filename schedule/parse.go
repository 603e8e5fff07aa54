package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError describes why an expression was rejected. It is always produced
// at parse time; a Schedule that parsed successfully never fails later for
// syntactic reasons.
type ParseError struct {
	Expression string
	Field      string // empty when the whole expression is malformed
	Reason     string
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid cron expression %q: %s", e.Expression, e.Reason)
	}
	return fmt.Sprintf("invalid cron expression %q: field %s: %s", e.Expression, e.Field, e.Reason)
}

func parseErrf(expr, field, format string, args ...any) *ParseError {
	return &ParseError{Expression: expr, Field: field, Reason: fmt.Sprintf(format, args...)}
}

// fieldSpec describes the integer domain of one cron field and the name
// aliases it accepts.
type fieldSpec struct {
	name     string
	min, max int
	names    map[string]int
}

var (
	secondsSpec = fieldSpec{name: "seconds", min: 0, max: 59}
	minutesSpec = fieldSpec{name: "minutes", min: 0, max: 59}
	hoursSpec   = fieldSpec{name: "hours", min: 0, max: 23}
	domSpec     = fieldSpec{name: "day-of-month", min: 1, max: 31}
	monthSpec   = fieldSpec{name: "month", min: 1, max: 12, names: monthNames}
	dowSpec     = fieldSpec{name: "day-of-week", min: 0, max: 6, names: dowNames}
	yearSpec    = fieldSpec{name: "year", min: 1970, max: 2099}
)

var monthNames = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

var dowNames = map[string]int{
	"sun": 0, "mon": 1, "tue": 2, "wed": 3, "thu": 4, "fri": 5, "sat": 6,
}

// presets are pure textual aliases, resolved before any field splitting.
// All expand to the full seven-field form.
var presets = map[string]string{
	"@yearly":   "0 0 0 1 1 * *",
	"@annually": "0 0 0 1 1 * *",
	"@monthly":  "0 0 0 1 * * *",
	"@weekly":   "0 0 0 * * 0 *",
	"@daily":    "0 0 0 * * * *",
	"@midnight": "0 0 0 * * * *",
	"@hourly":   "0 0 * * * * *",
}

// Parse turns a cron expression into a Schedule.
//
// An expression has five to seven whitespace-separated fields:
//
//	[seconds] minutes hours day-of-month month day-of-week [year]
//
// With five fields, seconds and year default to wildcard. With six fields the
// expression is first read as seconds-prefixed; if that fails it is retried
// as year-suffixed, and the seconds-prefixed error wins when both fail.
func Parse(expr string) (*Schedule, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return nil, parseErrf(expr, "", "empty expression")
	}

	if alias, ok := presets[strings.ToLower(trimmed)]; ok {
		s, err := Parse(alias)
		if err != nil {
			return nil, err
		}
		s.source = trimmed
		return s, nil
	}

	fields := strings.Fields(trimmed)

	var texts [7]string // seconds, minutes, hours, dom, month, dow, year
	switch len(fields) {
	case 5:
		texts = [7]string{"*", fields[0], fields[1], fields[2], fields[3], fields[4], "*"}
	case 6:
		// Seconds-prefixed takes priority over year-suffixed.
		withSeconds := [7]string{fields[0], fields[1], fields[2], fields[3], fields[4], fields[5], "*"}
		s, err := parseFields(trimmed, withSeconds)
		if err == nil {
			return s, nil
		}
		withYear := [7]string{"*", fields[0], fields[1], fields[2], fields[3], fields[4], fields[5]}
		if s2, err2 := parseFields(trimmed, withYear); err2 == nil {
			return s2, nil
		}
		return nil, err
	case 7:
		copy(texts[:], fields)
	default:
		return nil, parseErrf(trimmed, "", "expected 5 to 7 fields, got %d", len(fields))
	}

	return parseFields(trimmed, texts)
}

// MustParse is like Parse but panics on error. Intended for static
// expressions known to be valid.
func MustParse(expr string) *Schedule {
	s, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return s
}

func parseFields(expr string, texts [7]string) (*Schedule, error) {
	s := &Schedule{source: expr}

	var err error
	if s.seconds, err = parseField(expr, secondsSpec, texts[0]); err != nil {
		return nil, err
	}
	if s.minutes, err = parseField(expr, minutesSpec, texts[1]); err != nil {
		return nil, err
	}
	if s.hours, err = parseField(expr, hoursSpec, texts[2]); err != nil {
		return nil, err
	}
	if s.dom, err = parseField(expr, domSpec, texts[3]); err != nil {
		return nil, err
	}
	if s.month, err = parseField(expr, monthSpec, texts[4]); err != nil {
		return nil, err
	}
	if s.dow, err = parseField(expr, dowSpec, texts[5]); err != nil {
		return nil, err
	}
	if s.year, err = parseField(expr, yearSpec, texts[6]); err != nil {
		return nil, err
	}
	return s, nil
}

// parseField parses one field text: a comma-separated union of items.
func parseField(expr string, spec fieldSpec, text string) (fieldSet, error) {
	var f fieldSet
	for _, item := range strings.Split(text, ",") {
		if item == "" {
			return fieldSet{}, parseErrf(expr, spec.name, "empty list item")
		}
		if err := parseItem(expr, spec, &f, item); err != nil {
			return fieldSet{}, err
		}
	}
	if f.wildcard {
		// A wildcard item subsumes everything else in the list.
		return wildcardField(), nil
	}
	return f, nil
}

func parseItem(expr string, spec fieldSpec, f *fieldSet, item string) error {
	lower := strings.ToLower(item)

	// Calendar-relative markers, day fields only.
	switch spec.name {
	case "day-of-month":
		switch lower {
		case "l":
			f.lastDay = true
			return nil
		case "lw":
			f.lastWeekday = true
			return nil
		}
		if n, ok := strings.CutSuffix(lower, "w"); ok && n != "" {
			day, err := parseValue(expr, spec, n)
			if err != nil {
				return err
			}
			f.nearestWeekday = append(f.nearestWeekday, day)
			return nil
		}
	case "day-of-week":
		if lower == "l" {
			// Quartz compatibility: a bare L in day-of-week means Saturday.
			f.addValue(6)
			return nil
		}
		if n, ok := strings.CutSuffix(lower, "l"); ok && n != "" {
			day, err := parseValue(expr, spec, n)
			if err != nil {
				return err
			}
			f.lastOfWeekday = append(f.lastOfWeekday, day)
			return nil
		}
		if day, k, ok := strings.Cut(lower, "#"); ok {
			w, err := parseValue(expr, spec, day)
			if err != nil {
				return err
			}
			occ, err := strconv.Atoi(k)
			if err != nil || occ < 1 || occ > 5 {
				return parseErrf(expr, spec.name, "occurrence in %q must be 1-5", item)
			}
			f.nth = append(f.nth, [2]int{w, occ})
			return nil
		}
	}

	// [*|a[-b]][/s]
	base, stepText, hasStep := strings.Cut(lower, "/")
	step := 1
	if hasStep {
		v, err := strconv.Atoi(stepText)
		if err != nil {
			return parseErrf(expr, spec.name, "malformed step in %q", item)
		}
		if v <= 0 {
			return parseErrf(expr, spec.name, "step in %q must be positive", item)
		}
		step = v
	}

	if base == "*" || base == "?" {
		if !hasStep {
			f.wildcard = true
			return nil
		}
		f.addRange(spec.min, spec.max, step)
		return nil
	}

	loText, hiText, isRange := strings.Cut(base, "-")
	lo, err := parseValue(expr, spec, loText)
	if err != nil {
		return err
	}

	switch {
	case isRange:
		hi, err := parseValue(expr, spec, hiText)
		if err != nil {
			return err
		}
		if hi < lo {
			return parseErrf(expr, spec.name, "range %q is inverted", item)
		}
		f.addRange(lo, hi, step)
	case hasStep:
		// N/S runs from N to the field maximum.
		f.addRange(lo, spec.max, step)
	default:
		f.addValue(lo)
	}
	return nil
}

// parseValue parses a single integer or name alias and checks the domain.
func parseValue(expr string, spec fieldSpec, text string) (int, error) {
	if spec.names != nil {
		if v, ok := spec.names[strings.ToLower(text)]; ok {
			return v, nil
		}
	}
	v, err := strconv.Atoi(text)
	if err != nil {
		return 0, parseErrf(expr, spec.name, "unrecognized token %q", text)
	}
	if v < spec.min || v > spec.max {
		return 0, parseErrf(expr, spec.name, "value %d out of range %d-%d", v, spec.min, spec.max)
	}
	return v, nil
}
