// Package calendar provides a partial-precision calendar date value.
package calendar

import (
	"cmp"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Precision is how much of a calendar date is known.
type Precision int

const (
	PrecisionNone Precision = iota
	PrecisionYear
	PrecisionMonth
	PrecisionDay
)

// String returns the precision name.
func (p Precision) String() string {
	switch p {
	case PrecisionYear:
		return "year"
	case PrecisionMonth:
		return "month"
	case PrecisionDay:
		return "day"
	default:
		return "none"
	}
}

// isoPattern matches the wire format, with unpadded month and day accepted.
var isoPattern = regexp.MustCompile(`^(\d{4})(?:-(\d{1,2})(?:-(\d{1,2}))?)?$`)

// Value is a calendar date known to year, month or day precision.
// The zero Value means no date is known.
//
// Values are immutable; all constructors validate that a day implies a
// month and a month implies a year.
type Value struct {
	year  int
	month int // 1-12, 0 when unknown
	day   int // 1-31, 0 when unknown
}

// Year returns a year-precision value.
func Year(year int) (Value, error) {
	if year < 1 || year > 9999 {
		return Value{}, fmt.Errorf("year %d out of range", year)
	}
	return Value{year: year}, nil
}

// YearMonth returns a month-precision value.
func YearMonth(year, month int) (Value, error) {
	v, err := Year(year)
	if err != nil {
		return Value{}, err
	}
	if month < 1 || month > 12 {
		return Value{}, fmt.Errorf("month %d out of range", month)
	}
	v.month = month
	return v, nil
}

// Date returns a day-precision value. The day must exist in the given month.
func Date(year, month, day int) (Value, error) {
	v, err := YearMonth(year, month)
	if err != nil {
		return Value{}, err
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if day < 1 || t.Day() != day {
		return Value{}, fmt.Errorf("day %d out of range for %04d-%02d", day, year, month)
	}
	v.day = day
	return v, nil
}

// FromTime returns a day-precision value for t.
func FromTime(t time.Time) Value {
	return Value{year: t.Year(), month: int(t.Month()), day: t.Day()}
}

// Parse reads a value from its wire format: YYYY, YYYY-MM or YYYY-MM-DD.
// Single-digit months and days are accepted.
func Parse(s string) (Value, error) {
	m := isoPattern.FindStringSubmatch(s)
	if m == nil {
		return Value{}, fmt.Errorf("invalid calendar value %q", s)
	}

	year, _ := strconv.Atoi(m[1])
	if m[2] == "" {
		return Year(year)
	}
	month, _ := strconv.Atoi(m[2])
	if m[3] == "" {
		return YearMonth(year, month)
	}
	day, _ := strconv.Atoi(m[3])
	return Date(year, month, day)
}

// MustParse is like Parse but panics on error. Intended for tests and tables.
func MustParse(s string) Value {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsZero reports whether v carries no date.
func (v Value) IsZero() bool {
	return v.year == 0
}

// Precision returns how much of the date is known.
func (v Value) Precision() Precision {
	switch {
	case v.year == 0:
		return PrecisionNone
	case v.month == 0:
		return PrecisionYear
	case v.day == 0:
		return PrecisionMonth
	default:
		return PrecisionDay
	}
}

// Year returns the year component.
func (v Value) Year() int { return v.year }

// Month returns the month component, or 0 when unknown.
func (v Value) Month() int { return v.month }

// Day returns the day component, or 0 when unknown.
func (v Value) Day() int { return v.day }

// String returns the wire format, or "" for the zero value.
func (v Value) String() string {
	switch v.Precision() {
	case PrecisionYear:
		return fmt.Sprintf("%04d", v.year)
	case PrecisionMonth:
		return fmt.Sprintf("%04d-%02d", v.year, v.month)
	case PrecisionDay:
		return fmt.Sprintf("%04d-%02d-%02d", v.year, v.month, v.day)
	default:
		return ""
	}
}

// Compare orders values lexicographically on (year, month, day).
// A missing component sorts before any known one, so 2004 < 2004-01 < 2004-01-01.
func (v Value) Compare(other Value) int {
	switch {
	case v.year != other.year:
		return cmp.Compare(v.year, other.year)
	case v.month != other.month:
		return cmp.Compare(v.month, other.month)
	default:
		return cmp.Compare(v.day, other.day)
	}
}

// Before reports whether v sorts before other.
func (v Value) Before(other Value) bool { return v.Compare(other) < 0 }

// After reports whether v sorts after other.
func (v Value) After(other Value) bool { return v.Compare(other) > 0 }

// Equal reports whether both values have the same components and precision.
func (v Value) Equal(other Value) bool { return v == other }

// Contains reports whether other falls within the period v denotes,
// i.e. other shares every component v defines.
func (v Value) Contains(other Value) bool {
	if v.IsZero() || other.Precision() < v.Precision() {
		return false
	}
	if v.year != other.year {
		return false
	}
	if v.month != 0 && v.month != other.month {
		return false
	}
	if v.day != 0 && v.day != other.day {
		return false
	}
	return true
}

// Overlaps reports whether v and other share at least one day.
func (v Value) Overlaps(other Value) bool {
	return v.Contains(other) || other.Contains(v)
}

// First returns the first day of the period v denotes.
func (v Value) First() time.Time {
	month, day := v.month, v.day
	if month == 0 {
		month = 1
	}
	if day == 0 {
		day = 1
	}
	return time.Date(v.year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// Last returns the last day of the period v denotes.
func (v Value) Last() time.Time {
	switch v.Precision() {
	case PrecisionYear:
		return time.Date(v.year, time.December, 31, 0, 0, 0, 0, time.UTC)
	case PrecisionMonth:
		// Day 0 of the following month is the last day of this one.
		return time.Date(v.year, time.Month(v.month)+1, 0, 0, 0, 0, 0, time.UTC)
	default:
		return v.First()
	}
}

// MarshalText implements encoding.TextMarshaler.
func (v Value) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty text yields the zero value.
func (v *Value) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*v = Value{}
		return nil
	}
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
