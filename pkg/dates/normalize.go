// Package dates normalizes free-text infobox dates into partial-precision
// calendar values and splits combined "start – end" strings.
package dates

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/coolbeans/tenure/pkg/calendar"
	"github.com/coolbeans/tenure/pkg/locale"
)

// Shape is the form a translated date string was recognized as.
type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeISO
	ShapeDayMonthYear
	ShapeMonthDayYear
	ShapeMonthYear
	ShapeYear
)

func (s Shape) String() string {
	switch s {
	case ShapeISO:
		return "iso"
	case ShapeDayMonthYear:
		return "day-month-year"
	case ShapeMonthDayYear:
		return "month-day-year"
	case ShapeMonthYear:
		return "month-year"
	case ShapeYear:
		return "year"
	default:
		return "unknown"
	}
}

// Shape patterns, tried in this order; the first match wins.
var (
	// isoShape matches YYYY-MM and YYYY-MM-DD; a bare year is left to yearShape.
	isoShape = regexp.MustCompile(`^\d{4}-\d{1,2}(?:-\d{1,2})?$`)

	// dmyShape matches "3 June 2004", "3 June, 2004", "3 Jun. 2004".
	dmyShape = regexp.MustCompile(`^(\d{1,2}) (\p{L}+)\.?,? (\d{4})$`)

	// mdyShape matches "June 3, 2004" and "June 3 2004".
	mdyShape = regexp.MustCompile(`^(\p{L}+)\.? (\d{1,2}),? (\d{4})$`)

	// myShape matches "June 2004" and "June, 2004".
	myShape = regexp.MustCompile(`^(\p{L}+)\.?,? (\d{4})$`)

	// yearShape matches a bare four-digit year.
	yearShape = regexp.MustCompile(`^(\d{4})$`)
)

// months maps lowercase English month names and abbreviations to 1-12.
var months = map[string]int{
	"january": 1, "jan": 1,
	"february": 2, "feb": 2,
	"march": 3, "mar": 3,
	"april": 4, "apr": 4,
	"may": 5,
	"june": 6, "jun": 6,
	"july": 7, "jul": 7,
	"august": 8, "aug": 8,
	"september": 9, "sep": 9, "sept": 9,
	"october": 10, "oct": 10,
	"november": 11, "nov": 11,
	"december": 12, "dec": 12,
}

// Normalizer converts date expressions using one locale's rules.
// It holds no mutable state and is safe for concurrent use.
type Normalizer struct {
	rules *locale.Rules
}

// NewNormalizer returns a normalizer for the given rules. The rules must be
// compiled, which is the case for anything obtained from a registry.
func NewNormalizer(rules *locale.Rules) *Normalizer {
	return &Normalizer{rules: rules}
}

// Rules returns the locale rules in use.
func (n *Normalizer) Rules() *locale.Rules {
	return n.rules
}

// Normalize is a convenience for NewNormalizer(rules).Normalize(raw).
func Normalize(raw string, rules *locale.Rules) (calendar.Value, error) {
	return NewNormalizer(rules).Normalize(raw)
}

// Translate runs the tidy, pretidy and remap stages and returns the English
// text the shape classifier sees.
func (n *Normalizer) Translate(raw string) string {
	s := Tidy(raw)
	if s == "" {
		return ""
	}
	s = Tidy(n.rules.Translate(n.rules.ApplyPretidy(s)))
	return strings.TrimRight(strings.TrimLeft(s, ",; "), ",;. ")
}

// Normalize converts a single date expression into a calendar value.
//
// It returns the zero value and a nil error when raw is empty or consists
// only of incumbency markers. Text that matches none of the recognized
// shapes yields a *DateError wrapping ErrUnrecognizedShape; the normalizer
// never guesses.
func (n *Normalizer) Normalize(raw string) (calendar.Value, error) {
	translated := n.Translate(raw)
	if translated == "" {
		return calendar.Value{}, nil
	}

	v, err := parseShape(translated)
	if err != nil {
		return calendar.Value{}, &DateError{
			Input:      strings.TrimSpace(raw),
			Translated: translated,
			Locale:     n.rules.Code,
			Err:        err,
		}
	}
	return v, nil
}

// Classify reports which shape an already translated string has.
func Classify(translated string) Shape {
	switch {
	case isoShape.MatchString(translated):
		return ShapeISO
	case dmyShape.MatchString(translated):
		return ShapeDayMonthYear
	case mdyShape.MatchString(translated):
		return ShapeMonthDayYear
	case myShape.MatchString(translated):
		return ShapeMonthYear
	case yearShape.MatchString(translated):
		return ShapeYear
	default:
		return ShapeUnknown
	}
}

func parseShape(s string) (calendar.Value, error) {
	switch Classify(s) {
	case ShapeISO:
		v, err := calendar.Parse(s)
		if err != nil {
			return calendar.Value{}, fmt.Errorf("%w: %v", ErrInvalidDate, err)
		}
		return v, nil

	case ShapeDayMonthYear:
		m := dmyShape.FindStringSubmatch(s)
		return parseDay(m[1], m[2], m[3])

	case ShapeMonthDayYear:
		m := mdyShape.FindStringSubmatch(s)
		return parseDay(m[2], m[1], m[3])

	case ShapeMonthYear:
		m := myShape.FindStringSubmatch(s)
		month, err := monthIndex(m[1])
		if err != nil {
			return calendar.Value{}, err
		}
		year, _ := strconv.Atoi(m[2])
		v, err := calendar.YearMonth(year, month)
		if err != nil {
			return calendar.Value{}, fmt.Errorf("%w: %v", ErrInvalidDate, err)
		}
		return v, nil

	case ShapeYear:
		year, _ := strconv.Atoi(s)
		v, err := calendar.Year(year)
		if err != nil {
			return calendar.Value{}, fmt.Errorf("%w: %v", ErrInvalidDate, err)
		}
		return v, nil

	default:
		return calendar.Value{}, ErrUnrecognizedShape
	}
}

// parseDay builds a day-precision value through time.Parse so impossible
// days (31 June, 29 February 2023) are rejected.
func parseDay(day, monthName, year string) (calendar.Value, error) {
	month, err := monthIndex(monthName)
	if err != nil {
		return calendar.Value{}, err
	}

	text := fmt.Sprintf("%s %s %s", day, time.Month(month), year)
	t, err := time.Parse("2 January 2006", text)
	if err != nil {
		return calendar.Value{}, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	return calendar.FromTime(t), nil
}

func monthIndex(name string) (int, error) {
	month, ok := months[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMissingLocaleToken, name)
	}
	return month, nil
}

// IsUnrecognized reports whether err is a normalization failure due to an
// unknown shape, as opposed to a locale table gap or an impossible date.
func IsUnrecognized(err error) bool {
	return errors.Is(err, ErrUnrecognizedShape)
}
