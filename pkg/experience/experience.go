// Package experience counts how long someone has held office, counting
// each calendar day once even when terms overlap.
package experience

import (
	"cmp"
	"slices"
	"time"

	"github.com/coolbeans/tenure/pkg/calendar"
	"github.com/coolbeans/tenure/pkg/office"
)

// Period is a span of office. Partial dates cover their whole extent: a
// start of 2004 begins on 1 January, an end of 2004-06 finishes on 30 June.
type Period struct {
	Start calendar.Value
	End   calendar.Value
}

// Experience is a set of periods.
type Experience struct {
	periods []Period
	asOf    time.Time
}

// New returns the experience made up of periods.
func New(periods ...Period) *Experience {
	return &Experience{periods: periods}
}

// FromTerms collects the normalized periods of terms. Terms without a
// normalized start are skipped; open terms keep a zero End.
func FromTerms(terms []office.Term) []Period {
	periods := make([]Period, 0, len(terms))
	for _, term := range terms {
		if term.StartDate.IsZero() {
			continue
		}
		periods = append(periods, Period{Start: term.StartDate, End: term.EndDate})
	}
	return periods
}

// AsOf returns a copy in which open periods run until t. Without it open
// periods are ignored.
func (e *Experience) AsOf(t time.Time) *Experience {
	return &Experience{periods: e.periods, asOf: t}
}

// Total returns the number of distinct days covered.
func (e *Experience) Total() int {
	return countDays(e.spans(), nil)
}

// Before returns the number of distinct days covered strictly before the
// first day of v.
func (e *Experience) Before(v calendar.Value) int {
	cut := dayNumber(v.First())
	return countDays(e.spans(), &cut)
}

// span is an inclusive range of day numbers.
type span struct {
	first, last int64
}

func (e *Experience) spans() []span {
	spans := make([]span, 0, len(e.periods))
	for _, p := range e.periods {
		if p.Start.IsZero() {
			continue
		}
		var last time.Time
		switch {
		case !p.End.IsZero():
			last = p.End.Last()
		case !e.asOf.IsZero():
			last = e.asOf
		default:
			continue
		}

		s := span{first: dayNumber(p.Start.First()), last: dayNumber(last)}
		if s.last < s.first {
			continue
		}
		spans = append(spans, s)
	}
	return spans
}

// countDays merges overlapping spans and counts their days, stopping
// before cut when it is set.
func countDays(spans []span, cut *int64) int {
	if len(spans) == 0 {
		return 0
	}
	slices.SortFunc(spans, func(a, b span) int {
		return cmp.Compare(a.first, b.first)
	})

	var total int64
	current := spans[0]
	flush := func(s span) {
		if cut != nil && s.last >= *cut {
			s.last = *cut - 1
		}
		if s.last >= s.first {
			total += s.last - s.first + 1
		}
	}
	for _, s := range spans[1:] {
		if s.first <= current.last+1 {
			current.last = max(current.last, s.last)
			continue
		}
		flush(current)
		current = s
	}
	flush(current)
	return int(total)
}

func dayNumber(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}
