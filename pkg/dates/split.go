package dates

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/coolbeans/tenure/pkg/calendar"
	"github.com/coolbeans/tenure/pkg/locale"
)

// rangeDash is the single separator every range form is rewritten to.
const rangeDash = "–"

var (
	// spacedHyphen is a hyphen with whitespace on at least one side.
	spacedHyphen = regexp.MustCompile(`\s+-\s*|\s*-\s+`)

	// dashFamily covers the hyphen, figure dash, en/em dashes, horizontal
	// bar, minus sign and their small-form variants.
	dashFamily = regexp.MustCompile(`\s*[\x{2010}-\x{2015}\x{2212}\x{FE58}\x{FE63}]\s*`)

	// isoWhole matches a full ISO date whose hyphens must not split it.
	isoWhole = regexp.MustCompile(`^\d{4}-\d{1,2}(?:-\d{1,2})?$`)

	// yearToken detects a four-digit year anywhere in a fragment.
	yearToken = regexp.MustCompile(`(?:^|\D)\d{4}(?:\D|$)`)
)


// Fragments is a combined range string split into its raw start and end.
type Fragments struct {
	Start string `json:"start"`
	End   string `json:"end"`

	// Open is true when the end is an incumbency marker or missing.
	Open bool `json:"open,omitempty"`
}

// Range is a parsed term range. End is the zero value when Open is true.
type Range struct {
	Start calendar.Value `json:"start,omitzero"`
	End   calendar.Value `json:"end,omitzero"`
	Open  bool           `json:"open,omitempty"`
}

// Split breaks a combined range like "3-10 June, 2004" or "2007 – present"
// into its start and end fragments. The fragments are still in the locale's
// language; an elided month or year on the start is copied from the end.
func (n *Normalizer) Split(raw string) Fragments {
	s := Tidy(raw)
	if s == "" {
		return Fragments{}
	}

	for _, sep := range n.rules.Separators() {
		s = strings.ReplaceAll(s, sep, rangeDash)
	}
	s = spacedHyphen.ReplaceAllString(s, rangeDash)
	s = dashFamily.ReplaceAllString(s, rangeDash)
	if !strings.Contains(s, rangeDash) && !isoWhole.MatchString(s) {
		s = strings.ReplaceAll(s, "-", rangeDash)
	}

	for _, prefix := range n.rules.OpenPrefixes() {
		if rest, ok := strings.CutPrefix(s, prefix); ok {
			s = strings.TrimSpace(rest)
			if !strings.Contains(s, rangeDash) {
				s += rangeDash
			}
			break
		}
	}

	if strings.HasSuffix(s, rangeDash) {
		s += locale.IncumbentToken
	}

	start, end, found := strings.Cut(s, rangeDash)
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)
	if !found {
		end = start
	}

	if n.rules.IsIncumbency(end) {
		return Fragments{Start: start, Open: true}
	}
	if found {
		start = backfill(start, end)
	}
	return Fragments{Start: start, End: end}
}

// ParseRange splits raw and normalizes both sides. Errors from each side
// are reported together; the side that did parse is still returned.
func (n *Normalizer) ParseRange(raw string) (Range, error) {
	frags := n.Split(raw)

	var rng Range
	var errs []error

	start, err := n.Normalize(frags.Start)
	if err != nil {
		errs = append(errs, fmt.Errorf("start: %w", err))
	}
	rng.Start = start

	if frags.Open {
		rng.Open = true
	} else {
		end, err := n.Normalize(frags.End)
		if err != nil {
			errs = append(errs, fmt.Errorf("end: %w", err))
		}
		rng.End = end
	}

	return rng, errors.Join(errs...)
}

// ParseRange is a convenience for NewNormalizer(rules).ParseRange(raw).
func ParseRange(raw string, rules *locale.Rules) (Range, error) {
	return NewNormalizer(rules).ParseRange(raw)
}

// backfill completes a start fragment that lacks a year from the end
// fragment. Only missing components are copied: a start with a month
// ("August", "August 28") takes the year alone, and a day-only start ("3",
// "18.") takes everything but the end's own day. A day is never copied.
// "August" with "October 10, 2018" becomes "August 2018", "3" with
// "June 2004" becomes "3 June 2004".
func backfill(start, end string) string {
	if start == "" || yearToken.MatchString(start) {
		return start
	}

	startTokens := strings.Fields(start)
	endTokens := strings.Fields(end)

	var borrowed []string
	switch {
	case slices.ContainsFunc(startTokens, hasLetter):
		for _, token := range endTokens {
			if yearToken.MatchString(token) {
				borrowed = append(borrowed, token)
			}
		}
	case allOf(startTokens, isDayToken):
		borrowed = endTokens
		if day := slices.IndexFunc(endTokens, isDayToken); day != -1 {
			borrowed = slices.Concat(endTokens[:day], endTokens[day+1:])
		}
	}
	if len(borrowed) == 0 {
		return start
	}
	return strings.Join(append(startTokens, borrowed...), " ")
}

// dayToken is a one or two digit day with optional trailing punctuation.
var dayToken = regexp.MustCompile(`^\d{1,2}[.,]?$`)

func isDayToken(token string) bool {
	return dayToken.MatchString(token)
}

func hasLetter(token string) bool {
	return strings.ContainsFunc(token, unicode.IsLetter)
}

func allOf(tokens []string, pred func(string) bool) bool {
	for _, token := range tokens {
		if !pred(token) {
			return false
		}
	}
	return len(tokens) > 0
}
