// Package office reconstructs the ordered list of offices a person held
// from the numbered field frames of their infobox.
package office

import (
	"strconv"

	"github.com/coolbeans/tenure/pkg/calendar"
	"github.com/coolbeans/tenure/pkg/infobox"
)

// Wikidata properties used by Claims.
const (
	PropPosition      = "P39"
	PropStartTime     = "P580"
	PropEndTime       = "P582"
	PropReplaces      = "P1365"
	PropReplacedBy    = "P1366"
	PropSeriesOrdinal = "P1545"
	PropConstituency  = "P768"
)

// LinkRef is a link-bearing field value kept verbatim: the text as stated
// in the source and the pages it links to.
type LinkRef struct {
	StatedAs string   `json:"stated_as"`
	Links    []string `json:"links"`
}

// linkRefFrom converts an infobox field. Links is never nil so it encodes
// as an empty list.
func linkRefFrom(field infobox.Field) *LinkRef {
	return &LinkRef{
		StatedAs: field.Text,
		Links:    field.Pages(),
	}
}

// Term is one office held for one period.
type Term struct {
	// Position is the human-readable office label.
	Position string `json:"position"`

	// Office is the title field as stated, when the block named one.
	Office *LinkRef `json:"office,omitempty"`

	StartDate calendar.Value `json:"start_date,omitzero"`
	EndDate   calendar.Value `json:"end_date,omitzero"`

	// StartRaw and EndRaw hold the tidied source text of a date that could
	// not be normalized, in place of StartDate/EndDate.
	StartRaw string `json:"start_date_raw,omitempty"`
	EndRaw   string `json:"end_date_raw,omitempty"`

	// Ordinal is the holder's number in the series; 0 when absent.
	Ordinal int `json:"ordinal,omitempty"`

	Predecessor  *LinkRef `json:"predecessor,omitempty"`
	Successor    *LinkRef `json:"successor,omitempty"`
	Constituency *LinkRef `json:"constituency,omitempty"`
}

// Start returns the start date as written to output: the normalized value,
// else the raw fallback text.
func (t Term) Start() string {
	if !t.StartDate.IsZero() {
		return t.StartDate.String()
	}
	return t.StartRaw
}

// End returns the end date as written to output.
func (t Term) End() string {
	if !t.EndDate.IsZero() {
		return t.EndDate.String()
	}
	return t.EndRaw
}

// IsOpen returns true if the term has a start but no end.
func (t Term) IsOpen() bool {
	return t.Start() != "" && t.End() == ""
}

// Claims projects the term onto Wikidata position-held qualifiers. Absent
// values produce no key.
func (t Term) Claims() map[string]any {
	claims := make(map[string]any)

	if t.Office != nil {
		claims[PropPosition] = *t.Office
	} else {
		claims[PropPosition] = LinkRef{StatedAs: t.Position, Links: []string{}}
	}
	if start := t.Start(); start != "" {
		claims[PropStartTime] = start
	}
	if end := t.End(); end != "" {
		claims[PropEndTime] = end
	}
	if t.Predecessor != nil {
		claims[PropReplaces] = *t.Predecessor
	}
	if t.Successor != nil {
		claims[PropReplacedBy] = *t.Successor
	}
	if t.Ordinal > 0 {
		claims[PropSeriesOrdinal] = strconv.Itoa(t.Ordinal)
	}
	if t.Constituency != nil {
		claims[PropConstituency] = *t.Constituency
	}
	return claims
}
