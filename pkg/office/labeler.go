package office

import (
	"regexp"
	"strings"

	"github.com/coolbeans/tenure/pkg/dates"
	"github.com/coolbeans/tenure/pkg/infobox"
)

// LabelRule derives a position label from one office template convention.
type LabelRule struct {
	// Name identifies the rule in logs and tests.
	Name string

	// Match reports whether the rule applies to the frame.
	Match func(infobox.Frame) bool

	// Label builds the position label for a matching frame.
	Label func(infobox.Frame) string
}

// Labeler evaluates an ordered list of rules; the first matching rule
// decides the label and rules are never combined.
type Labeler struct {
	rules []LabelRule
}

// NewLabeler returns a labeler with the given rules. With no rules it uses
// DefaultRules.
func NewLabeler(rules ...LabelRule) *Labeler {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Labeler{rules: rules}
}

// Rules returns the rules in evaluation order.
func (l *Labeler) Rules() []LabelRule {
	return l.rules
}

// Match returns the first rule that applies to the frame.
func (l *Labeler) Match(frame infobox.Frame) (LabelRule, bool) {
	for _, rule := range l.rules {
		if rule.Match(frame) {
			return rule, true
		}
	}
	return LabelRule{}, false
}

// Label returns the derived position label, or "" when no rule applies.
func (l *Labeler) Label(frame infobox.Frame) string {
	rule, ok := l.Match(frame)
	if !ok {
		return ""
	}
	return dates.Tidy(rule.Label(frame))
}

func has(stems ...string) func(infobox.Frame) bool {
	return func(f infobox.Frame) bool {
		for _, stem := range stems {
			if !f.Has(stem) {
				return false
			}
		}
		return true
	}
}

func fixed(label string) func(infobox.Frame) string {
	return func(infobox.Frame) string { return label }
}

// around wraps the text of one field: around("assembly", "Member of the ", " Assembly").
func around(stem, prefix, suffix string) func(infobox.Frame) string {
	return func(f infobox.Frame) string {
		return prefix + f.Text(stem) + suffix
	}
}

// DefaultRules returns the officeholder template conventions in precedence
// order.
func DefaultRules() []LabelRule {
	return []LabelRule{
		{
			Name:  "ambassador",
			Match: has("ambassador_from"),
			Label: func(f infobox.Frame) string {
				country := f.Text("country")
				if country == "" {
					country = "?"
				}
				return "ambassador to " + country
			},
		},
		{Name: "constituency-mp", Match: has("constituency_mp", "parliament"), Label: around("parliament", "", " MP")},
		{Name: "generic-mp", Match: has("constituency_mp"), Label: fixed("Member of Parliament")},
		{Name: "assembly", Match: has("assembly"), Label: around("assembly", "Member of the ", " Assembly")},
		{Name: "state-delegate", Match: has("state_delegate"), Label: around("state_delegate", "Member of the ", " House of Delegates")},
		{Name: "senator", Match: has("jr/sr"), Label: fixed("Senator")},
		{Name: "parliament", Match: has("parliament"), Label: around("parliament", "", " MP")},
		{Name: "state-house", Match: has("state_house"), Label: around("state_house", "", " State Representative")},
		{Name: "state-legislature", Match: has("state_legislature"), Label: around("state_legislature", "", " State Legislator")},
		{Name: "state-senate", Match: has("state_senate"), Label: around("state_senate", "", " State Senator")},
		{Name: "state-assembly", Match: has("state_assembly"), Label: around("state_assembly", "", " State Assembly Member")},
		{
			Name: "us-house",
			Match: func(f infobox.Frame) bool {
				return f.Has("state") && (f.Has(infobox.KeyConstituency) || f.Has("district"))
			},
			Label: fixed("Member of the U.S. House of Representatives"),
		},
		{
			Name: "title",
			Match: func(f infobox.Frame) bool {
				_, ok := f.TitleSource()
				return ok
			},
			Label: func(f infobox.Frame) string {
				field, _ := f.TitleSource()
				return field.Text
			},
		},
	}
}

// Leading ordinals: "31st and 33rd " and "2nd ".
var (
	ordinalPair   = regexp.MustCompile(`^\d+(?:st|nd|rd|th) (?:and|&) \d+(?:st|nd|rd|th) `)
	ordinalPrefix = regexp.MustCompile(`^\d+(?:st|nd|rd|th) `)
)

// Deordinal tidies a label and removes a leading ordinal:
// "2nd Presidential Chief of Staff" becomes "Presidential Chief of Staff".
func Deordinal(label string) string {
	s := dates.Tidy(label)
	s = ordinalPair.ReplaceAllString(s, "")
	s = ordinalPrefix.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
