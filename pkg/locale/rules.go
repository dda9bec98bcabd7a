// Package locale provides per-language date translation tables.
//
// Every locale differs only in data: an ordered token remap list that
// translates local month names and incumbency markers into English, a list
// of pre-tidy steps run before the remap, and the extra range separators and
// open-ended prefixes the language uses. Tables are written in YAML and
// compiled once; a compiled *Rules is never mutated afterwards.
package locale

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// IncumbentToken is the canonical English incumbency marker. The shared
// remap translates it to the empty string.
const IncumbentToken = "Incumbent"

// StepOp names a pre-tidy transform.
type StepOp string

const (
	// OpReplace substitutes every occurrence of From with To.
	OpReplace StepOp = "replace"

	// OpRegex substitutes every match of Pattern with With (regexp expansion syntax).
	OpRegex StepOp = "regex"

	// OpLowercase lowercases the whole string.
	OpLowercase StepOp = "lowercase"

	// OpDelete removes every rune listed in Chars.
	OpDelete StepOp = "delete"

	// OpReverseWords reverses whitespace-separated tokens (year-first languages).
	OpReverseWords StepOp = "reverse_words"

	// OpNumericDMY rewrites an all-numeric day/month/year string into ISO order.
	OpNumericDMY StepOp = "numeric_dmy"
)

// Step is one pre-tidy transform.
type Step struct {
	Op      StepOp `yaml:"op" json:"op"`
	From    string `yaml:"from,omitempty" json:"from,omitempty"`
	To      string `yaml:"to,omitempty" json:"to,omitempty"`
	Pattern string `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	With    string `yaml:"with,omitempty" json:"with,omitempty"`
	Chars   string `yaml:"chars,omitempty" json:"chars,omitempty"`

	compiled *regexp.Regexp
}

// Replacement maps a local token to its canonical English form.
// An empty To marks an incumbency token.
type Replacement struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
}

// RangeRules holds the locale's range syntax beyond the dash family.
type RangeRules struct {
	// Separators join start and end, e.g. " to " or " bis ".
	Separators []string `yaml:"separators,omitempty" json:"separators,omitempty"`

	// OpenPrefixes introduce an open-ended term, e.g. "since " or "Từ ".
	OpenPrefixes []string `yaml:"open_prefixes,omitempty" json:"open_prefixes,omitempty"`
}

// Rules is the translation table for one locale.
type Rules struct {
	Code    string        `yaml:"code" json:"code"`
	Name    string        `yaml:"name" json:"name"`
	Pretidy []Step        `yaml:"pretidy,omitempty" json:"pretidy,omitempty"`
	Remap   []Replacement `yaml:"remap,omitempty" json:"remap,omitempty"`
	Range   RangeRules    `yaml:"range,omitempty" json:"range,omitempty"`

	// remap is Remap followed by the shared defaults.
	remap    []Replacement
	compiled bool
}

// sharedRemap is appended after every locale's own entries, so a locale
// token that contains one of these (Portuguese "presente") fires first.
var sharedRemap = []Replacement{
	{From: "Incumbent", To: ""},
	{From: "incumbent", To: ""},
	{From: "Present", To: ""},
	{From: "present", To: ""},
	{From: "current", To: ""},
	{From: "Current", To: ""},
}

// Validate checks that the rules have all required fields.
func (r *Rules) Validate() error {
	if r.Code == "" {
		return fmt.Errorf("locale code is required")
	}
	if r.Name == "" {
		return fmt.Errorf("locale %q name is required", r.Code)
	}
	for i, rep := range r.Remap {
		if rep.From == "" {
			return fmt.Errorf("locale %q remap %d has an empty token", r.Code, i)
		}
	}
	for i, step := range r.Pretidy {
		switch step.Op {
		case OpReplace:
			if step.From == "" {
				return fmt.Errorf("locale %q pretidy %d: replace needs from", r.Code, i)
			}
		case OpRegex:
			if step.Pattern == "" {
				return fmt.Errorf("locale %q pretidy %d: regex needs pattern", r.Code, i)
			}
		case OpDelete:
			if step.Chars == "" {
				return fmt.Errorf("locale %q pretidy %d: delete needs chars", r.Code, i)
			}
		case OpLowercase, OpReverseWords, OpNumericDMY:
		default:
			return fmt.Errorf("locale %q pretidy %d: unknown op %q", r.Code, i, step.Op)
		}
	}
	return nil
}

// Compile prepares the rules for use. It must be called before the rules
// are shared; the registry does this on Register.
func (r *Rules) Compile() error {
	if err := r.Validate(); err != nil {
		return err
	}

	for i := range r.Pretidy {
		step := &r.Pretidy[i]
		if step.Op != OpRegex {
			continue
		}
		compiled, err := regexp.Compile(step.Pattern)
		if err != nil {
			return fmt.Errorf("compiling locale %q pretidy %d pattern %q: %w", r.Code, i, step.Pattern, err)
		}
		step.compiled = compiled
	}

	r.remap = slices.Concat(r.Remap, sharedRemap)
	r.compiled = true
	return nil
}

// IsCompiled returns true if the rules have been compiled.
func (r *Rules) IsCompiled() bool {
	return r.compiled
}

// ApplyPretidy runs the locale's pre-tidy steps in order.
func (r *Rules) ApplyPretidy(s string) string {
	for _, step := range r.Pretidy {
		s = step.apply(s)
	}
	return s
}

// Translate substitutes every occurrence of each remap token, in table order.
func (r *Rules) Translate(s string) string {
	for _, rep := range r.remapList() {
		if strings.Contains(s, rep.From) {
			s = strings.ReplaceAll(s, rep.From, rep.To)
		}
	}
	return s
}

// IsIncumbency reports whether s translates to nothing, i.e. consists only
// of incumbency markers.
func (r *Rules) IsIncumbency(s string) bool {
	return strings.TrimSpace(r.Translate(r.ApplyPretidy(s))) == ""
}

// Separators returns the locale's textual range separators.
func (r *Rules) Separators() []string {
	return r.Range.Separators
}

// OpenPrefixes returns the locale's open-ended range prefixes.
func (r *Rules) OpenPrefixes() []string {
	return r.Range.OpenPrefixes
}

func (r *Rules) remapList() []Replacement {
	if r.compiled {
		return r.remap
	}
	return slices.Concat(r.Remap, sharedRemap)
}

func (s Step) apply(in string) string {
	switch s.Op {
	case OpReplace:
		return strings.ReplaceAll(in, s.From, s.To)
	case OpRegex:
		re := s.compiled
		if re == nil {
			re = regexp.MustCompile(s.Pattern)
		}
		return re.ReplaceAllString(in, s.With)
	case OpLowercase:
		return strings.ToLower(in)
	case OpDelete:
		return strings.Map(func(r rune) rune {
			if strings.ContainsRune(s.Chars, r) {
				return -1
			}
			return r
		}, in)
	case OpReverseWords:
		words := strings.Fields(in)
		slices.Reverse(words)
		return strings.Join(words, " ")
	case OpNumericDMY:
		return numericDMY(in)
	default:
		return in
	}
}

// numericDMY turns "9 4 2016" or "24.12.2007" into "2016-04-09" / "2007-12-24".
// Anything that is not two or three numeric tokens ending in a 4-digit year
// is returned unchanged.
func numericDMY(in string) string {
	tokens := strings.FieldsFunc(in, func(r rune) bool {
		return unicode.IsSpace(r) || r == '.' || r == ',' || r == '/' || r == '-'
	})
	if len(tokens) < 2 || len(tokens) > 3 {
		return in
	}
	for _, tok := range tokens {
		if _, err := strconv.Atoi(tok); err != nil {
			return in
		}
	}
	if len(tokens[len(tokens)-1]) != 4 {
		return in
	}

	slices.Reverse(tokens)
	for i := 1; i < len(tokens); i++ {
		if len(tokens[i]) == 1 {
			tokens[i] = "0" + tokens[i]
		}
	}
	return strings.Join(tokens, "-")
}
