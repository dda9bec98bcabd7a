package infobox

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// Field stems recognized by the frame accessors, after the numeric suffix
// and any leading "sub" have been removed.
const (
	KeyOffice       = "office"
	KeyOrder        = "order"
	KeyTitle        = "title"
	KeySuccession   = "succession"
	KeyPredecessor  = "predecessor"
	KeySuccessor    = "successor"
	KeyTermStart    = "term_start"
	KeyTermEnd      = "term_end"
	KeyTerm         = "term"
	KeyReign        = "reign"
	KeyConstituency = "constituency"
)

var (
	// explicitKeys name the block's office directly.
	explicitKeys = []string{KeyOffice, KeyOrder, KeyTitle, KeySuccession}

	// positionKeys are every field a position label can be read from, in
	// preference order.
	positionKeys = []string{
		KeyOffice, KeyOrder, KeyTitle, KeySuccession, "jr/sr", "parliament",
		"state_house", "state_senate", "state_assembly", "assembly",
		"state_delegate", "constituency_mp", "constituency_am", "state",
		"district", "ambassador_from",
	}

	// labelOnlyKeys drive a position label without being a title source.
	labelOnlyKeys = []string{"state_legislature"}

	startKeys        = []string{KeyTermStart, "termstart"}
	endKeys          = []string{KeyTermEnd, "termend"}
	combinedKeys     = []string{KeyTerm, KeyReign}
	constituencyKeys = []string{KeyConstituency, "constituency_mp", "constituency_am", "riding", "district", "electorate"}
)

var (
	// suffixPattern splits a key into its stem and numeric block suffix.
	suffixPattern = regexp.MustCompile(`^(.*?)(\d*)$`)

	// malformedDateKey matches a date-family key followed by a suffix that
	// contains a digit; the suffix is malformed unless it is all digits
	// ("term_start_2", "term_end2b").
	malformedDateKey = regexp.MustCompile(`^(term_start|termstart|term_end|termend|term|reign)([^\pL]*\d[\pL\d_-]*)$`)

	// bareOrdinal matches an "order" value that is only a number ("7th").
	bareOrdinal = regexp.MustCompile(`^\d+(?:st|nd|rd|th)?\.?$`)

	// leadingInteger is the ordinal carried at the start of an "order" value.
	leadingInteger = regexp.MustCompile(`^(\d+)`)
)

// MalformedFrameError reports a field key whose block suffix cannot be
// determined.
type MalformedFrameError struct {
	Key string
}

func (e *MalformedFrameError) Error() string {
	return fmt.Sprintf("malformed field frame key %q: suffix is not numeric", e.Key)
}

// Frame is one numbered office-term block.
type Frame struct {
	// Index is the numeric suffix shared by the block's keys; 0 when the
	// keys carry no suffix.
	Index int

	// Fields maps normalized stems to their values.
	Fields map[string]Field
}

// Group splits a flat infobox field map into frames ordered by suffix.
//
// Keys are lowercased, the numeric suffix is stripped and a leading "sub"
// dropped, so "subterm3" lands in frame 3 as "term". A plain key wins over
// its "sub" variant in the same frame. Empty fields are skipped.
func Group(fields map[string]Field) ([]Frame, error) {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	byIndex := make(map[int]*Frame)
	fromSub := make(map[int]map[string]bool)

	for _, key := range keys {
		field := fields[key]
		if field.IsZero() {
			continue
		}

		stem, index, sub, err := splitKey(key)
		if err != nil {
			return nil, err
		}
		if stem == "" {
			continue
		}

		frame, ok := byIndex[index]
		if !ok {
			frame = &Frame{Index: index, Fields: make(map[string]Field)}
			byIndex[index] = frame
			fromSub[index] = make(map[string]bool)
		}

		if _, exists := frame.Fields[stem]; exists && sub {
			continue
		}
		if _, exists := frame.Fields[stem]; exists && !fromSub[index][stem] {
			continue
		}
		frame.Fields[stem] = field
		fromSub[index][stem] = sub
	}

	frames := make([]Frame, 0, len(byIndex))
	for _, frame := range byIndex {
		frames = append(frames, *frame)
	}
	slices.SortFunc(frames, func(a, b Frame) int {
		return cmp.Compare(a.Index, b.Index)
	})
	return frames, nil
}

// splitKey normalizes one raw field key.
func splitKey(key string) (stem string, index int, sub bool, err error) {
	k := strings.ToLower(strings.TrimSpace(key))
	if rest, ok := strings.CutPrefix(k, "sub"); ok {
		k, sub = rest, true
	}

	if m := malformedDateKey.FindStringSubmatch(k); m != nil && !allDigits(m[2]) {
		return "", 0, false, &MalformedFrameError{Key: key}
	}

	m := suffixPattern.FindStringSubmatch(k)
	stem = strings.TrimRight(m[1], " ")
	if m[2] != "" {
		index, err = strconv.Atoi(m[2])
		if err != nil {
			return "", 0, false, &MalformedFrameError{Key: key}
		}
	}
	return stem, index, sub, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// Unnumbered returns the normalized stem of a raw key, or "" when the key
// is malformed.
func Unnumbered(key string) string {
	stem, _, _, err := splitKey(key)
	if err != nil {
		return ""
	}
	return stem
}

// Get returns the field stored under stem.
func (f Frame) Get(stem string) (Field, bool) {
	field, ok := f.Fields[stem]
	return field, ok
}

// Has returns true if the frame has a field under stem.
func (f Frame) Has(stem string) bool {
	_, ok := f.Fields[stem]
	return ok
}

// Text returns the trimmed text of the field under stem.
func (f Frame) Text(stem string) string {
	return strings.TrimSpace(f.Fields[stem].Text)
}

func (f Frame) firstOf(stems []string) (Field, bool) {
	for _, stem := range stems {
		if field, ok := f.Fields[stem]; ok {
			return field, true
		}
	}
	return Field{}, false
}

// Title returns the field that names the block's office outright: office,
// then order (unless it is only an ordinal), title, succession.
func (f Frame) Title() (Field, bool) {
	for _, stem := range explicitKeys {
		field, ok := f.Fields[stem]
		if !ok {
			continue
		}
		if stem == KeyOrder && bareOrdinal.MatchString(strings.TrimSpace(field.Text)) {
			continue
		}
		return field, true
	}
	return Field{}, false
}

// TitleSource returns the first field a position label can be read from,
// including indirect sources such as "parliament" or "state".
func (f Frame) TitleSource() (Field, bool) {
	if field, ok := f.Title(); ok {
		return field, true
	}
	for _, stem := range positionKeys {
		if slices.Contains(explicitKeys, stem) {
			continue
		}
		if field, ok := f.Fields[stem]; ok {
			return field, true
		}
	}
	return Field{}, false
}

// HasTitleSource returns true if any field could yield a position label.
func (f Frame) HasTitleSource() bool {
	if _, ok := f.TitleSource(); ok {
		return true
	}
	_, ok := f.firstOf(labelOnlyKeys)
	return ok
}

// Order returns the "order" field.
func (f Frame) Order() (Field, bool) {
	return f.Get(KeyOrder)
}

// Ordinal returns the leading integer of the "order" field. Zero means no
// ordinal.
func (f Frame) Ordinal() int {
	m := leadingInteger.FindStringSubmatch(f.Text(KeyOrder))
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// StartRaw returns the raw text of the start date field.
func (f Frame) StartRaw() string {
	field, _ := f.firstOf(startKeys)
	return strings.TrimSpace(field.Text)
}

// EndRaw returns the raw text of the end date field.
func (f Frame) EndRaw() string {
	field, _ := f.firstOf(endKeys)
	return strings.TrimSpace(field.Text)
}

// CombinedRaw returns the raw text of a field holding the whole range.
func (f Frame) CombinedRaw() string {
	field, _ := f.firstOf(combinedKeys)
	return strings.TrimSpace(field.Text)
}

// Predecessor returns the "predecessor" field.
func (f Frame) Predecessor() (Field, bool) {
	return f.Get(KeyPredecessor)
}

// Successor returns the "successor" field.
func (f Frame) Successor() (Field, bool) {
	return f.Get(KeySuccessor)
}

// Constituency returns the first constituency-style field.
func (f Frame) Constituency() (Field, bool) {
	return f.firstOf(constituencyKeys)
}

// HasTermData returns true if the frame carries any date field.
func (f Frame) HasTermData() bool {
	return f.StartRaw() != "" || f.EndRaw() != "" || f.CombinedRaw() != ""
}
