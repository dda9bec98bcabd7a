package dates

import (
	"errors"
	"testing"

	"github.com/coolbeans/tenure/pkg/calendar"
	"github.com/coolbeans/tenure/pkg/locale"
)

var normalizeCases = []struct {
	name   string
	locale string
	input  string
	want   string
}{
	{"iso day", "en", "2004-06-03", "2004-06-03"},
	{"iso month", "en", "2004-06", "2004-06"},
	{"iso short components", "en", "2004-6-3", "2004-06-03"},
	{"year", "en", "1997", "1997"},
	{"day month year", "en", "3 June 2004", "2004-06-03"},
	{"day month comma year", "en", "3 June, 2004", "2004-06-03"},
	{"month day year", "en", "June 3, 2004", "2004-06-03"},
	{"month day year no comma", "en", "August 28 2018", "2018-08-28"},
	{"abbreviated month", "en", "Sept. 2004", "2004-09"},
	{"month year", "en", "February 2005", "2005-02"},
	{"ordinal suffix", "en", "June 3rd, 2004", "2004-06-03"},
	{"trailing punctuation", "en", "3 June 2004.", "2004-06-03"},
	{"non-breaking space", "en", "3\u00a0June\u00a02004", "2004-06-03"},
	{"fullwidth digits", "en", "２００４", "2004"},
	{"arabic-indic digits", "ar", "١٩٩٩", "1999"},
	{"german", "de", "18. März 2004", "2004-03-18"},
	{"portuguese", "pt", "15 de março de 1983", "1983-03-15"},
	{"portuguese ordinal", "pt", "1º de maio de 1986", "1986-05-01"},
	{"russian", "ru", "18 марта 2004 года", "2004-03-18"},
	{"japanese", "ja", "2001年1月6日", "2001-01-06"},
	{"japanese month", "ja", "2001年1月", "2001-01"},
	{"vietnamese", "vi", "9 tháng 4 năm 2016", "2016-04-09"},
	{"vietnamese month", "vi", "Tháng 8, 2011", "2011-08"},
	{"dmy numeric", "dmy", "24.12.2007", "2007-12-24"},
	{"belarusian", "be", "18 сакавіка 2004 года", "2004-03-18"},
	{"bulgarian", "bg", "18 март 2004 г.", "2004-03-18"},
	{"czech", "cs", "18. března 2004", "2004-03-18"},
	{"greek", "el", "18 Μαρτίου 2004", "2004-03-18"},
	{"spanish", "es", "18 de marzo de 2004", "2004-03-18"},
	{"estonian", "et", "18. märts 2004", "2004-03-18"},
	{"french", "fr", "1er mars 2004", "2004-03-01"},
	{"hungarian", "hu", "2004. március 18.", "2004-03-18"},
	{"indonesian", "id", "18 Maret 2004", "2004-03-18"},
	{"italian", "it", "18 marzo 2004", "2004-03-18"},
	{"luxembourgish", "lb", "18. Mäerz 2004", "2004-03-18"},
	{"lithuanian", "lt", "2004 m. kovo 18 d.", "2004-03-18"},
	{"dutch", "nl", "18 maart 2004", "2004-03-18"},
	{"romanian", "ro", "18 martie 2004", "2004-03-18"},
	{"slovak", "sk", "18. marca 2004", "2004-03-18"},
	{"slovenian", "sl", "18. marca 2004", "2004-03-18"},
	{"turkish", "tr", "18 Mart 2004", "2004-03-18"},
	{"ukrainian", "uk", "18 березня 2004 року", "2004-03-18"},
}

func TestNormalize(t *testing.T) {
	for _, tt := range normalizeCases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input, locale.MustLookup(tt.locale))
			if err != nil {
				t.Fatalf("Normalize(%q) error = %v", tt.input, err)
			}
			if got.String() != tt.want {
				t.Errorf("Normalize(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeEmpty(t *testing.T) {
	en := locale.MustLookup("en")
	for _, input := range []string{"", "   ", "Incumbent", "present", "Current"} {
		got, err := Normalize(input, en)
		if err != nil {
			t.Errorf("Normalize(%q) error = %v", input, err)
		}
		if !got.IsZero() {
			t.Errorf("Normalize(%q) = %s, want zero value", input, got)
		}
	}
}

func TestNormalizeIdempotentOnISO(t *testing.T) {
	for _, rules := range locale.Builtin().List() {
		code := rules.Code
		for _, input := range []string{"2004", "2004-06", "2004-06-03"} {
			got, err := Normalize(input, rules)
			if err != nil {
				t.Errorf("[%s] Normalize(%q) error = %v", code, input, err)
				continue
			}
			again, err := Normalize(got.String(), rules)
			if err != nil || again != got {
				t.Errorf("[%s] Normalize(%q) twice = %s, %v; want %s", code, input, again, err, got)
			}
		}
	}
}

func TestEveryLocaleHasTranslationCase(t *testing.T) {
	covered := make(map[string]bool)
	for _, tt := range normalizeCases {
		covered[tt.locale] = true
	}
	for _, rules := range locale.Builtin().List() {
		if !covered[rules.Code] {
			t.Errorf("locale %s has no normalization case", rules.Code)
		}
	}
}

func TestNormalizeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"no shape", "sometime in the spring", ErrUnrecognizedShape},
		{"two digit year", "June 04", ErrUnrecognizedShape},
		{"unknown month", "3 Smarch 2004", ErrMissingLocaleToken},
		{"untranslated month", "18 März 2004", ErrMissingLocaleToken},
		{"impossible day", "31 June 2004", ErrInvalidDate},
		{"leap day", "29 February 2023", ErrInvalidDate},
		{"iso month out of range", "2004-13", ErrInvalidDate},
	}

	en := locale.MustLookup("en")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input, en)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Normalize(%q) error = %v, want %v", tt.input, err, tt.want)
			}
			if !got.IsZero() {
				t.Errorf("Normalize(%q) = %s, want zero value on error", tt.input, got)
			}

			var dateErr *DateError
			if !errors.As(err, &dateErr) {
				t.Fatalf("Normalize(%q) error type = %T, want *DateError", tt.input, err)
			}
			if dateErr.Locale != "en" || dateErr.Input != tt.input {
				t.Errorf("DateError = %+v, want locale en and input %q", dateErr, tt.input)
			}
		})
	}
}

func TestLeapDayAccepted(t *testing.T) {
	got, err := Normalize("29 February 2024", locale.MustLookup("en"))
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if want := calendar.MustParse("2024-02-29"); got != want {
		t.Errorf("Normalize() = %s, want %s", got, want)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		input string
		want  Shape
	}{
		{"2004-06-03", ShapeISO},
		{"3 June 2004", ShapeDayMonthYear},
		{"June 3, 2004", ShapeMonthDayYear},
		{"June 2004", ShapeMonthYear},
		{"2004", ShapeYear},
		{"spring 2004 or so", ShapeUnknown},
	}
	for _, tt := range tests {
		if got := Classify(tt.input); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestTranslate(t *testing.T) {
	n := NewNormalizer(locale.MustLookup("de"))
	if got := n.Translate("  18. März 2004 "); got != "18 March 2004" {
		t.Errorf("Translate() = %q, want %q", got, "18 March 2004")
	}
	if n.Rules().Code != "de" {
		t.Errorf("Rules().Code = %q, want de", n.Rules().Code)
	}
}
