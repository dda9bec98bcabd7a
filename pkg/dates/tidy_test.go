package dates

import "testing"

func TestTidy(t *testing.T) {
	tests := []struct {
		name, input, want string
	}{
		{"empty", "", ""},
		{"collapse whitespace", "  3   June\t2004 ", "3 June 2004"},
		{"non-breaking space", "3\u00a0June", "3 June"},
		{"fullwidth digits", "２００４年", "2004年"},
		{"fullwidth hyphen", "1950－1952", "1950-1952"},
		{"arabic-indic digits", "١٩٩٩", "1999"},
		{"devanagari digits", "२००४", "2004"},
		{"decomposed accent", "Ma\u0301rcius", "M\u00e1rcius"},
		{"ascii untouched", "June 3, 2004", "June 3, 2004"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Tidy(tt.input); got != tt.want {
				t.Errorf("Tidy(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
