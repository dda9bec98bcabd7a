package dates

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// tidyChain composes accents, folds fullwidth forms (dashes, digits, spaces)
// to their ASCII counterparts, and maps every decimal digit to ASCII.
var tidyChain = transform.Chain(norm.NFC, width.Fold, runes.Map(asciiDigit))

// Tidy canonicalizes raw infobox text before any locale processing:
// Unicode composition, width folding, ASCII digits, and collapsed whitespace
// (non-breaking spaces included).
func Tidy(s string) string {
	if s == "" {
		return ""
	}
	folded, _, err := transform.String(tidyChain, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(folded), " ")
}

// asciiDigit maps any Unicode decimal digit (Arabic-Indic, Devanagari, ...)
// to its ASCII form. Every Nd range starts at a zero digit.
func asciiDigit(r rune) rune {
	if r < 0x80 || !unicode.Is(unicode.Nd, r) {
		return r
	}
	for _, rng := range unicode.Nd.R16 {
		if rune(rng.Lo) <= r && r <= rune(rng.Hi) {
			return '0' + (r-rune(rng.Lo))%10
		}
	}
	for _, rng := range unicode.Nd.R32 {
		if rune(rng.Lo) <= r && r <= rune(rng.Hi) {
			return '0' + (r-rune(rng.Lo))%10
		}
	}
	return r
}
