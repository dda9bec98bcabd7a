package dates

import (
	"errors"
	"fmt"
)

var (
	// ErrUnrecognizedShape means the translated text matches none of the
	// recognized date shapes.
	ErrUnrecognizedShape = errors.New("unrecognized date shape")

	// ErrMissingLocaleToken means a textual shape matched but its month word
	// is not an English month, i.e. the locale's remap table is incomplete.
	ErrMissingLocaleToken = errors.New("month token missing from locale table")

	// ErrInvalidDate means the shape matched but the date does not exist
	// (31 June, month 13).
	ErrInvalidDate = errors.New("invalid calendar date")
)

// DateError describes a failed normalization. It wraps one of the
// sentinel errors above.
type DateError struct {
	// Input is the raw text handed to the normalizer.
	Input string

	// Translated is the text after pretidy and remap.
	Translated string

	// Locale is the code of the rules in use.
	Locale string

	Err error
}

func (e *DateError) Error() string {
	if e.Translated != "" && e.Translated != e.Input {
		return fmt.Sprintf("locale %s: date %q (as %q): %v", e.Locale, e.Input, e.Translated, e.Err)
	}
	return fmt.Sprintf("locale %s: date %q: %v", e.Locale, e.Input, e.Err)
}

func (e *DateError) Unwrap() error {
	return e.Err
}
