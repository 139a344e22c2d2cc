package dashboard

import (
	"fmt"
	"time"
)

// DisplayPlaceholder is rendered when no date has been selected.
const DisplayPlaceholder = "Select date"

// APIKey renders the date query key the backend expects, YYYY-MM-DD,
// from the date's own calendar fields with no timezone conversion.
func APIKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

// Display renders a date for the operator as DD/MM/YYYY. The zero time
// yields a fixed placeholder.
func Display(t time.Time) string {
	if t.IsZero() {
		return DisplayPlaceholder
	}
	return fmt.Sprintf("%02d/%02d/%04d", t.Day(), int(t.Month()), t.Year())
}
