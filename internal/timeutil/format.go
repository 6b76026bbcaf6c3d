package timeutil

import (
	"fmt"

	"github.com/star/satplanner/internal/planererr"
)

// FormatUTC renders calendar components in the fixed "YYYY/MM/DD HH:MM:SS"
// pattern used throughout EphemSample.TimeStr and the CSV exports.
func FormatUTC(c UTCComponents) string {
	return fmt.Sprintf("%04d/%02d/%02d %02d:%02d:%02d",
		c.Year, c.Month, c.Day, c.Hour, c.Minute, c.Second)
}

// FormatDisplay renders calendar components in "YYYY-MM-DD HH:MM:SS", the
// separator style used when a sample is round-tripped through a view.
func FormatDisplay(c UTCComponents) string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d",
		c.Year, c.Month, c.Day, c.Hour, c.Minute, c.Second)
}

// ParseDisplay parses "YYYY-MM-DD HH:MM:SS" (or a "/"-separated variant) back
// into a Julian date. Returns planererr.TimeParseError on any deviation from
// the expected layout; callers may substitute the current time and continue,
// the error never propagates beyond the call site.
func ParseDisplay(s string) (float64, error) {
	var c UTCComponents
	n, err := fmt.Sscanf(s, "%4d-%2d-%2d %2d:%2d:%2d",
		&c.Year, &c.Month, &c.Day, &c.Hour, &c.Minute, &c.Second)
	if err != nil || n != 6 {
		n2, err2 := fmt.Sscanf(s, "%4d/%2d/%2d %2d:%2d:%2d",
			&c.Year, &c.Month, &c.Day, &c.Hour, &c.Minute, &c.Second)
		if err2 != nil || n2 != 6 {
			return 0, &planererr.TimeParseError{Input: s, Reason: "expected YYYY-MM-DD HH:MM:SS"}
		}
	}
	// Second == 60 is allowed deliberately: a leap second or a display value
	// rounded up from 59.5s should not make an otherwise well-formed
	// timestamp unparseable.
	if c.Month < 1 || c.Month > 12 || c.Day < 1 || c.Day > 31 ||
		c.Hour < 0 || c.Hour > 23 || c.Minute < 0 || c.Minute > 59 || c.Second < 0 || c.Second > 60 {
		return 0, &planererr.TimeParseError{Input: s, Reason: "field out of range"}
	}
	return UTCToJD(c), nil
}
