package engine

import (
	"fmt"
	"strings"

	"github.com/anatolykoptev/go-kit/strutil"
)

// Ellipsis is the marker appended when a free-text field is truncated.
const Ellipsis = "..."

// Truncate returns the first n bytes of s.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Safe for UTF-8.
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}

// TruncateField caps a free-text field at limit runes with the standard
// ellipsis marker. Used everywhere user text is inserted into a context
// block or a result preview so truncation boundaries stay uniform.
func TruncateField(s string, limit int) string {
	return TruncateRunes(strings.TrimSpace(s), limit, Ellipsis)
}

// FormatSalary renders a salary range for display. Returns "" when neither
// bound is present. Unit defaults to "hourly".
//
//	min=15 max=20 unit=hourly → "$15 - $20/hourly"
//	min=15 only               → "$15/hourly"
func FormatSalary(min, max *float64, unit string) string {
	if min == nil && max == nil {
		return ""
	}
	if unit == "" {
		unit = "hourly"
	}
	switch {
	case min != nil && max != nil && *min != *max:
		return fmt.Sprintf("$%s - $%s/%s", trimZeros(*min), trimZeros(*max), unit)
	case min != nil:
		return fmt.Sprintf("$%s/%s", trimZeros(*min), unit)
	default:
		return fmt.Sprintf("$%s/%s", trimZeros(*max), unit)
	}
}

// trimZeros formats a float without trailing zeros ("15", "15.5").
func trimZeros(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
