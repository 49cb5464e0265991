// Package conv holds the textual conversions shared by the storage
// format and the HTTP layer: seat column letters and the fixed date and
// date-time layouts used in the data files.
package conv

import (
	"errors"
	"time"
)

// Date layouts used across all storage files. Dates are day-first and
// date-times prepend a 24h clock, e.g. "14:30 02/01/2026".
const (
	DateLayout     = "02/01/2006"
	DateTimeLayout = "15:04 02/01/2006"
)

// ErrBadColumn is returned when a column label is not a single
// uppercase letter A..Z.
var ErrBadColumn = errors.New("invalid column label")

// ColumnLabel converts a zero-based column index to its letter label.
// Indexes outside 0..25 return an empty string; airplane cabins never
// exceed 26 columns.
func ColumnLabel(col int) string {
	if col < 0 || col > 25 {
		return ""
	}
	return string(rune('A' + col))
}

// ColumnIndex converts a column letter back to its zero-based index.
// The match is exact and case-sensitive: "a" or "AA" are rejected.
func ColumnIndex(label string) (int, error) {
	if len(label) != 1 || label[0] < 'A' || label[0] > 'Z' {
		return 0, ErrBadColumn
	}
	return int(label[0] - 'A'), nil
}

// FormatDate renders t in the DD/MM/YYYY storage layout.
func FormatDate(t time.Time) string { return t.Format(DateLayout) }

// ParseDate parses a DD/MM/YYYY string.
func ParseDate(s string) (time.Time, error) { return time.Parse(DateLayout, s) }

// FormatDateTime renders t in the "HH:MM DD/MM/YYYY" storage layout.
func FormatDateTime(t time.Time) string { return t.Format(DateTimeLayout) }

// ParseDateTime parses an "HH:MM DD/MM/YYYY" string.
func ParseDateTime(s string) (time.Time, error) { return time.Parse(DateTimeLayout, s) }
