// Package display turns backend values into table text. Absent values are
// shown as a dash, never as zero dates or NaN.
package display

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const Placeholder = "—"

var dateLayouts = []string{
	time.RFC1123,
	time.RFC1123Z,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseDate accepts the formats the backend emits.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Date formats raw for display; unparseable input is shown as sent.
func Date(raw *string) string {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return Placeholder
	}
	t, ok := ParseDate(*raw)
	if !ok {
		return *raw
	}
	return t.Format("Jan 02, 2006")
}

func Money(d decimal.NullDecimal) string {
	if !d.Valid {
		return Placeholder
	}
	return "$" + d.Decimal.StringFixed(2)
}

// Amount is Money for values that are always present.
func Amount(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func Number(d decimal.NullDecimal) string {
	if !d.Valid {
		return Placeholder
	}
	return d.Decimal.String()
}

// Count renders a counter; a missing counter is 0.
func Count(d decimal.Decimal, ok bool) string {
	if !ok {
		return "0"
	}
	return d.String()
}

func Text(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return Placeholder
	}
	return *s
}

func ID(id *int64) string {
	if id == nil {
		return Placeholder
	}
	return strconv.FormatInt(*id, 10)
}

// Truncate cuts s to n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

// Pad right-pads or truncates s to exactly n runes.
func Pad(s string, n int) string {
	s = Truncate(s, n)
	if d := n - len([]rune(s)); d > 0 {
		return s + strings.Repeat(" ", d)
	}
	return s
}
